package usecase

import (
	"context"
	"encoding/json"
	"net/http"

	"acharam/internal/domain/model"
	repo "acharam/internal/repository"
)

type AuditLogUsecase struct {
	logs repo.AuditLogRepository
}

func NewAuditLogUsecase(logs repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{logs: logs}
}

// 管理画面の監査ログ一覧（新しい順）。2番目の戻り値はページングなしの件数
func (u *AuditLogUsecase) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, int64, error) {
	if f.Limit == 0 {
		f.Limit = 50
	}
	if f.Limit < 1 || f.Limit > 200 {
		return nil, 0, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Offset < 0 {
		return nil, 0, NewHTTPError(http.StatusBadRequest, "invalid offset")
	}
	if f.CreatedFrom != nil && f.CreatedTo != nil && f.CreatedFrom.After(*f.CreatedTo) {
		return nil, 0, NewHTTPError(http.StatusBadRequest, "from must be before to")
	}
	// 対象の種類と合わない操作は結果が必ず空になるので弾く
	if f.EntityType != nil {
		for _, a := range f.Actions {
			if a.EntityType() != *f.EntityType {
				return nil, 0, NewHTTPError(http.StatusBadRequest, "action does not match entityType")
			}
		}
	}

	total, err := u.logs.Count(ctx, f)
	if err != nil {
		return nil, 0, dbError(err)
	}
	logs, err := u.logs.List(ctx, f)
	if err != nil {
		return nil, 0, dbError(err)
	}
	return logs, total, nil
}

// 変更と同じTxで書く。書けなければ変更ごとrollback
func writeAudit(ctx context.Context, r repo.TxRepos, actorUserID int64, action model.AuditAction, entity model.AuditEntityType, entityID int64, details interface{}) error {
	b, err := json.Marshal(details)
	if err != nil {
		return WrapHTTPError(http.StatusInternalServerError, "audit error", err)
	}
	if err := r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID: actorUserID,
		Action:      action,
		EntityType:  entity,
		EntityID:    entityID,
		Details:     string(b),
	}); err != nil {
		return dbError(err)
	}
	return nil
}
