package repository

import (
	"context"
	"time"

	"acharam/internal/domain/model"
)

// 監査ログの絞り込み条件。Actionsは複数指定でOR
type AuditLogFilter struct {
	ActorUserID *int64
	Actions     []model.AuditAction
	EntityType  *model.AuditEntityType
	EntityID    *int64
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	// 0以下は上限なし（usecase側で決める）
	Limit  int
	Offset int
}

// 監査ログの保存・一覧取得の約束。追記のみ
type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error

	//新しい順
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
	Count(ctx context.Context, filter AuditLogFilter) (int64, error)
}
