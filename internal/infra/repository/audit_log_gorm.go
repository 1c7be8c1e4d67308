package repository

import (
	"context"

	"acharam/internal/domain/model"
	repo "acharam/internal/repository"

	"gorm.io/gorm"
)

// 監査ログは追記のみ。一覧は管理画面の絞り込みとページング用
type AuditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) *AuditLogGormRepository {
	return &AuditLogGormRepository{db: db}
}

func (r *AuditLogGormRepository) Create(ctx context.Context, entry model.AuditLog) error {
	return r.db.WithContext(ctx).Create(&entry).Error
}

func (r *AuditLogGormRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = -1
	}
	var logs []model.AuditLog
	err := r.db.WithContext(ctx).
		Scopes(auditLogFilter(f)).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(f.Offset).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// ページングなしの件数（X-Total-Count用）
func (r *AuditLogGormRepository) Count(ctx context.Context, f repo.AuditLogFilter) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.AuditLog{}).
		Scopes(auditLogFilter(f)).
		Count(&n).Error
	return n, err
}

// ListとCountで同じ条件を使う
func auditLogFilter(f repo.AuditLogFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.ActorUserID != nil {
			q = q.Where("actor_user_id = ?", *f.ActorUserID)
		}
		if len(f.Actions) > 0 {
			q = q.Where("action IN ?", f.Actions)
		}
		if f.EntityType != nil {
			q = q.Where("entity_type = ?", *f.EntityType)
		}
		if f.EntityID != nil {
			q = q.Where("entity_id = ?", *f.EntityID)
		}
		if f.CreatedFrom != nil {
			q = q.Where("created_at >= ?", *f.CreatedFrom)
		}
		if f.CreatedTo != nil {
			q = q.Where("created_at <= ?", *f.CreatedTo)
		}
		return q
	}
}
