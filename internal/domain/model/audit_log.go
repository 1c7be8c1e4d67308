package model

import (
	"errors"
	"strings"
	"time"
)

type AuditAction string

const (
	AuditActionCreateProduct     AuditAction = "CREATE_PRODUCT"
	AuditActionUpdateProduct     AuditAction = "UPDATE_PRODUCT"
	AuditActionDeleteProduct     AuditAction = "DELETE_PRODUCT"
	AuditActionCreateCategory    AuditAction = "CREATE_CATEGORY"
	AuditActionUpdateCategory    AuditAction = "UPDATE_CATEGORY"
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
)

// 何に対する操作か
type AuditEntityType string

const (
	AuditEntityProduct  AuditEntityType = "PRODUCT"
	AuditEntityCategory AuditEntityType = "CATEGORY"
	AuditEntityOrder    AuditEntityType = "ORDER"
)

var (
	ErrInvalidAuditAction = errors.New("invalid audit action")
	ErrInvalidAuditEntity = errors.New("invalid audit entity type")
)

var auditActions = map[AuditAction]AuditEntityType{
	AuditActionCreateProduct:     AuditEntityProduct,
	AuditActionUpdateProduct:     AuditEntityProduct,
	AuditActionDeleteProduct:     AuditEntityProduct,
	AuditActionCreateCategory:    AuditEntityCategory,
	AuditActionUpdateCategory:    AuditEntityCategory,
	AuditActionUpdateOrderStatus: AuditEntityOrder,
}

// 大文字小文字は問わない
func ParseAuditAction(s string) (AuditAction, error) {
	a := AuditAction(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := auditActions[a]; !ok {
		return "", ErrInvalidAuditAction
	}
	return a, nil
}

func ParseAuditEntityType(s string) (AuditEntityType, error) {
	t := AuditEntityType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case AuditEntityProduct, AuditEntityCategory, AuditEntityOrder:
		return t, nil
	}
	return "", ErrInvalidAuditEntity
}

// 操作が対象とするエンティティの種類
func (a AuditAction) EntityType() AuditEntityType {
	return auditActions[a]
}

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。更新・削除はしない
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作した管理者のID
	ActorUserID int64 `gorm:"not null;index" json:"userId"`

	Action     AuditAction     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityType AuditEntityType `gorm:"type:varchar(50);not null;index" json:"entityType"`
	EntityID   int64           `gorm:"not null;index" json:"entityId"`

	//JSON文字列で保存する
	Details string `gorm:"type:text" json:"details"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"createdAt"`
}
