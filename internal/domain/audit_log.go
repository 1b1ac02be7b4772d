package domain

import "time"

type EntityType string

const (
	EntityTypeBook      EntityType = "book"
	EntityTypeCategory  EntityType = "category"
	EntityTypeUser      EntityType = "user"
	EntityTypeBorrowing EntityType = "borrowing"
)

type ActionType string

const (
	ActionTypeCreate ActionType = "create"
	ActionTypeUpdate ActionType = "update"
	ActionTypeDelete ActionType = "delete"
	ActionTypeReturn ActionType = "return"
	ActionTypeExtend ActionType = "extend"
)

type AuditLog struct {
	ID         int64      `db:"id" json:"id"`
	EntityType EntityType `db:"entity_type" json:"entity_type"`
	EntityID   int64      `db:"entity_id" json:"entity_id"`
	Action     ActionType `db:"action" json:"action"`
	Details    string     `db:"details" json:"details"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

type AuditLogRepository interface {
	Create(log *AuditLog) error
	FindByEntity(entityType EntityType, entityID int64) ([]*AuditLog, error)
	FindAll(limit, offset int) ([]*AuditLog, error)
}

type AuditLogService interface {
	// Record is best-effort: failures are logged by the implementation and
	// never propagated to the calling operation.
	Record(entityType EntityType, entityID int64, action ActionType, details string)
	GetByEntity(entityType EntityType, entityID int64) ([]*AuditLog, error)
	GetAll(limit, offset int) ([]*AuditLog, error)
}
