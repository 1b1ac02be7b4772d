package repository

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"shelftrack/internal/domain"
	"shelftrack/pkg/logger"
)

type AuditLogRepository struct {
	db     *sqlx.DB
	logger logger.Logger
}

func NewAuditLogRepository(db *sqlx.DB, logger logger.Logger) domain.AuditLogRepository {
	return &AuditLogRepository{
		db:     db,
		logger: logger,
	}
}

func (r *AuditLogRepository) Create(log *domain.AuditLog) error {
	log.CreatedAt = time.Now()

	res, err := r.db.Exec(
		`INSERT INTO audit_logs (entity_type, entity_id, action, details, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		string(log.EntityType), log.EntityID, string(log.Action), log.Details, log.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Could not create audit log entry", map[string]interface{}{"error": err.Error()})
		return fmt.Errorf("could not create audit log entry: %w", err)
	}

	log.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not read new audit log id: %w", err)
	}

	return nil
}

func (r *AuditLogRepository) FindByEntity(entityType domain.EntityType, entityID int64) ([]*domain.AuditLog, error) {
	query := `
		SELECT id, entity_type, entity_id, action, details, created_at
		FROM audit_logs
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY created_at DESC, id DESC`

	logs := make([]*domain.AuditLog, 0)
	if err := r.db.Select(&logs, query, string(entityType), entityID); err != nil {
		r.logger.Error("Could not load audit log entries", map[string]interface{}{
			"entity_type": entityType,
			"entity_id":   entityID,
			"error":       err.Error(),
		})
		return nil, fmt.Errorf("could not load audit log entries: %w", err)
	}

	return logs, nil
}

func (r *AuditLogRepository) FindAll(limit, offset int) ([]*domain.AuditLog, error) {
	query := `
		SELECT id, entity_type, entity_id, action, details, created_at
		FROM audit_logs
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`

	logs := make([]*domain.AuditLog, 0)
	if err := r.db.Select(&logs, query, limit, offset); err != nil {
		r.logger.Error("Could not load audit log entries", map[string]interface{}{
			"limit":  limit,
			"offset": offset,
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("could not load audit log entries: %w", err)
	}

	return logs, nil
}
