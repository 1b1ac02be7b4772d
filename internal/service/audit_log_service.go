package service

import (
	"shelftrack/internal/domain"
	"shelftrack/pkg/logger"
)

const defaultAuditLogLimit = 50

type AuditLogService struct {
	repo   domain.AuditLogRepository
	logger logger.Logger
}

func NewAuditLogService(repo domain.AuditLogRepository, log logger.Logger) domain.AuditLogService {
	return &AuditLogService{
		repo:   repo,
		logger: log,
	}
}

// Record never fails the calling operation; a lost audit row is logged and
// swallowed.
func (s *AuditLogService) Record(entityType domain.EntityType, entityID int64, action domain.ActionType, details string) {
	entry := &domain.AuditLog{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Details:    details,
	}
	if err := s.repo.Create(entry); err != nil {
		s.logger.Error("Failed to write audit log", map[string]interface{}{
			"entity_type": string(entityType),
			"entity_id":   entityID,
			"action":      string(action),
			"error":       err.Error(),
		})
	}
}

func (s *AuditLogService) GetByEntity(entityType domain.EntityType, entityID int64) ([]*domain.AuditLog, error) {
	return s.repo.FindByEntity(entityType, entityID)
}

func (s *AuditLogService) GetAll(limit, offset int) ([]*domain.AuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultAuditLogLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.FindAll(limit, offset)
}
