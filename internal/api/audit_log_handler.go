package api

import (
	"net/http"
	"strconv"

	"shelftrack/internal/domain"
	"shelftrack/pkg/logger"
)

type AuditLogHandler struct {
	service domain.AuditLogService
	logger  logger.Logger
}

func NewAuditLogHandler(service domain.AuditLogService, logger logger.Logger) *AuditLogHandler {
	return &AuditLogHandler{
		service: service,
		logger:  logger,
	}
}

func (h *AuditLogHandler) RegisterRoutes(mux *http.ServeMux, admin func(http.Handler) http.Handler) {
	mux.Handle("GET /audit-logs", admin(http.HandlerFunc(h.List)))
	mux.Handle("GET /audit-logs/{entity_type}/{entity_id}", admin(http.HandlerFunc(h.ByEntity)))
}

func (h *AuditLogHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	logs, err := h.service.GetAll(limit, offset)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

func (h *AuditLogHandler) ByEntity(w http.ResponseWriter, r *http.Request) {
	entityType := domain.EntityType(r.PathValue("entity_type"))
	entityID, err := strconv.ParseInt(r.PathValue("entity_id"), 10, 64)
	if err != nil || entityID <= 0 {
		respondJSON(w, http.StatusNotFound, errorResponse{Message: "resource not found"})
		return
	}

	logs, err := h.service.GetByEntity(entityType, entityID)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, logs)
}
