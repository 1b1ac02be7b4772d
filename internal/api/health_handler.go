package api

import (
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"shelftrack/pkg/logger"
	"shelftrack/pkg/redis"
)

type HealthHandler struct {
	db     *sqlx.DB
	redis  *redis.Client
	logger logger.Logger
}

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

func NewHealthHandler(db *sqlx.DB, redisClient *redis.Client, logger logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		redis:  redisClient,
		logger: logger,
	}
}

func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)
}

func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	services := map[string]string{
		"database": "healthy",
		"redis":    "healthy",
	}
	status := "healthy"

	if err := h.db.PingContext(r.Context()); err != nil {
		h.logger.Error("Database health check failed", map[string]interface{}{"error": err.Error()})
		services["database"] = "unhealthy"
		status = "degraded"
	}

	if err := h.redis.Ping(r.Context()); err != nil {
		h.logger.Error("Redis health check failed", map[string]interface{}{"error": err.Error()})
		services["redis"] = "unhealthy"
		status = "degraded"
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, healthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Services:  services,
	})
}
