package api

import (
	"net/http"
	"strconv"

	"shelftrack/internal/api/middleware"
	"shelftrack/internal/domain"
	"shelftrack/pkg/logger"
)

// DashboardHandler serves the member-scoped views: own loan summary,
// currently held books and recommendations.
type DashboardHandler struct {
	reports domain.ReportService
	catalog domain.CatalogService
	logger  logger.Logger
}

func NewDashboardHandler(reports domain.ReportService, catalog domain.CatalogService, logger logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		reports: reports,
		catalog: catalog,
		logger:  logger,
	}
}

func (h *DashboardHandler) RegisterRoutes(mux *http.ServeMux, authed func(http.Handler) http.Handler) {
	mux.Handle("GET /dashboard/summary", authed(http.HandlerFunc(h.Summary)))
	mux.Handle("GET /dashboard/current-borrowings", authed(http.HandlerFunc(h.CurrentBorrowings)))
	mux.Handle("GET /dashboard/recommendations", authed(http.HandlerFunc(h.Recommendations)))
}

func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	stats, err := h.reports.MemberDashboard(actor)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *DashboardHandler) CurrentBorrowings(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	borrowings, err := h.reports.CurrentBorrowings(actor)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, borrowings)
}

func (h *DashboardHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	books, err := h.catalog.Recommendations(actor, limit)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, books)
}
