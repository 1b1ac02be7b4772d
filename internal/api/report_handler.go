package api

import (
	"net/http"
	"strconv"

	"shelftrack/internal/domain"
	"shelftrack/pkg/logger"
)

type ReportHandler struct {
	service domain.ReportService
	logger  logger.Logger
}

func NewReportHandler(service domain.ReportService, logger logger.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger,
	}
}

func (h *ReportHandler) RegisterRoutes(mux *http.ServeMux, admin func(http.Handler) http.Handler) {
	mux.Handle("GET /reports/dashboard", admin(http.HandlerFunc(h.Dashboard)))
	mux.Handle("GET /reports/borrowings", admin(http.HandlerFunc(h.Borrowings)))
	mux.Handle("GET /reports/users", admin(http.HandlerFunc(h.Users)))
	mux.Handle("GET /reports/books", admin(http.HandlerFunc(h.Books)))
}

func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.DashboardSummary()
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *ReportHandler) Borrowings(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.PeriodReport(
		r.URL.Query().Get("start_date"),
		r.URL.Query().Get("end_date"),
		domain.ReportType(r.URL.Query().Get("type")),
	)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *ReportHandler) Users(w http.ResponseWriter, r *http.Request) {
	userID, _ := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)

	report, err := h.service.UserReport(userID)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *ReportHandler) Books(w http.ResponseWriter, r *http.Request) {
	categoryID, _ := strconv.ParseInt(r.URL.Query().Get("category_id"), 10, 64)

	report, err := h.service.BookReport(categoryID)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}
