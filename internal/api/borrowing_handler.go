package api

import (
	"net/http"
	"strconv"

	"shelftrack/internal/api/middleware"
	"shelftrack/internal/domain"
	"shelftrack/pkg/logger"
)

type BorrowingHandler struct {
	service domain.LoanService
	logger  logger.Logger
}

func NewBorrowingHandler(service domain.LoanService, logger logger.Logger) *BorrowingHandler {
	return &BorrowingHandler{
		service: service,
		logger:  logger,
	}
}

func (h *BorrowingHandler) RegisterRoutes(mux *http.ServeMux, authed, admin func(http.Handler) http.Handler) {
	mux.Handle("GET /borrowings", authed(http.HandlerFunc(h.List)))
	mux.Handle("POST /borrowings", authed(http.HandlerFunc(h.Create)))
	mux.Handle("GET /borrowings/{id}", authed(http.HandlerFunc(h.Show)))
	mux.Handle("POST /borrowings/{id}/return", admin(http.HandlerFunc(h.Return)))
	mux.Handle("PUT /borrowings/{id}/extend", authed(http.HandlerFunc(h.Extend)))
	mux.Handle("POST /borrowings-with-admin", admin(http.HandlerFunc(h.CreateForMember)))
	mux.Handle("GET /check-overdue", admin(http.HandlerFunc(h.CheckOverdue)))
}

func (h *BorrowingHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	page, perPage := pageParams(r)
	userID, _ := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)

	borrowings, total, err := h.service.ListLoans(actor, domain.BorrowingFilter{
		Status:  domain.LoanStatus(r.URL.Query().Get("status")),
		UserID:  userID,
		Search:  r.URL.Query().Get("search"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	respondPaginated(w, borrowings, page, perPage, total)
}

type createLoanRequest struct {
	BookID     int64   `json:"book_id"`
	BorrowDate string  `json:"borrow_date"`
	DueDate    string  `json:"due_date"`
	Notes      *string `json:"notes"`
}

func (h *BorrowingHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	var req createLoanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	loan, err := h.service.CreateLoan(actor, domain.CreateLoanInput{
		BookID:     req.BookID,
		BorrowDate: req.BorrowDate,
		DueDate:    req.DueDate,
		Notes:      req.Notes,
	})
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, loan)
}

type adminLoanRequest struct {
	MemberEmail string  `json:"member_email"`
	BookISBN    string  `json:"book_isbn"`
	BorrowDate  string  `json:"borrow_date"`
	DueDate     string  `json:"due_date"`
	Notes       *string `json:"notes"`
}

func (h *BorrowingHandler) CreateForMember(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	var req adminLoanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	loan, err := h.service.CreateLoanForMember(actor, domain.AdminLoanInput{
		MemberEmail: req.MemberEmail,
		BookISBN:    req.BookISBN,
		BorrowDate:  req.BorrowDate,
		DueDate:     req.DueDate,
		Notes:       req.Notes,
	})
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, loan)
}

func (h *BorrowingHandler) Show(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	loan, err := h.service.GetLoan(actor, id)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, loan)
}

func (h *BorrowingHandler) Return(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	loan, err := h.service.ReturnLoan(actor, id)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, loan)
}

type extendLoanRequest struct {
	NewDueDate string `json:"new_due_date"`
}

func (h *BorrowingHandler) Extend(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req extendLoanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	loan, err := h.service.ExtendLoan(actor, id, req.NewDueDate)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, loan)
}

func (h *BorrowingHandler) CheckOverdue(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	count, err := h.service.MarkOverdue(actor)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":       "overdue check completed",
		"updated_count": count,
	})
}
