package api

import (
	"net/http"

	"shelftrack/internal/api/middleware"
	"shelftrack/internal/domain"
	"shelftrack/pkg/logger"
)

// UserHandler is the admin-scoped member directory.
type UserHandler struct {
	service domain.MemberService
	logger  logger.Logger
}

func NewUserHandler(service domain.MemberService, logger logger.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

func (h *UserHandler) RegisterRoutes(mux *http.ServeMux, admin func(http.Handler) http.Handler) {
	mux.Handle("GET /users", admin(http.HandlerFunc(h.List)))
	mux.Handle("POST /users", admin(http.HandlerFunc(h.Create)))
	mux.Handle("GET /users/{id}", admin(http.HandlerFunc(h.Show)))
	mux.Handle("PUT /users/{id}", admin(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /users/{id}", admin(http.HandlerFunc(h.Delete)))
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	page, perPage := pageParams(r)

	users, total, err := h.service.ListMembers(actor, domain.UserFilter{
		Search:  r.URL.Query().Get("search"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	respondPaginated(w, users, page, perPage, total)
}

type createUserRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	Role        string  `json:"role"`
	PhoneNumber *string `json:"phone_number"`
	Address     *string `json:"address"`
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.service.CreateMember(actor, domain.CreateUserInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Role:        domain.Role(req.Role),
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) Show(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetMember(actor, id)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

type updateUserRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	PhoneNumber *string `json:"phone_number"`
	Address     *string `json:"address"`
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.service.UpdateMember(actor, id, domain.UpdateUserInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteMember(actor, id); err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	respondMessage(w, http.StatusOK, "member deleted")
}
