package api

import (
	"net/http"

	"shelftrack/internal/api/middleware"
	"shelftrack/internal/domain"
	"shelftrack/pkg/logger"
)

type CategoryHandler struct {
	service domain.CatalogService
	logger  logger.Logger
}

func NewCategoryHandler(service domain.CatalogService, logger logger.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: service,
		logger:  logger,
	}
}

func (h *CategoryHandler) RegisterRoutes(mux *http.ServeMux, authed, admin func(http.Handler) http.Handler) {
	mux.Handle("GET /categories", authed(http.HandlerFunc(h.List)))
	mux.Handle("GET /categories/{id}", authed(http.HandlerFunc(h.Show)))
	mux.Handle("POST /categories", admin(http.HandlerFunc(h.Create)))
	mux.Handle("PUT /categories/{id}", admin(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /categories/{id}", admin(http.HandlerFunc(h.Delete)))
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories()
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	category, err := h.service.GetCategory(id)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, category)
}

type categoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input := domain.CreateCategoryInput{Description: req.Description}
	if req.Name != nil {
		input.Name = *req.Name
	}

	category, err := h.service.CreateCategory(actor, input)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := h.service.UpdateCategory(actor, id, domain.UpdateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteCategory(actor, id); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "category deleted")
}
