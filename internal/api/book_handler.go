package api

import (
	"net/http"
	"strconv"
	"strings"

	"shelftrack/internal/api/middleware"
	"shelftrack/internal/domain"
	"shelftrack/pkg/logger"
)

// maxCoverUploadBytes caps the multipart form kept in memory.
const maxCoverUploadBytes = 10 << 20

type BookHandler struct {
	service domain.CatalogService
	logger  logger.Logger
}

func NewBookHandler(service domain.CatalogService, logger logger.Logger) *BookHandler {
	return &BookHandler{
		service: service,
		logger:  logger,
	}
}

func (h *BookHandler) RegisterRoutes(mux *http.ServeMux, authed, admin func(http.Handler) http.Handler) {
	mux.Handle("GET /books", authed(http.HandlerFunc(h.List)))
	mux.Handle("GET /books/{id}", authed(http.HandlerFunc(h.Show)))
	mux.Handle("POST /books", admin(http.HandlerFunc(h.Create)))
	mux.Handle("PUT /books/{id}", admin(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /books/{id}", admin(http.HandlerFunc(h.Delete)))
}

func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)
	categoryID, _ := strconv.ParseInt(r.URL.Query().Get("category_id"), 10, 64)

	books, total, err := h.service.ListBooks(domain.BookFilter{
		Title:      r.URL.Query().Get("title"),
		Author:     r.URL.Query().Get("author"),
		CategoryID: categoryID,
		Page:       page,
		PerPage:    perPage,
	})
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	respondPaginated(w, books, page, perPage, total)
}

func (h *BookHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	book, err := h.service.GetBook(id)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, book)
}

type bookRequest struct {
	Title           *string `json:"title"`
	Author          *string `json:"author"`
	ISBN            *string `json:"isbn"`
	Description     *string `json:"description"`
	Stock           *int    `json:"stock"`
	PublicationYear *int    `json:"publication_year"`
	Publisher       *string `json:"publisher"`
	CategoryID      *int64  `json:"category_id"`
	RemoveCover     bool    `json:"remove_cover"`
}

func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	req, cover, ok := h.parseBookRequest(w, r)
	if !ok {
		return
	}

	input := domain.CreateBookInput{
		Description: req.Description,
		Cover:       cover,
	}
	if req.Title != nil {
		input.Title = *req.Title
	}
	if req.Author != nil {
		input.Author = *req.Author
	}
	if req.ISBN != nil {
		input.ISBN = *req.ISBN
	}
	if req.Stock != nil {
		input.Stock = *req.Stock
	}
	if req.PublicationYear != nil {
		input.PublicationYear = *req.PublicationYear
	}
	if req.Publisher != nil {
		input.Publisher = *req.Publisher
	}
	if req.CategoryID != nil {
		input.CategoryID = *req.CategoryID
	}

	book, err := h.service.CreateBook(actor, input)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, book)
}

func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	req, cover, ok := h.parseBookRequest(w, r)
	if !ok {
		return
	}

	book, err := h.service.UpdateBook(actor, id, domain.UpdateBookInput{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		Description:     req.Description,
		Stock:           req.Stock,
		PublicationYear: req.PublicationYear,
		Publisher:       req.Publisher,
		CategoryID:      req.CategoryID,
		Cover:           cover,
		RemoveCover:     req.RemoveCover,
	})
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, book)
}

func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteBook(actor, id); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "book deleted")
}

// parseBookRequest accepts either a JSON body or a multipart form; the
// cover image only travels as a multipart file named cover_image.
func (h *BookHandler) parseBookRequest(w http.ResponseWriter, r *http.Request) (*bookRequest, *domain.CoverUpload, bool) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var req bookRequest
		if !decodeJSON(w, r, &req) {
			return nil, nil, false
		}
		return &req, nil, true
	}

	if err := r.ParseMultipartForm(maxCoverUploadBytes); err != nil {
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Message: "invalid multipart form"})
		return nil, nil, false
	}

	req := &bookRequest{}
	for key, values := range r.MultipartForm.Value {
		if len(values) == 0 {
			continue
		}
		value := values[0]
		switch key {
		case "title":
			req.Title = &value
		case "author":
			req.Author = &value
		case "isbn":
			req.ISBN = &value
		case "description":
			req.Description = &value
		case "publisher":
			req.Publisher = &value
		case "stock":
			if n, err := strconv.Atoi(value); err == nil {
				req.Stock = &n
			}
		case "publication_year":
			if n, err := strconv.Atoi(value); err == nil {
				req.PublicationYear = &n
			}
		case "category_id":
			if n, err := strconv.ParseInt(value, 10, 64); err == nil {
				req.CategoryID = &n
			}
		case "remove_cover":
			req.RemoveCover = value == "1" || value == "true"
		}
	}

	var cover *domain.CoverUpload
	if file, header, err := r.FormFile("cover_image"); err == nil {
		cover = &domain.CoverUpload{
			Filename: header.Filename,
			Content:  file,
		}
	}

	return req, cover, true
}
