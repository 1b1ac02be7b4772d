package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"shelftrack/internal/domain"
	"shelftrack/pkg/logger"
)

const (
	defaultPerPage = 15
	maxPerPage     = 100
)

type errorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// paginatedResponse mirrors the envelope API clients already consume.
type paginatedResponse struct {
	CurrentPage int         `json:"current_page"`
	Data        interface{} `json:"data"`
	PerPage     int         `json:"per_page"`
	Total       int64       `json:"total"`
	LastPage    int         `json:"last_page"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

func respondPaginated(w http.ResponseWriter, data interface{}, page, perPage int, total int64) {
	lastPage := int((total + int64(perPage) - 1) / int64(perPage))
	if lastPage < 1 {
		lastPage = 1
	}
	respondJSON(w, http.StatusOK, paginatedResponse{
		CurrentPage: page,
		Data:        data,
		PerPage:     perPage,
		Total:       total,
		LastPage:    lastPage,
	})
}

// respondError maps domain errors onto the HTTP taxonomy. Anything
// unrecognised is logged in full and surfaced as a generic 500.
func respondError(w http.ResponseWriter, log logger.Logger, r *http.Request, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Message: "the given data was invalid",
			Errors:  validationErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		respondJSON(w, http.StatusForbidden, errorResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthenticated):
		respondJSON(w, http.StatusUnauthorized, errorResponse{Message: err.Error()})
	default:
		log.Error("Unhandled error", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"error":  err.Error(),
		})
		respondJSON(w, http.StatusInternalServerError, errorResponse{Message: "something went wrong"})
	}
}

// decodeJSON reads the request body into dst; a malformed body is reported
// as a validation failure and the handler should return.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Message: "invalid request body"})
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		respondJSON(w, http.StatusNotFound, errorResponse{Message: "resource not found"})
		return 0, false
	}
	return id, true
}

// pageParams reads page/per_page with the same defaults the repositories
// apply, so the envelope echoes the effective values.
func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}
