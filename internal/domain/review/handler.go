package review

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/skillswap/skillswap-api/internal/middleware"
	"github.com/skillswap/skillswap-api/internal/pkg/response"
	"github.com/skillswap/skillswap-api/internal/pkg/validator"
)

// Handler handles review HTTP requests
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /reviews
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	userID := middleware.GetUserID(r.Context())
	rev, err := h.service.Create(r.Context(), userID, req.ExchangeID, req.Rating, req.Comment)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, rev)
}

// Update handles PUT /reviews/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid review ID")
		return
	}

	var req UpdateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	userID := middleware.GetUserID(r.Context())
	rev, err := h.service.Update(r.Context(), userID, id, req.Rating, req.Comment)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, rev)
}

// Delete handles DELETE /reviews/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid review ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, map[string]string{"message": "Review deleted"})
}

// ListByUser handles GET /reviews/user/{userID}
func (h *Handler) ListByUser(w http.ResponseWriter, r *http.Request) {
	targetID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	reviews, err := h.service.ListByTarget(r.Context(), targetID, limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.WithMeta(w, reviews, response.Meta{Total: len(reviews), Limit: limit, Offset: offset})
}

// GetAggregate handles GET /reviews/user/{userID}/aggregate
func (h *Handler) GetAggregate(w http.ResponseWriter, r *http.Request) {
	targetID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	agg, err := h.service.AggregateFor(r.Context(), targetID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, agg)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotCompleted):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrForbidden):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrAlreadyReviewed):
		response.Conflict(w, err.Error())
	default:
		log.Error().Err(err).Msg("review request failed")
		response.InternalError(w)
	}
}
