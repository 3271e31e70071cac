package notification

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/skillswap/skillswap-api/internal/middleware"
	"github.com/skillswap/skillswap-api/internal/pkg/response"
)

// Handler handles notification HTTP requests
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /notifications
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	notifications, err := h.service.List(r.Context(), userID, limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("failed to list notifications")
		response.InternalError(w)
		return
	}

	response.WithMeta(w, notifications, response.Meta{Total: len(notifications), Limit: limit, Offset: offset})
}

// MarkRead handles POST /notifications/{id}/read
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid notification ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.MarkRead(r.Context(), userID, id); err != nil {
		log.Error().Err(err).Msg("failed to mark notification read")
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]string{"message": "Notification marked as read"})
}
