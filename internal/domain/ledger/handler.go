package ledger

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/skillswap/skillswap-api/internal/middleware"
	"github.com/skillswap/skillswap-api/internal/pkg/response"
)

// Handler handles balance and ledger HTTP requests
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetBalance handles GET /credits/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	acc, err := h.service.Account(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to get account")
		response.InternalError(w)
		return
	}

	response.OK(w, acc)
}

// ListEntries handles GET /credits/entries
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := h.service.Entries(r.Context(), userID, limit, offset)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list ledger entries")
		response.InternalError(w)
		return
	}

	response.WithMeta(w, entries, response.Meta{
		Total:  len(entries),
		Limit:  limit,
		Offset: offset,
	})
}
