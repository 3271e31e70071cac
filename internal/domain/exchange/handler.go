package exchange

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/skillswap/skillswap-api/internal/domain/ledger"
	"github.com/skillswap/skillswap-api/internal/domain/user"
	"github.com/skillswap/skillswap-api/internal/middleware"
	"github.com/skillswap/skillswap-api/internal/pkg/response"
	"github.com/skillswap/skillswap-api/internal/pkg/validator"
)

// Handler handles exchange HTTP requests
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /exchanges
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
	e, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, e)
}

// Confirm handles POST /exchanges/{id}/confirm
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.doTransition(w, r, h.service.Confirm)
}

// Start handles POST /exchanges/{id}/start
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	h.doTransition(w, r, h.service.Start)
}

// Complete handles POST /exchanges/{id}/complete
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	h.doTransition(w, r, h.service.Complete)
}

// Cancel handles POST /exchanges/{id}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.doTransition(w, r, h.service.Cancel)
}

// Get handles GET /exchanges/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid exchange ID")
		return
	}

	e, err := h.service.Get(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, e)
}

// List handles GET /exchanges
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Status: r.URL.Query().Get("status"),
		Role:   r.URL.Query().Get("role"),
	}
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	filter.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	if details := validator.Validate(filter); details != nil {
		response.ValidationError(w, details)
		return
	}

	exchanges, err := h.service.List(r.Context(), middleware.GetUserID(r.Context()), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.WithMeta(w, exchanges, response.Meta{
		Total:  len(exchanges),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// GetAudit handles GET /exchanges/{id}/audit
func (h *Handler) GetAudit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid exchange ID")
		return
	}

	records, err := h.service.Audit(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, records)
}

func (h *Handler) doTransition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, actorID, exchangeID uuid.UUID, note string) (*Exchange, error)) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid exchange ID")
		return
	}

	var req TransitionRequest
	if r.ContentLength > 0 {
		if err := response.DecodeJSON(r.Body, &req); err != nil {
			response.BadRequest(w, "Invalid request body")
			return
		}
		if details := validator.Validate(req); details != nil {
			response.ValidationError(w, details)
			return
		}
	}

	e, err := fn(r.Context(), middleware.GetUserID(r.Context()), id, req.Note)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, e)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var insufficientErr *InsufficientCreditsError
	switch {
	case errors.As(err, &insufficientErr):
		response.ErrorWithDetails(w, http.StatusBadRequest, "INSUFFICIENT_CREDITS", insufficientErr.Error(), map[string]string{
			"required":    strconv.FormatInt(insufficientErr.Required, 10),
			"available":   strconv.FormatInt(insufficientErr.Available, 10),
			"missing":     strconv.FormatInt(insufficientErr.Missing, 10),
			"amount_fiat": strconv.FormatFloat(insufficientErr.AmountFiat, 'f', 2, 64),
			"currency":    insufficientErr.Currency,
		})
	case errors.Is(err, ErrSelfExchange), errors.Is(err, ErrProviderUnavailable), errors.Is(err, ledger.ErrInvalidAmount):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrForbidden):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, user.ErrNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		response.Error(w, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, ledger.ErrInsufficientBalance), errors.Is(err, ledger.ErrInsufficientHeld):
		response.BadRequest(w, err.Error())
	default:
		log.Error().Err(err).Msg("exchange request failed")
		response.InternalError(w)
	}
}
