package topup

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/skillswap/skillswap-api/internal/middleware"
	"github.com/skillswap/skillswap-api/internal/pkg/payment"
	"github.com/skillswap/skillswap-api/internal/pkg/response"
	"github.com/skillswap/skillswap-api/internal/pkg/validator"
)

// webhook payloads are small; anything larger is hostile
const maxWebhookBody = 64 << 10

// Handler handles top-up HTTP requests
type Handler struct {
	service  *Service
	registry *payment.Registry
}

func NewHandler(service *Service, registry *payment.Registry) *Handler {
	return &Handler{service: service, registry: registry}
}

// Start handles POST /topups
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	userID := middleware.GetUserID(r.Context())
	in, err := h.service.Start(r.Context(), userID, req.Provider, req.Credits)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, in)
}

// Confirm handles POST /topups/{id}/confirm
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid top-up ID")
		return
	}

	var req ConfirmRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	userID := middleware.GetUserID(r.Context())
	result, err := h.service.Confirm(r.Context(), userID, id, req.ExternalRef)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, result)
}

// Get handles GET /topups/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid top-up ID")
		return
	}

	in, err := h.service.Get(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, in)
}

// List handles GET /topups
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	intents, err := h.service.List(r.Context(), middleware.GetUserID(r.Context()), limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.WithMeta(w, intents, response.Meta{Total: len(intents), Limit: limit, Offset: offset})
}

// StripeWebhook handles POST /webhooks/stripe (unauthenticated; the
// signature header is the authentication)
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		response.BadRequest(w, "Unable to read payload")
		return
	}

	prov, err := h.registry.Get(payment.ProviderStripe)
	if err != nil {
		response.NotFound(w, "Stripe is not configured")
		return
	}

	event, err := prov.ParseWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, payment.ErrSignatureVerification) {
			log.Warn().Err(err).Msg("stripe webhook signature rejected")
			response.Error(w, http.StatusBadRequest, "SIGNATURE_VERIFICATION_FAILED", "Webhook signature verification failed")
			return
		}
		response.BadRequest(w, "Invalid webhook payload")
		return
	}

	if err := h.service.HandleWebhookEvent(r.Context(), event); err != nil {
		// Non-2xx makes Stripe redeliver; reconciliation is idempotent so
		// that is safe.
		log.Error().Err(err).Str("event", event.EventType).Msg("stripe webhook processing failed")
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]string{"received": "true"})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredits), errors.Is(err, ErrVerificationFailed):
		response.BadRequest(w, err.Error())
	case errors.Is(err, payment.ErrUnsupportedProvider):
		response.Error(w, http.StatusBadRequest, "UNSUPPORTED_PROVIDER", err.Error())
	case errors.Is(err, ErrForbidden):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrAlreadyFailed):
		response.Conflict(w, err.Error())
	case errors.Is(err, payment.ErrProcessorUnavailable):
		log.Error().Err(err).Msg("payment processor unavailable")
		response.Error(w, http.StatusInternalServerError, "PROCESSOR_UNAVAILABLE", "Payment processor is unavailable, try again later")
	default:
		log.Error().Err(err).Msg("top-up request failed")
		response.InternalError(w)
	}
}
