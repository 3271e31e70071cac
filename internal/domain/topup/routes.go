package topup

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the top-up routes (mounted behind auth)
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Start)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/confirm", h.Confirm)

	return r
}

// WebhookRoutes returns the unauthenticated webhook routes
func WebhookRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/stripe", h.StripeWebhook)

	return r
}
