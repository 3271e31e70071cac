package exchange

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the exchange routes (mounted behind auth)
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/audit", h.GetAudit)
	r.Post("/{id}/confirm", h.Confirm)
	r.Post("/{id}/start", h.Start)
	r.Post("/{id}/complete", h.Complete)
	r.Post("/{id}/cancel", h.Cancel)

	return r
}
