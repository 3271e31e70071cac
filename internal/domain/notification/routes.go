package notification

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the notification routes (mounted behind auth)
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/{id}/read", h.MarkRead)

	return r
}
