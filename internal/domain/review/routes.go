package review

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the review routes (mounted behind auth)
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Get("/user/{userID}", h.ListByUser)
	r.Get("/user/{userID}/aggregate", h.GetAggregate)

	return r
}
