package ledger

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the credit balance routes (mounted behind auth)
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/balance", h.GetBalance)
	r.Get("/entries", h.ListEntries)

	return r
}
