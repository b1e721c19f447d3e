package credit

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/covergen/covergen-api/internal/middleware"
	"github.com/covergen/covergen-api/internal/pkg/response"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.GetBalance)
	r.Get("/usage", h.ListUsage)
}

// GetBalance returns the caller's ledger row. First access creates the row
// with the signup grant, so this endpoint never 404s for an authenticated user.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	email := middleware.GetEmail(r.Context())

	ledger, err := h.service.Balance(r.Context(), userID, email)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, ledger)
}

func (h *Handler) ListUsage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	limit, offset := response.Pagination(r)

	records, total, err := h.service.Usage(r.Context(), userID, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.WithMeta(w, records, response.Meta{Total: total, Limit: limit, Offset: offset})
}
