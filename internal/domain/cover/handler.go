package cover

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/covergen/covergen-api/internal/domain/credit"
	"github.com/covergen/covergen-api/internal/middleware"
	"github.com/covergen/covergen-api/internal/pkg/response"
	"github.com/covergen/covergen-api/internal/pkg/validator"
)

// BalanceNotifier pushes a balance update to the user's open websocket
// connections. Delivery is best effort.
type BalanceNotifier interface {
	NotifyBalance(ctx context.Context, userID uuid.UUID)
}

type Handler struct {
	service  Service
	notifier BalanceNotifier
}

func NewHandler(service Service, notifier BalanceNotifier) *Handler {
	return &Handler{service: service, notifier: notifier}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/export", h.Export)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req ExportRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.Export(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, credit.ErrInsufficientCredits):
			response.PaymentRequired(w, "not enough credits for cover export")
		case errors.Is(err, ErrInvalidImage), errors.Is(err, ErrImageTooLarge):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w)
		}
		return
	}

	if h.notifier != nil {
		h.notifier.NotifyBalance(r.Context(), userID)
	}
	response.OK(w, result)
}
