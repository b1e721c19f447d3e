package paper

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/covergen/covergen-api/internal/domain/credit"
	"github.com/covergen/covergen-api/internal/middleware"
	"github.com/covergen/covergen-api/internal/pkg/arxiv"
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
	r.Post("/analyze", h.Analyze)
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req AnalyzeRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.Analyze(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, credit.ErrInsufficientCredits):
			response.PaymentRequired(w, "not enough credits for paper analysis")
		case errors.Is(err, ErrTypeNotAvailable):
			response.Error(w, http.StatusNotImplemented, "NOT_AVAILABLE", err.Error())
		case errors.Is(err, ErrUnsupportedType), errors.Is(err, arxiv.ErrInvalidURL):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrParsingUnavailable):
			response.BadGateway(w, "paper parsing service unavailable, credits were refunded")
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
