package payment

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

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

// Routes mounts the payment endpoints. Package listing is public; everything
// else requires the auth middleware applied by the caller.
func (h *Handler) Routes(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Get("/packages", h.ListPackages)

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Post("/checkout", h.CreateCheckout)
		r.Post("/verify", h.Verify)
		r.Get("/history", h.History)
	})
}

func (h *Handler) ListPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := h.service.Packages(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, packages)
}

func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	email := middleware.GetEmail(r.Context())

	var req CheckoutRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.CreateCheckout(r.Context(), userID, email, req.PackageID)
	if err != nil {
		switch {
		case errors.Is(err, ErrPackageNotFound):
			response.NotFound(w, "credit package not found")
		case errors.Is(err, ErrPaymentCreationFailed):
			response.BadGateway(w, "payment provider rejected the checkout session")
		default:
			response.InternalError(w)
		}
		return
	}
	response.Created(w, result)
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req VerifyRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.Verify(r.Context(), userID, req.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, ErrTransactionNotFound):
			response.NotFound(w, "transaction not found")
		case errors.Is(err, ErrTransactionFailed):
			response.Conflict(w, "transaction previously failed, contact support")
		case errors.Is(err, ErrProviderUnavailable):
			response.BadGateway(w, "payment provider unavailable, retry verification")
		default:
			response.InternalError(w)
		}
		return
	}

	if result.Status == "paid" && h.notifier != nil {
		h.notifier.NotifyBalance(r.Context(), userID)
	}
	response.OK(w, result)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	limit, offset := response.Pagination(r)

	transactions, total, err := h.service.History(r.Context(), userID, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.WithMeta(w, transactions, response.Meta{Total: total, Limit: limit, Offset: offset})
}
