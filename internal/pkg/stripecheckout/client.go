package stripecheckout

import (
	"context"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
)

// Session is the slice of a Stripe Checkout Session this service consumes.
type Session struct {
	ID            string
	URL           string
	PaymentStatus string // "paid", "unpaid", "no_payment_required"
	Metadata      map[string]string
}

// Paid reports whether the session has been paid.
func (s *Session) Paid() bool {
	return s.PaymentStatus == string(stripe.CheckoutSessionPaymentStatusPaid)
}

// CreateSessionParams describes one checkout attempt for a credit package.
type CreateSessionParams struct {
	CustomerEmail string
	Currency      string
	UnitAmount    int64 // minor units
	ProductName   string
	Description   string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// Client wraps the Stripe Checkout API.
type Client struct {
	secretKey string
}

// NewClient creates a Stripe checkout client
func NewClient(secretKey string) *Client {
	return &Client{secretKey: secretKey}
}

// CreateSession opens a hosted checkout session for a one-off payment.
func (c *Client) CreateSession(ctx context.Context, p CreateSessionParams) (*Session, error) {
	stripe.Key = c.secretKey

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(p.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(p.ProductName),
						Description: stripeStringOrNil(p.Description),
					},
					UnitAmount: stripe.Int64(p.UnitAmount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: p.Metadata,
	}
	if p.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(p.CustomerEmail)
	}
	params.Context = ctx

	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &Session{
		ID:            sess.ID,
		URL:           sess.URL,
		PaymentStatus: string(sess.PaymentStatus),
		Metadata:      sess.Metadata,
	}, nil
}

// GetSession retrieves a checkout session by id.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	stripe.Key = c.secretKey

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := checkoutsession.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch checkout session: %w", err)
	}

	return &Session{
		ID:            sess.ID,
		URL:           sess.URL,
		PaymentStatus: string(sess.PaymentStatus),
		Metadata:      sess.Metadata,
	}, nil
}

// MetadataInt reads an integer value from session metadata.
func MetadataInt(meta map[string]string, key string) int {
	if meta == nil {
		return 0
	}
	v, err := strconv.Atoi(meta[key])
	if err != nil {
		return 0
	}
	return v
}

func stripeStringOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return stripe.String(s)
}
