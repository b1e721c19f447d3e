package payment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/covergen/covergen-api/internal/domain/credit"
	"github.com/covergen/covergen-api/internal/pkg/stripecheckout"
)

// CheckoutClient is the slice of the payment provider this service uses.
type CheckoutClient interface {
	CreateSession(ctx context.Context, p stripecheckout.CreateSessionParams) (*stripecheckout.Session, error)
	GetSession(ctx context.Context, sessionID string) (*stripecheckout.Session, error)
}

// CreditGranter applies purchased credits inside the verifier's transaction.
type CreditGranter interface {
	GrantTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int, meta credit.Meta) error
}

type CheckoutResult struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type VerifyResult struct {
	Status    string `json:"status"`
	Credits   int    `json:"credits,omitempty"`
	PackageID string `json:"package_id,omitempty"`
}

type Service interface {
	Packages(ctx context.Context) ([]Package, error)
	CreateCheckout(ctx context.Context, userID uuid.UUID, email, packageID string) (*CheckoutResult, error)
	Verify(ctx context.Context, userID uuid.UUID, sessionID string) (*VerifyResult, error)
	History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Transaction, int, error)
}

type service struct {
	repo        Repository
	credits     CreditGranter
	checkout    CheckoutClient
	frontendURL string
}

func NewService(repo Repository, credits CreditGranter, checkout CheckoutClient, frontendURL string) Service {
	return &service{
		repo:        repo,
		credits:     credits,
		checkout:    checkout,
		frontendURL: frontendURL,
	}
}

func (s *service) Packages(ctx context.Context) ([]Package, error) {
	return s.repo.ListPackages(ctx)
}

// CreateCheckout opens a provider checkout session for the package and
// records the pending transaction before returning the redirect URL. The
// pending row is written only after the provider accepts the session, so an
// abandoned browser never leaves a row without a session behind it.
func (s *service) CreateCheckout(ctx context.Context, userID uuid.UUID, email, packageID string) (*CheckoutResult, error) {
	pkg, err := s.repo.GetPackage(ctx, packageID)
	if err != nil {
		return nil, err
	}

	sess, err := s.checkout.CreateSession(ctx, stripecheckout.CreateSessionParams{
		CustomerEmail: email,
		Currency:      pkg.Currency,
		UnitAmount:    pkg.PriceCents,
		ProductName:   pkg.Name,
		Description:   fmt.Sprintf("%d credits", pkg.Credits),
		SuccessURL:    s.frontendURL + "/payment/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.frontendURL + "/payment/cancel",
		Metadata: map[string]string{
			"user_id":    userID.String(),
			"package_id": pkg.ID,
			"credits":    strconv.Itoa(pkg.Credits),
		},
	})
	if err != nil {
		log.Error().Err(err).Str("package_id", packageID).Msg("checkout session creation failed")
		return nil, fmt.Errorf("%w: %v", ErrPaymentCreationFailed, err)
	}

	txn := &Transaction{
		UserID:      userID,
		PaymentID:   sess.ID,
		PackageID:   pkg.ID,
		AmountCents: pkg.PriceCents,
		Currency:    pkg.Currency,
		Credits:     pkg.Credits,
	}
	if err := s.repo.CreatePending(ctx, txn); err != nil {
		// The session exists at the provider but nothing was charged yet;
		// without a pending row verification would fail, so surface the error.
		log.Error().Err(err).Str("session_id", sess.ID).Msg("failed to record pending transaction")
		return nil, fmt.Errorf("%w: %v", ErrPaymentCreationFailed, err)
	}

	return &CheckoutResult{SessionID: sess.ID, URL: sess.URL}, nil
}

// Verify checks the session with the provider and, if paid, grants the
// package credits and completes the transaction in a single database
// transaction. Calling it any number of times for the same session grants
// the credits at most once: the row lock serializes concurrent calls and a
// completed status short-circuits the rest.
func (s *service) Verify(ctx context.Context, userID uuid.UUID, sessionID string) (*VerifyResult, error) {
	sess, err := s.checkout.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if !sess.Paid() {
		return &VerifyResult{Status: sess.PaymentStatus}, nil
	}

	tx, err := s.repo.BeginTxx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUpdateFailed, err)
	}
	defer tx.Rollback()

	txn, err := s.repo.GetByPaymentIDForUpdate(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}
	if txn.UserID != userID {
		return nil, ErrTransactionNotFound
	}

	switch txn.Status {
	case StatusCompleted:
		// Already granted, nothing left to do.
		return &VerifyResult{Status: "paid", Credits: txn.Credits, PackageID: txn.PackageID}, nil
	case StatusFailed:
		return nil, ErrTransactionFailed
	}

	if metaCredits := stripecheckout.MetadataInt(sess.Metadata, "credits"); metaCredits != 0 && metaCredits != txn.Credits {
		// The stored row wins; the mismatch is worth a trace for support.
		log.Warn().
			Str("session_id", sessionID).
			Int("metadata_credits", metaCredits).
			Int("transaction_credits", txn.Credits).
			Msg("session metadata disagrees with stored transaction")
	}

	meta := credit.Meta{
		Reference:   sessionID,
		Description: fmt.Sprintf("purchase of package %s", txn.PackageID),
	}
	if err := s.credits.GrantTx(ctx, tx, txn.UserID, txn.Credits, meta); err != nil {
		// recordFailure updates the row this transaction has locked, so the
		// lock must be released first.
		tx.Rollback()
		s.recordFailure(ctx, sessionID, err)
		return nil, fmt.Errorf("%w: %v", ErrLedgerUpdateFailed, err)
	}
	if err := s.repo.MarkCompletedTx(ctx, tx, sessionID); err != nil {
		tx.Rollback()
		s.recordFailure(ctx, sessionID, err)
		return nil, fmt.Errorf("%w: %v", ErrLedgerUpdateFailed, err)
	}
	if err := tx.Commit(); err != nil {
		s.recordFailure(ctx, sessionID, err)
		return nil, fmt.Errorf("%w: %v", ErrLedgerUpdateFailed, err)
	}

	log.Info().
		Str("user_id", txn.UserID.String()).
		Str("session_id", sessionID).
		Int("credits", txn.Credits).
		Msg("payment verified, credits granted")

	return &VerifyResult{Status: "paid", Credits: txn.Credits, PackageID: txn.PackageID}, nil
}

// recordFailure marks the transaction failed on its own connection so the
// error survives the rollback. The verifier transaction must be finished
// before calling this: the update targets the row it row-locked. The payment
// was captured, so failed rows need manual reconciliation.
func (s *service) recordFailure(ctx context.Context, sessionID string, cause error) {
	if err := s.repo.MarkFailed(ctx, sessionID, cause.Error()); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to record transaction failure")
	}
}

// History lists transactions. Callers clamp limit and offset via
// response.Pagination before reaching here.
func (s *service) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Transaction, int, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}
