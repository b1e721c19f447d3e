package payment

import "errors"

var (
	ErrPackageNotFound       = errors.New("credit package not found")
	ErrPaymentCreationFailed = errors.New("failed to create payment session")
	ErrTransactionNotFound   = errors.New("transaction not found")
	ErrTransactionFailed     = errors.New("transaction already marked failed")
	ErrLedgerUpdateFailed    = errors.New("failed to apply credits to ledger")
	ErrProviderUnavailable   = errors.New("payment provider unavailable")
)
