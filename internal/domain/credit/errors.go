package credit

import "errors"

var (
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInvalidAmount       = errors.New("credit amount must be positive")
	ErrUserNotFound        = errors.New("user not found")
)
