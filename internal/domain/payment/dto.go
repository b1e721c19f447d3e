package payment

type CheckoutRequest struct {
	PackageID string `json:"package_id" validate:"required"`
}

type VerifyRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}
