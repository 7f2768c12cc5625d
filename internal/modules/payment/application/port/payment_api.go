package port

import (
	"context"
	"errors"

	"guardpost/internal/modules/payment/domain"
)

var (
	ErrSessionExpired = errors.New("payment session expired")
	ErrUpstream       = errors.New("payment upstream error")
	ErrNetwork        = errors.New("payment network error")
)

// VerifyOutcome reports how the gateway settled one transaction reference.
// A declined payment is an outcome, not an error.
type VerifyOutcome struct {
	Success bool
	Message string
}

// PaymentAPI talks to the upstream billing endpoints.
type PaymentAPI interface {
	Initialize(ctx context.Context, token string, subscriptionID int, callbackURL string) (string, error)
	Verify(ctx context.Context, token, reference string) (*VerifyOutcome, error)
	RequestService(ctx context.Context, token string, request domain.ServiceRequest) (string, error)
}
