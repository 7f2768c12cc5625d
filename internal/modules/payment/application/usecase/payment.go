package usecase

import (
	"context"
	"strings"
	"sync"

	"guardpost/internal/modules/payment/application/port"
	"guardpost/internal/modules/payment/domain"
)

// PaymentUseCase drives checkout and the callback verification screen. Each
// transaction reference is verified exactly once; a repeated callback replays
// the recorded outcome without touching the upstream.
type PaymentUseCase struct {
	api port.PaymentAPI

	mu       sync.Mutex
	verified map[string]port.VerifyOutcome
}

func NewPaymentUseCase(api port.PaymentAPI) *PaymentUseCase {
	return &PaymentUseCase{api: api, verified: make(map[string]port.VerifyOutcome)}
}

// Initialize starts a checkout and returns the gateway authorization URL.
func (uc *PaymentUseCase) Initialize(ctx context.Context, token string, subscriptionID int, callbackURL string) (string, error) {
	return uc.api.Initialize(ctx, token, subscriptionID, callbackURL)
}

// Verify settles a transaction reference one time.
func (uc *PaymentUseCase) Verify(ctx context.Context, token, reference string) (*port.VerifyOutcome, bool, error) {
	trimmed := strings.TrimSpace(reference)
	if trimmed == "" {
		return nil, false, domain.ErrMissingReference
	}

	uc.mu.Lock()
	if outcome, ok := uc.verified[trimmed]; ok {
		uc.mu.Unlock()
		replay := outcome
		return &replay, true, nil
	}
	uc.mu.Unlock()

	outcome, err := uc.api.Verify(ctx, token, trimmed)
	if err != nil {
		return nil, false, err
	}

	uc.mu.Lock()
	uc.verified[trimmed] = *outcome
	uc.mu.Unlock()
	return outcome, false, nil
}

// RequestService validates and forwards a new plan request.
func (uc *PaymentUseCase) RequestService(ctx context.Context, token string, request domain.ServiceRequest) (string, error) {
	if err := request.Validate(); err != nil {
		return "", err
	}
	return uc.api.RequestService(ctx, token, request)
}
