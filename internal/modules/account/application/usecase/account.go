package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"guardpost/internal/modules/account/application/port"
	"guardpost/internal/modules/account/domain"
)

const defaultTypesTTL = 5 * time.Minute

// AccountUseCase serves the profile and overview pages. Escalation types
// are a slow-moving lookup, so successful fetches are held for a short
// TTL instead of hitting the upstream on every settings page load.
type AccountUseCase struct {
	api      port.AccountAPI
	typesTTL time.Duration

	mu          sync.Mutex
	types       json.RawMessage
	typesLoaded time.Time
}

func NewAccountUseCase(api port.AccountAPI) *AccountUseCase {
	return &AccountUseCase{api: api, typesTTL: defaultTypesTTL}
}

func (uc *AccountUseCase) AccountInfo(ctx context.Context, token string) (*domain.Account, error) {
	return uc.api.AccountInfo(ctx, token)
}

func (uc *AccountUseCase) Overview(ctx context.Context, token string) (*domain.Overview, error) {
	return uc.api.Overview(ctx, token)
}

func (uc *AccountUseCase) EscalationTypes(ctx context.Context, token string) (json.RawMessage, error) {
	uc.mu.Lock()
	if uc.types != nil && time.Since(uc.typesLoaded) < uc.typesTTL {
		cached := cloneRaw(uc.types)
		uc.mu.Unlock()
		return cached, nil
	}
	uc.mu.Unlock()

	types, err := uc.api.EscalationTypes(ctx, token)
	if err != nil {
		return nil, err
	}

	uc.mu.Lock()
	uc.types = cloneRaw(types)
	uc.typesLoaded = time.Now()
	uc.mu.Unlock()
	return types, nil
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	cloned := make(json.RawMessage, len(raw))
	copy(cloned, raw)
	return cloned
}
