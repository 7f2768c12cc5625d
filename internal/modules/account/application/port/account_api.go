package port

import (
	"context"
	"encoding/json"
	"errors"

	"guardpost/internal/modules/account/domain"
)

var (
	ErrSessionExpired = errors.New("session expired")
	ErrUpstream       = errors.New("upstream request failed")
	ErrNetwork        = errors.New("network error")
)

// AccountAPI reads the client profile, overview metrics, and lookup data
// from the upstream REST API.
type AccountAPI interface {
	AccountInfo(ctx context.Context, token string) (*domain.Account, error)
	Overview(ctx context.Context, token string) (*domain.Overview, error)
	EscalationTypes(ctx context.Context, token string) (json.RawMessage, error)
}
