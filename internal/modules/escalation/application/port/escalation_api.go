package port

import (
	"context"
	"encoding/json"
	"errors"

	"guardpost/internal/modules/escalation/domain"
)

var (
	ErrThreadNotFound = errors.New("escalation thread not found")
	ErrSessionExpired = errors.New("escalation session expired")
	ErrUpstream       = errors.New("escalation upstream error")
	ErrNetwork        = errors.New("escalation network error")
)

// EscalationAPI talks to the upstream escalation endpoints.
type EscalationAPI interface {
	Thread(ctx context.Context, token, escalationID string) (json.RawMessage, error)
	Reply(ctx context.Context, token, escalationID, message string) error
	Submit(ctx context.Context, token string, submission domain.Submission) error
}
