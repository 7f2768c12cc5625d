package port

import (
	"context"
	"errors"

	"guardpost/internal/modules/staff/domain"
)

var (
	ErrSessionExpired = errors.New("staff session expired")
	ErrUpstream       = errors.New("staff upstream error")
	ErrNetwork        = errors.New("staff network error")
)

// StaffAPI talks to the upstream staff endpoints. Listing goes through the
// shared dashboard registry; only the review write lives here.
type StaffAPI interface {
	AddReview(ctx context.Context, token string, review domain.Review) (string, error)
}
