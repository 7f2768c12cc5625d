package port

import (
	"context"
	"encoding/json"
	"errors"

	"guardpost/internal/modules/operations/domain"
	"guardpost/internal/shared/upload"
)

var (
	ErrSessionExpired = errors.New("operations session expired")
	ErrUpstream       = errors.New("operations upstream error")
	ErrNetwork        = errors.New("operations network error")
)

// OperationsAPI forwards validated submissions to the upstream operations
// endpoints.
type OperationsAPI interface {
	Submit(ctx context.Context, token string, spec domain.FormSpec, fields map[string]string, files []upload.File) (json.RawMessage, error)
}
