package port

import (
	"context"
	"encoding/json"
	"errors"

	"guardpost/internal/modules/listing/domain"
)

var (
	ErrUnauthenticated     = errors.New("listing fetch requires a session token")
	ErrSessionExpired      = errors.New("listing session expired")
	ErrResourceUnsupported = errors.New("listing resource unsupported")
	ErrNotFound            = errors.New("listing resource not found")
	ErrUpstream            = errors.New("listing upstream error")
	ErrNetwork             = errors.New("listing network error")
)

// PageResult is one fetched dashboard page. Extra carries paginator siblings
// such as the payment header card and the server-provided filter options.
type PageResult struct {
	Resource string
	Query    domain.PagedQuery
	Page     *domain.Collection
	Extra    map[string]json.RawMessage
}

// ResourceFetcher retrieves dashboard pages and single records from the
// upstream on behalf of an authenticated session.
type ResourceFetcher interface {
	ListPage(ctx context.Context, token, resource string, query domain.PagedQuery) (*PageResult, error)
	FetchDetail(ctx context.Context, token, resource, resourceID string) (json.RawMessage, error)
}
