package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"guardpost/internal/modules/listing/application/port"
	"guardpost/internal/modules/listing/domain"
)

// ListResourceUseCase fetches dashboard pages and falls back to the last good
// page when the upstream is unreachable. Not-found responses evict the cached
// page so a deleted record cannot resurface.
type ListResourceUseCase struct {
	fetcher port.ResourceFetcher
	cache   *pageCache
}

func NewListResourceUseCase(fetcher port.ResourceFetcher) *ListResourceUseCase {
	return &ListResourceUseCase{fetcher: fetcher, cache: newPageCache()}
}

// List returns the requested page. The second return value reports whether
// the result was served from cache after a failed fetch.
func (uc *ListResourceUseCase) List(ctx context.Context, token, resource string, query domain.PagedQuery) (*port.PageResult, bool, error) {
	normalized := query.Normalize()
	result, err := uc.fetcher.ListPage(ctx, token, resource, normalized)
	if err == nil {
		uc.cache.set(token, resource, normalized, result)
		return result, false, nil
	}

	switch {
	case errors.Is(err, port.ErrNotFound):
		uc.cache.delete(token, resource, normalized)
		return nil, false, err
	case errors.Is(err, port.ErrUnauthenticated), errors.Is(err, port.ErrSessionExpired), errors.Is(err, port.ErrResourceUnsupported):
		return nil, false, err
	}

	if cached, ok := uc.cache.get(token, resource, normalized); ok {
		slog.Warn("serving cached page after fetch failure",
			slog.String("resource", resource),
			slog.Any("error", err))
		return cached, true, nil
	}
	return nil, false, err
}

// Detail returns one record by id.
func (uc *ListResourceUseCase) Detail(ctx context.Context, token, resource, resourceID string) (json.RawMessage, error) {
	return uc.fetcher.FetchDetail(ctx, token, resource, resourceID)
}

// Invalidate drops every cached page of the resource, typically after a
// broker refresh hint announced new upstream data.
func (uc *ListResourceUseCase) Invalidate(resource string) {
	uc.cache.invalidateResource(resource)
}
