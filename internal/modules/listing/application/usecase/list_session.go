package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"guardpost/internal/modules/listing/application/port"
	"guardpost/internal/modules/listing/domain"
)

// Update is one event on a list session stream. A loading update opens every
// fetch; the settle update carries the page or the error.
type Update struct {
	Resource  string
	Query     domain.PagedQuery
	Loading   bool
	Result    *port.PageResult
	FromCache bool
	Err       error
	Seq       uint64
}

// Publisher delivers session updates to the owning client.
type Publisher func(Update)

// ListSession tracks one client's view of one dashboard resource. Filter and
// page changes are debounced, and every fetch is stamped with a sequence
// number so a slow response can never overwrite a newer one.
type ListSession struct {
	resource string
	token    string
	lister   *ListResourceUseCase
	publish  Publisher
	debounce time.Duration
	ctx      context.Context

	mu     sync.Mutex
	query  domain.PagedQuery
	seq    uint64
	timer  *time.Timer
	closed bool
}

func NewListSession(ctx context.Context, resource, token string, query domain.PagedQuery, lister *ListResourceUseCase, debounce time.Duration, publish Publisher) *ListSession {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ListSession{
		resource: resource,
		token:    token,
		lister:   lister,
		publish:  publish,
		debounce: debounce,
		ctx:      ctx,
		query:    query.Normalize(),
	}
}

// Start issues the initial fetch without waiting out the debounce window.
func (s *ListSession) Start() {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()
	go s.fire(seq)
}

// UpdateFilters merges the partial filter set, rewinds to page one, and arms
// the debounce timer.
func (s *ListSession) UpdateFilters(partial map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = s.query.WithFilters(partial)
	s.scheduleLocked()
}

// SetSearch replaces the search term, rewinds to page one, and arms the
// debounce timer.
func (s *ListSession) SetSearch(search string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = s.query.WithSearch(search)
	s.scheduleLocked()
}

// GoToPage moves to the requested page keeping the active filters.
func (s *ListSession) GoToPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = s.query.WithPage(page)
	s.scheduleLocked()
}

// Refresh re-fetches the current page immediately, bypassing the debounce.
// Broker refresh hints use this path.
func (s *ListSession) Refresh() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.seq++
	seq := s.seq
	s.mu.Unlock()
	go s.fire(seq)
}

// Query returns the session's current normalized query.
func (s *ListSession) Query() domain.PagedQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Resource returns the resource this session tracks.
func (s *ListSession) Resource() string { return s.resource }

// Stop cancels the pending timer and suppresses every in-flight result.
func (s *ListSession) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.seq++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *ListSession) scheduleLocked() {
	if s.closed {
		return
	}
	s.seq++
	seq := s.seq
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() { s.fire(seq) })
}

func (s *ListSession) fire(seq uint64) {
	s.mu.Lock()
	if s.closed || seq != s.seq {
		s.mu.Unlock()
		return
	}
	query := s.query
	s.mu.Unlock()

	s.publish(Update{Resource: s.resource, Query: query, Loading: true, Seq: seq})

	result, fromCache, err := s.lister.List(s.ctx, s.token, s.resource, query)

	s.mu.Lock()
	stale := s.closed || seq != s.seq
	s.mu.Unlock()
	if stale {
		// A newer request went out (or the client left) while this one was
		// in flight. Last request wins.
		if err != nil && errors.Is(err, port.ErrSessionExpired) {
			slog.Debug("discarding stale-token response", slog.String("resource", s.resource))
		}
		return
	}

	s.publish(Update{
		Resource:  s.resource,
		Query:     query,
		Result:    result,
		FromCache: fromCache,
		Err:       err,
		Seq:       seq,
	})
}
