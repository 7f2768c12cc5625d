package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"guardpost/internal/modules/listing/application/port"
	"guardpost/internal/modules/listing/domain"
	"guardpost/internal/shared/rest"
)

type recordingFetcher struct {
	mu      sync.Mutex
	queries []domain.PagedQuery
	delays  map[int]time.Duration
}

func (f *recordingFetcher) ListPage(ctx context.Context, token, resource string, query domain.PagedQuery) (*port.PageResult, error) {
	f.mu.Lock()
	call := len(f.queries)
	f.queries = append(f.queries, query)
	delay := f.delays[call]
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	page := &domain.Collection{CurrentPage: rest.FlexInt(query.Page), PerPage: rest.FlexInt(query.PerPage), Total: 1}
	return &port.PageResult{Resource: resource, Query: query, Page: page}, nil
}

func (f *recordingFetcher) FetchDetail(ctx context.Context, token, resource, resourceID string) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func (f *recordingFetcher) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

type updateSink struct {
	mu      sync.Mutex
	updates []Update
}

func (s *updateSink) publish(update Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, update)
}

func (s *updateSink) settled() []Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Update
	for _, update := range s.updates {
		if !update.Loading {
			out = append(out, update)
		}
	}
	return out
}

func waitFor(t *testing.T, timeout time.Duration, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

func TestListSessionDebouncesRapidFilterChanges(t *testing.T) {
	fetcher := &recordingFetcher{}
	lister := NewListResourceUseCase(fetcher)
	sink := &updateSink{}
	session := NewListSession(context.Background(), "incidents", "tok-1", domain.PagedQuery{}, lister, 40*time.Millisecond, sink.publish)

	session.UpdateFilters(map[string]string{"status": "o"})
	session.UpdateFilters(map[string]string{"status": "op"})
	session.UpdateFilters(map[string]string{"status": "open"})

	waitFor(t, time.Second, func() bool { return len(sink.settled()) >= 1 })

	if fetcher.queryCount() != 1 {
		t.Fatalf("rapid changes must coalesce into one fetch, got %d", fetcher.queryCount())
	}
	final := sink.settled()[0]
	if final.Query.Filters["status"] != "open" {
		t.Fatalf("expected final filter value, got %+v", final.Query.Filters)
	}
	if final.Query.Page != 1 {
		t.Fatalf("filter change must rewind to page 1, got %d", final.Query.Page)
	}
}

func TestListSessionLastRequestWins(t *testing.T) {
	fetcher := &recordingFetcher{delays: map[int]time.Duration{0: 120 * time.Millisecond}}
	lister := NewListResourceUseCase(fetcher)
	sink := &updateSink{}
	session := NewListSession(context.Background(), "incidents", "tok-1", domain.PagedQuery{}, lister, 10*time.Millisecond, sink.publish)

	session.GoToPage(2)
	// Let the slow page-2 fetch get in flight before superseding it.
	waitFor(t, time.Second, func() bool { return fetcher.queryCount() >= 1 })
	session.GoToPage(3)

	waitFor(t, 2*time.Second, func() bool { return len(sink.settled()) >= 1 })
	time.Sleep(150 * time.Millisecond)

	settled := sink.settled()
	if len(settled) != 1 {
		t.Fatalf("superseded response must be discarded, got %d settle updates", len(settled))
	}
	if settled[0].Query.Page != 3 {
		t.Fatalf("expected the newest page to win, got %d", settled[0].Query.Page)
	}
}

func TestListSessionStartFetchesImmediately(t *testing.T) {
	fetcher := &recordingFetcher{}
	lister := NewListResourceUseCase(fetcher)
	sink := &updateSink{}
	session := NewListSession(context.Background(), "staff", "tok-1", domain.PagedQuery{}, lister, time.Hour, sink.publish)

	session.Start()
	waitFor(t, time.Second, func() bool { return len(sink.settled()) >= 1 })

	if fetcher.queryCount() != 1 {
		t.Fatalf("start must fetch without the debounce delay, got %d fetches", fetcher.queryCount())
	}
}

func TestListSessionStopSuppressesInFlightResults(t *testing.T) {
	fetcher := &recordingFetcher{delays: map[int]time.Duration{0: 80 * time.Millisecond}}
	lister := NewListResourceUseCase(fetcher)
	sink := &updateSink{}
	session := NewListSession(context.Background(), "staff", "tok-1", domain.PagedQuery{}, lister, 0, sink.publish)

	session.Start()
	waitFor(t, time.Second, func() bool { return fetcher.queryCount() >= 1 })
	session.Stop()

	time.Sleep(150 * time.Millisecond)
	if len(sink.settled()) != 0 {
		t.Fatalf("stopped session must not publish results, got %d", len(sink.settled()))
	}
}

func TestListSessionLoadingBracketsEveryFetch(t *testing.T) {
	fetcher := &recordingFetcher{}
	lister := NewListResourceUseCase(fetcher)
	sink := &updateSink{}
	session := NewListSession(context.Background(), "staff", "tok-1", domain.PagedQuery{}, lister, 5*time.Millisecond, sink.publish)

	session.GoToPage(2)
	waitFor(t, time.Second, func() bool { return len(sink.settled()) >= 1 })

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.updates) != 2 {
		t.Fatalf("expected loading + settle, got %d updates", len(sink.updates))
	}
	if !sink.updates[0].Loading || sink.updates[1].Loading {
		t.Fatalf("expected loading first then settle, got %+v", sink.updates)
	}
	if sink.updates[0].Seq != sink.updates[1].Seq {
		t.Fatalf("loading and settle must share a sequence number")
	}
}
