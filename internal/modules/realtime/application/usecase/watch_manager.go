package usecase

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	listingusecase "guardpost/internal/modules/listing/application/usecase"
	listingdomain "guardpost/internal/modules/listing/domain"
	"guardpost/internal/modules/realtime/domain"
)

// ClientSink receives the messages destined for one websocket client.
type ClientSink interface {
	SendMessage(msg *domain.Message)
}

// Watcher owns the list sessions of one websocket connection. Each watched
// resource gets its own debounced session; page updates stream back to the
// connection through the sink.
type Watcher struct {
	connID   string
	token    string
	lister   *listingusecase.ListResourceUseCase
	debounce time.Duration
	sink     ClientSink
	ctx      context.Context

	mu       sync.Mutex
	sessions map[string]*listingusecase.ListSession
	closed   bool
}

func (w *Watcher) Watch(resource string, query listingdomain.PagedQuery) {
	resource = strings.TrimSpace(resource)
	if resource == "" {
		return
	}
	session := listingusecase.NewListSession(w.ctx, resource, w.token, query, w.lister, w.debounce, w.publisher(resource))

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		session.Stop()
		return
	}
	if existing, ok := w.sessions[resource]; ok {
		existing.Stop()
	}
	w.sessions[resource] = session
	w.mu.Unlock()

	session.Start()
}

func (w *Watcher) Filter(resource string, partial map[string]string) {
	if session := w.session(resource); session != nil {
		session.UpdateFilters(partial)
	}
}

func (w *Watcher) Search(resource, term string) {
	if session := w.session(resource); session != nil {
		session.SetSearch(term)
	}
}

func (w *Watcher) Page(resource string, page int) {
	if session := w.session(resource); session != nil {
		session.GoToPage(page)
	}
}

func (w *Watcher) Refresh(resource string) {
	if session := w.session(resource); session != nil {
		session.Refresh()
	}
}

func (w *Watcher) Unwatch(resource string) {
	resource = strings.TrimSpace(resource)
	w.mu.Lock()
	session := w.sessions[resource]
	delete(w.sessions, resource)
	w.mu.Unlock()
	if session != nil {
		session.Stop()
	}
}

// Close stops every session; in-flight fetches settle silently.
func (w *Watcher) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	sessions := make([]*listingusecase.ListSession, 0, len(w.sessions))
	for _, session := range w.sessions {
		sessions = append(sessions, session)
	}
	w.sessions = map[string]*listingusecase.ListSession{}
	w.mu.Unlock()

	for _, session := range sessions {
		session.Stop()
	}
}

func (w *Watcher) session(resource string) *listingusecase.ListSession {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sessions[strings.TrimSpace(resource)]
}

func (w *Watcher) publisher(resource string) listingusecase.Publisher {
	return func(update listingusecase.Update) {
		w.sink.SendMessage(messageFromUpdate(resource, update))
	}
}

func messageFromUpdate(resource string, update listingusecase.Update) *domain.Message {
	metadata := map[string]string{
		"seq":  strconv.FormatUint(update.Seq, 10),
		"page": strconv.Itoa(update.Query.Page),
	}
	if update.Query.Search != "" {
		metadata["search"] = update.Query.Search
	}
	now := time.Now().UTC()

	if update.Loading {
		return &domain.Message{
			Topic:     domain.PageTopic(resource),
			Resource:  resource,
			Action:    domain.ActionLoading,
			Metadata:  metadata,
			Timestamp: now,
		}
	}
	if update.Err != nil {
		metadata["reason"] = update.Err.Error()
		return &domain.Message{
			Topic:     domain.ErrorTopic(resource),
			Resource:  resource,
			Action:    domain.ActionError,
			Metadata:  metadata,
			Timestamp: now,
		}
	}

	data := map[string]any{
		"page":       update.Result.Page,
		"from_cache": update.FromCache,
	}
	if len(update.Result.Extra) > 0 {
		data["extra"] = update.Result.Extra
	}
	return &domain.Message{
		Topic:     domain.PageTopic(resource),
		Resource:  resource,
		Action:    domain.ActionPage,
		Metadata:  metadata,
		Data:      data,
		Timestamp: now,
	}
}

// WatchManager tracks the watcher of every connected client so broker refresh
// hints can fan out to the affected list sessions.
type WatchManager struct {
	lister   *listingusecase.ListResourceUseCase
	debounce time.Duration

	mu       sync.RWMutex
	watchers map[string]*Watcher
}

func NewWatchManager(lister *listingusecase.ListResourceUseCase, debounce time.Duration) *WatchManager {
	return &WatchManager{
		lister:   lister,
		debounce: debounce,
		watchers: make(map[string]*Watcher),
	}
}

// Register creates the watcher for a new connection. A reused connection id
// closes the previous watcher first.
func (m *WatchManager) Register(ctx context.Context, connID, token string, sink ClientSink) *Watcher {
	if ctx == nil {
		ctx = context.Background()
	}
	watcher := &Watcher{
		connID:   connID,
		token:    token,
		lister:   m.lister,
		debounce: m.debounce,
		sink:     sink,
		ctx:      ctx,
		sessions: make(map[string]*listingusecase.ListSession),
	}

	m.mu.Lock()
	previous := m.watchers[connID]
	m.watchers[connID] = watcher
	m.mu.Unlock()

	if previous != nil {
		previous.Close()
	}
	return watcher
}

func (m *WatchManager) Unregister(connID string) {
	m.mu.Lock()
	watcher := m.watchers[connID]
	delete(m.watchers, connID)
	m.mu.Unlock()
	if watcher != nil {
		watcher.Close()
	}
}

// RefreshResource re-fetches the current page of every session watching the
// resource, bypassing the debounce window.
func (m *WatchManager) RefreshResource(resource string) {
	m.mu.RLock()
	watchers := make([]*Watcher, 0, len(m.watchers))
	for _, watcher := range m.watchers {
		watchers = append(watchers, watcher)
	}
	m.mu.RUnlock()

	for _, watcher := range watchers {
		watcher.Refresh(resource)
	}
}

func (m *WatchManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.watchers)
}
