package infrastructure

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"guardpost/internal/modules/session/domain"
)

// SessionStore keeps live sessions in memory keyed by the upstream bearer
// token. The cookie is the only durable copy; restarting the gateway just
// means the next request rebuilds its entry from the cookie.
type SessionStore struct {
	mu       sync.RWMutex
	byToken  map[string]*domain.Session
	lifetime time.Duration
}

func NewSessionStore(lifetime time.Duration) *SessionStore {
	return &SessionStore{byToken: make(map[string]*domain.Session), lifetime: lifetime}
}

// Create registers a fresh session for the given user and token.
func (s *SessionStore) Create(token string, user domain.User) *domain.Session {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	session := &domain.Session{
		ID:        uuid.NewString(),
		Token:     token,
		User:      user,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.byToken[token] = session
	s.mu.Unlock()
	return session
}

// Restore returns the session for a token, or a bare token-only session when
// the gateway restarted and only the cookie survived.
func (s *SessionStore) Restore(token string) (*domain.Session, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, false
	}
	s.mu.RLock()
	session, ok := s.byToken[token]
	s.mu.RUnlock()
	if ok && !session.Valid(s.lifetime) {
		s.Clear(token)
		return nil, false
	}
	if !ok {
		rebuilt := &domain.Session{ID: uuid.NewString(), Token: token, CreatedAt: time.Now().UTC()}
		s.mu.Lock()
		if existing, raced := s.byToken[token]; raced {
			rebuilt = existing
		} else {
			s.byToken[token] = rebuilt
		}
		s.mu.Unlock()
		return rebuilt, true
	}
	return session, true
}

// FindByID resolves a session by its gateway-assigned id. Channel tokens
// carry the id as their sid claim, so websocket handshakes land here.
func (s *SessionStore) FindByID(sessionID string) (*domain.Session, bool) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, session := range s.byToken {
		if session.ID == sessionID && session.Valid(s.lifetime) {
			return session, true
		}
	}
	return nil, false
}

// Clear tears the session down; in-flight requests carrying the stale token
// will surface 401s that callers log and discard.
func (s *SessionStore) Clear(token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}
	s.mu.Lock()
	delete(s.byToken, token)
	s.mu.Unlock()
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byToken)
}
