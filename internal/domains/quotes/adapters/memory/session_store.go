package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Apurer/reseller-ops-api/internal/domains/quotes/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/quotes/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore keeps quotes in process memory. Each save extends the session by ttl; a zero ttl never expires.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]session
}

type session struct {
	quote     *domain.Quote
	expiresAt time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{ttl: ttl, now: time.Now, sessions: map[string]session{}}
}

// WithClock overrides the time source for deterministic testing.
func (s *SessionStore) WithClock(now func() time.Time) *SessionStore {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *SessionStore) Save(_ context.Context, quote *domain.Quote) error {
	if quote == nil {
		return errors.New("quote is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := session{quote: quote.Clone()}
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}
	s.sessions[quote.ID] = entry
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok {
		return nil, ports.ErrQuoteNotFound
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		delete(s.sessions, id)
		return nil, ports.ErrQuoteNotFound
	}
	return entry.quote.Clone(), nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ports.ErrQuoteNotFound
	}
	delete(s.sessions, id)
	return nil
}
