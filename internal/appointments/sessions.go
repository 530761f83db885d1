package appointments

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfman30/telepsych-site/internal/scheduling"
)

// DefaultSessionTTL is how long an untouched wizard session is kept.
const DefaultSessionTTL = 30 * time.Minute

type session struct {
	wizard   *scheduling.Wizard
	lastSeen time.Time
}

// SessionStore keeps booking wizards in memory keyed by a random id.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		sessions: make(map[string]*session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create registers w and returns its session id.
func (s *SessionStore) Create(w *scheduling.Wizard) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &session{wizard: w, lastSeen: s.now()}
	s.mu.Unlock()
	return id
}

// Get returns the wizard for id and refreshes its idle timer.
func (s *SessionStore) Get(id string) (*scheduling.Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	now := s.now()
	if now.Sub(sess.lastSeen) > s.ttl {
		delete(s.sessions, id)
		sess.wizard.Close()
		return nil, ErrSessionNotFound
	}
	sess.lastSeen = now
	return sess.wizard, nil
}

// Delete closes the wizard and forgets the session.
func (s *SessionStore) Delete(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	sess.wizard.Close()
	return nil
}

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep closes and removes idle sessions, returning how many were evicted.
func (s *SessionStore) Sweep() int {
	now := s.now()
	var expired []*scheduling.Wizard

	s.mu.Lock()
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			expired = append(expired, sess.wizard)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, w := range expired {
		w.Close()
	}
	return len(expired)
}

// Run sweeps on every tick until ctx is cancelled.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
