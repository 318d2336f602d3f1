package handler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"jobboard/pkg/query"
)

type session struct {
	controller *query.Controller
	lastSeen   time.Time
}

// SessionStore keeps one query controller per browser session.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	factory  func() *query.Controller
	now      func() time.Time
}

func NewSessionStore(factory func() *query.Controller) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session),
		factory:  factory,
		now:      time.Now,
	}
}

// Get returns the controller for id, creating a session (and a fresh id)
// when id is empty or unknown.
func (s *SessionStore) Get(id string) (string, *query.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		sess.lastSeen = s.now()
		return id, sess.controller
	}

	id = uuid.NewString()
	sess := &session{controller: s.factory(), lastSeen: s.now()}
	s.sessions[id] = sess
	return id, sess.controller
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than ttl and returns how many went.
func (s *SessionStore) Sweep(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-ttl)
	removed := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper sweeps every interval until ctx is done.
func (s *SessionStore) RunSweeper(ctx context.Context, ttl, interval time.Duration, onSweep func(removed int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Sweep(ttl); removed > 0 && onSweep != nil {
				onSweep(removed)
			}
		}
	}
}

// Wait blocks until in-flight fetches of every live session finish.
func (s *SessionStore) Wait() {
	s.mu.Lock()
	controllers := make([]*query.Controller, 0, len(s.sessions))
	for _, sess := range s.sessions {
		controllers = append(controllers, sess.controller)
	}
	s.mu.Unlock()

	for _, c := range controllers {
		c.Wait()
	}
}
