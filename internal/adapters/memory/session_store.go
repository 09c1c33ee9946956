package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/samirrijal/bboxmap/internal/core/domain"
)

type entry struct {
	state     domain.FormState
	expiresAt time.Time
}

// SessionStore implements ports.SessionStore in process memory. It is the
// default backend for a single instance.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]entry
	inflight map[string]time.Time
	fetchTTL time.Duration
	now      func() time.Time
}

// NewSessionStore creates an empty store.
func NewSessionStore(ttl, fetchTTL time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		fetchTTL: fetchTTL,
		sessions: make(map[string]entry),
		inflight: make(map[string]time.Time),
		now:      time.Now,
	}
}

func (s *SessionStore) Load(ctx context.Context, sessionID string) (*domain.FormState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if !ok || s.now().After(e.expiresAt) {
		delete(s.sessions, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return cloneState(&e.state), nil
}

func (s *SessionStore) Save(ctx context.Context, sessionID string, state *domain.FormState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sessionID] = entry{state: *cloneState(state), expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

func (s *SessionStore) TryBeginFetch(ctx context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if until, ok := s.inflight[sessionID]; ok && s.now().Before(until) {
		return false, nil
	}
	s.inflight[sessionID] = s.now().Add(s.fetchTTL)
	return true, nil
}

func (s *SessionStore) FetchInFlight(ctx context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.inflight[sessionID]
	return ok && s.now().Before(until), nil
}

func (s *SessionStore) EndFetch(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inflight, sessionID)
	return nil
}

func (s *SessionStore) Ping(ctx context.Context) error { return nil }

// Sweep drops expired sessions. It returns the number removed.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for id, e := range s.sessions {
		if now.After(e.expiresAt) {
			delete(s.sessions, id)
			n++
		}
	}
	for id, until := range s.inflight {
		if now.After(until) {
			delete(s.inflight, id)
		}
	}
	return n
}

// cloneState copies the mutable maps. Geometry is shared: it is not
// mutated after creation.
func cloneState(st *domain.FormState) *domain.FormState {
	out := *st
	out.Values = maps.Clone(st.Values)
	if st.FieldErrors != nil {
		out.FieldErrors = make(domain.FieldErrors, len(st.FieldErrors))
		for k, v := range st.FieldErrors {
			fe := *v
			out.FieldErrors[k] = &fe
		}
	}
	if st.RetryBox != nil {
		b := *st.RetryBox
		out.RetryBox = &b
	}
	if st.LastBox != nil {
		b := *st.LastBox
		out.LastBox = &b
	}
	return &out
}
