package valkey

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/samirrijal/bboxmap/internal/core/domain"
)

const (
	sessionPrefix  = "bboxmap:session:"
	inflightPrefix = "bboxmap:inflight:"
)

// SessionStore implements ports.SessionStore using Valkey (Redis-compatible).
type SessionStore struct {
	client   valkey.Client
	ttl      time.Duration
	fetchTTL time.Duration
}

// New creates a new Valkey session store. ttl bounds idle sessions;
// fetchTTL bounds an in-flight marker left behind by a crashed request.
func New(addr string, ttl, fetchTTL time.Duration) (*SessionStore, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &SessionStore{client: client, ttl: ttl, fetchTTL: fetchTTL}, nil
}

// Load retrieves the form state of a session.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*domain.FormState, error) {
	cmd := s.client.Do(ctx, s.client.B().Get().Key(sessionPrefix+sessionID).Build())
	b, err := cmd.AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	var state domain.FormState
	if err := json.Unmarshal(b, &state); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &state, nil
}

// Save stores the form state and refreshes the session TTL.
func (s *SessionStore) Save(ctx context.Context, sessionID string, state *domain.FormState) error {
	b, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	cmd := s.client.Do(ctx,
		s.client.B().Set().Key(sessionPrefix+sessionID).Value(string(b)).Ex(s.ttl).Build(),
	)
	return cmd.Error()
}

// Delete removes a session. The in-flight marker belongs to the pending
// fetch and is left alone.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	cmd := s.client.Do(ctx, s.client.B().Del().Key(sessionPrefix+sessionID).Build())
	return cmd.Error()
}

// TryBeginFetch sets the in-flight marker with SET NX.
func (s *SessionStore) TryBeginFetch(ctx context.Context, sessionID string) (bool, error) {
	cmd := s.client.Do(ctx,
		s.client.B().Set().Key(inflightPrefix+sessionID).Value("1").Nx().ExSeconds(ttlSeconds(s.fetchTTL)).Build(),
	)
	err := cmd.Error()
	if valkey.IsValkeyNil(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("set inflight: %w", err)
	}
	return true, nil
}

// FetchInFlight reports whether the in-flight marker is set.
func (s *SessionStore) FetchInFlight(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Do(ctx, s.client.B().Exists().Key(inflightPrefix+sessionID).Build()).AsInt64()
	if err != nil {
		return false, fmt.Errorf("exists inflight: %w", err)
	}
	return n > 0, nil
}

// EndFetch clears the in-flight marker.
func (s *SessionStore) EndFetch(ctx context.Context, sessionID string) error {
	cmd := s.client.Do(ctx, s.client.B().Del().Key(inflightPrefix+sessionID).Build())
	return cmd.Error()
}

// Ping checks connectivity.
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Do(ctx, s.client.B().Ping().Build()).Error()
}

// Close releases the client.
func (s *SessionStore) Close() {
	s.client.Close()
}

func ttlSeconds(d time.Duration) int64 {
	if secs := int64(d / time.Second); secs > 0 {
		return secs
	}
	return 1
}
