package ports

import (
	"context"

	"github.com/samirrijal/bboxmap/internal/core/domain"
)

// SessionStore persists per-session form state for the lifetime of a
// browser session.
type SessionStore interface {
	// Load returns domain.ErrSessionNotFound for unknown ids.
	Load(ctx context.Context, sessionID string) (*domain.FormState, error)
	Save(ctx context.Context, sessionID string, state *domain.FormState) error
	Delete(ctx context.Context, sessionID string) error

	// TryBeginFetch marks a fetch as in flight for the session. It reports
	// false when one already is.
	TryBeginFetch(ctx context.Context, sessionID string) (bool, error)
	FetchInFlight(ctx context.Context, sessionID string) (bool, error)
	EndFetch(ctx context.Context, sessionID string) error

	Ping(ctx context.Context) error
}
