package http

import (
	"time"

	"github.com/samirrijal/bboxmap/internal/core/ports"
	"github.com/samirrijal/bboxmap/internal/core/usecases"
)

// BrokerStatus reports message broker connectivity.
type BrokerStatus interface {
	Connected() bool
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Form     *usecases.FormController
	Sessions ports.SessionStore
	NATS     BrokerStatus // nil when events are disabled

	// FetchTimeout bounds handlers that call the map API.
	FetchTimeout time.Duration
	// SecureCookies marks the session cookie Secure.
	SecureCookies bool
}
