package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
)

// check is one named readiness probe. Optional checks report but never fail
// readiness.
type check struct {
	name     string
	optional bool
	run      func(ctx context.Context) (string, bool)
}

func readinessChecks(deps *Dependencies) []check {
	return []check{
		{
			name: "sessions",
			run: func(ctx context.Context) (string, bool) {
				if deps.Sessions == nil {
					return "not configured", false
				}
				if err := deps.Sessions.Ping(ctx); err != nil {
					return "error: " + err.Error(), false
				}
				return "ok", true
			},
		},
		{
			name:     "nats",
			optional: deps.NATS == nil,
			run: func(ctx context.Context) (string, bool) {
				switch {
				case deps.NATS == nil:
					return "not configured", true
				case deps.NATS.Connected():
					return "ok", true
				default:
					return "disconnected", false
				}
			},
		},
	}
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// HealthHandler is the liveness probe.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()
	version := buildVersion()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":     "healthy",
			"uptime":     time.Since(startedAt).Round(time.Second).String(),
			"version":    version,
			"area_limit": deps.Form.AreaLimit(),
		})
	}
}

// ReadyHandler runs the readiness checks and answers 503 when a required one
// fails.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	checks := readinessChecks(deps)

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		results := make(map[string]string, len(checks))
		ready := true
		for _, ch := range checks {
			status, ok := ch.run(ctx)
			results[ch.name] = status
			if !ok && !ch.optional {
				ready = false
			}
		}

		if !ready {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not ready", "checks": results})
		}
		return c.JSON(fiber.Map{"status": "ready", "checks": results})
	}
}
