package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/bboxmap/internal/pkg/logging"
)

// probePaths are logged at debug so health checks and scrapes don't drown
// the submissions.
var probePaths = map[string]bool{
	"/metrics":   true,
	"/v1/health": true,
	"/v1/ready":  true,
}

// RequestLoggerMiddleware puts a logger tagged with the Fiber request id into
// the user context. Handlers and the form controller log through it with
// logging.FromContext.
func RequestLoggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		l := slog.Default()
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			l = l.With("request_id", rid)
		}
		c.SetUserContext(logging.WithLogger(c.UserContext(), l))
		return c.Next()
	}
}

// AccessLogMiddleware writes one structured line per request. The level
// follows the outcome: 5xx at error, 4xx at warn.
func AccessLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		path := c.Path()
		attrs := []slog.Attr{
			slog.String("method", c.Method()),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes_out", len(c.Response().Body())),
			slog.String("ip", c.IP()),
		}
		if bbox := c.Query("bbox"); bbox != "" {
			attrs = append(attrs, slog.String("bbox", bbox))
		}

		level := slog.LevelInfo
		switch {
		case err != nil || status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		case probePaths[path]:
			level = slog.LevelDebug
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}

		// The context logger carries request_id and, on form pages, session_id.
		ctx := c.UserContext()
		logging.FromContext(ctx).LogAttrs(ctx, level, "http request", attrs...)
		return err
	}
}
