package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"

	"github.com/samirrijal/bboxmap/internal/pkg/metrics"
)

// SetupRoutes registers the form pages, the JSON and GraphQL APIs, and the
// operational endpoints.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	fetchTimeout := deps.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = 60 * time.Second
	}

	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // GeoJSON compresses well
	}))

	// Request ID
	app.Use(requestid.New())

	// Request-scoped logger carrying the request ID
	app.Use(RequestLoggerMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 60 requests per minute per IP. Every valid submission
	// costs one OSM API call.
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later", nil)
		},
		SkipFailedRequests: false,
	}))

	// Security headers
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// Cache-Control defaults and ETags
	app.Use(CachingMiddleware())

	// Health & readiness, no timeout
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// Form pages, keyed by the session cookie. The middleware is attached
	// per route: a group on "" would run it for every later route too.
	session := SessionMiddleware(deps.SecureCookies)
	app.Get("/", session, IndexHandler(deps))
	app.Post("/submit", session, timeout.NewWithContext(SubmitHandler(deps), fetchTimeout))
	app.Post("/retry", session, timeout.NewWithContext(RetryHandler(deps), fetchTimeout))
	app.Post("/reset", session, ResetHandler(deps))

	// JSON API v1
	v1 := app.Group("/v1")
	v1.Post("/bbox/validate", ValidateHandler(deps))
	v1.Get("/elements", timeout.NewWithContext(ElementsHandler(deps), fetchTimeout))

	// GraphQL
	app.Post("/graphql", timeout.NewWithContext(GraphQLHandler(deps), fetchTimeout))

	// API documentation (Swagger UI)
	SetupDocs(app)
}
