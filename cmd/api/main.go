package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/samirrijal/bboxmap/internal/adapters/http"
	"github.com/samirrijal/bboxmap/internal/adapters/memory"
	natsadapter "github.com/samirrijal/bboxmap/internal/adapters/nats"
	"github.com/samirrijal/bboxmap/internal/adapters/osmapi"
	"github.com/samirrijal/bboxmap/internal/adapters/valkey"
	"github.com/samirrijal/bboxmap/internal/core/ports"
	"github.com/samirrijal/bboxmap/internal/core/usecases"
	"github.com/samirrijal/bboxmap/internal/pkg/config"
	"github.com/samirrijal/bboxmap/internal/pkg/logging"
	"github.com/samirrijal/bboxmap/internal/pkg/telemetry"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load("bboxmap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// A stale in-flight marker must outlive any real fetch.
	fetchTTL := cfg.OSM.Timeout + 15*time.Second

	// Session store
	var sessions ports.SessionStore
	switch cfg.Session.Backend {
	case "valkey":
		store, err := valkey.New(cfg.Valkey.Addr, cfg.Session.TTL, fetchTTL)
		if err != nil {
			log.Fatalf("valkey: %v", err)
		}
		defer store.Close()
		sessions = store
	default:
		store := memory.NewSessionStore(cfg.Session.TTL, fetchTTL)
		go sweepSessions(ctx, store, 10*time.Minute)
		sessions = store
	}

	// NATS (optional)
	var (
		events ports.EventPublisher
		broker http.BrokerStatus
	)
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			events = pub
			broker = pub
		}
	}

	// OSM API
	fetcher := osmapi.NewClient(osmapi.Config{
		BaseURL:           cfg.OSM.BaseURL,
		UserAgent:         cfg.OSM.UserAgent,
		Timeout:           cfg.OSM.Timeout,
		RequestsPerSecond: cfg.OSM.RequestsPerSecond,
		MaxResponseBytes:  cfg.OSM.MaxResponseBytes,
	})
	converter := osmapi.NewConverter()

	// Use cases
	form := usecases.NewFormController(fetcher, converter, sessions, events, cfg.Validation.AreaLimit)

	deps := &http.Dependencies{
		Form:         form,
		Sessions:     sessions,
		NATS:         broker,
		FetchTimeout: cfg.OSM.Timeout + 5*time.Second,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024, // four coordinates
		AppName:      "bboxmap",
	})
	app.Use(recover.New())
	// The JSON API is open to other origins; the form pages are same-origin.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("server starting", "addr", addr, "osm", cfg.OSM.BaseURL, "sessions", cfg.Session.Backend)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight map fetches time to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.OSM.Timeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

func sweepSessions(ctx context.Context, store *memory.SessionStore, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(); n > 0 {
				slog.Debug("expired sessions swept", "count", n)
			}
		}
	}
}
