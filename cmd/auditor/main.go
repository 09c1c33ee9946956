// Command auditor consumes submission events from NATS and writes them to
// the structured log.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	natsadapter "github.com/samirrijal/bboxmap/internal/adapters/nats"
	"github.com/samirrijal/bboxmap/internal/core/domain"
	"github.com/samirrijal/bboxmap/internal/pkg/config"
	"github.com/samirrijal/bboxmap/internal/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load("bboxmap-auditor")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	slog.Info("auditor running", "nats", cfg.NATS.URL)
	err = sub.ConsumeSubmissions(ctx, "bboxmap-auditor", func(ctx context.Context, e *domain.SubmissionEvent) error {
		attrs := []any{
			"session_id", e.SessionID,
			"result", e.Result,
			"features", e.FeatureCount,
			"at", e.At,
		}
		if e.BoundingBox != nil {
			attrs = append(attrs, "bbox", e.BoundingBox.QueryValue())
		}
		if e.Error != "" {
			attrs = append(attrs, "error", e.Error)
			slog.Warn("submission", attrs...)
			return nil
		}
		slog.Info("submission", attrs...)
		return nil
	})
	if err != nil {
		log.Fatalf("consume submissions: %v", err)
	}
	slog.Info("auditor stopped")
}
