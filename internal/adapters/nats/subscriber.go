package natsadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/bboxmap/internal/core/domain"
)

// SubmissionHandler processes one submission event. A returned error asks for
// redelivery.
type SubmissionHandler func(ctx context.Context, event *domain.SubmissionEvent) error

const (
	fetchBatch   = 32
	fetchMaxWait = 5 * time.Second
	maxDeliver   = 3
)

// Subscriber pulls submission events from the BBOXMAP_SUBMISSIONS stream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewSubscriber connects to NATS and enables JetStream.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := ensureStream(js); err != nil {
		conn.Close()
		return nil, err
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// ConsumeSubmissions pulls events for the durable consumer and hands them to
// handler until ctx is done. Undecodable payloads are terminated; handler
// failures are redelivered up to maxDeliver times.
func (s *Subscriber) ConsumeSubmissions(ctx context.Context, durable string, handler SubmissionHandler) error {
	sub, err := s.js.PullSubscribe(SubmissionSubjectPrefix+">", durable,
		nats.BindStream(streamName),
		nats.AckExplicit(),
		nats.MaxDeliver(maxDeliver),
	)
	if err != nil {
		return fmt.Errorf("pull subscribe %s: %w", durable, err)
	}
	defer func() { _ = sub.Unsubscribe() }()

	for {
		waitCtx, cancel := context.WithTimeout(ctx, fetchMaxWait)
		msgs, err := sub.Fetch(fetchBatch, nats.Context(waitCtx))
		cancel()

		if ctx.Err() != nil {
			return nil
		}
		if err != nil && !errors.Is(err, nats.ErrTimeout) && !errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("fetch submissions: %w", err)
		}

		for _, msg := range msgs {
			s.dispatch(ctx, msg, handler)
		}
	}
}

func (s *Subscriber) dispatch(ctx context.Context, msg *nats.Msg, handler SubmissionHandler) {
	var event domain.SubmissionEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		slog.Warn("dropping undecodable submission event", "subject", msg.Subject, "error", err)
		_ = msg.Term()
		return
	}
	if err := handler(ctx, &event); err != nil {
		slog.Warn("submission handler failed", "session_id", event.SessionID, "error", err)
		_ = msg.Nak()
		return
	}
	_ = msg.Ack()
}

// Close drains the connection.
func (s *Subscriber) Close() {
	_ = s.conn.Drain()
}
