package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/bboxmap/internal/core/domain"
)

// SubmissionSubjectPrefix prefixes the per-result submission subjects,
// e.g. "bboxmap.submission.valid".
const SubmissionSubjectPrefix = "bboxmap.submission."

const streamName = "BBOXMAP_SUBMISSIONS"

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
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

	return &Publisher{conn: conn, js: js}, nil
}

// PublishSubmission publishes event on the subject for its result.
func (p *Publisher) PublishSubmission(ctx context.Context, event *domain.SubmissionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	// The message id lets JetStream drop duplicates of a retried publish.
	msgID := event.SessionID + ":" + strconv.FormatInt(event.At.UnixNano(), 10)
	_, err = p.js.Publish(SubmissionSubjectPrefix+event.Result, data, nats.Context(ctx), nats.MsgId(msgID))
	return err
}

// Connected reports whether the underlying connection is up.
func (p *Publisher) Connected() bool {
	return p.conn.IsConnected()
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// ensureStream creates the submissions stream, or updates it when it
// already exists.
func ensureStream(js nats.JetStreamContext) error {
	cfg := nats.StreamConfig{
		Name:       streamName,
		Subjects:   []string{SubmissionSubjectPrefix + ">"},
		Retention:  nats.LimitsPolicy,
		MaxAge:     7 * 24 * time.Hour,
		Storage:    nats.FileStorage,
		Duplicates: 2 * time.Minute,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		if _, err := js.UpdateStream(&cfg); err != nil {
			return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}
	return nil
}

func connect(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("bboxmap"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
