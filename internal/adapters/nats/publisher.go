package natsadapter

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/reproj/internal/core/domain"
)

const (
	transformStream   = "TRANSFORM_EVENTS"
	transformSubjects = "reproj.transform.>"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := connect(url)
	if err != nil {
		return nil, err
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure stream exists
	cfg := &nats.StreamConfig{
		Name:      transformStream,
		Subjects:  []string{transformSubjects},
		Retention: nats.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist, so try an update
		if _, err := js.UpdateStream(cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishTransform publishes on reproj.transform.<zone>. The event ID doubles
// as the JetStream message ID so retries are deduplicated.
func (p *Publisher) PublishTransform(ctx context.Context, event *domain.TransformEvent) error {
	data, err := encodeEvent(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(subjectFor(event), data, nats.Context(ctx), nats.MsgId(event.ID))
	return err
}

// Ping round-trips to the server.
func (p *Publisher) Ping(ctx context.Context) error {
	if !p.conn.IsConnected() {
		return fmt.Errorf("nats: %s", p.conn.Status())
	}
	return p.conn.FlushWithContext(ctx)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

func subjectFor(event *domain.TransformEvent) string {
	zone := event.Zone
	if zone == "" {
		zone = "unknown"
	}
	return "reproj.transform." + zone
}

func connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return conn, nil
}
