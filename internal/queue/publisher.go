package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"

	"github.com/threetier/backend/internal/config"
)

const defaultDialTimeout = 2 * time.Second

// Publisher sends lifecycle events. Failures are returned so callers can
// log and carry on.
type Publisher interface {
	Publish(ctx context.Context, ev LifecycleEvent) error
}

// NewPublisher returns an AMQP publisher when a broker URL is configured and
// a no-op publisher otherwise.
func NewPublisher(cfg config.QueueConfig) Publisher {
	if cfg.URL == "" {
		return NopPublisher{}
	}
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	return &AMQPPublisher{url: cfg.URL, queue: cfg.Name, dial: boundedDial(timeout)}
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, LifecycleEvent) error { return nil }

// AMQPPublisher dials the broker per publish. Lifecycle events are rare
// (twice per process), so no connection is held open between them.
type AMQPPublisher struct {
	url   string
	queue string
	dial  func(ctx context.Context, url string) (*amqp.Connection, error)
}

// boundedDial connects with a deadline of timeout or ctx's deadline,
// whichever comes first. The deadline covers the TCP connect and the AMQP
// handshake; the client clears it once the connection is open.
func boundedDial(timeout time.Duration) func(ctx context.Context, url string) (*amqp.Connection, error) {
	return func(ctx context.Context, url string) (*amqp.Connection, error) {
		deadline := time.Now().Add(timeout)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		dialer := &net.Dialer{Deadline: deadline}
		return amqp.DialConfig(url, amqp.Config{
			Heartbeat: 10 * time.Second,
			Locale:    "en_US",
			Dial: func(network, addr string) (net.Conn, error) {
				conn, err := dialer.DialContext(ctx, network, addr)
				if err != nil {
					return nil, err
				}
				if err := conn.SetDeadline(deadline); err != nil {
					_ = conn.Close()
					return nil, err
				}
				return conn, nil
			},
		})
	}
}

// Publish declares the durable queue and sends ev as a persistent JSON message.
func (p *AMQPPublisher) Publish(ctx context.Context, ev LifecycleEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := p.dial(ctx, p.url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Durable so events survive broker restarts.
	if _, err := ch.QueueDeclare(
		p.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	log.WithFields(log.Fields{"queue": p.queue, "event": ev.Event}).Debug("lifecycle event published")
	return nil
}
