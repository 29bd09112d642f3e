// Package events publishes listing and recommendation changes to a RabbitMQ topic
// exchange. Delivery is best effort: callers log a failed publish and carry on.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Routing keys for listing and recommendation changes
const (
	PropertyCreated       = "property.created"
	PropertyUpdated       = "property.updated"
	PropertyDeleted       = "property.deleted"
	RecommendationCreated = "recommendation.created"
)

// DefaultExchange is the topic exchange all change events go to
const DefaultExchange = "property.events"

// Publisher sends change events to interested consumers
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
	Close() error
}

// Event is the body of every published message
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

// newMessage wraps v in an Event routed by key
func newMessage(key string, v any, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(Event{Type: key, OccurredAt: now.UTC(), Data: v})
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode %s event: %w", key, err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    now,
		Type:         key,
		Body:         body,
	}, nil
}

// AMQPPublisher publishes to a durable topic exchange. A dropped connection or channel
// is redialed on the next publish; messages published while the broker is down fail.
type AMQPPublisher struct {
	url      string
	exchange string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPPublisher connects to url and declares exchange
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	p := &AMQPPublisher{url: url, exchange: exchange}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

// connect opens a fresh connection and channel. Callers hold p.mu.
func (p *AMQPPublisher) connect() error {
	p.reset()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}
	p.conn, p.ch = conn, ch
	return nil
}

// reset drops the current connection. Callers hold p.mu.
func (p *AMQPPublisher) reset() {
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
}

func (p *AMQPPublisher) usable() bool {
	return p.ch != nil && !p.ch.IsClosed() && !p.conn.IsClosed()
}

func (p *AMQPPublisher) PublishJSON(ctx context.Context, key string, v any) error {
	msg, err := newMessage(key, v, time.Now())
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.usable() {
		if err := p.connect(); err != nil {
			return err
		}
	}
	err = p.ch.PublishWithContext(ctx, p.exchange, key, false, false, msg)
	if !errors.Is(err, amqp.ErrClosed) {
		return err
	}

	// the broker closed us between the check and the publish
	if err := p.connect(); err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, msg)
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn, p.ch = nil, nil
	if errors.Is(err, amqp.ErrClosed) {
		return nil
	}
	return err
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishJSON(context.Context, string, any) error { return nil }
func (NopPublisher) Close() error                                  { return nil }
