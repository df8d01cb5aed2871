// Package events publishes domain events for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/rabbitmq/amqp091-go"
)

// Exchange is the topic exchange every storefront event goes to.
const Exchange = "storefront"

const (
	OrderPlaced  = "order.placed"
	OrderDeleted = "order.deleted"
	OrderPaid    = "order.paid"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// AMQPPublisher publishes JSON messages to a durable topic exchange.
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp091.Connection
	ch       *amqp091.Channel
	exchange string
}

func DialAMQP(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	// amqp channels are not safe for concurrent publishing.
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.Close(); err != nil {
		return err
	}
	return p.conn.Close()
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }

// Emit publishes best-effort: failures are logged, never returned.
func Emit(ctx context.Context, p Publisher, routingKey string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, routingKey, payload); err != nil {
		log.Errorw("event publish failed", "routingKey", routingKey, "error", err)
	}
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	Events []Recorded
	Err    error
}

type Recorded struct {
	RoutingKey string
	Payload    any
}

func (r *Recorder) Publish(_ context.Context, routingKey string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, Recorded{RoutingKey: routingKey, Payload: payload})
	return r.Err
}

// Keys lists the routing keys published so far.
func (r *Recorder) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		keys = append(keys, e.RoutingKey)
	}
	return keys
}
