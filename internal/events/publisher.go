// Package events publishes domain events to RabbitMQ for downstream
// consumers (notifications, analytics). Publishing is fire-and-forget;
// a nil publisher disables it.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	BookingCreated   = "booking.created"
	BookingCancelled = "booking.cancelled"
	PaymentCompleted = "payment.completed"
	PaymentFailed    = "payment.failed"
	AlertRaised      = "alert.raised"
)

type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *Publisher) PublishJSON(ctx context.Context, key string, v interface{}) error {
	if p == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        b,
	})
}

// Publish logs and swallows errors so a broker outage never fails a request.
func (p *Publisher) Publish(ctx context.Context, key string, v interface{}) {
	if p == nil {
		return
	}
	if err := p.PublishJSON(ctx, key, v); err != nil {
		log.Printf("[Events] Failed to publish %s: %v", key, err)
	}
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
