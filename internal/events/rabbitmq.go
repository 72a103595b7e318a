package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// RabbitPublisher sends RentalEvents to a durable topic exchange using the
// event type as routing key. A dropped connection is redialed on next publish.
type RabbitPublisher struct {
	url      string
	exchange string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewRabbitPublisher(url, exchange string) (*RabbitPublisher, error) {
	p := &RabbitPublisher{url: url, exchange: exchange}
	if err := p.connect(); err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	return p, nil
}

func (p *RabbitPublisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return err
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare exchange %s: %w", p.exchange, err)
	}
	p.conn = conn
	p.ch = ch
	return nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, ev RentalEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() || p.ch == nil || p.ch.IsClosed() {
		if err := p.connect(); err != nil {
			return fmt.Errorf("reconnect rabbitmq: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return p.ch.PublishWithContext(ctx, p.exchange, ev.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.OccurredAt,
		Type:         ev.Type,
		Body:         body,
	})
}

func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.ch != nil && !p.ch.IsClosed() {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil && !p.conn.IsClosed() {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}
