package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	domainErrors "omsrelay/internal/domain/errors"
	"omsrelay/internal/domain/model"
)

const exchangeName = "orders_feed"

// Publisher forwards order documents to the append-only event stream.
type Publisher interface {
	Publish(ctx context.Context, order *model.Order) error
}

// channel is the slice of amqp.Channel the publisher uses; fakes
// implement it in tests.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes one persistent JSON message per order to a
// durable topic exchange, routing key orders.status.{status}.
type AMQPPublisher struct {
	conn   *amqp.Connection
	ch     channel
	logger *slog.Logger
}

// New dials the broker and declares the exchange.
func New(brokerURL string, logger *slog.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(brokerURL)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p := &AMQPPublisher{conn: conn, ch: ch, logger: logger}
	if err := p.declareExchange(); err != nil {
		conn.Close()
		return nil, err
	}
	return p, nil
}

func (p *AMQPPublisher) declareExchange() error {
	if err := p.ch.ExchangeDeclare(
		exchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	return nil
}

// Publish serializes the order and forwards it, for every order
// regardless of status or routing outcome.
func (p *AMQPPublisher) Publish(ctx context.Context, order *model.Order) error {
	body, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("%w: marshal order: %v", domainErrors.ErrPublishFailure, err)
	}

	routingKey := "orders.status." + string(order.Status)
	err = p.ch.PublishWithContext(
		ctx,
		exchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domainErrors.ErrPublishFailure, err)
	}

	p.logger.Debug("order published", slog.String("order", order.OrderID), slog.String("routing_key", routingKey))
	return nil
}

// Close releases the channel and connection.
func (p *AMQPPublisher) Close() {
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
