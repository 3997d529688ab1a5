package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"bookwell/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher publishes a JSON document under a routing key.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// BrokerDispatcher publishes events to a topic exchange as booking.<kind>.
type BrokerDispatcher struct {
	Publisher Publisher
}

func (d *BrokerDispatcher) Deliver(ctx context.Context, event models.Event) error {
	if err := validate(event); err != nil {
		return err
	}
	if err := d.Publisher.PublishJSON(ctx, RoutingKey(event.Kind), event); err != nil {
		return fmt.Errorf("publish %s: %w", event.Kind, err)
	}
	return nil
}

func RoutingKey(kind models.EventKind) string {
	return "booking." + string(kind)
}

// AMQPPublisher owns one connection and channel to RabbitMQ.
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
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
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) PublishJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         b,
	})
}

func (p *AMQPPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
