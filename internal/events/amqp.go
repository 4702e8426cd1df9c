package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 10 * time.Second

// Publisher is the subset of *amqp.Channel used to publish events.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPNotifier publishes events to a RabbitMQ topic exchange, routed by event
// type.
type AMQPNotifier struct {
	publisher Publisher
	exchange  string
}

// NewAMQPNotifier wraps an existing channel.
func NewAMQPNotifier(publisher Publisher, exchange string) (*AMQPNotifier, error) {
	if publisher == nil {
		return nil, errors.New("amqp notifier: publisher cannot be nil")
	}
	if exchange == "" {
		return nil, errors.New("amqp notifier: exchange cannot be empty")
	}
	return &AMQPNotifier{publisher: publisher, exchange: exchange}, nil
}

// DialAMQP connects to the broker, declares a durable topic exchange and
// returns a notifier with a close function for both the channel and the
// connection.
func DialAMQP(url, exchange string) (*AMQPNotifier, func() error, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open amqp channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("declare exchange %q: %w", exchange, err)
	}

	notifier, err := NewAMQPNotifier(ch, exchange)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, err
	}

	closeFn := func() error {
		return errors.Join(ch.Close(), conn.Close())
	}
	return notifier, closeFn, nil
}

func (n *AMQPNotifier) Notify(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		Type:         event.Type,
		Headers:      amqp.Table{"x-path": event.Path},
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := n.publisher.PublishWithContext(publishCtx, n.exchange, event.Type, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}
