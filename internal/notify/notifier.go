package notify

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Notifier delivers user-facing messages. Delivery is best-effort: callers
// log failures and move on, a payment confirmation never rolls back because
// a notification could not be sent.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message string, data map[string]string) error
}

const routingKeyHost = "notification.host"

type hostNotification struct {
	UserID  string            `json:"user_id"`
	Title   string            `json:"title"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data,omitempty"`
}

// AMQPNotifier publishes notifications to a topic exchange consumed by the
// notification dispatcher.
type AMQPNotifier struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewAMQPNotifier(url, exchange string) (*AMQPNotifier, error) {
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
	return &AMQPNotifier{conn: conn, ch: ch, exchange: exchange}, nil
}

func (n *AMQPNotifier) Notify(ctx context.Context, userID, title, message string, data map[string]string) error {
	b, err := json.Marshal(hostNotification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Data:    data,
	})
	if err != nil {
		return err
	}
	return n.ch.PublishWithContext(ctx, n.exchange, routingKeyHost, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        b,
	})
}

func (n *AMQPNotifier) Close() error {
	if n.ch != nil {
		_ = n.ch.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}

// NoopNotifier drops notifications. Used when AMQP is not configured.
type NoopNotifier struct{}

func (NoopNotifier) Notify(ctx context.Context, userID, title, message string, data map[string]string) error {
	return nil
}
