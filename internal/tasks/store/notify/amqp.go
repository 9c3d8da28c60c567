package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// ExchangeName is the topic exchange carrying change signals.
	ExchangeName = "taskdeck.tasks.changed"

	routingKeyPrefix = "tasks.changed."
)

// Broadcaster distributes "tasks changed for user" signals across
// processes. Backends that only notify in-process (SQLite) bridge
// through a broadcaster to reach other sessions; the receiving side
// re-reads its store and republishes the snapshot locally.
type Broadcaster interface {
	// Broadcast signals that the user's task set changed.
	Broadcast(ctx context.Context, userID uuid.UUID) error

	// Listen invokes handler for every change signal until ctx is
	// done. Signals originated by this process are delivered too;
	// handlers must tolerate redundant reloads.
	Listen(ctx context.Context, handler func(userID uuid.UUID)) error

	Close() error
}

type changeSignal struct {
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AMQPBroadcaster implements Broadcaster over a RabbitMQ topic
// exchange, one routing key per user.
type AMQPBroadcaster struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *slog.Logger
	mu      sync.Mutex
}

// NewAMQPBroadcaster connects to the broker and declares the exchange.
func NewAMQPBroadcaster(url string, logger *slog.Logger) (*AMQPBroadcaster, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		ExchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger.Info("change broadcaster connected", "exchange", ExchangeName)

	return &AMQPBroadcaster{
		conn:    conn,
		channel: ch,
		logger:  logger,
	}, nil
}

// Broadcast publishes a change signal for the user.
func (b *AMQPBroadcaster) Broadcast(ctx context.Context, userID uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	payload, err := json.Marshal(changeSignal{
		UserID:     userID.String(),
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	err = b.channel.PublishWithContext(ctx,
		ExchangeName,
		routingKeyPrefix+userID.String(),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Transient,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish change signal: %w", err)
	}
	return nil
}

// Listen consumes change signals on an exclusive queue bound to every
// user routing key, invoking handler per signal until ctx is done.
func (b *AMQPBroadcaster) Listen(ctx context.Context, handler func(userID uuid.UUID)) error {
	ch, err := b.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open listen channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	q, err := ch.QueueDeclare(
		"",    // broker-generated name
		false, // durable
		true,  // auto-delete
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, routingKeyPrefix+"#", ExchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			var sig changeSignal
			if err := json.Unmarshal(d.Body, &sig); err != nil {
				b.logger.Warn("discarding malformed change signal", "error", err)
				continue
			}
			userID, err := uuid.Parse(sig.UserID)
			if err != nil {
				b.logger.Warn("discarding change signal with bad user id", "error", err)
				continue
			}
			handler(userID)
		}
	}
}

// Close tears down the broker connection.
func (b *AMQPBroadcaster) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.channel.Close(); err != nil {
		b.logger.Warn("failed to close channel", "error", err)
	}
	return b.conn.Close()
}
