package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"
)

const publishTimeout = 5 * time.Second

// StockMovementEvent is published after a stock transaction commits. Consumers
// see movements in commit order per product; EventID deduplicates redeliveries.
type StockMovementEvent struct {
	EventID       string    `json:"event_id"`
	TransactionID int64     `json:"transaction_id"`
	ProductID     int64     `json:"product_id"`
	ProductName   string    `json:"product_name"`
	IsInflow      bool      `json:"is_inflow"`
	Quantity      int       `json:"quantity"`
	Lot           string    `json:"lot,omitempty"`
	UserID        int64     `json:"user_id"`
	StockAfter    int       `json:"stock_after"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher pushes stock movement events to a durable topic exchange. All
// methods are safe on a nil receiver, so the app can run without a broker.
type Publisher struct {
	connection    *amqp.Channel
	conn          *amqp.Connection
	notifyConfirm chan amqp.Confirmation
	exchange      string
	routingKey    string
}

// NewPublisher connects to RabbitMQ, opens a confirm-mode channel, and
// declares the exchange. Returns an error if the broker is unreachable; the
// caller decides whether that is fatal.
func NewPublisher(url, exchange, routingKey string) (*Publisher, error) {
	log.Info().Str("exchange", exchange).Msg("Connecting to RabbitMQ")
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open producer channel: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("producer channel could not be put into confirm mode: %w", err)
	}
	notifyConfirm := make(chan amqp.Confirmation, 1)
	ch.NotifyPublish(notifyConfirm)

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	log.Info().Msg("RabbitMQ connected and producer channel initialized")
	return &Publisher{
		connection:    ch,
		conn:          conn,
		notifyConfirm: notifyConfirm,
		exchange:      exchange,
		routingKey:    routingKey,
	}, nil
}

// Publish sends one event and waits for the broker confirmation. A nil
// publisher silently drops the event.
func (p *Publisher) Publish(ctx context.Context, event StockMovementEvent) error {
	if p == nil {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.connection.Publish(
		p.exchange,
		p.routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	select {
	case confirm := <-p.notifyConfirm:
		if confirm.Ack {
			log.Debug().Str("event_id", event.EventID).Msg("Event published and confirmed")
			return nil
		}
		return errors.New("event published but not confirmed")
	case <-time.After(publishTimeout):
		return errors.New("publish confirmation timeout")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close shuts the underlying connection down. Safe on nil.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.conn != nil && !p.conn.IsClosed() {
		p.conn.Close()
	}
}
