// Package notify publishes order lifecycle events for the external SMS/email
// worker. Publishing is fire-and-forget: failures are logged, never surfaced
// to the caller.
package notify

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"live-ai-photo-backend/internal/models"
)

const exchangeName = "order.events"

type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	log     *zap.Logger
}

// OrderCompletedEvent is the payload the delivery worker consumes. Recipient
// contact fields are filled when the ordering user could be resolved.
type OrderCompletedEvent struct {
	Event          string    `json:"event"`
	OrderID        string    `json:"order_id"`
	CompanyID      string    `json:"company_id"`
	UserID         string    `json:"user_id"`
	RecipientEmail string    `json:"recipient_email,omitempty"`
	RecipientName  string    `json:"recipient_name,omitempty"`
	CompletedAt    time.Time `json:"completed_at"`
}

// NewOrderCompletedEvent builds the delivery event for an order. user may be
// nil when the ordering user could not be loaded; the event still carries the
// user id for the worker to resolve on its side.
func NewOrderCompletedEvent(order *models.Order, user *models.User) OrderCompletedEvent {
	event := OrderCompletedEvent{
		Event:       "order_completed",
		OrderID:     order.ID.String(),
		CompanyID:   order.CompanyID.String(),
		UserID:      order.UserID.String(),
		CompletedAt: time.Now().UTC(),
	}
	if user != nil {
		event.RecipientEmail = user.Email
		event.RecipientName = user.Name
	}
	return event
}

func NewPublisher(amqpURL string, log *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	err = channel.ExchangeDeclare(exchangeName, "topic", true, false, false, false, nil)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, channel: channel, log: log}, nil
}

// OrderCompleted announces a delivered order. A nil publisher (messaging not
// configured) is a no-op.
func (p *Publisher) OrderCompleted(ctx context.Context, order *models.Order, user *models.User) {
	if p == nil {
		return
	}

	body, err := json.Marshal(NewOrderCompletedEvent(order, user))
	if err != nil {
		p.log.Error("failed to encode order event", zap.Error(err))
		return
	}

	err = p.channel.PublishWithContext(ctx, exchangeName, "order.completed", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		p.log.Error("failed to publish order event",
			zap.String("order_id", order.ID.String()), zap.Error(err))
	}
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.channel.Close()
	p.conn.Close()
}
