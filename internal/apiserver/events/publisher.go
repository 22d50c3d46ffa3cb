// Package events publishes order lifecycle events to RabbitMQ so back-office
// consumers (fulfilment, reporting) can react without polling the API.
// Publishing is best effort: failures are logged and never interrupt the
// request that produced the event.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ordermill/storefront/internal/apiserver/database"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const orderQueueName = "order.events"

// OrderEvent is the message published for every order state change
type OrderEvent struct {
	Type      string    `json:"type"` // created, updated, tracking_updated
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	Total     float64   `json:"total"`
	Email     string    `json:"email,omitempty"`
	IsSample  bool      `json:"is_sample"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher emits order events. A nil Publisher is valid and publishes
// nothing, so callers never need to branch on configuration.
type Publisher struct {
	logger *zap.Logger
	url    string
}

// NewPublisher creates an order event publisher for the broker URL
func NewPublisher(logger *zap.Logger, url string) *Publisher {
	return &Publisher{
		logger: logger.Named("apiserver.events"),
		url:    url,
	}
}

// PublishOrderEvent publishes one event, opening a short-lived connection.
// Messages are persistent so they survive broker restarts.
func (p *Publisher) PublishOrderEvent(ctx context.Context, eventType string, order *database.Order) {
	if p == nil {
		return
	}

	event := OrderEvent{
		Type:      eventType,
		OrderID:   order.ID,
		Status:    order.Status,
		Total:     order.Total,
		Email:     order.Email,
		IsSample:  order.IsSample,
		Timestamp: time.Now().UTC(),
	}
	if err := p.publish(ctx, event); err != nil {
		p.logger.Warn("publishing order event failed",
			zap.String("type", eventType),
			zap.String("order_id", order.ID),
			zap.Error(err))
	}
}

func (p *Publisher) publish(ctx context.Context, event OrderEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(orderQueueName, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx,
		"",             // default exchange
		orderQueueName, // routing key = queue name
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.Timestamp,
			Body:         body,
		},
	)
}
