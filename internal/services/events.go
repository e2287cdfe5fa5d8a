package services

import (
	"context"
	"encoding/json"
	"time"

	"wardrobe/pkg/logger"

	"go.uber.org/zap"
)

// Routing keys of the events published by the services.
const (
	EventOrderPlaced  = "order.placed"
	EventOrderDeleted = "order.deleted"
	EventStockAdded   = "stock.added"
)

// EventPublisher sends an event body under a routing key.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// OrderEvent is the body of order.placed and order.deleted.
type OrderEvent struct {
	Email      string    `json:"email"`
	Clothing   string    `json:"clothing"`
	Size       string    `json:"size"`
	OccurredAt time.Time `json:"occurred_at"`
}

// StockEvent is the body of stock.added.
type StockEvent struct {
	Clothing   string    `json:"clothing"`
	Size       string    `json:"size"`
	Added      int       `json:"added"`
	Quantity   int       `json:"quantity"`
	OccurredAt time.Time `json:"occurred_at"`
}

// publishEvent is best effort: failures are logged, never returned.
func publishEvent(ctx context.Context, pub EventPublisher, routingKey string, payload any) {
	if pub == nil {
		return
	}
	log := logger.Log(ctx).With(zap.String("routing_key", routingKey))

	body, err := json.Marshal(payload)
	if err != nil {
		log.Error(ctx, "failed to marshal event", zap.Error(err))
		return
	}
	if err := pub.Publish(ctx, routingKey, body); err != nil {
		log.Warn(ctx, "failed to publish event", zap.Error(err))
		return
	}
	log.Debug(ctx, "event published")
}
