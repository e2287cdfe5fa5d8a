// Package audit turns consumed events into audit log lines.
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"wardrobe/internal/services"
	"wardrobe/pkg/logger"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Handler writes one audit log line per event.
type Handler struct {
	log *logger.Logger
}

// NewHandler creates a Handler writing to log.
func NewHandler(log *logger.Logger) *Handler {
	return &Handler{log: log.With(zap.String("component", "audit"))}
}

// Handle decodes the event by routing key and logs it.
func (h *Handler) Handle(ctx context.Context, msg amqp.Delivery) error {
	switch msg.RoutingKey {
	case services.EventOrderPlaced, services.EventOrderDeleted:
		var ev services.OrderEvent
		if err := json.Unmarshal(msg.Body, &ev); err != nil {
			return fmt.Errorf("decode %s: %w", msg.RoutingKey, err)
		}
		h.log.Info(ctx, msg.RoutingKey,
			zap.String("email", ev.Email),
			zap.String("clothing", ev.Clothing),
			zap.String("size", ev.Size),
			zap.Time("occurred_at", ev.OccurredAt))
	case services.EventStockAdded:
		var ev services.StockEvent
		if err := json.Unmarshal(msg.Body, &ev); err != nil {
			return fmt.Errorf("decode %s: %w", msg.RoutingKey, err)
		}
		h.log.Info(ctx, msg.RoutingKey,
			zap.String("clothing", ev.Clothing),
			zap.String("size", ev.Size),
			zap.Int("added", ev.Added),
			zap.Int("quantity", ev.Quantity),
			zap.Time("occurred_at", ev.OccurredAt))
	default:
		h.log.Warn(ctx, "unknown event", zap.String("routing_key", msg.RoutingKey))
	}
	return nil
}
