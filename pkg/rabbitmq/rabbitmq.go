// Package rabbitmq publishes and consumes events over a topic exchange.
package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"wardrobe/pkg/logger"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("rabbitmq client is closed")

// Config holds RabbitMQ connection details.
type Config struct {
	URL      string
	Exchange string
	Queue    string
	// BindingKey selects the events the queue receives. Defaults to "#".
	BindingKey string
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	cfg     Config
	conn    *amqp.Connection
	channel *amqp.Channel

	// amqp channels are not safe for concurrent publishing.
	mu     sync.Mutex
	closed bool
}

// NewClient connects to RabbitMQ and declares the exchange, the queue and
// the binding between them.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BindingKey == "" {
		cfg.BindingKey = "#"
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declare(ch, cfg); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &Client{
		cfg:     cfg,
		conn:    conn,
		channel: ch,
	}, nil
}

func declare(ch *amqp.Channel, cfg Config) error {
	err := ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // kind
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	_, err = ch.QueueDeclare(
		cfg.Queue, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", cfg.Queue, err)
	}

	if err := ch.QueueBind(cfg.Queue, cfg.BindingKey, cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", cfg.Queue, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Publish sends a persistent JSON message to the exchange.
func (c *Client) Publish(ctx context.Context, routingKey string, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.channel == nil {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := c.channel.Publish(
		c.cfg.Exchange, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}
	return nil
}

// Handler processes one delivery. Returning an error rejects the message.
type Handler func(ctx context.Context, msg amqp.Delivery) error

// Consume starts delivering messages from the queue to handler in a
// goroutine that ends when ctx is done or the channel closes.
func (c *Client) Consume(ctx context.Context, handler Handler) error {
	c.mu.Lock()
	if c.closed || c.channel == nil {
		c.mu.Unlock()
		return ErrClosed
	}
	msgs, err := c.channel.Consume(
		c.cfg.Queue, // queue
		"",          // consumer tag
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				Dispatch(ctx, handler, msg)
			}
		}
	}()
	return nil
}

// Dispatch runs handler for msg and acknowledges it. Failed messages are
// rejected without requeue so a poison message cannot loop forever.
func Dispatch(ctx context.Context, handler Handler, msg amqp.Delivery) {
	log := logger.Log(ctx).With(
		zap.String("routing_key", msg.RoutingKey),
		zap.Uint64("delivery_tag", msg.DeliveryTag),
	)

	if err := handler(ctx, msg); err != nil {
		log.Error(ctx, "failed to process message", zap.Error(err))
		if nackErr := msg.Nack(false, false); nackErr != nil {
			log.Error(ctx, "failed to nack message", zap.Error(nackErr))
		}
		return
	}
	if ackErr := msg.Ack(false); ackErr != nil {
		log.Error(ctx, "failed to ack message", zap.Error(ackErr))
	}
}
