package rabbitmq

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/airreserve/internal/events"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	log     *zap.Logger
}

// NewConsumer declares a durable queue bound to topic on exchange.
func NewConsumer(url, exchange, queue, topic string, log *zap.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, ExchangeKind, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}

	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	if err := ch.QueueBind(q.Name, topic, exchange, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq queue bind: %w", err)
	}

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("rabbitmq set QoS failed", zap.Error(err))
	}

	return &Consumer{
		conn:    conn,
		channel: ch,
		queue:   q.Name,
		log:     log.With(zap.String("component", "rabbitmq_consumer"), zap.String("queue", q.Name)),
	}, nil
}

// Consume delivers events to handler until ctx is done. Deliveries are acked after
// handler succeeds; undecodable or failed deliveries are rejected without requeue.
func (c *Consumer) Consume(ctx context.Context, handler events.Handler) error {
	msgs, err := c.channel.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("rabbitmq consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("deliveries channel closed")
			}
			if c.handle(ctx, d.Body, handler) {
				_ = d.Ack(false)
			} else {
				_ = d.Nack(false, false)
			}
		}
	}
}

func (c *Consumer) handle(ctx context.Context, body []byte, handler events.Handler) bool {
	event, err := events.Decode(body)
	if err != nil {
		c.log.Warn("rejecting undecodable message", zap.Error(err))
		return false
	}
	if err := handler(ctx, event); err != nil {
		c.log.Error("handle event failed", zap.String("event_id", event.ID), zap.Error(err))
		return false
	}
	return true
}

func (c *Consumer) Close() {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
