package mq

import (
	"context"
	"errors"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// MessageHandler handles one delivery body. routingKey is the key the event was published with.
type MessageHandler func(ctx context.Context, routingKey string, body []byte) error

type Consumer struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	queue    amqp091.Queue
	bindings []string
	handler  MessageHandler
	logger   *zap.Logger
}

// NewConsumer declares queueName and binds it to the exchange with every
// pattern in bindings, e.g. "habit.*".
func NewConsumer(url, queueName string, bindings []string, logger *zap.Logger) (*Consumer, error) {
	if len(bindings) == 0 {
		return nil, errors.New("consumer needs at least one binding")
	}

	conn, err := NewConnection(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// 声明 exchange（确保存在）
	if err := DeclareExchange(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	for _, key := range bindings {
		if err := ch.QueueBind(q.Name, key, ExchangeName, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to bind queue to %s: %w", key, err)
		}
	}

	return &Consumer{
		conn:     conn,
		channel:  ch,
		queue:    q,
		bindings: bindings,
		logger:   logger,
	}, nil
}

func (c *Consumer) SetHandler(h MessageHandler) {
	c.handler = h
}

func (c *Consumer) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// Run consumes until ctx is done or the channel closes.
func (c *Consumer) Run(ctx context.Context) error {
	if c.handler == nil {
		return errors.New("consumer handler not set")
	}

	msgs, err := c.channel.Consume(
		c.queue.Name,
		"",
		false, // 手动ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Consumer started",
		zap.String("queue", c.queue.Name),
		zap.Strings("bindings", c.bindings))

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.deliver(ctx, msg)
		}
	}
}

func (c *Consumer) deliver(ctx context.Context, msg amqp091.Delivery) {
	log := c.logger.With(zap.String("routing_key", msg.RoutingKey))

	err := func() (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("handler panic: %v", rec)
			}
		}()
		return c.handler(ctx, msg.RoutingKey, msg.Body)
	}()

	if err != nil {
		// 重投一次，再失败就丢弃，避免毒消息无限循环
		log.Warn("Handler failed", zap.Error(err), zap.Bool("redelivered", msg.Redelivered))
		_ = msg.Nack(false, !msg.Redelivered)
		return
	}

	if err := msg.Ack(false); err != nil {
		log.Warn("Failed to ack message", zap.Error(err))
	}
}
