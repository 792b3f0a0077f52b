package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrMalformedMessage — тело сообщения не разбирается.
var ErrMalformedMessage = errors.New("malformed message")

// Handler обрабатывает одно сообщение.
// Ошибка означает, что сообщение уходит в DLQ без повторной доставки.
type Handler func(ctx context.Context, msg *Message) error

// ConsumerConfig — конфигурация Consumer.
type ConsumerConfig struct {
	// Queue — очередь (обязательно).
	Queue Queue

	// Handler — обработчик (обязательно).
	Handler Handler

	// Prefetch — сколько сообщений обрабатывается одновременно (default: 1).
	Prefetch int

	// Logger (опционально).
	Logger *slog.Logger
}

// Consumer читает очередь с ручным ack.
//
// До Prefetch сообщений обрабатываются параллельно; каждое сообщение
// обрабатывается ровно одним вызовом Handler.
type Consumer struct {
	conn     *Connection
	queue    Queue
	handler  Handler
	prefetch int
	logger   *slog.Logger

	inflight sync.WaitGroup
}

// NewConsumer создаёт новый Consumer.
func NewConsumer(conn *Connection, cfg ConsumerConfig) *Consumer {
	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = 1
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Consumer{
		conn:     conn,
		queue:    cfg.Queue,
		handler:  cfg.Handler,
		prefetch: prefetch,
		logger:   logger.With("queue", cfg.Queue),
	}
}

// Run потребляет сообщения до отмены ctx, переподписываясь после reconnect.
// Перед возвратом дожидается обработки уже полученных сообщений.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.inflight.Wait()

	for {
		deliveries, err := c.subscribe()
		if err != nil {
			c.logger.Error("failed to subscribe", "error", err)
		} else {
			c.logger.Info("consumer started", "prefetch", c.prefetch)
			c.drain(ctx, deliveries)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.logger.Warn("deliveries interrupted, waiting for reconnect")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.conn.ReconnectNotify():
		}
	}
}

// subscribe выставляет QoS и подписывается на очередь.
func (c *Consumer) subscribe() (<-chan amqp.Delivery, error) {
	ch := c.conn.Channel()
	if ch == nil {
		return nil, ErrNoChannel
	}

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := ch.Consume(
		string(c.queue), // queue
		"",              // consumer tag
		false,           // auto-ack
		false,           // exclusive
		false,           // no-local
		false,           // no-wait
		nil,             // args
	)
	if err != nil {
		return nil, fmt.Errorf("consume: %w", err)
	}

	return deliveries, nil
}

// drain раздаёт сообщения обработчикам, не больше prefetch одновременно.
func (c *Consumer) drain(ctx context.Context, deliveries <-chan amqp.Delivery) {
	slots := make(chan struct{}, c.prefetch)

	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-deliveries:
			if !ok {
				return
			}

			slots <- struct{}{}
			c.inflight.Add(1)
			go func() {
				defer func() {
					<-slots
					c.inflight.Done()
				}()
				c.handle(ctx, raw)
			}()
		}
	}
}

// handle обрабатывает одно сообщение и подтверждает его.
func (c *Consumer) handle(ctx context.Context, raw amqp.Delivery) {
	msg, err := DecodeMessage(raw.Body)
	if err != nil {
		c.logger.Error("rejecting message", "error", err, "body", string(raw.Body))
		raw.Nack(false, false)
		return
	}

	logger := c.logger.With("message_id", msg.ID, "type", msg.Type)
	logger.Debug("received message")

	if err := c.handler(ctx, msg); err != nil {
		logger.Error("handler failed, dead-lettering", "error", err)
		raw.Nack(false, false)
		return
	}

	if err := raw.Ack(false); err != nil {
		logger.Warn("ack failed", "error", err)
	}
}

// DecodeMessage разбирает JSON-конверт.
func DecodeMessage(body []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformedMessage)
	}
	return &msg, nil
}

// ParsePayload разбирает payload сообщения в T.
func ParsePayload[T any](msg *Message) (T, error) {
	var result T
	if len(msg.Payload) == 0 {
		return result, fmt.Errorf("%w: empty payload", ErrMalformedMessage)
	}
	if err := json.Unmarshal(msg.Payload, &result); err != nil {
		return result, fmt.Errorf("%w: unmarshal payload: %v", ErrMalformedMessage, err)
	}
	return result, nil
}
