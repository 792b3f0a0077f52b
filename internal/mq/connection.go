package mq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrNoChannel — соединение сейчас не установлено.
var ErrNoChannel = errors.New("no channel available")

// Значения по умолчанию.
const (
	DefaultURL       = "amqp://127.0.0.1:5672"
	DefaultHeartbeat = 10 * time.Second

	maxReconnectDelay = 30 * time.Second
)

// ConnectionConfig — параметры подключения к брокеру.
type ConnectionConfig struct {
	// URL — адрес брокера (default: DefaultURL).
	URL string

	// Heartbeat — интервал heartbeat (default: DefaultHeartbeat).
	Heartbeat time.Duration

	// Logger (опционально).
	Logger *slog.Logger
}

// Connection — AMQP соединение, которое само восстанавливается после разрыва.
//
// Канал берётся через Channel/WithChannel на каждый вызов: после reconnect
// старый канал недействителен.
type Connection struct {
	url    string
	config amqp.Config
	logger *slog.Logger

	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  bool

	done        chan struct{}
	reconnected chan struct{}
}

// NewConnection подключается к брокеру и запускает наблюдение за соединением.
func NewConnection(cfg ConnectionConfig) (*Connection, error) {
	url := cfg.URL
	if url == "" {
		url = DefaultURL
	}

	heartbeat := cfg.Heartbeat
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Connection{
		url: url,
		config: amqp.Config{
			Heartbeat: heartbeat,
			Locale:    "en_US",
			Properties: amqp.Table{
				"connection_name": "importer",
			},
		},
		logger:      logger.With("component", "amqp"),
		done:        make(chan struct{}),
		reconnected: make(chan struct{}, 1),
	}

	if err := c.dial(); err != nil {
		return nil, err
	}

	go c.watch()

	return c, nil
}

// dial открывает соединение и канал.
func (c *Connection) dial() error {
	conn, err := amqp.DialConfig(c.url, c.config)
	if err != nil {
		return fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.channel = ch
	c.mu.Unlock()

	c.logger.Info("connected to RabbitMQ", "heartbeat", c.config.Heartbeat)
	return nil
}

// watch ждёт разрыва соединения и переподключается.
func (c *Connection) watch() {
	for {
		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()

		closed := conn.NotifyClose(make(chan *amqp.Error, 1))

		select {
		case <-c.done:
			return
		case err := <-closed:
			if err != nil {
				c.logger.Warn("connection lost", "error", err)
			}
		}

		if !c.redial() {
			return
		}

		select {
		case c.reconnected <- struct{}{}:
		default:
		}
	}
}

// redial повторяет подключение с экспоненциальной задержкой (до 30s).
// Возвращает false, если соединение закрыли во время ожидания.
func (c *Connection) redial() bool {
	delay := time.Second

	for {
		select {
		case <-c.done:
			return false
		case <-time.After(delay):
		}

		if err := c.dial(); err != nil {
			c.logger.Warn("reconnect failed", "error", err, "next_delay", delay)
			delay = min(delay*2, maxReconnectDelay)
			continue
		}

		c.logger.Info("reconnected to RabbitMQ")
		return true
	}
}

// Channel возвращает текущий канал (может быть nil или закрыт).
func (c *Connection) Channel() *amqp.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel
}

// ReconnectNotify сигнализирует о восстановлении соединения.
func (c *Connection) ReconnectNotify() <-chan struct{} {
	return c.reconnected
}

// IsConnected проверяет, установлено ли соединение. Используется в /healthz.
func (c *Connection) IsConnected() bool {
	if c == nil {
		return false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.conn != nil && !c.conn.IsClosed()
}

// WithChannel выполняет fn с текущим каналом.
func (c *Connection) WithChannel(ctx context.Context, fn func(ch *amqp.Channel) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ch := c.Channel()
	if ch == nil || ch.IsClosed() {
		return ErrNoChannel
	}

	return fn(ch)
}

// Close закрывает канал и соединение. Повторный вызов ничего не делает.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)

	var errs []error
	if c.channel != nil && !c.channel.IsClosed() {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close channel: %w", err))
		}
	}
	if c.conn != nil && !c.conn.IsClosed() {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close connection: %w", err))
		}
	}

	c.logger.Info("connection closed")
	return errors.Join(errs...)
}
