package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageType — тип сообщения.
type MessageType string

const (
	MessageTypeImportRequested MessageType = "import.requested"
	MessageTypeImportCompleted MessageType = "import.completed"
)

// Message — JSON-конверт всех сообщений.
type Message struct {
	ID        string          `json:"id"`
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage упаковывает payload в конверт с новым ID.
func NewMessage(msgType MessageType, payload any) (*Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	return &Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		Payload:   raw,
		Timestamp: time.Now().UTC(),
	}, nil
}

// ImportRequestedPayload — запрос на импорт.
type ImportRequestedPayload struct {
	Filename string `json:"filename"`
}

// ImportCompletedPayload — итог импорта.
type ImportCompletedPayload struct {
	ImportID   uuid.UUID `json:"import_id"`
	MessageID  string    `json:"message_id,omitempty"`
	Filename   string    `json:"filename"`
	Status     string    `json:"status"` // SUCCEEDED или FAILED
	Stage      string    `json:"stage,omitempty"`
	Error      string    `json:"error,omitempty"`
	Categories int       `json:"categories"`
}

// Publisher публикует сообщения импорта.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{conn: conn, logger: logger}
}

// Publish отправляет msg в exchange с ключом routingKey.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(ctx, string(exchange), string(routingKey), false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    msg.ID,
			Type:         string(msg.Type),
			Timestamp:    msg.Timestamp,
			Body:         body,
		})
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)
		return nil
	})
}

// PublishImportRequested ставит импорт файла в очередь.
// Возвращает ID сообщения. Потребитель: importer-worker.
func (p *Publisher) PublishImportRequested(ctx context.Context, filename string) (string, error) {
	msg, err := NewMessage(MessageTypeImportRequested, ImportRequestedPayload{Filename: filename})
	if err != nil {
		return "", err
	}

	if err := p.Publish(ctx, ExchangeImports, RoutingKeyRequested, msg); err != nil {
		return "", err
	}
	return msg.ID, nil
}

// PublishImportCompleted сообщает итог импорта.
func (p *Publisher) PublishImportCompleted(ctx context.Context, payload ImportCompletedPayload) error {
	msg, err := NewMessage(MessageTypeImportCompleted, payload)
	if err != nil {
		return err
	}

	return p.Publish(ctx, ExchangeImports, RoutingKeyCompleted, msg)
}
