package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — имя обменника.
type Exchange string

// Queue — имя очереди.
type Queue string

// RoutingKey — ключ маршрутизации.
type RoutingKey string

const (
	ExchangeImports Exchange = "importer.imports"
	ExchangeDLQ     Exchange = "importer.dlq"
)

const (
	QueueImports          Queue = "imports"
	QueueImportsCompleted Queue = "imports.completed"
	QueueDLQImports       Queue = "dlq.imports"
)

const (
	RoutingKeyRequested  RoutingKey = "requested"
	RoutingKeyCompleted  RoutingKey = "completed"
	RoutingKeyDLQImports RoutingKey = "imports"
)

// queueSpec описывает очередь и её привязку.
type queueSpec struct {
	name       Queue
	exchange   Exchange
	routingKey RoutingKey
	args       amqp.Table
}

// topology — все очереди сервиса.
var topology = []queueSpec{
	// imports — запросы; отклонённые сообщения уходят в DLQ
	{
		name:       QueueImports,
		exchange:   ExchangeImports,
		routingKey: RoutingKeyRequested,
		args: amqp.Table{
			"x-dead-letter-exchange":    string(ExchangeDLQ),
			"x-dead-letter-routing-key": string(RoutingKeyDLQImports),
		},
	},
	{name: QueueImportsCompleted, exchange: ExchangeImports, routingKey: RoutingKeyCompleted},
	{name: QueueDLQImports, exchange: ExchangeDLQ, routingKey: RoutingKeyDLQImports},
}

// SetupTopology объявляет exchanges, очереди и bindings. Идемпотентна.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		for _, ex := range []Exchange{ExchangeImports, ExchangeDLQ} {
			err := ch.ExchangeDeclare(
				string(ex), // name
				"direct",   // type
				true,       // durable
				false,      // auto-deleted
				false,      // internal
				false,      // no-wait
				nil,        // arguments
			)
			if err != nil {
				return fmt.Errorf("declare exchange %s: %w", ex, err)
			}
		}

		for _, q := range topology {
			if _, err := ch.QueueDeclare(string(q.name), true, false, false, false, q.args); err != nil {
				return fmt.Errorf("declare queue %s: %w", q.name, err)
			}
			if err := ch.QueueBind(string(q.name), string(q.routingKey), string(q.exchange), false, nil); err != nil {
				return fmt.Errorf("bind queue %s to %s: %w", q.name, q.exchange, err)
			}
		}

		return nil
	})
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  Importer RabbitMQ Topology:

    importer.imports (direct)
    ├── imports [routing: requested]
    │       Consumer: importer-worker
    │       DLQ: dlq.imports
    └── imports.completed [routing: completed]
            Consumer: downstream

    importer.dlq (direct)
    └── dlq.imports [routing: imports]
            Manual processing
`
}
