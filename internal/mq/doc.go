// Package mq — граница очереди задач импорта (RabbitMQ).
//
// Структура:
//   - connection.go — соединение с heartbeat и автоматическим reconnect
//   - topology.go   — объявление exchange, очередей и bindings
//   - publisher.go  — публикация import.requested / import.completed
//   - consumer.go   — потребление с ручным ack и ограничением prefetch
//
// Типы сообщений:
//   - import.requested — запрос на импорт файла {filename}
//   - import.completed — итог импорта (успех или этап и текст ошибки)
//
// Exchanges:
//   - importer.imports — запросы и итоги импортов
//   - importer.dlq     — dead letter (сообщения, которые не удалось обработать)
package mq
