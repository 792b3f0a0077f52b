package worker

import "errors"

// Ошибки воркера.
var (
	// ErrUnexpectedMessage — в очередь пришло сообщение другого типа.
	ErrUnexpectedMessage = errors.New("unexpected message type")

	// ErrEmptyFilename — в запросе не указан файл.
	ErrEmptyFilename = errors.New("empty filename")

	// ErrNoConnection — воркер запущен без соединения с брокером.
	ErrNoConnection = errors.New("no amqp connection")
)
