package fetcher

import (
	"errors"
	"fmt"
	"net/http"
)

// Ошибки получения файла.
var (
	// ErrFetch — файл не удалось получить (сеть, статус, размер).
	ErrFetch = errors.New("fetch failed")

	// ErrValidation — файл получен, но не прошёл проверку типа.
	ErrValidation = errors.New("validation failed")

	// ErrMissingContentType — в ответе нет заголовка Content-Type.
	ErrMissingContentType = fmt.Errorf("%w: missing content type", ErrValidation)

	// ErrUnsupportedFileType — Content-Type не соответствует xlsx.
	ErrUnsupportedFileType = fmt.Errorf("%w: unsupported file type", ErrValidation)

	// ErrFileTooLarge — тело ответа превышает лимит.
	ErrFileTooLarge = fmt.Errorf("%w: file too large", ErrFetch)
)

// StatusError — файловый сервис ответил не-2xx статусом.
type StatusError struct {
	StatusCode int
	URL        string
}

// Error реализует интерфейс error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Is позволяет проверять StatusError через errors.Is(err, ErrFetch).
func (e *StatusError) Is(target error) bool {
	return target == ErrFetch
}
