// Package fetcher скачивает файлы таблиц из файлового сервиса.
//
// Fetcher делает ровно один GET на {BaseURL}/files/{filename},
// проверяет Content-Type и возвращает тело целиком в памяти.
// На диск ничего не пишется: байты сразу уходят в workbook.Open.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ContentTypeXLSX — MIME-тип xlsx-документа.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Значения по умолчанию.
const (
	DefaultBaseURL  = "http://127.0.0.1:8081"
	DefaultTimeout  = 30 * time.Second
	DefaultMaxBytes = 64 << 20
)

// Config — конфигурация Fetcher.
type Config struct {
	// BaseURL — адрес файлового сервиса (default: http://127.0.0.1:8081).
	// Адрес без схемы считается http.
	BaseURL string

	// Timeout — таймаут одного запроса (default: 30s).
	Timeout time.Duration

	// MaxBytes — максимальный размер файла (default: 64 MiB).
	MaxBytes int64

	// Client — HTTP-клиент (опционально).
	Client *http.Client

	// Logger (опционально).
	Logger *slog.Logger
}

// Fetcher получает сырые байты файла из файлового сервиса.
type Fetcher struct {
	baseURL  string
	timeout  time.Duration
	maxBytes int64
	client   *http.Client
	logger   *slog.Logger
}

// New создаёт новый Fetcher.
func New(cfg Config) *Fetcher {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Fetcher{
		baseURL:  strings.TrimRight(baseURL, "/"),
		timeout:  timeout,
		maxBytes: maxBytes,
		client:   client,
		logger:   logger,
	}
}

// URL возвращает адрес файла в файловом сервисе.
//
// Имя файла экранируется целиком как один сегмент пути,
// поэтому "/" в имени не выводит запрос за пределы /files.
func (f *Fetcher) URL(filename string) (string, error) {
	switch filename {
	case "", ".", "..":
		return "", fmt.Errorf("%w: invalid filename %q", ErrFetch, filename)
	}
	return f.baseURL + "/files/" + url.PathEscape(filename), nil
}

// Fetch скачивает файл и проверяет, что это xlsx.
//
// Порядок проверок:
//  1. Транспортная ошибка → ErrFetch
//  2. Нет Content-Type → ErrMissingContentType
//  3. Content-Type не xlsx → ErrUnsupportedFileType (независимо от статуса)
//  4. Статус не 2xx → *StatusError
//  5. Тело больше MaxBytes → ErrFileTooLarge
func (f *Fetcher) Fetch(ctx context.Context, filename string) ([]byte, error) {
	target, err := f.URL(filename)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", ContentTypeXLSX)

	f.logger.Debug("downloading file", "filename", filename, "url", target)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if err := checkContentType(resp.Header.Get("Content-Type")); err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: target}
	}

	// Читаем на байт больше лимита, чтобы отличить "ровно лимит" от "больше"
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrFetch, err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, f.maxBytes)
	}

	f.logger.Debug("file downloaded", "filename", filename, "bytes", len(body))

	return body, nil
}

// checkContentType проверяет, что Content-Type содержит MIME-тип xlsx.
// Параметры (charset и т.п.) допускаются.
func checkContentType(contentType string) error {
	if strings.TrimSpace(contentType) == "" {
		return ErrMissingContentType
	}
	if !strings.Contains(strings.ToLower(contentType), ContentTypeXLSX) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFileType, contentType)
	}
	return nil
}
