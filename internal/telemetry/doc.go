// Package telemetry обеспечивает наблюдаемость сервисов импорта.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики импорта
//
// Уровень и формат логов приходят из config.LogConfig;
// метрики экспортируются воркером на /metrics.
package telemetry
