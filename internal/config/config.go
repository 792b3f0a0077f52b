// Package config загружает конфигурацию сервисов импорта.
//
// Источники (по возрастанию приоритета):
//   - значения по умолчанию
//   - файл .env в рабочей директории (если есть)
//   - переменные окружения
//
// Ключи конфигурации соответствуют переменным окружения:
// api.addr ↔ API_ADDR, amqp.addr ↔ AMQP_ADDR и т.д.
//
// Config передаётся в конструкторы явно; во время обработки задач
// окружение не читается.
package config

import (
	"time"
)

// Config — конфигурация всех сервисов.
type Config struct {
	API      APIConfig      `mapstructure:"api" validate:"required"`
	AMQP     AMQPConfig     `mapstructure:"amqp" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Import   ImportConfig   `mapstructure:"import" validate:"required"`
	Worker   WorkerConfig   `mapstructure:"worker" validate:"required"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Log      LogConfig      `mapstructure:"log" validate:"required"`
}

// APIConfig — файловый сервис.
type APIConfig struct {
	// Addr — базовый адрес файлового сервиса.
	Addr string `mapstructure:"addr" validate:"required"`

	// Timeout — таймаут скачивания одного файла.
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`

	// MaxBytes — максимальный размер файла.
	MaxBytes int64 `mapstructure:"max_bytes" validate:"gt=0"`
}

// AMQPConfig — брокер сообщений.
type AMQPConfig struct {
	Addr string `mapstructure:"addr" validate:"required,url"`

	// Prefetch — сколько импортов воркер обрабатывает одновременно.
	Prefetch int `mapstructure:"prefetch" validate:"gte=1,lte=64"`

	Heartbeat time.Duration `mapstructure:"heartbeat" validate:"gte=0"`
}

// DatabaseConfig — история импортов. Пустой URL — история не ведётся.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// ImportConfig — параметры конвейера импорта.
type ImportConfig struct {
	// Sheet — имя листа с категориями.
	Sheet string `mapstructure:"sheet" validate:"required,max=31"`

	// Timeout — общий таймаут одного импорта.
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// WorkerConfig — HTTP-порт воркера (/healthz, /metrics, /imports).
type WorkerConfig struct {
	Port int `mapstructure:"port" validate:"gt=0,lt=65536"`
}

// ScheduleConfig — периодический импорт. Пустой Cron — выключен.
type ScheduleConfig struct {
	Cron  string   `mapstructure:"cron"`
	Files []string `mapstructure:"files" validate:"required_with=Cron,dive,required"`

	// Port — HTTP-порт планировщика (/healthz, /metrics).
	Port int `mapstructure:"port" validate:"gt=0,lt=65536"`
}

// LogConfig — логирование.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

// Enabled возвращает true, если расписание настроено.
func (s ScheduleConfig) Enabled() bool {
	return s.Cron != ""
}
