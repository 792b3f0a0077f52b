package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Значения по умолчанию.
var defaults = map[string]any{
	"api.addr":       "http://127.0.0.1:8081",
	"api.timeout":    "30s",
	"api.max_bytes":  64 << 20,
	"amqp.addr":      "amqp://127.0.0.1:5672",
	"amqp.prefetch":  2,
	"amqp.heartbeat": "10s",
	"database.url":   "",
	"import.sheet":   "TO TRIM DOWN_Categories_v2_Tier",
	"import.timeout": "2m",
	"worker.port":    8082,
	"schedule.cron":  "",
	"schedule.files": "",
	"schedule.port":  8083,
	"log.level":      "info",
	"log.format":     "json",
}

// Load загружает конфигурацию из .env и окружения.
func Load() (*Config, error) {
	// .env необязателен
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	return load(viper.New())
}

// load читает конфигурацию через v. Отдельно от Load для тестов.
func load(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// api.addr → API_ADDR
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.normalize()

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// normalize приводит значения к каноничному виду.
func (c *Config) normalize() {
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.Schedule.Cron = strings.TrimSpace(c.Schedule.Cron)

	// SCHEDULE_FILES="a.xlsx, b.xlsx" — убираем пробелы и пустые элементы.
	// Пустой список остаётся nil, иначе required_with его не отклонит.
	var files []string
	for _, f := range c.Schedule.Files {
		if f = strings.TrimSpace(f); f != "" {
			files = append(files, f)
		}
	}
	c.Schedule.Files = files
}
