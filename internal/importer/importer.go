// Package importer связывает этапы импорта категорий в один вызов.
//
// Run(ctx, filename) последовательно выполняет:
//
//  1. fetch  — fetcher скачивает файл и проверяет Content-Type
//  2. decode — workbook открывает документ и находит нужный лист
//  3. build  — tree строит лес категорий по отступам
//
// Первая ошибка прерывает конвейер и возвращается как *StageError.
// Между этапами проверяется ctx; глобального состояния нет, поэтому
// прерванный импорт ничего не оставляет после себя.
//
// Повторные попытки, подтверждение сообщений и маршрутизация —
// забота вызывающей стороны (worker).
package importer

import (
	"context"
	"log/slog"
	"time"

	"github.com/shaiso/Importer/internal/domain"
	"github.com/shaiso/Importer/internal/telemetry"
	"github.com/shaiso/Importer/internal/tree"
	"github.com/shaiso/Importer/internal/workbook"
)

// DefaultSheet — лист с категориями в исходном документе.
const DefaultSheet = "TO TRIM DOWN_Categories_v2_Tier"

// Fetcher получает байты файла по имени. Реализация: *fetcher.Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, filename string) ([]byte, error)
}

// Sink получает построенный лес категорий.
//
// Хранение и дедупликация категорий не реализованы: Sink — точка
// подключения будущего хранилища. По умолчанию лес отбрасывается.
type Sink interface {
	Consume(ctx context.Context, filename string, forest domain.Forest) error
}

// SinkFunc адаптирует функцию к интерфейсу Sink.
type SinkFunc func(ctx context.Context, filename string, forest domain.Forest) error

// Consume вызывает f.
func (f SinkFunc) Consume(ctx context.Context, filename string, forest domain.Forest) error {
	return f(ctx, filename, forest)
}

// Config — конфигурация Importer.
type Config struct {
	// Fetcher — источник файлов (обязательно).
	Fetcher Fetcher

	// Sheet — имя листа с категориями (default: DefaultSheet).
	Sheet string

	// Open — открытие документа (default: workbook.Open).
	Open func(data []byte) (*workbook.Workbook, error)

	// Logger (опционально). Без него берётся логгер из ctx
	// (telemetry.WithLogger), иначе slog.Default().
	Logger *slog.Logger
}

// Importer выполняет конвейер fetch → decode → build.
// Безопасен для параллельного использования: состояние живёт внутри Run.
type Importer struct {
	fetcher Fetcher
	sheet   string
	open    func(data []byte) (*workbook.Workbook, error)
	logger  *slog.Logger
}

// New создаёт новый Importer.
func New(cfg Config) *Importer {
	sheet := cfg.Sheet
	if sheet == "" {
		sheet = DefaultSheet
	}

	open := cfg.Open
	if open == nil {
		open = workbook.Open
	}

	return &Importer{
		fetcher: cfg.Fetcher,
		sheet:   sheet,
		open:    open,
		logger:  cfg.Logger,
	}
}

// Sheet возвращает имя листа, из которого строится дерево.
func (i *Importer) Sheet() string {
	return i.sheet
}

// Run импортирует категории из файла filename.
func (i *Importer) Run(ctx context.Context, filename string) (domain.Forest, error) {
	logger := i.logger
	if logger == nil {
		logger = telemetry.FromContext(ctx)
	}
	logger = logger.With("sheet", i.sheet)
	start := time.Now()

	// 1. Fetch
	data, err := i.fetcher.Fetch(ctx, filename)
	if err != nil {
		return nil, stageError(domain.StageFetch, err)
	}
	logger.Debug("file fetched", "bytes", len(data))

	// Отмена между этапами приписывается этапу, который не успел начаться
	if err := ctx.Err(); err != nil {
		return nil, stageError(domain.StageDecode, err)
	}

	// 2. Decode
	wb, err := i.open(data)
	if err != nil {
		return nil, stageError(domain.StageDecode, err)
	}
	defer wb.Close()

	rows, err := wb.Worksheet(i.sheet)
	if err != nil {
		return nil, stageError(domain.StageDecode, err)
	}
	defer rows.Close()

	if err := ctx.Err(); err != nil {
		return nil, stageError(domain.StageBuild, err)
	}

	// 3. Build — падает только если лист не дочитался
	forest, err := tree.BuildRows(rows)
	if err != nil {
		return nil, stageError(domain.StageDecode, err)
	}

	logger.Debug("category tree built",
		"categories", forest.Len(),
		"max_level", forest.MaxLevel(),
		"duration", time.Since(start),
	)

	return forest, nil
}
