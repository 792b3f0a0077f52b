package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/Importer/internal/domain"
	"github.com/shaiso/Importer/internal/importer"
	"github.com/shaiso/Importer/internal/mq"
	"github.com/shaiso/Importer/internal/telemetry"
)

// Значения по умолчанию.
const (
	defaultPrefetch    = 2
	defaultTaskTimeout = 2 * time.Minute
	defaultRecentSize  = 50
)

// Runner выполняет конвейер импорта. Реализация: *importer.Importer.
type Runner interface {
	Run(ctx context.Context, filename string) (domain.Forest, error)
}

// Publisher сообщает итоги импортов. Реализация: *mq.Publisher.
type Publisher interface {
	PublishImportCompleted(ctx context.Context, payload mq.ImportCompletedPayload) error
}

// History — хранилище истории импортов. Реализация: *repo.ImportRepo.
type History interface {
	Create(ctx context.Context, imp *domain.Import) error
	Update(ctx context.Context, imp *domain.Import) error
	ListRecent(ctx context.Context, limit int) ([]domain.Import, error)
}

// Config — конфигурация Worker.
type Config struct {
	// Importer — конвейер импорта (обязательно).
	Importer Runner

	// MQ. Без Conn воркер не читает очередь, но Process работает.
	Conn      *mq.Connection
	Publisher Publisher

	// History — история импортов (опционально).
	History History

	// Sink — получатель построенного леса (опционально).
	Sink importer.Sink

	// Metrics (опционально).
	Metrics *telemetry.Metrics

	Prefetch    int           // одновременных импортов (default: 2)
	TaskTimeout time.Duration // таймаут одного импорта (default: 2m)

	// Logger
	Logger *slog.Logger
}

// Worker обрабатывает сообщения import.requested.
type Worker struct {
	importer  Runner
	conn      *mq.Connection
	publisher Publisher
	history   History
	sink      importer.Sink
	metrics   *telemetry.Metrics

	prefetch    int
	taskTimeout time.Duration
	recent      *recentImports

	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// New создаёт новый Worker.
func New(cfg Config) *Worker {
	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = defaultPrefetch
	}

	taskTimeout := cfg.TaskTimeout
	if taskTimeout <= 0 {
		taskTimeout = defaultTaskTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Worker{
		importer:    cfg.Importer,
		conn:        cfg.Conn,
		publisher:   cfg.Publisher,
		history:     cfg.History,
		sink:        cfg.Sink,
		metrics:     cfg.Metrics,
		prefetch:    prefetch,
		taskTimeout: taskTimeout,
		recent:      newRecentImports(defaultRecentSize),
		logger:      logger,
	}
}

// Start запускает consumer очереди imports.
func (w *Worker) Start(ctx context.Context) error {
	if w.conn == nil {
		return ErrNoConnection
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel

	consumer := mq.NewConsumer(w.conn, mq.ConsumerConfig{
		Queue:    mq.QueueImports,
		Handler:  w.HandleMessage,
		Prefetch: w.prefetch,
		Logger:   w.logger,
	})

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("import consumer error", "error", err)
		}
	}()

	w.logger.Info("worker started",
		"prefetch", w.prefetch,
		"task_timeout", w.taskTimeout,
		"history", w.history != nil,
	)
	return nil
}

// Stop останавливает consumer и дожидается текущих импортов.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker...")

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	w.wg.Wait()

	w.logger.Info("worker stopped")
}
