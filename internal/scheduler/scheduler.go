package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrNoFiles — расписание задано без файлов.
var ErrNoFiles = errors.New("no files to schedule")

// Publisher ставит импорт в очередь. Реализация: *mq.Publisher.
type Publisher interface {
	PublishImportRequested(ctx context.Context, filename string) (string, error)
}

// Leader решает, может ли этот экземпляр выполнять тик.
// Реализация: *repo.AdvisoryLock.
type Leader interface {
	TryAcquire(ctx context.Context) (bool, error)
}

// Config — конфигурация Scheduler.
type Config struct {
	Cron      string   // cron-выражение
	Files     []string // файлы, импортируемые на каждом тике
	Publisher Publisher

	// Leader (опционально). Без него тики выполняет каждый экземпляр.
	Leader Leader

	Logger *slog.Logger
}

// Scheduler публикует import.requested по расписанию.
type Scheduler struct {
	expr      string
	files     []string
	publisher Publisher
	leader    Leader
	logger    *slog.Logger

	cron *cron.Cron
}

// New создаёт Scheduler, проверяя выражение и список файлов.
func New(cfg Config) (*Scheduler, error) {
	if err := ValidateCronExpr(cfg.Cron); err != nil {
		return nil, err
	}
	if len(cfg.Files) == 0 {
		return nil, ErrNoFiles
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		expr:      cfg.Cron,
		files:     cfg.Files,
		publisher: cfg.Publisher,
		leader:    cfg.Leader,
		logger:    logger,
	}, nil
}

// Tick публикует запросы для всех файлов. Возвращает число опубликованных.
func (s *Scheduler) Tick(ctx context.Context) int {
	if s.leader != nil {
		ok, err := s.leader.TryAcquire(ctx)
		if err != nil {
			s.logger.Warn("leader check failed, skipping tick", "error", err)
			return 0
		}
		if !ok {
			s.logger.Debug("not a leader, skipping tick")
			return 0
		}
	}

	published := 0

	for _, filename := range s.files {
		if ctx.Err() != nil {
			break
		}

		msgID, err := s.publisher.PublishImportRequested(ctx, filename)
		if err != nil {
			s.logger.Error("failed to enqueue import", "filename", filename, "error", err)
			continue
		}

		published++
		s.logger.Info("import enqueued", "filename", filename, "message_id", msgID)
	}

	return published
}

// Start запускает cron. Тики выполняются до Stop или отмены ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	s.cron = cron.New(cron.WithParser(cronParser))

	_, err := s.cron.AddFunc(s.expr, func() {
		s.Tick(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()

	next, _ := NextRun(s.expr, time.Now())
	s.logger.Info("scheduler started",
		"cron", s.expr,
		"files", len(s.files),
		"next_run", next,
	)
	return nil
}

// Stop останавливает cron и ждёт текущий тик.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}
