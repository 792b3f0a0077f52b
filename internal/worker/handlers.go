package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shaiso/Importer/internal/domain"
	"github.com/shaiso/Importer/internal/importer"
	"github.com/shaiso/Importer/internal/mq"
	"github.com/shaiso/Importer/internal/telemetry"
)

// HandleMessage обрабатывает одно сообщение из очереди imports.
// Ошибка возвращается только для сообщений, которые нельзя обработать.
func (w *Worker) HandleMessage(ctx context.Context, msg *mq.Message) error {
	if msg.Type != mq.MessageTypeImportRequested {
		return fmt.Errorf("%w: %s", ErrUnexpectedMessage, msg.Type)
	}

	payload, err := mq.ParsePayload[mq.ImportRequestedPayload](msg)
	if err != nil {
		return err
	}

	// имя передаётся дальше как есть; отклоняем только пустое
	if strings.TrimSpace(payload.Filename) == "" {
		return ErrEmptyFilename
	}

	// начатый импорт доводится до конца и при остановке воркера
	w.Process(context.WithoutCancel(ctx), payload.Filename, msg.ID)
	return nil
}

// Process выполняет импорт файла и возвращает его итог.
// Ошибки истории и публикации логируются и на итог не влияют.
func (w *Worker) Process(ctx context.Context, filename, messageID string) *domain.Import {
	imp := domain.NewImport(filename, messageID)
	logger := telemetry.WithFilename(telemetry.WithImportID(w.logger, imp.ID.String()), filename)

	if w.history != nil {
		if err := w.history.Create(ctx, imp); err != nil {
			logger.Warn("failed to record import", "error", err)
		}
	}

	imp.MarkRunning()
	w.record(ctx, imp, logger)
	logger.Info("import started", "message_id", messageID)

	runCtx, cancel := context.WithTimeout(telemetry.WithLogger(ctx, logger), w.taskTimeout)
	forest, err := w.importer.Run(runCtx, filename)
	if err == nil && w.sink != nil {
		if sinkErr := w.sink.Consume(runCtx, filename, forest); sinkErr != nil {
			err = &importer.StageError{Stage: domain.StageSink, Err: sinkErr}
		}
	}
	cancel()

	if err != nil {
		imp.MarkFailed(importer.StageOf(err), err.Error())
		w.metrics.ObserveFailure(string(imp.Stage), imp.Duration())
		logger.Warn("import failed", "stage", imp.Stage, "error", err)
	} else {
		imp.MarkSucceeded(forest.Len())
		w.metrics.ObserveSuccess(imp.Categories, imp.Duration())
		logger.Info("import succeeded",
			"categories", imp.Categories,
			"roots", len(forest.Roots()),
			"max_level", forest.MaxLevel(),
			"duration", imp.Duration(),
		)
	}

	w.record(ctx, imp, logger)
	w.publishCompletion(ctx, imp, logger)

	return imp
}

// record сохраняет состояние импорта в журнал и историю.
func (w *Worker) record(ctx context.Context, imp *domain.Import, logger *slog.Logger) {
	w.recent.put(*imp)

	if w.history == nil {
		return
	}
	if err := w.history.Update(ctx, imp); err != nil {
		logger.Warn("failed to update import history", "status", imp.Status, "error", err)
	}
}

// publishCompletion публикует import.completed.
func (w *Worker) publishCompletion(ctx context.Context, imp *domain.Import, logger *slog.Logger) {
	if w.publisher == nil {
		return
	}

	payload := mq.ImportCompletedPayload{
		ImportID:   imp.ID,
		MessageID:  imp.MessageID,
		Filename:   imp.Filename,
		Status:     string(imp.Status),
		Stage:      string(imp.Stage),
		Error:      imp.Error,
		Categories: imp.Categories,
	}

	if err := w.publisher.PublishImportCompleted(ctx, payload); err != nil {
		// итог уже записан в историю, повторять импорт не нужно
		logger.Warn("failed to publish import.completed", "error", err)
	}
}

// MeteredFetcher учитывает размер скачанных файлов в метриках.
type MeteredFetcher struct {
	Fetcher importer.Fetcher
	Metrics *telemetry.Metrics
}

// Fetch вызывает Fetcher и учитывает размер ответа.
func (f MeteredFetcher) Fetch(ctx context.Context, filename string) ([]byte, error) {
	data, err := f.Fetcher.Fetch(ctx, filename)
	if err != nil {
		return nil, err
	}

	f.Metrics.ObserveFetch(len(data))
	return data, nil
}
