// Importer Worker — импортирует категории из xlsx по запросам из очереди.
//
// Worker:
//   - Получает import.requested из RabbitMQ
//   - Скачивает файл, строит дерево категорий
//   - Пишет историю импортов (если задан DATABASE_URL)
//   - Публикует import.completed
//
// Workers масштабируются горизонтально.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Importer/internal/config"
	"github.com/shaiso/Importer/internal/fetcher"
	"github.com/shaiso/Importer/internal/importer"
	"github.com/shaiso/Importer/internal/mq"
	"github.com/shaiso/Importer/internal/repo"
	"github.com/shaiso/Importer/internal/telemetry"
	"github.com/shaiso/Importer/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := telemetry.SetupLogger(cfg.Log.Level, cfg.Log.Format)
	logger.Info("starting importer-worker", "api_addr", cfg.API.Addr, "sheet", cfg.Import.Sheet)

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)

	// История импортов (опционально)
	var history worker.History
	if cfg.Database.URL != "" {
		pool, err := repo.NewPool(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := repo.Migrate(ctx, pool); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		history = repo.NewImportRepo(pool)
		logger.Info("database connected, import history enabled")
	}

	// RabbitMQ
	mqConn, err := mq.NewConnection(mq.ConnectionConfig{
		URL:       cfg.AMQP.Addr,
		Heartbeat: cfg.AMQP.Heartbeat,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer mqConn.Close()

	if err := mq.SetupTopology(ctx, mqConn); err != nil {
		logger.Error("failed to setup topology", "error", err)
		os.Exit(1)
	}
	logger.Debug(mq.TopologyInfo())

	imp := importer.New(importer.Config{
		Fetcher: worker.MeteredFetcher{
			Fetcher: fetcher.New(fetcher.Config{
				BaseURL:  cfg.API.Addr,
				Timeout:  cfg.API.Timeout,
				MaxBytes: cfg.API.MaxBytes,
				Logger:   logger,
			}),
			Metrics: metrics,
		},
		Sheet: cfg.Import.Sheet,
	})

	w := worker.New(worker.Config{
		Importer:    imp,
		Conn:        mqConn,
		Publisher:   mq.NewPublisher(mqConn, logger),
		History:     history,
		Metrics:     metrics,
		Prefetch:    cfg.AMQP.Prefetch,
		TaskTimeout: cfg.Import.Timeout,
		Logger:      logger,
	})

	if err := w.Start(ctx); err != nil {
		logger.Error("failed to start worker", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz, /imports + /metrics
	mux := http.NewServeMux()
	mux.Handle("/", w.Handler())
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Worker.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	w.Stop()
	logger.Info("importer-worker stopped")
}
