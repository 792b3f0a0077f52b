// Importer Scheduler — ставит импорты в очередь по расписанию.
//
// На каждом тике SCHEDULE_CRON публикует import.requested для каждого
// файла из SCHEDULE_FILES. При заданном DATABASE_URL тики выполняет
// только экземпляр, захвативший advisory lock.
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

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Importer/internal/config"
	"github.com/shaiso/Importer/internal/mq"
	"github.com/shaiso/Importer/internal/repo"
	"github.com/shaiso/Importer/internal/scheduler"
	"github.com/shaiso/Importer/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := telemetry.SetupLogger(cfg.Log.Level, cfg.Log.Format)

	if !cfg.Schedule.Enabled() {
		logger.Error("SCHEDULE_CRON is not set, nothing to schedule")
		os.Exit(1)
	}

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

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

	// Лидерство (опционально)
	var leader scheduler.Leader
	if cfg.Database.URL != "" {
		pool, err := repo.NewPool(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		lock := repo.NewAdvisoryLock(pool, repo.SchedulerLockKey)
		defer lock.Release(context.Background())
		leader = lock
	}

	sched, err := scheduler.New(scheduler.Config{
		Cron:      cfg.Schedule.Cron,
		Files:     cfg.Schedule.Files,
		Publisher: mq.NewPublisher(mqConn, logger),
		Leader:    leader,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("invalid schedule", "error", err)
		os.Exit(1)
	}

	if err := sched.Start(ctx); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if !mqConn.IsConnected() {
			http.Error(w, "amqp disconnected", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Schedule.Port),
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

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	logger.Info("importer-scheduler stopped")
}
