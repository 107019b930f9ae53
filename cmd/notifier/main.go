package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"trainflow/config"
	"trainflow/db"
	"trainflow/document"
	"trainflow/email"
	"trainflow/notify"
	"trainflow/notifylog"
	"trainflow/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal("bootstrap database pool", zap.Error(err))
	}
	defer pool.Close()

	var sender email.Sender
	if cfg.Email.SendgridKey != "" {
		sender = email.NewSendgridSender(cfg.Email.SendgridKey, cfg.Email.FromName, cfg.Email.FromAddress, cfg.Email.SubjectTag)
		logger.Info("email transport: sendgrid", zap.String("from", cfg.Email.FromAddress))
	} else {
		sender = email.NewConsoleSender(logger)
		logger.Info("email transport: console (no sendgrid key configured)")
	}

	logStore := notifylog.NewStore(pool)
	runner := notify.NewRunner(
		session.NewRepository(pool),
		logStore,
		notify.NewDispatcher(sender, logStore),
		notify.DefaultRules(document.NewAttendanceSheet(), session.IsLogisticsStrictlyComplete),
		logger,
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	srv := &http.Server{Addr: cfg.Ops.Addr, Handler: mux}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("ops listener starting", zap.String("addr", cfg.Ops.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Ops.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return runSchedule(gctx, cfg.Cycle, runner, logger)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("notifier exited", zap.Error(err))
	}
	logger.Info("notifier stopped")
}

// runSchedule fires one cycle per day at the configured hour. A failed cycle
// (session source unreachable) is logged and retried at the next tick; the
// rules themselves are idempotent so an extra run is always safe.
func runSchedule(ctx context.Context, cfg config.CycleConfig, runner *notify.Runner, logger *zap.Logger) error {
	if cfg.RunOnStart {
		if err := runner.RunDailyCycle(ctx); err != nil {
			logger.Error("startup cycle failed", zap.Error(err))
		}
	}

	for {
		delay := untilNextRun(time.Now(), cfg.Hour)
		logger.Info("next cycle scheduled", zap.Duration("in", delay))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		if err := runner.RunDailyCycle(ctx); err != nil {
			logger.Error("cycle failed", zap.Error(err))
		}
	}
}

func untilNextRun(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
