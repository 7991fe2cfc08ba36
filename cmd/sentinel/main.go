package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TrendSignal/internal/advisor"
	"TrendSignal/internal/api"
	"TrendSignal/internal/collector"
	"TrendSignal/internal/config"
	"TrendSignal/internal/logger"
	"TrendSignal/internal/metrics"
	"TrendSignal/internal/notifier"
	"TrendSignal/internal/recorder"
	"TrendSignal/internal/scheduler"
	"TrendSignal/internal/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic("load config: " + err.Error())
	}

	log := logger.Must(cfg.Log.Level, cfg.Log.Pretty)
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("config validation", zap.Error(err))
	}
	log.Info("TrendSignal starting", zap.String("config", cfgPath))

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := tracing.Init(cfg.Tracing.Enabled)
	if err != nil {
		log.Fatal("init tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	m := metrics.New()

	fetcher := collector.NewFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	log.Info("data source selected", zap.String("source", fetcher.Name()))
	col := collector.NewCollector(fetcher, cfg.DataSource.Timeout, m, log.Named("collector"))
	adv := advisor.New(cfg, col, tracer, m, log.Named("advisor"))

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log.Named("recorder"))
		if err != nil {
			log.Warn("init sqlite recorder failed, using noop", zap.Error(err))
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Telegram is optional
	var tn *notifier.TelegramNotifier
	var n notifier.Notifier
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log.Named("telegram"))
		n = tn
	} else {
		log.Info("telegram disabled: no bot token")
	}

	sched := scheduler.NewScheduler(ctx, adv, n, rec, log.Named("scheduler"))
	if len(cfg.Schedule.Watchlist) > 0 {
		if err := sched.RegisterWatch(cfg.Schedule.WatchCron); err != nil {
			log.Fatal("register cron tasks", zap.Error(err))
		}
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info("telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info("RUN_ON_START enabled, evaluating watchlist now")
		go sched.RunWatchNow()
	}

	// HTTP API
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(tracing.ServiceName))
	api.New(tracer, adv, m, log.Named("api")).RegisterRoutes(r)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: r,
	}
	log.Info("http server listening", zap.String("addr", cfg.Server.Addr))
	errCh := serveHTTP(srv)

	// Wait for shutdown signal or a listener failure
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	if err := awaitStop(sigCh, errCh); err != nil {
		log.Error("http server failed, stopping", zap.Error(err))
	} else {
		log.Info("shutdown signal received, stopping")
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("TrendSignal stopped")
}

// serveHTTP runs srv in the background. A listener failure other than a
// normal shutdown is delivered on the returned channel.
func serveHTTP(srv *http.Server) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return errCh
}

// awaitStop blocks until a signal arrives (nil) or the server fails (its error).
func awaitStop(sigCh <-chan os.Signal, errCh <-chan error) error {
	select {
	case <-sigCh:
		return nil
	case err := <-errCh:
		return err
	}
}
