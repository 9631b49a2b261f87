package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"MomentumScreener/internal/collector"
	"MomentumScreener/internal/config"
	"MomentumScreener/internal/logging"
	"MomentumScreener/internal/model"
	"MomentumScreener/internal/notifier"
	"MomentumScreener/internal/pipeline"
	"MomentumScreener/internal/recorder"
	"MomentumScreener/internal/report"
	"MomentumScreener/internal/scheduler"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("config validation", zap.Error(err))
	}

	// Init fetcher
	var fetcher collector.Fetcher
	if cfg.UseAlpaca() {
		fetcher = collector.NewAlpacaFetcher(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.BaseURL)
	} else {
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	logger.Info("data source", zap.String("name", fetcher.Name()))

	col := collector.NewCollector(fetcher, cfg.Fetch.BatchSize, cfg.Fetch.Pause, logger)
	writer := report.NewWriter(cfg.Output.Dir, cfg.Output.Excel, logger)
	p := pipeline.New(col, writer, pipeline.Options{
		LookbackDays:   cfg.Fetch.LookbackDays,
		SpikeThreshold: cfg.Analysis.SpikeThreshold,
	}, logger)

	// Init recorder
	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.Warn("init sqlite recorder failed, using noop", zap.Error(err))
		} else {
			rec = sr
		}
	}
	defer rec.Close()

	// Init Telegram notifier
	var tn *notifier.TelegramNotifier
	var n scheduler.Notifier
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger)
		n = tn
	}

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(ctx, p, rec, n, cfg.Input.TickersFile, cfg.Telegram.TopN, logger)

	if cfg.Schedule.Cron == "" {
		runOnce(ctx, sched, logger)
		return
	}

	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		logger.Fatal("register cron task", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		logger.Info("telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		logger.Info("RUN_ON_START enabled, running now")
		go runOnce(ctx, sched, logger)
	}

	logger.Info("momentum screener is running, press Ctrl+C to stop", zap.String("cron", cfg.Schedule.Cron))
	<-ctx.Done()
	logger.Info("shutdown signal received, stopping")
}

func runOnce(ctx context.Context, sched *scheduler.Scheduler, logger *zap.Logger) {
	res, err := sched.RunNow(ctx, model.TriggerStartup)
	switch {
	case errors.Is(err, pipeline.ErrNoData):
		// already reported by the scheduler
	case err != nil:
		logger.Error("run failed", zap.Error(err))
	default:
		for _, f := range res.Files {
			logger.Info("output", zap.String("file", f))
		}
	}
}
