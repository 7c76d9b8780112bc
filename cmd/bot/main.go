package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"CoinSentinel/internal/advisor"
	"CoinSentinel/internal/config"
	"CoinSentinel/internal/exchange"
	"CoinSentinel/internal/recorder"
	"CoinSentinel/internal/scheduler"
	"CoinSentinel/internal/trader"
)

func main() {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Info("CoinSentinel starting")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		sugar.Fatalw("load config", "error", err)
	}
	if err := cfg.Validate(); err != nil {
		sugar.Fatalw("config validation", "error", err)
	}

	// Exchange client serves both market data and order placement.
	upbit := exchange.NewUpbitClient(cfg.Exchange.BaseURL, cfg.Exchange.AccessKey, cfg.Exchange.SecretKey)
	sugar.Infow("exchange ready", "source", upbit.Name(), "market", cfg.Exchange.Market)

	// Advisor: signal-only operation without an API key.
	var adv advisor.Advisor
	if cfg.OpenAI.APIKey != "" {
		adv = advisor.NewOpenAIAdvisor(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model)
	} else {
		sugar.Warn("no OpenAI API key configured, trading on the mechanical signal only")
		adv = advisor.NewNoopAdvisor()
	}

	// Recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			sugar.Warnw("init sqlite recorder failed, using noop", "error", err)
			rec = recorder.NewNoopRecorder()
		} else {
			sugar.Infow("sqlite recorder opened", "path", cfg.Database.SQLitePath)
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Balances are informational only; the decision path never reads them.
	if balances, err := upbit.Balances(ctx); err != nil {
		sugar.Warnw("balance lookup failed", "error", err)
	} else {
		for _, b := range balances {
			sugar.Infow("balance", "currency", b.Currency, "amount", b.Balance, "locked", b.Locked)
		}
	}

	tr := trader.New(
		upbit, upbit, adv, rec, sugar,
		cfg.Exchange.Market, cfg.Trade.Interval, cfg.Trade.BarCount, cfg.Trade.Volume,
	)

	sched := scheduler.NewScheduler(ctx, tr, sugar)
	if err := sched.RegisterAll(cfg.Schedule.TriggerTimes); err != nil {
		sugar.Fatalw("register triggers", "error", err)
	}
	sched.Start()

	if cfg.Schedule.RunOnStart {
		sugar.Info("run_on_start enabled, executing one cycle now")
		sched.RunNow()
	}

	sugar.Infow("CoinSentinel is running", "triggers", cfg.Schedule.TriggerTimes)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	// Let an in-flight cycle finish before tearing anything down.
	sugar.Info("shutdown signal received, stopping")
	sched.Stop()
	cancel()
	sugar.Info("CoinSentinel stopped")
}
