package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/osheron/meritum/internal/bootstrap"
	"github.com/osheron/meritum/internal/bus"
	"github.com/osheron/meritum/internal/catalog"
	"github.com/osheron/meritum/internal/config"
	"github.com/osheron/meritum/internal/event"
	"github.com/osheron/meritum/internal/handler"
	"github.com/osheron/meritum/internal/leaderboard"
	"github.com/osheron/meritum/internal/player"
	"github.com/osheron/meritum/internal/processor"
	"github.com/osheron/meritum/internal/queue"
	"github.com/osheron/meritum/internal/reward"
	"github.com/osheron/meritum/internal/rules"
	"github.com/osheron/meritum/internal/scheduler"
	"github.com/osheron/meritum/internal/server"
	"github.com/osheron/meritum/internal/wallet"
	"github.com/osheron/meritum/internal/worker"
)

// Version is set at build time via -ldflags.
var Version = "dev"

const (
	shutdownTimeout    = 10 * time.Second
	retentionInterval  = time.Hour
	queueDepthInterval = 15 * time.Second
	schedulerWorkers   = 2
	schedulerQueueSize = 16
)

// Exit codes: configuration failures are distinguishable from runtime ones.
const (
	exitConfigError  = 1
	exitRuntimeError = 2
)

func main() {
	cfg, warnings, err := loadConfig()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(exitConfigError)
	}
	if err := run(cfg, warnings); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(exitRuntimeError)
	}
}

func loadConfig() (*config.Config, []string, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	warnings, err := cfg.ValidateWithWarnings()
	if err != nil {
		return nil, nil, err
	}
	return cfg, warnings, nil
}

func run(cfg *config.Config, warnings []string) error {
	logFile, err := bootstrap.SetupLogger(cfg, Version)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}

	for _, warning := range warnings {
		slog.Warn(warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Descriptor catalog and seed rules
	cat, err := catalog.Load(ctx, cfg.CatalogPath)
	if err != nil {
		return err
	}

	var repos *bootstrap.Repositories
	components := bootstrap.ShutdownComponents{}
	if cfg.DatabaseURL != "" {
		var pgErr error
		repos, components.DBPool, pgErr = bootstrap.InitializePostgresRepositories(ctx, cfg.DatabaseURL)
		if pgErr != nil {
			return pgErr
		}
	} else {
		repos = bootstrap.InitializeMemoryRepositories()
	}

	if cfg.RulesPath != "" {
		inserted, seedErr := catalog.SeedRules(ctx, cfg.RulesPath, repos.Rules)
		if seedErr != nil {
			return seedErr
		}
		slog.Info("Rule seeding complete", "inserted", inserted)
	}

	// Notification bus and pipeline
	board := leaderboard.NewEngine(repos.States, repos.History, cat,
		leaderboard.WithCacheSize(cfg.LeaderboardCacheSize),
		leaderboard.WithCacheTTL(cfg.LeaderboardCacheTTL))
	notifier := bus.NewMemoryBus()
	bootstrap.RegisterNotificationHandlers(notifier, board)

	ingestQueue := queue.New(cfg.QueueCapacity)
	ruleEngine := rules.NewEngine(repos.Rules, repos.Events, rules.WithHistoryLimit(cfg.HistoryFetchLimit))
	applier := reward.NewApplier(repos.States, repos.Wallets, repos.History, cat, notifier)

	proc := processor.New(ingestQueue, repos.Events, ruleEngine, applier,
		processor.WithShards(cfg.WorkerCount))
	proc.Start(ctx)
	components.Processor = proc

	// Services
	eventService := event.NewService(ingestQueue, repos.Events)
	playerService := player.NewService(repos.States, repos.History, cat)
	ruleService := rules.NewService(repos.Rules)
	walletService := wallet.NewService(repos.Wallets, cat, notifier)
	sandbox := rules.NewSandbox(ruleEngine)

	// Background jobs
	pool := worker.NewPool(schedulerWorkers, schedulerQueueSize)
	pool.Start()
	components.WorkerPool = pool

	jobs := scheduler.New(pool)
	jobs.Schedule(retentionInterval, scheduler.NewRetentionJob(repos.Events,
		time.Duration(cfg.EventRetentionDays)*24*time.Hour))
	jobs.Schedule(queueDepthInterval, scheduler.NewQueueDepthJob(ingestQueue))
	components.Scheduler = jobs

	// Readiness checks
	checkers := []handler.HealthChecker{
		handler.HealthCheckerFunc(func(ctx context.Context) error {
			if ingestQueue.Closed() {
				return errors.New("ingest queue closed")
			}
			return nil
		}),
	}
	if components.DBPool != nil {
		dbPool := components.DBPool
		checkers = append(checkers, handler.HealthCheckerFunc(dbPool.Ping))
	}

	srv := server.NewServer(cfg.Port, cfg.APIKey, cfg.TrustedProxies,
		eventService, playerService, ruleService, walletService, board, cat, sandbox, checkers...)
	components.Server = srv

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	bootstrap.GracefulShutdown(shutdownCtx, components)
	return nil
}
