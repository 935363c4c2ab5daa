package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sayu-dev/showcase-bot/internal/bot"
	"github.com/sayu-dev/showcase-bot/internal/database"
	"github.com/sayu-dev/showcase-bot/internal/gamedata"
	"github.com/sayu-dev/showcase-bot/internal/health"
	"github.com/sayu-dev/showcase-bot/internal/idempotency"
	"github.com/sayu-dev/showcase-bot/internal/jobs"
	jobhandlers "github.com/sayu-dev/showcase-bot/internal/jobs/handlers"
	"github.com/sayu-dev/showcase-bot/internal/repository"
	"github.com/sayu-dev/showcase-bot/internal/session"
	"github.com/sayu-dev/showcase-bot/pkg/config"
	"github.com/sayu-dev/showcase-bot/pkg/graceful"
	"github.com/sayu-dev/showcase-bot/pkg/logger"
	"github.com/sayu-dev/showcase-bot/pkg/metrics"
	appredis "github.com/sayu-dev/showcase-bot/pkg/redis"

	_ "github.com/lib/pq"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			TracesSampleRate: cfg.Sentry.TracesSampleRate,
		}); err != nil {
			slog.Error("failed to initialize sentry", slog.Any("error", err))
			os.Exit(1)
		}
		defer sentry.Flush(2 * time.Second)
	}

	log := logger.New(cfg.Logger, cfg.Sentry.Enabled)
	slog.SetDefault(log)

	log.Info("starting showcase bot",
		slog.String("env", cfg.AppEnv),
		slog.String("http_port", cfg.Server.Port),
	)

	config.Watch(v, log, func(updated config.Config) {
		// Transports and pools are built once at boot; a restart picks up
		// the rest.
		log.Info("config change observed", slog.String("log_level", updated.Logger.Level))
	})

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Error("error closing database", slog.Any("error", cerr))
		}
	}()

	if err := db.PingContext(ctx); err != nil {
		log.Error("failed to ping database", slog.Any("error", err))
		os.Exit(1)
	}

	migrator := database.NewMigrator(db, log)
	if err := migrator.ApplyDir(ctx, cfg.Database.MigrationsDir); err != nil {
		log.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient, err := appredis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer redisClient.Close()

	prefs := repository.NewPreferenceRepository(db, log)
	portraits := repository.NewPortraitRepository(db, log)

	showcase := gamedata.NewShowcaseClient(cfg.Showcase.BaseURL, log)
	renderer := gamedata.NewRenderClient(cfg.Render.BaseURL, log)

	registry := session.NewRegistry(log)
	cleaner := session.NewCleaner(registry, log, cfg.Session.TTL, cfg.Session.CleanupInterval)

	idemStore := idempotency.NewRedisStore(redisClient.Client, log)
	idemManager := idempotency.NewManager(idemStore, log)

	b, err := bot.New(*cfg, log, prefs, portraits, showcase, renderer, registry, idemManager)
	if err != nil {
		log.Error("failed to initialize bot", slog.Any("error", err))
		os.Exit(1)
	}

	checker := health.NewChecker(log)
	checker.AddCheck("database", health.NewDBChecker(db))
	checker.AddCheck("redis", health.NewRedisChecker(redisClient.Client))
	checker.AddCheck("telegram", health.NewTelegramChecker(b.Telebot()))
	checker.AddCheck("showcase", health.NewServiceChecker(cfg.Showcase.BaseURL, nil))
	checker.AddCheck("render", health.NewServiceChecker(cfg.Render.BaseURL, nil))

	httpServer := graceful.NewServer(log, &http.Server{
		Addr:    cfg.Server.Port,
		Handler: logger.Middleware(newHTTPMux(checker)),
	}, cfg.Server.ShutdownTimeout)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		cleaner.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		metrics.NewSessionCollector(registry).Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := httpServer.ListenAndServe(ctx); err != nil {
			log.Error("http server stopped with error", slog.Any("error", err))
		}
	}()

	if cfg.Jobs.Enabled {
		startJobs(ctx, &wg, cfg, log, showcase, redisOpt(cfg))
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		b.Start()
	}()

	<-ctx.Done()

	b.Stop()
	wg.Wait()

	log.Info("showcase bot shut down")
}

func newHTTPMux(checker *health.Checker) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		results := checker.Check(r.Context())

		status := http.StatusOK
		for _, result := range results {
			if result != "OK" {
				status = http.StatusServiceUnavailable
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(results)
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	return mux
}

func redisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
}

func startJobs(
	ctx context.Context,
	wg *sync.WaitGroup,
	cfg *config.Config,
	log *slog.Logger,
	refresher gamedata.AssetRefresher,
	redisOpt asynq.RedisClientOpt,
) {
	worker := jobs.NewWorker(redisOpt, map[string]int{
		jobs.QueueDefault: 3,
		jobs.QueueLow:     1,
	}, cfg.Jobs.Concurrency, log)
	worker.RegisterHandler(jobs.TaskTypeAssetRefresh, jobhandlers.NewAssetRefreshHandler(refresher, log))

	scheduler := jobs.NewScheduler(redisOpt, log)
	if err := scheduler.RegisterTasks(cfg.Jobs.AssetRefreshSchedule); err != nil {
		log.Error("failed to register scheduled tasks", slog.Any("error", err))
		os.Exit(1)
	}

	manager := jobs.NewManager(redisOpt, log)

	// Assets may have gone stale while the bot was down.
	if task, err := jobs.NewAssetRefreshTask("startup"); err == nil {
		if _, err := manager.Enqueue(ctx, task); err != nil {
			log.Warn("failed to enqueue startup asset refresh", slog.Any("error", err))
		}
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := worker.Run(); err != nil {
			log.Error("jobs worker stopped with error", slog.Any("error", err))
		}
	}()

	scheduler.Run()

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		scheduler.Shutdown()
		worker.Shutdown()
		if err := manager.Close(); err != nil {
			log.Error("failed to close jobs manager", slog.Any("error", err))
		}
	}()
}
