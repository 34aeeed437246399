package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/warrantyvault/backend/internal/cron"
	"github.com/warrantyvault/backend/internal/mailer"
	"github.com/warrantyvault/backend/internal/reminders"
	"github.com/warrantyvault/backend/internal/users"
	"github.com/warrantyvault/backend/internal/warranties"
	"github.com/warrantyvault/backend/pkg/config"
	"github.com/warrantyvault/backend/pkg/db"
	"github.com/warrantyvault/backend/pkg/logger"
	"github.com/warrantyvault/backend/pkg/metrics"
	"github.com/warrantyvault/backend/pkg/migrate"
	"github.com/warrantyvault/backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := multierr.Append(redisClient.Close(), dbClient.Close()); err != nil {
			logg.Error(context.Background(), "error closing worker resources", err)
		}
	}()

	location, err := cfg.Reminder.Location()
	if err != nil {
		logg.Error(context.Background(), "invalid reminder timezone", err)
		os.Exit(1)
	}

	sender, err := mailer.NewSMTPSender(cfg.SMTP)
	if err != nil {
		logg.Error(context.Background(), "failed to create smtp sender", err)
		os.Exit(1)
	}

	warrantyRepo := warranties.NewRepository(dbClient.DB())

	dispatcher, err := reminders.NewDispatcher(reminders.DispatcherParams{
		Logger: logg,
		Mail:   sender,
		Store:  warrantyRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reminder dispatcher", err)
		os.Exit(1)
	}

	scanJob, err := cron.NewExpiryScanJob(cron.ExpiryScanJobParams{
		Logger:            logg,
		Warranties:        warrantyRepo,
		Users:             users.NewRepository(dbClient.DB()),
		Dispatcher:        dispatcher,
		SuppressionWindow: cfg.Reminder.SuppressionWindow,
		Location:          location,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create expiry scan job", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry()
	registry.Register(scanJob)

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron-worker:"+envOrLocal(cfg.App.Env)), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Reminder.ScanInterval,
		RunAt:    cfg.Reminder.RunAt,
		Location: location,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"runAt":       cfg.Reminder.RunAt,
		"timezone":    cfg.Reminder.Timezone,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func envOrLocal(env string) string {
	if env == "" {
		return "local"
	}
	return env
}
