package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"wardrobeapi/config"
	"wardrobeapi/dbhelper"
	"wardrobeapi/logging"
	"wardrobeapi/services"
	"wardrobeapi/stores"
	"wardrobeapi/tasks"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
)

// digestCron sends the unworn clothes digest once a day.
const digestCron = "0 10 * * *"

func runScheduler(redis asynq.RedisClientOpt) {
	logger := logging.Component("scheduler")
	scheduler := asynq.NewScheduler(redis, &asynq.SchedulerOpts{
		LogLevel: asynq.InfoLevel,
	})

	entries := []struct {
		cron string
		task *asynq.Task
		desc string
	}{
		{cron: digestCron, task: tasks.NewWardrobeDigestTask(), desc: "Wardrobe digest notifications"},
	}
	for _, t := range entries {
		entryID, err := scheduler.Register(t.cron, t.task)
		if err != nil {
			logger.Fatal().Err(err).Str("task", t.desc).Msg("failed to register task")
		}
		logger.Info().Str("task", t.desc).Str("entry_id", entryID).Str("cron", t.cron).Msg("registered task")
	}

	if err := scheduler.Run(); err != nil {
		logger.Fatal().Err(err).Msg("scheduler failed")
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Timestamp: true, Output: os.Stderr})
	logger := logging.Component("worker")

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		Release:     cfg.Sentry.Release,
	}); err != nil {
		logger.Fatal().Err(err).Msg("sentry init")
	}
	defer sentry.Flush(2 * time.Second)

	redis := asynq.RedisClientOpt{Addr: cfg.Broker.Addr}
	srv := asynq.NewServer(redis, asynq.Config{
		Concurrency: cfg.Broker.Concurrency,
		Queues: map[string]int{
			tasks.QueueAnalysis: 7,
			tasks.QueueDefault:  3,
		},
	})

	ctx := context.Background()
	awsService, err := services.NewAWSService(ctx, cfg.Storage)
	if errors.Is(err, services.ErrStorageNotConfigured) {
		logger.Warn().Msg("[Queue] object storage not configured, photo analysis will fail")
		awsService = &services.AWSService{}
	} else if err != nil {
		logger.Fatal().Err(err).Msg("[Queue] failed to initialize storage")
	}
	db := dbhelper.SetupDB(cfg.DB)
	users := stores.NewUserStore(db)

	var notifier services.Notifier = services.NopNotifier{}
	if cfg.Google.FirebaseCredentials != "" {
		firebaseNotifier, err := services.NewFirebaseNotifier(ctx, cfg.Google.FirebaseCredentials, users)
		if err != nil {
			logger.Error().Err(err).Msg("firebase disabled, push notifications will be skipped")
		} else {
			notifier = firebaseNotifier
		}
	}

	worker := tasks.NewWorker(
		stores.NewClothingStore(db),
		users,
		awsService,
		services.NewGoogleClothingAnalyzer(cfg.Google.APIKey, cfg.Google.Model),
		notifier,
	)
	mux := asynq.NewServeMux()
	worker.Register(mux)

	go runScheduler(redis)
	if err := srv.Run(mux); err != nil {
		logger.Fatal().Err(err).Msg("worker stopped")
	}
}
