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

	"wardrobeapi/config"
	"wardrobeapi/controllers"
	"wardrobeapi/dbhelper"
	"wardrobeapi/idgen"
	"wardrobeapi/logging"
	"wardrobeapi/recommender"
	"wardrobeapi/services"
	"wardrobeapi/stores"
	"wardrobeapi/weather"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Timestamp: true, Output: os.Stderr})
	logger := logging.Component("api")

	err = sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		Release:          cfg.Sentry.Release,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("sentry init")
	}
	defer sentry.Recover()
	defer sentry.Flush(2 * time.Second)

	if cfg.IDs.Node >= 0 {
		if err := idgen.SetNodeID(cfg.IDs.Node); err != nil {
			logger.Fatal().Err(err).Msg("snowflake node")
		}
	}

	db := dbhelper.SetupDB(cfg.DB)

	awsService, err := services.NewAWSService(context.Background(), cfg.Storage)
	if errors.Is(err, services.ErrStorageNotConfigured) {
		logger.Warn().Msg("object storage not configured, photo uploads are disabled")
		awsService = &services.AWSService{}
	} else if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	urlCache, err := services.NewURLCacheService(awsService)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize url cache")
	}

	upstream := weather.NewOpenWeatherProvider(weather.Options{
		APIKey:  cfg.Weather.APIKey,
		BaseURL: cfg.Weather.BaseURL,
		Client:  &http.Client{Timeout: cfg.Weather.Timeout},
		Backoff: weather.BackoffConfig{
			MaxRetries:      cfg.Weather.MaxRetries,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		Logger: logging.Logger(),
	})
	weatherProvider, err := weather.NewCachedProvider(upstream, cfg.Weather.CacheTTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize weather cache")
	}
	warmer := weather.NewWarmer(weatherProvider, cfg.Weather.WarmCities,
		time.Duration(cfg.Weather.WarmInterval)*time.Minute, logging.Logger())
	if cfg.Weather.APIKey != "" {
		if err := warmer.Start(); err != nil {
			logger.Error().Err(err).Msg("weather warmer not started")
		}
		defer warmer.Stop()
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Broker.Addr})
	defer asynqClient.Close()

	e := controllers.SetupServer(controllers.ServerDeps{
		Users:      stores.NewUserStore(db),
		Clothes:    stores.NewClothingStore(db),
		Favorites:  stores.NewFavoriteStore(db),
		AWSService: awsService,
		URLCache:   urlCache,
		Weather:    weatherProvider,
		Engine:     recommender.NewEngine(logging.Logger()),
		Enqueuer:   asynqClient,
		JWTSecret:  cfg.Auth.JWTSecret,
		RateLimit:  cfg.Server.RateLimit,
	})

	go func() {
		if err := e.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()
	logger.Info().Int("port", cfg.Server.Port).Msg("api started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}
