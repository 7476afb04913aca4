package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/BillionaireEagleDev/ps-webservice/internal/config"
	"github.com/BillionaireEagleDev/ps-webservice/internal/extractor"
	"github.com/BillionaireEagleDev/ps-webservice/internal/feed"
	"github.com/BillionaireEagleDev/ps-webservice/internal/publisher"
	"github.com/BillionaireEagleDev/ps-webservice/internal/scheduler"
	"github.com/BillionaireEagleDev/ps-webservice/internal/server"
	"github.com/BillionaireEagleDev/ps-webservice/internal/service"
	"github.com/BillionaireEagleDev/ps-webservice/internal/storage/postgres"
	"github.com/BillionaireEagleDev/ps-webservice/internal/summarizer"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// The post event publisher is optional; without a broker URL accepted
	// posts are only persisted.
	var pub service.Publisher
	if cfg.RabbitMQ.URL != "" {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		pub = rabbitMQ
	}

	sourceStore := postgres.NewSourceStore(db)
	postStore := postgres.NewPostStore(db)

	aggregator := feed.NewAggregator(cfg.Ingest.FeedTimeout, logger)

	extractorClient := extractor.NewClient(extractor.Config{
		BaseURL: cfg.Extractor.BaseURL,
		Token:   cfg.Extractor.Token,
		Timeout: cfg.Extractor.Timeout,
	}, logger)

	summarizerClient := summarizer.NewClient(summarizer.Config{
		BaseURL:     cfg.Summarizer.BaseURL,
		Model:       cfg.Summarizer.Model,
		APIKey:      cfg.Summarizer.APIKey,
		Timeout:     cfg.Summarizer.Timeout,
		MaxRetries:  cfg.Summarizer.MaxRetries,
		MinWords:    cfg.Summarizer.MinWords,
		TargetWords: cfg.Summarizer.TargetWords,
	}, logger)

	ingestService := service.NewIngestService(
		sourceStore,
		postStore,
		aggregator,
		extractorClient,
		summarizerClient,
		pub,
		logger,
		cfg.Ingest,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Ingest.Interval > 0 {
		sched := scheduler.NewScheduler(ingestService, cfg.Ingest.Interval, logger)
		go func() {
			if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("scheduler error", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: server.New(ingestService, cfg.Server.APIKey, logger).Router(),
	}

	go func() {
		logger.Info("starting http server", "address", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", "error", err)
	}
	logger.Info("shutdown complete")
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
