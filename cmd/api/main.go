package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/your-org/reunite/internal/api"
	"github.com/your-org/reunite/internal/api/ws"
	"github.com/your-org/reunite/internal/config"
	"github.com/your-org/reunite/internal/ingest"
	"github.com/your-org/reunite/internal/intake"
	"github.com/your-org/reunite/internal/matcher"
	"github.com/your-org/reunite/internal/models"
	"github.com/your-org/reunite/internal/observability"
	"github.com/your-org/reunite/internal/queue"
	"github.com/your-org/reunite/internal/resolution"
	"github.com/your-org/reunite/internal/sms"
	"github.com/your-org/reunite/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("starting reunite API service", "port", cfg.Server.Port)

	if err := storage.RunMigrations(cfg.Database); err != nil {
		slog.Error("run migrations", "error", err)
		os.Exit(1)
	}

	// Connect to Postgres
	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Connect to MinIO
	minioStore, err := storage.NewMinIOStore(cfg.MinIO)
	if err != nil {
		slog.Error("connect to minio", "error", err)
		os.Exit(1)
	}
	if err := minioStore.EnsureBucket(context.Background()); err != nil {
		slog.Warn("ensure minio bucket", "error", err)
	}

	// Connect to NATS
	producer, err := queue.NewProducer(cfg.NATS.URL)
	if err != nil {
		slog.Error("connect to nats", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	if err := producer.EnsureStreams(context.Background()); err != nil {
		slog.Warn("ensure nats streams", "error", err)
	}

	// WebSocket hub; new dashboard connections are seeded with the number
	// of notifications already waiting in the queue.
	hub := ws.NewHub(db.CountNotifications)
	go hub.Run()

	matcherClient := matcher.NewClient(cfg.Matcher)
	smsClient := sms.NewClient(cfg.SMS)

	intakeSvc := intake.NewService(db, minioStore, matcherClient, cfg.Intake.MinImages, cfg.Intake.MaxImages)
	ingestSvc := ingest.NewService(db, minioStore, hub)
	engine := resolution.NewEngine(db, db, matcherClient, producer, smsClient, hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Consume match reports published by recognizer nodes over JetStream.
	// The same pipeline handles reports posted to /v1/matches directly.
	consumer, err := queue.NewConsumer(cfg.NATS.URL)
	if err != nil {
		slog.Error("create match consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	err = consumer.ConsumeMatches(ctx, "api-matches", func(ctx context.Context, msg jetstream.Msg) error {
		var report models.MatchReport
		if err := json.Unmarshal(msg.Data(), &report); err != nil {
			return fmt.Errorf("decode match report: %w", err)
		}
		_, err := ingestSvc.ReportMatch(ctx, report, "nats")
		return err
	})
	if err != nil {
		slog.Warn("start match consumer", "error", err)
	}

	// Setup router
	router := api.NewRouter(api.RouterConfig{
		APIKey:     cfg.Server.APIKey,
		DB:         db,
		MinIO:      minioStore,
		Producer:   producer,
		Hub:        hub,
		Intake:     intakeSvc,
		Ingest:     ingestSvc,
		Resolution: engine,
	})

	// Start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("API server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down API server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("API server stopped")
}
