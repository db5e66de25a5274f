package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Simplici0/renoquote/internal/config"
	"github.com/Simplici0/renoquote/internal/db"
	"github.com/Simplici0/renoquote/internal/logging"
	"github.com/Simplici0/renoquote/internal/migrations"
	"github.com/Simplici0/renoquote/internal/quotes"
	"github.com/Simplici0/renoquote/internal/ratecard"
	"github.com/Simplici0/renoquote/internal/seed"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func run() error {
	cfg := config.Load()

	var extra []slog.Handler
	if cfg.FluentEnabled {
		client, err := logging.NewFluentClient(logging.FluentConfig{
			Host:      cfg.FluentHost,
			Port:      cfg.FluentPort,
			TagPrefix: cfg.AppName,
		})
		if err != nil {
			return err
		}
		defer client.Close()
		extra = append(extra, logging.NewFluentHandler(client, logging.ParseLevel(cfg.LogLevel)))
	}
	logger := logging.New(logging.Options{
		Level:     logging.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		AddSource: cfg.IsDev(),
		Extra:     extra,
	}).With("service", cfg.AppName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	if err := migrations.Up(ctx, database); err != nil {
		return fmt.Errorf("run database migrations: %w", err)
	}
	if version, err := migrations.Version(ctx, database); err == nil {
		logger.Info("database ready", "path", cfg.DBPath, "schema_version", version)
	}

	seedCfg := seed.Config{Card: ratecard.Default()}
	if cfg.RateCardPath != "" {
		card, err := ratecard.LoadFile(cfg.RateCardPath)
		if err != nil {
			return err
		}
		seedCfg.Override = &card
	}
	stats, err := seed.Run(ctx, database, seedCfg)
	if err != nil {
		return fmt.Errorf("seed rate cards: %w", err)
	}
	logger.Info("rate cards seeded", "inserts", stats.Inserts, "updates", stats.Updates)

	repo, err := newQuoteRepository(ctx, cfg, database, logger)
	if err != nil {
		return err
	}

	srv := newServer(logger, ratecard.NewStore(database), repo, cfg.AdminToken)
	if err := srv.reloadEngine(ctx); err != nil {
		return fmt.Errorf("load active rate card: %w", err)
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(cfg.CORSOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", httpServer.Addr, "env", cfg.AppEnv, "quotes_backend", cfg.QuotesBackend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("shut down gracefully")
	return nil
}

func newQuoteRepository(ctx context.Context, cfg config.Config, database *sql.DB, logger *slog.Logger) (quotes.Repository, error) {
	if cfg.QuotesBackend != config.BackendDynamoDB {
		return quotes.NewSQLiteRepository(database), nil
	}

	client, err := quotes.NewDynamoClient(ctx, quotes.DynamoConfig{
		Region:          cfg.AWSRegion,
		Endpoint:        cfg.DynamoDBEndpoint,
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
	})
	if err != nil {
		return nil, err
	}
	repo := quotes.NewDynamoRepository(client, cfg.QuotesTable)
	if cfg.DynamoDBEndpoint != "" {
		if err := repo.EnsureTable(ctx); err != nil {
			return nil, err
		}
	}
	logger.Info("quotes stored in dynamodb", "table", cfg.QuotesTable, "endpoint", cfg.DynamoDBEndpoint)
	return repo, nil
}
