package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"moncash/internal/amqp"
	"moncash/internal/auth"
	"moncash/internal/backend"
	"moncash/internal/config"
	apphttp "moncash/internal/http"
	"moncash/internal/report"
	"moncash/internal/services"
	"moncash/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage backend. A store that cannot come up is fatal; the server
	// must not take traffic without it.
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("failed to initialize storage backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("backend cleanup failed", "error", err)
			}
		}()
	}
	repos := result.Repositories

	// Session store: Redis when configured, in-process otherwise.
	var sessions auth.SessionStore
	if cfg.RedisAddr != "" {
		redisSessions, err := auth.NewRedisSessionStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Error("failed to connect to Redis", "error", err, "addr", cfg.RedisAddr)
			os.Exit(1)
		}
		defer redisSessions.Close()
		sessions = redisSessions
		logger.Info("using Redis session store", "addr", cfg.RedisAddr)
	} else {
		memSessions := auth.NewMemorySessionStore()
		defer memSessions.Stop()
		sessions = memSessions
		logger.Info("using in-memory session store")
	}

	verifier := auth.GoogleVerifier{
		Audience: cfg.GoogleClientID,
		Insecure: cfg.GoogleAuthInsecure,
	}

	authService := services.NewAuthService(repos, sessions, verifier, cfg.SessionTTL)
	ledgerService := services.NewLedgerService(repos, repos)

	reportService := buildReportService(cfg, repos, logger)

	srv := apphttp.NewServer(":"+cfg.Port, authService, ledgerService, reportService, cfg.SessionTTL)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("starting moncash server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("server stopped gracefully")
}

// buildReportService assembles the report pipeline from what is configured:
// nothing (reports off), SMTP only (inline delivery), or SMTP+AMQP (queued
// delivery through the report worker).
func buildReportService(cfg *config.Config, repos store.Repositories, logger *slog.Logger) *services.ReportService {
	if !cfg.MailEnabled() && cfg.AMQPURL == "" {
		logger.Info("reports disabled: neither SMTP nor AMQP configured")
		return nil
	}

	renderer, err := report.NewRenderer()
	if err != nil {
		logger.Error("failed to parse report templates", "error", err)
		os.Exit(1)
	}

	var mailer report.Mailer
	if cfg.MailEnabled() {
		mailer = &report.SMTPMailer{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}
	}

	var publisher services.ReportPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("failed to initialize AMQP client, reports will be delivered inline", "error", err)
		} else {
			publisher = client
			logger.Info("report requests will be queued", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	if mailer == nil && publisher == nil {
		logger.Info("reports disabled: no working mail transport")
		return nil
	}

	return services.NewReportService(repos, renderer, mailer, publisher)
}
