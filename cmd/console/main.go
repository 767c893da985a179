package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/sessions"

	"github.com/example/ec-admin-console/internal/api"
	"github.com/example/ec-admin-console/internal/api/middleware"
	"github.com/example/ec-admin-console/internal/apiclient"
	"github.com/example/ec-admin-console/internal/audit"
	"github.com/example/ec-admin-console/internal/config"
	"github.com/example/ec-admin-console/internal/infrastructure/kafka"
	"github.com/example/ec-admin-console/internal/projection"
)

// sessionMaxAge bounds the cookie; the API decides when the credential
// itself expires.
const sessionMaxAge = 7 * 24 * 60 * 60

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("console stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	// Remote API
	fetcher := apiclient.NewFetcher(
		&http.Client{Timeout: cfg.APITimeout},
		apiclient.WithRetryBudget(cfg.RetryBudget),
		apiclient.WithBaseBackoff(cfg.RetryBase),
		apiclient.WithLogger(logger),
	)
	client, err := apiclient.NewClient(cfg.APIBaseURL, fetcher, logger)
	if err != nil {
		return err
	}

	// Sessions
	store := sessions.NewCookieStore(cfg.SessionKey)
	store.Options.HttpOnly = true
	store.Options.Secure = cfg.CookieSecure
	store.Options.SameSite = http.SameSiteLaxMode
	store.Options.Path = "/"
	store.Options.MaxAge = sessionMaxAge
	sess := middleware.NewSessions(store, logger)

	templates, err := api.NewTemplateCache()
	if err != nil {
		return err
	}

	// Audit stream
	var publisher audit.Publisher = audit.Nop{}
	if cfg.AuditEnabled() {
		publisher = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		logger.Info("audit stream enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("close audit publisher", "error", err)
		}
	}()

	handlers := api.NewHandlers(api.Deps{
		Client:         client,
		Sessions:       sess,
		Templates:      templates,
		Audit:          publisher,
		Projector:      projection.NewProjector(nil),
		Logger:         logger,
		UploadMaxWidth: cfg.UploadMaxWidth,
	})
	router := api.NewRouter(api.RouterConfig{
		Handlers: handlers,
		Sessions: sess,
		Logger:   logger,
		CSRF:     middleware.CSRF(cfg.CSRFKey, cfg.CookieSecure, trustedOrigins(cfg.Addr)),
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("console listening", "addr", cfg.Addr, "api", cfg.APIBaseURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

// trustedOrigins lets a console bound to a local port accept its own forms
func trustedOrigins(addr string) []string {
	_, port, err := net.SplitHostPort(addr)
	if err != nil || port == "" {
		return []string{"localhost", "127.0.0.1"}
	}
	return []string{"localhost:" + port, "127.0.0.1:" + port, "localhost", "127.0.0.1"}
}
