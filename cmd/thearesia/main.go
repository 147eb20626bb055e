package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	airtableadapter "github.com/bkyoung/thearesia/internal/adapter/airtable"
	"github.com/bkyoung/thearesia/internal/adapter/cli"
	githubadapter "github.com/bkyoung/thearesia/internal/adapter/github"
	"github.com/bkyoung/thearesia/internal/adapter/httpx"
	"github.com/bkyoung/thearesia/internal/adapter/webhook"
	"github.com/bkyoung/thearesia/internal/config"
	"github.com/bkyoung/thearesia/internal/usecase/review"
	issuesync "github.com/bkyoung/thearesia/internal/usecase/sync"
	"github.com/bkyoung/thearesia/internal/version"
)

func main() {
	if err := run(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	// Create cancellable context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "thearesia",
		EnvPrefix:   "THEARESIA",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config invalid: %w", err)
	}

	logger := buildLogger(cfg.Logging)
	retryConf := buildRetryConfig(cfg.HTTP)
	httpTimeout := parseDuration(cfg.HTTP.Timeout, 30*time.Second)

	githubClient := githubadapter.NewClient(cfg.GitHub.Token)
	if cfg.GitHub.BaseURL != "" {
		githubClient.SetBaseURL(cfg.GitHub.BaseURL)
	}
	githubClient.SetTimeout(httpTimeout)
	githubClient.SetRetryConfig(retryConf)
	if logger != nil {
		githubClient.SetLogger(logger)
	}

	airtableClient := airtableadapter.NewClient(cfg.Airtable.APIKey, cfg.Airtable.TableURL)
	airtableClient.SetTimeout(httpTimeout)
	airtableClient.SetRetryConfig(retryConf)
	if logger != nil {
		airtableClient.SetLogger(logger)
	}

	engine := review.NewEngine(githubClient, cfg.GitHub.BotLogin)

	reconciler := issuesync.NewReconciler(githubClient, airtableClient)
	reconciler.SetRetryInterval(parseDuration(cfg.Sync.RetryInterval, issuesync.DefaultRetryInterval))

	server := &webhookServer{
		handler:         webhook.NewHandler(engine).Routes(),
		addr:            cfg.Server.Addr,
		readTimeout:     parseDuration(cfg.Server.ReadTimeout, 5*time.Second),
		writeTimeout:    parseDuration(cfg.Server.WriteTimeout, 30*time.Second),
		shutdownTimeout: parseDuration(cfg.Server.ShutdownTimeout, 10*time.Second),
	}

	log.Println(identityLine(cfg.GitHub.BotLogin, cfg.GitHub.Token, cfg.Logging.RedactAPIKeys))

	root := cli.NewRootCommand(cli.Dependencies{
		Server:  server,
		Syncer:  reconciler,
		Version: version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

// webhookServer runs the delivery listener with graceful shutdown.
type webhookServer struct {
	handler         http.Handler
	addr            string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
}

// Serve blocks until the context is canceled or the listener fails.
func (s *webhookServer) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.handler,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("webhook listener on %s", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen failed: %w", err)
	case <-ctx.Done():
	}

	log.Println("signal received, shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// identityLine renders the startup line naming the bot account. The
// token is redacted unless redaction is explicitly disabled.
func identityLine(botLogin, token string, redact bool) string {
	if redact {
		token = httpx.RedactToken(token)
	}
	return fmt.Sprintf("starting as %s with token %s", botLogin, token)
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "thearesia"))
	}
	return paths
}

func buildLogger(cfg config.LoggingConfig) httpx.Logger {
	if !cfg.Enabled {
		return nil
	}

	logLevel := httpx.LogLevelInfo
	switch cfg.Level {
	case "debug":
		logLevel = httpx.LogLevelDebug
	case "error":
		logLevel = httpx.LogLevelError
	}

	logFormat := httpx.LogFormatHuman
	if cfg.Format == "json" {
		logFormat = httpx.LogFormatJSON
	}

	return httpx.NewDefaultLogger(logLevel, logFormat)
}

func buildRetryConfig(cfg config.HTTPConfig) httpx.RetryConfig {
	conf := httpx.DefaultRetryConfig()

	if cfg.MaxRetries > 0 {
		conf.MaxRetries = cfg.MaxRetries
	}
	conf.InitialBackoff = parseDuration(cfg.InitialBackoff, conf.InitialBackoff)
	conf.MaxBackoff = parseDuration(cfg.MaxBackoff, conf.MaxBackoff)
	if cfg.BackoffMultiplier > 0 {
		conf.Multiplier = cfg.BackoffMultiplier
	}

	return conf
}

// parseDuration parses value, warning and falling back when it is empty
// or malformed.
func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("warning: invalid duration %q, using %s", value, fallback)
		return fallback
	}
	return parsed
}

// Compile-time interface compliance checks
var _ review.TrackerClient = (*githubadapter.Client)(nil)
var _ issuesync.IssueLister = (*githubadapter.Client)(nil)
var _ issuesync.TrackingTable = (*airtableadapter.Client)(nil)
var _ webhook.CommandHandler = (*review.Engine)(nil)
var _ cli.Server = (*webhookServer)(nil)
var _ cli.Syncer = (*issuesync.Reconciler)(nil)
