// Command tabctl manages customer tabs, the catalog and accounts of the
// storefront backend from a terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mmynk/tabkeeper/internal/api"
	"github.com/mmynk/tabkeeper/internal/auth"
	"github.com/mmynk/tabkeeper/internal/config"
	"github.com/mmynk/tabkeeper/internal/metrics"
	"github.com/mmynk/tabkeeper/internal/middleware"
	"github.com/mmynk/tabkeeper/internal/service"
	"github.com/mmynk/tabkeeper/internal/settings"
	"github.com/mmynk/tabkeeper/internal/storage/sqlite"
	"github.com/mmynk/tabkeeper/pkg/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `tabctl - running customer tabs from the terminal

USAGE:
    tabctl [-config <path>] [-log-level <level>] <command> [options]

TABS:
    tab show -customer <id>
    tab add -customer <id> (-product <id> | -barcode <code>)
    tab remove -customer <id> -index <n>
    tab status -customer <id> -index <n> -status <pending|paid|credit>

CATALOG:
    customers [list]
    customers add -name <name> -email <email> [-phone <phone>]
    products [list] [-featured <n>]
    products add -name <name> -price <price> [-description <text>] [-image <file>] [-barcode <code>]

ACCOUNT:
    login -username <name> -password <password>
    logout
    whoami
    profile [-id <user id>]
    register -username <name> -password <password> -email <email> [-mobile <number>]
    reset-password -email <email> -password <new> -confirm <new>
    grant-admin -username <name>
    feedback -first <name> [-last <name>] -text <feedback>

SETTINGS:
    settings [show]
    settings theme (toggle | light | dark)
    settings font <size>

Configuration is read from tabkeeper.yaml and TABKEEPER_* environment
variables, e.g. TABKEEPER_API_BASE_URL.
`)
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tabctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr) }
	configPath := fs.String("config", "", "Path to a YAML configuration file")
	logLevel := fs.String("log-level", "", "Override log.level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		printUsage(stderr)
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	level := cfg.Log.Level
	if *logLevel != "" {
		level = *logLevel
	}
	slog.SetDefault(logging.New(stderr, logging.ParseLevel(level)))

	a, err := newApp(ctx, cfg, stdout, stderr)
	if err != nil {
		slog.Error("Failed to start", "error", err)
		return 1
	}
	defer a.close()

	if err := a.dispatch(ctx, fs.Args()); err != nil {
		var usage usageError
		if errors.As(err, &usage) {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 2
		}
		slog.Debug("Command failed", "command", fs.Arg(0), "error", err)
		fmt.Fprintf(stderr, "error: %s\n", service.UserMessage(err))
		return 1
	}
	return 0
}

// app wires the packages together for one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	store         *sqlite.SQLiteStore
	metrics       *metrics.Metrics
	metricsServer *http.Server

	session  *auth.Session
	settings *settings.Manager
	tabs     *service.TabService
	auth     *service.AuthService
	catalog  *service.CatalogService
	feedback *service.FeedbackService
}

func newApp(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) (*app, error) {
	store, err := sqlite.New(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	slog.Debug("Storage initialized", "database", cfg.Store.Path)

	m := metrics.New()
	session := auth.NewSession()

	client, err := api.New(api.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		UserAgent: cfg.API.UserAgent,
		Middleware: []middleware.Middleware{
			middleware.RequestID(),
			middleware.BearerAuth(session),
			middleware.Logging(),
			middleware.Instrument(m),
		},
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	prefs, err := settings.Load(ctx, store)
	if err != nil {
		store.Close()
		return nil, err
	}

	a := &app{
		stdout:   stdout,
		stderr:   stderr,
		store:    store,
		metrics:  m,
		session:  session,
		settings: prefs,
		tabs: service.NewTabService(client, service.TabServiceConfig{
			NotifyMessage: cfg.Notify.Message,
			NotifyTimeout: cfg.Notify.Timeout,
			Metrics:       m,
		}),
		auth:     service.NewAuthService(client, session, store, slog.Default()),
		catalog:  service.NewCatalogService(client),
		feedback: service.NewFeedbackService(client),
	}

	if _, err := a.auth.Restore(ctx); err != nil {
		slog.Warn("Could not restore session", "error", err)
	}

	if cfg.Metrics.Addr != "" {
		a.serveMetrics(cfg.Metrics.Addr)
	}
	return a, nil
}

func (a *app) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	a.metricsServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("Metrics endpoint starting", "address", addr)
		if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", "error", err)
		}
	}()
}

// close waits for background notifications, then releases resources.
func (a *app) close() {
	a.tabs.Wait()
	if a.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			slog.Warn("Metrics server shutdown failed", "error", err)
		}
	}
	if err := a.store.Close(); err != nil {
		slog.Warn("Failed to close storage", "error", err)
	}
}
