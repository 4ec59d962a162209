package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/ethan-dean/todue/internal/auth"
	"github.com/ethan-dean/todue/internal/cache"
	"github.com/ethan-dean/todue/internal/config"
	"github.com/ethan-dean/todue/internal/engine"
	"github.com/ethan-dean/todue/internal/logging"
	"github.com/ethan-dean/todue/internal/push"
	"github.com/ethan-dean/todue/internal/todoapi"
	"github.com/ethan-dean/todue/internal/tui"
)

var Version = "dev"

const logFilePerm = 0o600

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logFile, err := openLogFile(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	logger := logging.NewLogger(logFile, cfg.Environment)
	logger.Info("todue starting",
		slog.String("version", Version),
		slog.String("server", cfg.ServerURL),
		slog.String("anchor", cfg.AnchorDate),
		slog.Int("view_days", cfg.ViewDays),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := todoapi.NewClient(cfg.APIBaseURL(), nil)

	resp, err := client.Login(ctx, cfg.Email, cfg.Password)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}

	logger.Info("logged in", slog.String("email", cfg.Email))

	if soon, exp, err := auth.ExpiresSoon(resp.Token, time.Now()); err != nil {
		logger.Warn("could not inspect session token", "error", err)
	} else if soon {
		logger.Warn("session token expires soon", slog.Time("expires_at", exp))
	}

	// Cache failures are not fatal: the engine runs without offline
	// snapshots and simply starts with empty buckets.
	var store engine.Cache

	db, err := cache.Open(cfg.CachePath)
	if err != nil {
		logger.Warn("opening cache, continuing without", "error", err)
	} else {
		defer db.Close()
		store = db
	}

	eng := engine.New(engine.Config{
		Service:  client,
		Cache:    store,
		Logger:   logger,
		Anchor:   cfg.AnchorDate,
		ViewDays: cfg.ViewDays,
	})

	eng.Hydrate()

	if err := eng.LoadVisible(ctx); err != nil {
		// Cached buckets still render; the push channel and manual
		// refresh recover once the server is reachable.
		logger.Warn("initial load failed", "error", err)
	}

	router, err := push.NewRouter(push.Config{
		URL:       cfg.WebsocketURL,
		Token:     resp.Token,
		Refresher: eng,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("creating push router: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	// Once the subscription is live, refetch the visible window in case
	// anything changed between the initial load and the first connect.
	// The listener fires once; a later reconnect relies on the server
	// replaying nothing, so manual refresh covers a long outage.
	router.OnConnectionEstablished(func() {
		go eng.RefetchVisible(gctx)
	})

	g.Go(func() error {
		return router.Listen(gctx)
	})

	program := tea.NewProgram(tui.New(eng, logger), tea.WithAltScreen())

	g.Go(func() error {
		<-gctx.Done()
		program.Quit()

		return nil
	})

	g.Go(func() error {
		defer stop()

		if _, err := program.Run(); err != nil {
			return fmt.Errorf("running ui: %w", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("todue stopped")

	return nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}

	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePerm)
}
