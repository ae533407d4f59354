// Command console serves the admin console: collection pages over HTTP and
// WebSocket, backed by an upstream entity API.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/cadencehq/console/internal/collection"
	"github.com/cadencehq/console/internal/config"
	"github.com/cadencehq/console/internal/console"
	"github.com/cadencehq/console/internal/gateway"
	"github.com/cadencehq/console/internal/server"
	"github.com/cadencehq/console/internal/view"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	reg := collection.NewRegistry()
	for _, s := range collection.Builtin() {
		if err := reg.Register(s); err != nil {
			return err
		}
	}
	if cfg.Collections.Dir != "" {
		loaded, err := collection.LoadDir(cfg.Collections.Dir)
		if err != nil {
			return err
		}
		for _, s := range loaded {
			if err := reg.Register(s); err != nil {
				return err
			}
		}
		logger.Info("loaded collection definitions", "dir", cfg.Collections.Dir, "count", len(loaded))
	}

	local, err := view.OpenSQLite(ctx, cfg.Preferences.SQLitePath)
	if err != nil {
		return err
	}
	defer local.Close()

	var remote view.Store = view.NewMemoryStore()
	if cfg.Preferences.RemoteURL != "" {
		remote = view.NewRemoteStore(cfg.Preferences.RemoteURL, 0)
	}

	gw := gateway.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, logger)
	mgr := console.NewManager(reg, gw, remote, local, logger)

	return server.Run(ctx, server.Deps{Config: cfg, Manager: mgr, Log: logger})
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
}
