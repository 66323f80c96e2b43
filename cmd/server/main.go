package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/tokengrid/internal/config"
	"github.com/JonMunkholm/tokengrid/internal/logging"
	"github.com/JonMunkholm/tokengrid/internal/source"
	"github.com/JonMunkholm/tokengrid/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"source", cfg.Source.Kind,
		"layout", cfg.Grid.LayoutPath,
		"session_ttl", cfg.Session.TTL,
	)
	slog.Debug("configuration", "config", cfg.String())

	layout, err := config.LoadLayout(cfg.Grid.LayoutPath)
	if err != nil {
		slog.Error("failed to load grid layout", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	conn, closeConn, err := source.Dial(ctx, cfg.Source, cfg.Database)
	if err != nil {
		slog.Error("failed to connect to record store", "kind", cfg.Source.Kind, "error", err)
		os.Exit(1)
	}
	defer closeConn()

	// Log which database we connected to
	if cfg.Source.Kind == config.SourcePostgres {
		if u, err := url.Parse(cfg.Database.URL); err == nil {
			slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
		} else {
			slog.Info("connected to database")
		}
	}

	src, err := source.Open(cfg.Source, conn, layout, cfg.Grid.SecretField)
	if err != nil {
		slog.Error("failed to open record source", "error", err)
		os.Exit(1)
	}

	if cfg.Cache.RedisURL != "" {
		rdb, err := source.NewRedisClient(ctx, cfg.Cache.RedisURL)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		src = &source.Cache{Client: rdb, Key: cfg.Cache.Key, TTL: cfg.Cache.TTL, Next: src}
		slog.Info("record cache enabled", "key", cfg.Cache.Key, "ttl", cfg.Cache.TTL)
	}
	src = source.Limit(src, cfg.Source.MaxFetches, cfg.Source.FetchWait)

	server, err := web.NewServer(cfg, layout, src)
	if err != nil {
		slog.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(ctx)

	go server.Sessions().Run(jobCtx, cfg.Session.CleanupInterval)

	// First load runs in the background; pages show a skeleton until it lands.
	go func() {
		if err := server.Load(jobCtx); err != nil {
			slog.Error("initial record load failed", "error", err)
		}
	}()

	if cfg.Source.RefreshCron != "" {
		if _, err := server.Schedule(jobCtx, cfg.Source.RefreshCron); err != nil {
			slog.Error("failed to schedule reloads", "error", err)
			os.Exit(1)
		}
	}

	if cfg.Source.Watch {
		go func() {
			if err := server.Watch(jobCtx, cfg.Source.File); err != nil {
				slog.Error("record file watcher stopped", "error", err)
			}
		}()
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
