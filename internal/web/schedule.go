package web

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/JonMunkholm/tokengrid/internal/source"
)

// Schedule reloads records on a cron expression until ctx is done.
// Reloads go through Load, so a shared cache absorbs them across instances.
func (s *Server) Schedule(ctx context.Context, expr string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(expr, func() {
		if err := s.Load(ctx); err != nil {
			slog.Error("scheduled reload failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", expr, err)
	}

	c.Start()
	slog.Info("scheduled record reloads", "cron", expr)

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return c, nil
}

// Watch refreshes records whenever the file at path changes. It blocks
// until ctx is done.
func (s *Server) Watch(ctx context.Context, path string) error {
	return source.Watch(ctx, path, source.DefaultDebounce, func() {
		if err := s.Refresh(ctx); err != nil {
			slog.Error("reload after file change failed", "path", path, "error", err)
		}
	})
}
