// Package web provides the HTTP server and handlers for the token dashboard.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/tokengrid/internal/config"
	"github.com/JonMunkholm/tokengrid/internal/grid"
	"github.com/JonMunkholm/tokengrid/internal/session"
	"github.com/JonMunkholm/tokengrid/internal/source"
	"github.com/JonMunkholm/tokengrid/internal/web/components"
	mw "github.com/JonMunkholm/tokengrid/internal/web/middleware"
)

// Server is the HTTP server for the token dashboard. It keeps the latest
// record snapshot and one grid.Table per browser session.
type Server struct {
	cfg      *config.Config
	layout   grid.Config
	source   source.Source
	sessions *session.Store
	router   *chi.Mux
	server   *http.Server

	mu      sync.RWMutex
	records []grid.Record
	loaded  bool

	// publishMu orders snapshot writes and their fan-out to sessions.
	publishMu sync.Mutex
	fetchSeq  atomic.Uint64
	published uint64
}

// NewServer creates a Server. Records are not fetched until Load or Refresh.
func NewServer(cfg *config.Config, layout grid.Config, src source.Source) (*Server, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		cfg:    cfg,
		layout: layout,
		source: src,
		router: chi.NewRouter(),
	}
	s.sessions = session.NewStore(s.newTable, cfg.Session.TTL)
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, components.PathPage, http.StatusFound)
	})
	s.router.Get("/healthz", s.handleHealth)

	s.router.Group(func(r chi.Router) {
		r.Use(s.withSession)

		r.Get(components.PathPage, s.handlePage)
		r.Get(components.PathGrid, s.handleGrid)
		r.Get("/tokens/rows/{index}/secret", s.handleSecret)

		r.Post(components.PathSort, s.intent(sortIntent))
		r.Post(components.PathSearch, s.intent(searchIntent))
		r.Post(components.PathSearchField, s.intent(searchFieldIntent))
		r.Post(components.PathDateRange, s.intent(dateRangeIntent))
		r.Post(components.PathToggle, s.intent(toggleIntent))
		r.Post(components.PathReset, s.handleReset)
		r.Post(components.PathRefresh, s.handleRefresh)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(s.cfg.Security))
		r.Use(s.withSession)
		r.Get("/tokens", s.handleAPIView)
		r.Post("/tokens/refresh", s.handleAPIRefresh)
	})
}

// Load fetches records, accepting a cached snapshot, and hands them to
// every live session. Startup and scheduled reloads use it.
func (s *Server) Load(ctx context.Context) error {
	return s.fetch(ctx, "load", s.source.Records)
}

// Refresh is Load without any cache in front of the source. User-triggered
// refreshes and file changes use it.
func (s *Server) Refresh(ctx context.Context) error {
	return s.fetch(ctx, "refresh", func(ctx context.Context) ([]grid.Record, error) {
		return source.Fresh(ctx, s.source)
	})
}

// fetch replaces the snapshot. The previous snapshot is kept when the
// fetch fails, and a fetch that finishes after a later-started one has
// published is dropped.
func (s *Server) fetch(ctx context.Context, op string, get func(context.Context) ([]grid.Record, error)) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Source.FetchTimeout)
	defer cancel()

	seq := s.fetchSeq.Add(1)
	start := time.Now()
	records, err := get(ctx)
	if err != nil {
		return fmt.Errorf("%s records: %w", op, err)
	}

	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	if seq < s.published {
		slog.Debug("dropping superseded fetch", "op", op, "seq", seq, "published", s.published)
		return nil
	}
	s.published = seq

	s.mu.Lock()
	s.records = records
	s.loaded = true
	s.mu.Unlock()

	// Sessions created from here on read the new snapshot; Each waits for
	// any creation already underway.
	s.sessions.Each(func(_ string, t *grid.Table) {
		t.SetRecords(records)
	})

	slog.Info("records fetched",
		"op", op,
		"count", len(records),
		"sessions", s.sessions.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Loaded reports whether the first fetch has completed.
func (s *Server) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Sessions returns the session store so callers can run its janitor.
func (s *Server) Sessions() *session.Store {
	return s.sessions
}

func (s *Server) snapshot() []grid.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// newTable mounts a table over the current snapshot for a new session.
func (s *Server) newTable() (*grid.Table, error) {
	return grid.NewTable(s.layout, s.snapshot())
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	csp := strings.Join([]string{
		"default-src 'self'",
		"script-src 'self' 'unsafe-inline' https://unpkg.com",
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data:",
	}, "; ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			// Token values are rendered into responses.
			w.Header().Set("Cache-Control", "no-store")
			if enableCSP {
				w.Header().Set("Content-Security-Policy", csp)
			}
			next.ServeHTTP(w, r)
		})
	}
}
