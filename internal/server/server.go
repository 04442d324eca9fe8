// Package server exposes one board session over HTTP.
//
// Every endpoint works on a single shared [store.Store]. Reads lay the store
// out for the viewport named in the query; writes go through the session
// [board.Board] so that edits follow the same rules as the interactive
// board. The share boundary is mounted next to the board API when a
// [share.Handler] is configured.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/heightchart/pkg/board"
	"github.com/matzehuels/heightchart/pkg/colorize"
	"github.com/matzehuels/heightchart/pkg/share"
	"github.com/matzehuels/heightchart/pkg/store"
)

const (
	// DefaultRequestTimeout bounds a single request, asset fetches included.
	DefaultRequestTimeout = 30 * time.Second

	// convergeFrames bounds the narrow convergence loop per layout request.
	convergeFrames = 500

	// maxBodyBytes caps JSON request bodies.
	maxBodyBytes = 64 << 10

	shutdownTimeout = 5 * time.Second
)

// Server is the HTTP API over a board session.
type Server struct {
	board   *board.Board
	store   *store.Store
	colors  *colorize.Colorizer
	shares  *share.Handler
	logger  *log.Logger
	timeout time.Duration
	router  chi.Router
}

// Option configures a [Server].
type Option func(*Server)

// WithColorizer enables recolored assets in board.svg and the proxy-svg
// endpoint. Without one, board.svg draws placeholders and proxy-svg
// answers 501.
func WithColorizer(z *colorize.Colorizer) Option {
	return func(s *Server) { s.colors = z }
}

// WithShareHandler mounts the share boundary routes.
func WithShareHandler(h *share.Handler) Option {
	return func(s *Server) { s.shares = h }
}

// WithLogger sets the request and error logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRequestTimeout overrides [DefaultRequestTimeout].
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// New creates a server for b.
func New(b *board.Board, opts ...Option) *Server {
	s := &Server{
		board:   b,
		store:   b.Store(),
		logger:  log.Default(),
		timeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/board", s.handleBoard)
		r.Get("/board.svg", s.handleBoardSVG)

		r.Post("/avatars", s.handleAdd)
		r.Put("/avatars/order", s.handleReorder)
		r.Patch("/avatars/{id}", s.handleEdit)
		r.Delete("/avatars/{id}", s.handleRemove)

		r.Post("/clear", s.handleClear)
		r.Post("/undo", s.handleUndo)
		r.Post("/redo", s.handleRedo)
		r.Put("/zoom", s.handleZoom)

		r.Get("/proxy-svg", s.handleProxySVG)
	})

	if s.shares != nil {
		s.shares.RegisterHTTP(r)
	}
	return r
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-errc
	return nil
}

// requestLogger logs one line per request through l.
func requestLogger(l *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			l.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"elapsed", time.Since(start).Round(time.Microsecond),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
