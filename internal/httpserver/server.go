// Package httpserver provides the HTTP server scaffold: a chi router with the
// standard middleware stack, a /health endpoint, and graceful shutdown.
package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultRequestTimeout bounds a request when Options leaves it unset.
const DefaultRequestTimeout = 30 * time.Second

// Options configures a Server. Zero values select defaults.
type Options struct {
	Logger         *slog.Logger
	RequestTimeout time.Duration
}

// Server is an HTTP server with standard middleware and graceful shutdown.
type Server struct {
	Router *chi.Mux
	srv    *http.Server
	log    *slog.Logger
	onStop []func()
}

// New creates a Server with standard middleware already applied.
// The returned Router is ready for route registration.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog(opts.Logger))
	r.Use(Compression)
	r.Use(Recover(opts.Logger))
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(cors)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK")) //nolint:errcheck
	})

	return &Server{Router: r, log: opts.Logger}
}

// OnStop registers a function to call during graceful shutdown.
func (s *Server) OnStop(fn func()) {
	s.onStop = append(s.onStop, fn)
}

// ListenAndServe starts the server on addr and blocks until SIGINT or
// SIGTERM has shut it down.
func (s *Server) ListenAndServe(addr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Serve(ctx, addr)
}

// Serve starts the server on addr and shuts it down when ctx is done.
func (s *Server) Serve(ctx context.Context, addr string) error {
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()

		s.log.Info("shutting down server")
		for _, fn := range s.onStop {
			fn()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error("server shutdown error", "err", err)
		}
	}()

	s.log.Info("server starting", "addr", addr)
	if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	s.log.Info("server stopped")
	return nil
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
