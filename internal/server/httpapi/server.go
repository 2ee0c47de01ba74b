// Package httpapi serves the roster hub's JSON API over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/ISTE-SCTCE/Admin/internal/logging"
	"github.com/ISTE-SCTCE/Admin/internal/server/metrics"
	"github.com/ISTE-SCTCE/Admin/internal/server/notify"
	"github.com/ISTE-SCTCE/Admin/internal/server/presence"
	"github.com/ISTE-SCTCE/Admin/internal/server/services"
)

// Options are the transport settings of the HTTP server.
type Options struct {
	Address         string
	SecureCookies   bool
	MaxUploadBytes  int64
	ShutdownTimeout time.Duration
	// KeepAlive is the interval of comment frames on message streams.
	KeepAlive time.Duration
	// Ready reports whether backing services are reachable; nil means always.
	Ready func(ctx context.Context) error
}

// Services are the business components the handlers call.
type Services struct {
	Users     *services.UserService
	Directory *services.DirectoryService
	Messages  *services.MessageService
	Files     *services.FileService
	Events    *services.EventService
	Presence  *presence.Tracker
	Hub       *notify.Hub
}

type Server struct {
	Services
	opts    Options
	metrics *metrics.Metrics
	logger  logging.Logger
	handler http.Handler
}

func NewHTTPServer(opts Options, svc Services, met *metrics.Metrics, l logging.Logger) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 25 << 20
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if opts.KeepAlive <= 0 {
		opts.KeepAlive = 25 * time.Second
	}

	s := &Server{
		Services: svc,
		opts:     opts,
		metrics:  met,
		logger:   l.With("module", "http_server"),
	}
	s.handler = s.routes()
	return s
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler { return s.handler }

// Run serves on the configured address until ctx is done, then shuts down
// gracefully within the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-done
}
