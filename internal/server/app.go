// Package server wires the roster hub together: it opens the record store
// and blob store, builds the services, and runs the HTTP and gRPC servers
// until a termination signal arrives.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ISTE-SCTCE/Admin/internal/logging"
	"github.com/ISTE-SCTCE/Admin/internal/server/blob"
	"github.com/ISTE-SCTCE/Admin/internal/server/config"
	"github.com/ISTE-SCTCE/Admin/internal/server/httpapi"
	"github.com/ISTE-SCTCE/Admin/internal/server/metrics"
	"github.com/ISTE-SCTCE/Admin/internal/server/notify"
	"github.com/ISTE-SCTCE/Admin/internal/server/presence"
	"github.com/ISTE-SCTCE/Admin/internal/server/repositories/repomanager"
	"github.com/ISTE-SCTCE/Admin/internal/server/services"
	"github.com/ISTE-SCTCE/Admin/internal/server/store"
	"golang.org/x/sync/errgroup"

	gs "github.com/ISTE-SCTCE/Admin/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	store   store.Backend
	hub     *notify.Hub
	metrics *metrics.Metrics
	http    *httpapi.Server
	grpc    *gs.GRPCServer
}

// NewApp opens the stores named by c and builds every component. The caller
// owns the returned App and must Run it, which closes the stores on exit.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	backend, err := store.Open(ctx, store.Options{
		Driver:  c.StoreDriver,
		DataDir: c.DataDir,
		DSN:     c.DatabaseDSN,
		Migrate: true,
	})
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	blobs, ready, err := OpenBlobStore(ctx, c)
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	met := metrics.New()
	hub := notify.NewHub()
	rm := repomanager.NewStoreRepositoryManager(backend, store.WithLogger(logger))

	tracker := presence.NewTracker(rm.Users(), c.PresenceWindow, logger).WithObserver(met)
	directory := services.NewDirectoryService(rm, tracker, met, logger)
	users := services.NewUserService(rm, directory, c, logger)
	messages := services.NewMessageService(rm, hub, met, logger)

	app := &App{
		config:  c,
		logger:  logger,
		store:   backend,
		hub:     hub,
		metrics: met,
	}

	app.http = httpapi.NewHTTPServer(httpapi.Options{
		Address:         c.HTTPAddr,
		SecureCookies:   c.SecureCookies,
		MaxUploadBytes:  c.MaxUploadBytes,
		ShutdownTimeout: c.ShutdownTimeout,
		Ready:           ready,
	}, httpapi.Services{
		Users:     users,
		Directory: directory,
		Messages:  messages,
		Files:     services.NewFileService(rm, blobs, met, logger),
		Events:    services.NewEventService(rm, logger),
		Presence:  tracker,
		Hub:       hub,
	}, met, logger)

	if c.GRPCAddr != "" {
		app.grpc = gs.NewGRPCServer(c.GRPCAddr, logger, users, directory, messages, tracker, met)
	}

	return app, nil
}

// OpenBlobStore builds the upload store named by c.UploadBackend. The
// returned readiness check is nil for local disk.
func OpenBlobStore(ctx context.Context, c *config.Config) (blob.Store, func(context.Context) error, error) {
	switch strings.ToLower(c.UploadBackend) {
	case "", "disk":
		s, err := blob.NewDiskStore(c.UploadDir)
		return s, nil, err
	case "s3":
		s, err := blob.NewS3Store(ctx, blob.S3Options{
			Bucket:    c.S3Bucket,
			Region:    c.S3Region,
			Endpoint:  c.S3Endpoint,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Ping, nil
	}
	return nil, nil, fmt.Errorf("unknown upload backend %q", c.UploadBackend)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled, a signal arrives or a server fails.
// The store is closed last.
func (app *App) Run(ctx context.Context) (err error) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "store", app.config.StoreDriver, "uploads", app.config.UploadBackend)

	app.initSignalHandler(cancelFunc)

	defer func() {
		app.hub.Close()
		if cerr := app.store.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close store: %w", cerr))
		}
		app.logger.Info(context.Background(), "App stopped")
	}()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := app.http.Run(gctx); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if app.grpc != nil {
		g.Go(func() error {
			if err := app.grpc.Run(gctx); err != nil {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}
