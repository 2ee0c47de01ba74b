package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ISTE-SCTCE/Admin/internal/logging"
	"github.com/ISTE-SCTCE/Admin/internal/server"
	"github.com/ISTE-SCTCE/Admin/internal/server/config"
	"go.uber.org/automaxprocs/maxprocs"
)

func main() {
	if err := run(); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err != nil {
		return err
	}

	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Info(ctx, fmt.Sprintf(format, args...))
	}))
	defer undo()
	if err != nil {
		logger.Warn(ctx, "failed to set GOMAXPROCS", "error", err)
	}

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}

	return app.Run(ctx)
}
