package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/desertthunder/coursetube/internal/server"
	"github.com/desertthunder/coursetube/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the JSON API until interrupted.
//
// Logs go to stderr and, when log.file is configured, to a size-rotated file.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if r.config.Log.File != "" {
		logger, err := shared.NewConfiguredLogger(r.config.Log)
		if err != nil {
			return err
		}
		r.SetLogger(logger)
	}
	if err := r.openStore(); err != nil {
		return err
	}

	if r.youtube == nil || !r.youtube.HasCredentials() {
		r.logger.Warn("no YouTube credentials configured; playlist imports will fail")
	}

	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := int(cmd.Int("port")); port > 0 {
		cfg.Port = port
	}

	srv := server.New(cfg.Addr(), r.handler())

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.ListenAndServe(ctx, srv, r.logger); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
	}
	return nil
}

// handler wires the API routes behind logging, recovery and authentication.
func (r *Runner) handler() *server.BasicRouter {
	router := server.NewBasicRouter()
	router.Use(
		server.RequestLogger(r.logger),
		server.Recoverer(r.logger),
		server.Authenticate(r.users),
	)

	server.NewAPIHandler(server.APIOpts{
		Importer: r.engine,
		Courses:  r.courses,
		Items:    r.items,
		Progress: r.progress,
		Notes:    r.notes,
		Logger:   r.logger,
	}).Register(router)
	return router
}
