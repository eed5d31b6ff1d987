package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"teranga/internal/platform/config"
	"teranga/internal/platform/httpserver"
	"teranga/internal/platform/logger"
)

const devSigningKey = "dev-secret-key-change-in-production"

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	if cfg.IsProduction() {
		if cfg.Auth.JWTSigningKey == devSigningKey {
			return errors.New("JWT_SIGNING_KEY must be set in production")
		}
		if cfg.Database.URL == "" {
			return errors.New("DATABASE_URL must be set in production")
		}
	}

	in, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer in.Close()

	a, err := buildApp(cfg, in, log)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	srv := httpserver.New(cfg.Addr, a.router)

	g, gctx := errgroup.WithContext(ctx)
	log.Info("starting teranga", "env", cfg.Environment)
	g.Go(func() error {
		if err := httpserver.Serve(gctx, srv, 10*time.Second, log); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	if a.relay != nil {
		g.Go(func() error {
			err := a.relay.Run(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	return g.Wait()
}
