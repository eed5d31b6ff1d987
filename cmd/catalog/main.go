// Command catalog seeds the property catalog from a YAML fixture and reports
// properties missing detail or payment-schedule rows.
//
//	catalog seed -f catalog.yaml
//	catalog check-missing
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	catalogservice "teranga/internal/catalog/service"
	catalogstore "teranga/internal/catalog/store"
	"teranga/internal/platform/config"
	"teranga/internal/platform/logger"
	"teranga/internal/platform/postgres"
	audit "teranga/pkg/platform/audit"
	"teranga/pkg/platform/audit/publisher"
	auditpostgres "teranga/pkg/platform/audit/store/postgres"
	txcontext "teranga/pkg/platform/tx"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "seed":
		err = seed(context.Background(), cfg, log, os.Args[2:])
	case "check-missing":
		err = checkMissing(context.Background(), cfg, log)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Error("catalog command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: catalog seed -f <fixture.yaml> | catalog check-missing")
}

func seed(ctx context.Context, cfg config.Server, log *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	path := fs.String("f", cfg.CatalogFixture, "YAML fixture to seed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return errors.New("fixture path is required (-f or CATALOG_FIXTURE)")
	}

	fixture, err := catalogstore.LoadFixtureFile(*path)
	if err != nil {
		return err
	}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db, log); err != nil {
		return err
	}

	auditor := publisher.NewPublisher(auditpostgres.New(db), publisher.WithLogger(log))
	store := catalogstore.NewPostgres(db)
	err = txcontext.Run(ctx, db, func(ctx context.Context) error {
		if err := store.Seed(ctx, fixture); err != nil {
			return err
		}
		return auditor.Emit(ctx, audit.Event{Subject: *path, Action: string(audit.EventCatalogSeeded)})
	})
	if err != nil {
		return err
	}
	log.Info("catalog seeded",
		"path", *path,
		"developers", len(fixture.Developers),
		"properties", len(fixture.Properties),
	)
	return nil
}

func checkMissing(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	report, err := catalogservice.New(catalogstore.NewPostgres(db), catalogservice.WithLogger(log)).CheckMissingData(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
