// Package main applies the database schema.
//
//	migrate [-path migrations] up|down|version|steps <n>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"pharmadesk/internal/config"
	"pharmadesk/internal/infrastructure/storage/postgres/migration"
	"pharmadesk/pkg/logger"
)

func main() {
	path := flag.String("path", "", "migrations directory (default: database.migrations_path)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.App.IsDevelopment(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)
	defer func() { _ = log.Sync() }()

	migrationsPath := cfg.Database.MigrationsPath
	if *path != "" {
		migrationsPath = *path
	}

	m, err := migration.New(cfg.Database.URL, migrationsPath)
	if err != nil {
		log.Fatalw("failed to open migrations", "path", migrationsPath, "error", err)
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warnw("failed to close migrator", "error", err)
		}
	}()

	ctx := context.Background()
	switch args[0] {
	case "up":
		err = m.Up(ctx)
	case "down":
		err = m.Down(ctx)
	case "steps":
		if len(args) < 2 {
			log.Fatal("step count required: migrate steps <n>")
		}
		n, convErr := strconv.Atoi(args[1])
		if convErr != nil {
			log.Fatalw("invalid step count", "value", args[1])
		}
		err = m.Steps(ctx, n)
	case "version":
		version, dirty, verr := m.Version()
		if verr == nil {
			log.Infow("current migration version", "version", version, "dirty", dirty)
		}
		err = verr
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalw("migration failed", "command", args[0], "error", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: migrate [-path dir] up|down|version|steps <n>")
}
