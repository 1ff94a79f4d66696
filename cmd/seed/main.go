// Package main loads a medicine catalog into the database.
//
//	seed [-file catalog.yaml]
//
// Existing medicines keep their stock; only name and box size are refreshed.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"pharmadesk/internal/config"
	"pharmadesk/internal/infrastructure/catalog"
	"pharmadesk/internal/infrastructure/storage/postgres"
	"pharmadesk/internal/infrastructure/storage/postgres/register_repo"
	"pharmadesk/pkg/logger"
)

func main() {
	file := flag.String("file", "", "catalog file (default: storage.seed_file)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)
	defer func() { _ = log.Sync() }()

	path := cfg.Storage.SeedFile
	if *file != "" {
		path = *file
	}
	if path == "" {
		log.Fatal("no catalog file: pass -file or set PHARMA_STORAGE_SEED_FILE")
	}

	medicines, err := catalog.LoadMedicines(path)
	if err != nil {
		log.Fatalw("failed to load catalog", "error", err)
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.Database.URL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	repo := register_repo.NewMedicineRepo(txManager)

	var inserted, refreshed int
	err = txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, med := range medicines {
			created, err := repo.Upsert(ctx, med)
			if err != nil {
				return err
			}
			if created {
				inserted++
			} else {
				refreshed++
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalw("failed to seed medicines", "file", path, "error", err)
	}

	log.Infow("catalog seeded", "file", path, "inserted", inserted, "refreshed", refreshed)
}
