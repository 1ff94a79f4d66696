package main

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/metric"

	"pharmadesk/internal/config"
	corenumerator "pharmadesk/internal/core/numerator"
	"pharmadesk/internal/core/tx"
	"pharmadesk/internal/domain/documents/invoice"
	"pharmadesk/internal/domain/documents/purchase"
	"pharmadesk/internal/domain/registers/stock"
	"pharmadesk/internal/infrastructure/catalog"
	"pharmadesk/internal/infrastructure/counter"
	"pharmadesk/internal/infrastructure/http/v1/handlers"
	"pharmadesk/internal/infrastructure/storage/memory"
	"pharmadesk/internal/infrastructure/storage/postgres"
	"pharmadesk/internal/infrastructure/storage/postgres/document_repo"
	"pharmadesk/internal/infrastructure/storage/postgres/register_repo"
	"pharmadesk/pkg/logger"
)

// backend bundles the repositories of one storage driver.
type backend struct {
	medicines stock.MedicineStore
	invoices  invoice.Repository
	purchases purchase.Repository
	txManager tx.Manager
	pinger    handlers.Pinger

	// set for the matching driver only
	pgTx     *postgres.TxManager
	memStore *memory.Store

	close func()
}

func openBackend(ctx context.Context, cfg *config.Config, mp metric.MeterProvider) (*backend, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return openMemory(ctx, cfg)
	default:
		return openPostgres(ctx, cfg, mp)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, mp metric.MeterProvider) (*backend, error) {
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.URL)
	if cfg.Database.MaxConns > 0 {
		poolCfg.MaxConns = cfg.Database.MaxConns
	}
	if cfg.Database.MinConns > 0 {
		poolCfg.MinConns = cfg.Database.MinConns
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.RegisterMetrics(mp); err != nil {
		pool.Close()
		return nil, err
	}
	txManager := postgres.NewTxManager(pool)

	return &backend{
		medicines: register_repo.NewMedicineRepo(txManager),
		invoices:  document_repo.NewInvoiceRepo(txManager),
		purchases: document_repo.NewPurchaseRepo(txManager),
		txManager: txManager,
		pinger:    pool,
		pgTx:      txManager,
		close: func() {
			postgres.LogPoolStats(context.Background(), pool)
			pool.Close()
		},
	}, nil
}

func openMemory(ctx context.Context, cfg *config.Config) (*backend, error) {
	store := memory.New()
	medicines := memory.NewMedicineStore(store)

	if cfg.Storage.SeedFile != "" {
		seed, err := catalog.LoadMedicines(cfg.Storage.SeedFile)
		if err != nil {
			return nil, err
		}
		for _, med := range seed {
			medicines.Put(ctx, med)
		}
		logger.Info(ctx, "medicine catalog preloaded", "file", cfg.Storage.SeedFile, "count", len(seed))
	}
	logger.Warn(ctx, "memory storage: documents and stock are lost on restart")

	return &backend{
		medicines: medicines,
		invoices:  memory.NewDocumentRepo[*invoice.Invoice](store, "invoice"),
		purchases: memory.NewDocumentRepo[*purchase.Purchase](store, "purchase"),
		txManager: memory.NewTxManager(store),
		pinger:    store,
		memStore:  store,
		close:     func() {},
	}, nil
}

// openCounter picks the sequence backend for document numbers.
func openCounter(ctx context.Context, cfg *config.Config, be *backend) (corenumerator.Counter, func(), error) {
	switch cfg.Counter.Driver {
	case config.DriverRedis:
		client, err := counter.NewRedisClient(ctx, counter.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return counter.NewRedisCounter(client, ""), func() { _ = client.Close() }, nil

	case config.DriverPostgres:
		if be.pgTx == nil {
			return nil, nil, errors.New("postgres counter needs postgres storage")
		}
		return counter.NewPostgresCounter(be.pgTx), func() {}, nil

	default:
		store := be.memStore
		if store == nil {
			store = memory.New()
		}
		return memory.NewCounter(store), func() {}, nil
	}
}
