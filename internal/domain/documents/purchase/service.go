package purchase

import (
	"pharmadesk/internal/core/numerator"
	"pharmadesk/internal/core/tx"
	"pharmadesk/internal/domain"
	"pharmadesk/internal/domain/registers/stock"
)

// Service provides business operations for purchases.
type Service struct {
	*domain.DocumentService[*Purchase]
}

// ServiceConfig wires the purchase service.
type ServiceConfig struct {
	Repo      Repository
	TxManager tx.Manager
	Numerator numerator.Generator
	Stock     *stock.Engine
	Resolver  domain.ItemResolver
	ApplyMode domain.ApplyMode
}

// NewService creates a new purchase service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		DocumentService: domain.NewDocumentService(domain.DocumentServiceConfig[*Purchase]{
			Repo:      cfg.Repo,
			TxManager: cfg.TxManager,
			Numerator: cfg.Numerator,
			Stock:     cfg.Stock,
			Resolver:  cfg.Resolver,
			ApplyMode: cfg.ApplyMode,
			Policy:    NewPolicy(),
		}),
	}
}
