package invoice

import (
	"pharmadesk/internal/core/numerator"
	"pharmadesk/internal/core/tx"
	"pharmadesk/internal/domain"
	"pharmadesk/internal/domain/registers/stock"
)

// Service provides business operations for invoices.
type Service struct {
	*domain.DocumentService[*Invoice]
}

// ServiceConfig wires the invoice service.
type ServiceConfig struct {
	Repo      Repository
	TxManager tx.Manager
	Numerator numerator.Generator
	Stock     *stock.Engine
	Resolver  domain.ItemResolver
	ApplyMode domain.ApplyMode

	// ReconcileUpdates moves stock when an update changes item quantities.
	// Off by default: historically invoice edits left stock untouched.
	ReconcileUpdates bool
}

// NewService creates a new invoice service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		DocumentService: domain.NewDocumentService(domain.DocumentServiceConfig[*Invoice]{
			Repo:      cfg.Repo,
			TxManager: cfg.TxManager,
			Numerator: cfg.Numerator,
			Stock:     cfg.Stock,
			Resolver:  cfg.Resolver,
			ApplyMode: cfg.ApplyMode,
			Policy:    NewPolicy(cfg.ReconcileUpdates),
		}),
	}
}
