package domain

import (
	"context"
	"errors"
	"fmt"

	"pharmadesk/internal/core/apperror"
	appctx "pharmadesk/internal/core/context"
	"pharmadesk/internal/core/id"
	"pharmadesk/internal/core/numerator"
	"pharmadesk/internal/core/tx"
	"pharmadesk/internal/domain/billing"
	"pharmadesk/internal/domain/registers/stock"
	"pharmadesk/pkg/logger"
)

// ApplyMode decides how stock is moved relative to the document write.
type ApplyMode string

const (
	// ApplyTransactional moves stock inside the document transaction;
	// any stock failure rolls the document back.
	ApplyTransactional ApplyMode = "transactional"

	// ApplyBestEffort moves stock after the document is committed; failures
	// are logged and counted but the document stays.
	ApplyBestEffort ApplyMode = "best_effort"
)

// ParseApplyMode maps a configuration value to an ApplyMode.
func ParseApplyMode(s string) (ApplyMode, bool) {
	switch ApplyMode(s) {
	case "", ApplyTransactional:
		return ApplyTransactional, true
	case ApplyBestEffort:
		return ApplyBestEffort, true
	default:
		return ApplyTransactional, false
	}
}

// Policy holds what differs between document types.
type Policy struct {
	// Entity names the document in errors and logs
	Entity string

	Mode      billing.Mode
	CreateOp  stock.Operation
	DeleteOp  stock.Operation
	Numbering numerator.Config

	// RequireStock validates sufficiency before consuming stock
	RequireStock bool

	// ReconcileOnUpdate moves stock by the difference between old and new items
	ReconcileOnUpdate bool

	Calculate func(items []billing.LineItem, adj billing.Adjustments) billing.DocumentTotals
}

// Input is the client-supplied part of a create or update that the service
// derives the stored items and totals from.
type Input struct {
	Items       []billing.RawItem
	Adjustments billing.Adjustments
}

// DocumentService runs the create/read/update/delete lifecycle of one
// document type: normalize, total, reconcile stock, persist.
type DocumentService[T Document] struct {
	repo      DocumentRepository[T]
	txManager tx.Manager
	numerator numerator.Generator
	stock     *stock.Engine
	resolver  ItemResolver
	applyMode ApplyMode
	policy    Policy
}

// DocumentServiceConfig configures the document service.
type DocumentServiceConfig[T Document] struct {
	Repo      DocumentRepository[T]
	TxManager tx.Manager
	Numerator numerator.Generator
	Stock     *stock.Engine
	Resolver  ItemResolver // optional; rows are used as submitted when nil
	ApplyMode ApplyMode
	Policy    Policy
}

// NewDocumentService creates a document service.
func NewDocumentService[T Document](cfg DocumentServiceConfig[T]) *DocumentService[T] {
	mode := cfg.ApplyMode
	if mode == "" {
		mode = ApplyTransactional
	}
	return &DocumentService[T]{
		repo:      cfg.Repo,
		txManager: cfg.TxManager,
		numerator: cfg.Numerator,
		stock:     cfg.Stock,
		resolver:  cfg.Resolver,
		applyMode: mode,
		policy:    cfg.Policy,
	}
}

// Policy returns the document type policy.
func (s *DocumentService[T]) Policy() Policy {
	return s.policy
}

// Create validates the header, derives items and totals from in, checks
// stock, assigns a number when none was given and persists the document.
func (s *DocumentService[T]) Create(ctx context.Context, doc T, in Input) error {
	h := doc.Header()
	if h.PharmacyID == "" {
		h.PharmacyID = appctx.GetPharmacyID(ctx)
	}

	items, totals, err := s.prepare(ctx, doc, in)
	if err != nil {
		return err
	}

	delta, err := stock.ComputeDelta(items, s.policy.CreateOp)
	if err != nil {
		return unitsError(err)
	}
	if s.policy.RequireStock {
		if err := s.stock.ValidateSufficientStock(ctx, delta); err != nil {
			return err
		}
	}

	if h.Number == "" {
		number, err := s.numerator.GetNextNumber(ctx, s.policy.Numbering)
		if err != nil {
			return apperror.NewInternal(fmt.Errorf("generate number: %w", err))
		}
		h.Number = number
	}

	doc.SetLineItems(billing.RoundItems(items))
	doc.SetTotals(totals)

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, h.ID, doc.LineItems()); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		if s.applyMode == ApplyTransactional {
			return s.stock.Apply(ctx, delta)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.applyMode == ApplyBestEffort {
		s.stock.ApplyBestEffort(ctx, delta, s.policy.CreateOp)
	}

	logger.Info(ctx, s.policy.Entity+" created", "id", h.ID, "number", h.Number, "grand_total", totals.GrandTotal)
	return nil
}

// GetByID returns the persisted document with its lines, as stored.
func (s *DocumentService[T]) GetByID(ctx context.Context, docID id.ID) (T, error) {
	var doc T
	err := s.read(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetByID(ctx, docID)
		if err != nil {
			return s.normalizeGetErr(err, docID)
		}
		if !s.visible(ctx, doc) {
			return apperror.NewNotFound(s.policy.Entity, docID)
		}

		lines, err := s.repo.GetLines(ctx, docID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		doc.SetLineItems(lines)
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return doc, nil
}

// List returns documents of the caller's pharmacy with their lines. Headers
// and lines come from one snapshot.
func (s *DocumentService[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	filter = filter.Normalize()
	if pharmacyID := appctx.GetPharmacyID(ctx); pharmacyID != "" {
		filter.PharmacyID = pharmacyID
	}

	var result ListResult[T]
	err := s.read(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.repo.List(ctx, filter)
		if err != nil {
			return err
		}
		if len(result.Items) == 0 {
			return nil
		}

		ids := make([]id.ID, 0, len(result.Items))
		for _, doc := range result.Items {
			ids = append(ids, doc.Header().ID)
		}
		lines, err := s.repo.GetLinesBatch(ctx, ids)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		for _, doc := range result.Items {
			doc.SetLineItems(lines[doc.Header().ID])
		}
		return nil
	})
	if err != nil {
		return ListResult[T]{}, err
	}
	return result, nil
}

// read runs fn in a read-only transaction when the manager offers one.
func (s *DocumentService[T]) read(ctx context.Context, fn func(ctx context.Context) error) error {
	if ro, ok := s.txManager.(tx.ReadOnlyManager); ok {
		return ro.ReadOnly(ctx, fn)
	}
	return fn(ctx)
}

// Update replaces header, items and totals of an existing document. The
// stored document is loaded and locked before the new items are derived.
// Stock moves by the difference between the stored and the new items when
// the policy reconciles updates.
func (s *DocumentService[T]) Update(ctx context.Context, doc T, in Input) error {
	h := doc.Header()

	var delta stock.Delta
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetForUpdate(ctx, h.ID)
		if err != nil {
			return s.normalizeGetErr(err, h.ID)
		}
		if !s.visible(ctx, existing) {
			return apperror.NewNotFound(s.policy.Entity, h.ID)
		}
		prev := existing.Header()
		if h.Version != 0 && h.Version != prev.Version {
			return apperror.NewConcurrentModification(s.policy.Entity, h.ID)
		}

		items, totals, err := s.prepare(ctx, doc, in)
		if err != nil {
			return err
		}

		if h.Number == "" {
			h.Number = prev.Number
		}
		h.PharmacyID = prev.PharmacyID
		h.CreatedAt = prev.CreatedAt
		h.Version = prev.Version
		h.Touch()

		if s.policy.ReconcileOnUpdate {
			oldLines, err := s.repo.GetLines(ctx, h.ID)
			if err != nil {
				return fmt.Errorf("get lines: %w", err)
			}
			delta, err = stock.ComputeReconciliationDelta(oldLines, items, s.policy.CreateOp)
			if err != nil {
				return unitsError(err)
			}
			if s.policy.RequireStock {
				if err := s.stock.ValidateSufficientStock(ctx, delta); err != nil {
					return err
				}
			}
		}

		doc.SetLineItems(billing.RoundItems(items))
		doc.SetTotals(totals)

		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, h.ID, doc.LineItems()); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		if s.applyMode == ApplyTransactional && !delta.IsEmpty() {
			return s.stock.Apply(ctx, delta)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.applyMode == ApplyBestEffort && !delta.IsEmpty() {
		s.stock.ApplyBestEffort(ctx, delta, s.policy.CreateOp)
	}

	logger.Info(ctx, s.policy.Entity+" updated", "id", h.ID, "number", h.Number, "stock_changes", len(delta))
	return nil
}

// Delete reverses the document's stock effect and removes it.
func (s *DocumentService[T]) Delete(ctx context.Context, docID id.ID) error {
	var (
		number string
		delta  stock.Delta
	)

	load := func(ctx context.Context) error {
		existing, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return s.normalizeGetErr(err, docID)
		}
		if !s.visible(ctx, existing) {
			return apperror.NewNotFound(s.policy.Entity, docID)
		}
		lines, err := s.repo.GetLines(ctx, docID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		number = existing.Header().Number
		delta, err = stock.ComputeDelta(lines, s.policy.DeleteOp)
		if err != nil {
			return unitsError(err)
		}
		return nil
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := load(ctx); err != nil {
			return err
		}
		if s.applyMode == ApplyTransactional {
			if err := s.stock.Apply(ctx, delta); err != nil {
				return err
			}
		}
		return s.repo.Delete(ctx, docID)
	})
	if err != nil {
		return err
	}

	// The reversal follows the committed delete.
	if s.applyMode == ApplyBestEffort {
		s.stock.ApplyBestEffort(ctx, delta, s.policy.DeleteOp)
	}

	logger.Info(ctx, s.policy.Entity+" deleted", "id", docID, "number", number, "stock_changes", len(delta))
	return nil
}

// prepare validates the document and turns in into stored items and totals.
func (s *DocumentService[T]) prepare(ctx context.Context, doc T, in Input) ([]billing.LineItem, billing.DocumentTotals, error) {
	if err := doc.Validate(ctx); err != nil {
		return nil, billing.DocumentTotals{}, s.normalizeValidationErr(err)
	}
	if len(in.Items) == 0 {
		return nil, billing.DocumentTotals{}, apperror.NewValidation("at least one item is required").
			WithDetail("field", "items")
	}

	rows := in.Items
	if s.resolver != nil {
		resolved, err := s.resolver.Resolve(ctx, rows, s.policy.Mode == billing.ModeMultiplicative)
		if err != nil {
			return nil, billing.DocumentTotals{}, err
		}
		rows = resolved
	}

	items, err := billing.Normalize(rows, s.policy.Mode)
	if err != nil {
		return nil, billing.DocumentTotals{}, apperror.NewInternal(err)
	}
	for i, it := range items {
		if !it.UnitsInRange() {
			return nil, billing.DocumentTotals{}, apperror.NewValidation(
				fmt.Sprintf("item %d exceeds %d units", i+1, billing.MaxStockUnits)).
				WithDetail("field", fmt.Sprintf("items[%d]", i)).
				WithDetail("effective_units", it.EffectiveUnits)
		}
	}
	return items, s.policy.Calculate(items, in.Adjustments), nil
}

// visible hides documents of other pharmacies from scoped callers.
func (s *DocumentService[T]) visible(ctx context.Context, doc T) bool {
	scope := appctx.GetPharmacyID(ctx)
	return scope == "" || doc.Header().PharmacyID == scope
}

// unitsError reports stock arithmetic that does not fit the counters as a
// client error.
func unitsError(err error) error {
	if errors.Is(err, stock.ErrUnitsOutOfRange) {
		return apperror.NewValidation(err.Error()).WithDetail("field", "items")
	}
	return apperror.NewInternal(err)
}

func (s *DocumentService[T]) normalizeValidationErr(err error) error {
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

func (s *DocumentService[T]) normalizeGetErr(err error, docID id.ID) error {
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.policy.Entity, docID)
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewDatabase("get "+s.policy.Entity, err)
}
