package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"pharmadesk/internal/core/apperror"
	"pharmadesk/internal/core/id"
	"pharmadesk/internal/domain"
	"pharmadesk/internal/domain/billing"
)

// Cloneable documents can be copied in and out of the store.
type Cloneable[T any] interface {
	domain.Document
	Clone() T
}

// DocumentRepo implements domain.DocumentRepository for one document kind.
type DocumentRepo[T Cloneable[T]] struct {
	store *Store
	kind  string
}

// NewDocumentRepo creates a repository storing documents under kind.
func NewDocumentRepo[T Cloneable[T]](store *Store, kind string) *DocumentRepo[T] {
	store.write(context.Background(), func() {
		if store.docs[kind] == nil {
			store.docs[kind] = make(map[id.ID]any)
			store.lines[kind] = make(map[id.ID][]billing.LineItem)
		}
	})
	return &DocumentRepo[T]{store: store, kind: kind}
}

// Create inserts a new document.
func (r *DocumentRepo[T]) Create(ctx context.Context, doc T) error {
	docID := doc.Header().ID
	var err error
	r.store.write(ctx, func() {
		if _, exists := r.store.docs[r.kind][docID]; exists {
			err = apperror.NewConflict(r.kind + " already exists").WithDetail("id", docID)
			return
		}
		stored := doc.Clone()
		stored.SetLineItems(nil)
		r.store.docs[r.kind][docID] = stored
	})
	return err
}

// GetByID returns a copy of the stored document without lines.
func (r *DocumentRepo[T]) GetByID(ctx context.Context, docID id.ID) (T, error) {
	var (
		doc T
		ok  bool
	)
	r.store.read(func() {
		var v any
		v, ok = r.store.docs[r.kind][docID]
		if ok {
			doc = v.(T).Clone()
		}
	})
	if !ok {
		var zero T
		return zero, apperror.NewNotFound(r.kind, docID)
	}
	return doc, nil
}

// GetForUpdate is GetByID; transactions are already exclusive.
func (r *DocumentRepo[T]) GetForUpdate(ctx context.Context, docID id.ID) (T, error) {
	return r.GetByID(ctx, docID)
}

// Update replaces header and totals with optimistic version check.
func (r *DocumentRepo[T]) Update(ctx context.Context, doc T) error {
	h := doc.Header()
	var err error
	r.store.write(ctx, func() {
		v, ok := r.store.docs[r.kind][h.ID]
		if !ok {
			err = apperror.NewNotFound(r.kind, h.ID)
			return
		}
		if v.(T).Header().Version != h.Version {
			err = apperror.NewConcurrentModification(r.kind, h.ID)
			return
		}
		h.Version++
		stored := doc.Clone()
		stored.SetLineItems(nil)
		r.store.docs[r.kind][h.ID] = stored
	})
	return err
}

// Delete removes the document and its lines.
func (r *DocumentRepo[T]) Delete(ctx context.Context, docID id.ID) error {
	var err error
	r.store.write(ctx, func() {
		if _, ok := r.store.docs[r.kind][docID]; !ok {
			err = apperror.NewNotFound(r.kind, docID)
			return
		}
		delete(r.store.docs[r.kind], docID)
		delete(r.store.lines[r.kind], docID)
	})
	return err
}

// List filters, sorts newest first and paginates.
func (r *DocumentRepo[T]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	filter = filter.Normalize()
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	var matched []T
	r.store.read(func() {
		for _, v := range r.store.docs[r.kind] {
			doc := v.(T)
			h := doc.Header()
			if filter.PharmacyID != "" && h.PharmacyID != filter.PharmacyID {
				continue
			}
			if filter.DateFrom != nil && h.Date.Before(*filter.DateFrom) {
				continue
			}
			if filter.DateTo != nil && h.Date.After(*filter.DateTo) {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(h.Number), search) &&
				!strings.Contains(strings.ToLower(h.CounterpartyName), search) {
				continue
			}
			matched = append(matched, doc.Clone())
		}
	})

	slices.SortFunc(matched, func(a, b T) int {
		ha, hb := a.Header(), b.Header()
		if c := hb.Date.Compare(ha.Date); c != 0 {
			return c
		}
		return cmp.Compare(hb.ID.String(), ha.ID.String())
	})

	result := domain.ListResult[T]{
		TotalCount: int64(len(matched)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
		Items:      []T{},
	}
	if filter.Offset < len(matched) {
		end := min(filter.Offset+filter.Limit, len(matched))
		result.Items = matched[filter.Offset:end]
	}
	return result, nil
}

// GetLines returns a copy of the document lines.
func (r *DocumentRepo[T]) GetLines(ctx context.Context, docID id.ID) ([]billing.LineItem, error) {
	var lines []billing.LineItem
	r.store.read(func() {
		lines = slices.Clone(r.store.lines[r.kind][docID])
	})
	return lines, nil
}

// GetLinesBatch returns lines for several documents.
func (r *DocumentRepo[T]) GetLinesBatch(ctx context.Context, docIDs []id.ID) (map[id.ID][]billing.LineItem, error) {
	out := make(map[id.ID][]billing.LineItem, len(docIDs))
	r.store.read(func() {
		for _, docID := range docIDs {
			out[docID] = slices.Clone(r.store.lines[r.kind][docID])
		}
	})
	return out, nil
}

// SaveLines replaces all lines of a document.
func (r *DocumentRepo[T]) SaveLines(ctx context.Context, docID id.ID, lines []billing.LineItem) error {
	r.store.write(ctx, func() {
		r.store.lines[r.kind][docID] = slices.Clone(lines)
	})
	return nil
}
