package memory

import (
	"context"
	"strings"

	corenumerator "pharmadesk/internal/core/numerator"
	"pharmadesk/internal/domain/registers/stock"
)

var (
	_ stock.MedicineStore   = (*MedicineStore)(nil)
	_ corenumerator.Counter = (*Counter)(nil)
)

// MedicineStore is the catalog view of a Store.
type MedicineStore struct {
	store *Store
}

// NewMedicineStore creates a medicine store over store.
func NewMedicineStore(store *Store) *MedicineStore {
	return &MedicineStore{store: store}
}

// Put inserts or replaces a medicine. Used for seeding.
func (r *MedicineStore) Put(ctx context.Context, med stock.Medicine) {
	r.store.write(ctx, func() {
		r.store.medicines[med.ID] = med
	})
}

// FindByID implements stock.MedicineStore.
func (r *MedicineStore) FindByID(ctx context.Context, medicineID string) (*stock.Medicine, error) {
	var (
		med stock.Medicine
		ok  bool
	)
	r.store.read(func() {
		med, ok = r.store.medicines[medicineID]
	})
	if !ok {
		return nil, stock.ErrMedicineNotFound
	}
	return &med, nil
}

// FindByName matches the name case-insensitively.
func (r *MedicineStore) FindByName(ctx context.Context, name string) (*stock.Medicine, error) {
	var found *stock.Medicine
	r.store.read(func() {
		for _, med := range r.store.medicines {
			if strings.EqualFold(med.Name, name) {
				found = &med
				return
			}
		}
	})
	if found == nil {
		return nil, stock.ErrMedicineNotFound
	}
	return found, nil
}

// IncrementStock implements stock.MedicineStore with a conditional decrement.
func (r *MedicineStore) IncrementStock(ctx context.Context, medicineID string, delta int64) (int64, error) {
	var (
		result int64
		err    error
	)
	r.store.write(ctx, func() {
		med, ok := r.store.medicines[medicineID]
		if !ok {
			err = stock.ErrMedicineNotFound
			return
		}
		if med.Stock+delta < 0 {
			err = &stock.UnderflowError{MedicineID: medicineID, Available: med.Stock, Requested: -delta}
			return
		}
		med.Stock += delta
		r.store.medicines[medicineID] = med
		result = med.Stock
	})
	return result, err
}

// Counter is a sequence counter over a Store.
type Counter struct {
	store *Store
}

// NewCounter creates a counter over store.
func NewCounter(store *Store) *Counter {
	return &Counter{store: store}
}

// Next implements numerator.Counter.
func (c *Counter) Next(ctx context.Context, key string) (int64, error) {
	return c.Reserve(ctx, key, 1)
}

// Reserve implements numerator.Counter.
func (c *Counter) Reserve(ctx context.Context, key string, n int64) (int64, error) {
	var v int64
	c.store.write(ctx, func() {
		c.store.counters[key] += n
		v = c.store.counters[key]
	})
	return v, nil
}
