// Package register_repo provides the PostgreSQL medicine catalog used by
// the stock engine.
package register_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"pharmadesk/internal/domain/registers/stock"
	"pharmadesk/internal/infrastructure/storage/postgres"
)

const medicinesTable = "medicines"

var _ stock.MedicineStore = (*MedicineRepo)(nil)

// MedicineRepo implements stock.MedicineStore.
type MedicineRepo struct {
	db      postgres.QuerierProvider
	builder squirrel.StatementBuilderType
	cols    []string
}

// NewMedicineRepo creates a new medicine repository.
func NewMedicineRepo(db postgres.QuerierProvider) *MedicineRepo {
	return &MedicineRepo{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		cols:    postgres.ExtractDBColumns[stock.Medicine](),
	}
}

// FindByID returns stock.ErrMedicineNotFound for an unknown id.
func (r *MedicineRepo) FindByID(ctx context.Context, medicineID string) (*stock.Medicine, error) {
	return r.findOne(ctx, squirrel.Eq{"id": medicineID})
}

// FindByName matches the name case-insensitively.
func (r *MedicineRepo) FindByName(ctx context.Context, name string) (*stock.Medicine, error) {
	return r.findOne(ctx, squirrel.Expr("lower(name) = lower(?)", name))
}

func (r *MedicineRepo) findOne(ctx context.Context, where squirrel.Sqlizer) (*stock.Medicine, error) {
	sql, args, err := r.builder.Select(r.cols...).
		From(medicinesTable).
		Where(where).
		OrderBy("id").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var med stock.Medicine
	if err := pgxscan.Get(ctx, r.db.GetQuerier(ctx), &med, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, stock.ErrMedicineNotFound
		}
		return nil, fmt.Errorf("get medicine: %w", err)
	}
	return &med, nil
}

// IncrementStock applies delta in one conditional UPDATE. When no row
// qualifies the counter is read back to tell a missing medicine from an
// underflow.
func (r *MedicineRepo) IncrementStock(ctx context.Context, medicineID string, delta int64) (int64, error) {
	q := r.db.GetQuerier(ctx)

	var current int64
	err := q.QueryRow(ctx, `
		UPDATE medicines
		SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1 AND stock + $2 >= 0
		RETURNING stock
	`, medicineID, delta).Scan(&current)
	if err == nil {
		return current, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("increment stock: %w", err)
	}

	err = q.QueryRow(ctx, `SELECT stock FROM medicines WHERE id = $1`, medicineID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, stock.ErrMedicineNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("read stock: %w", err)
	}
	return 0, &stock.UnderflowError{MedicineID: medicineID, Available: current, Requested: -delta}
}

// Upsert inserts med or refreshes its name and box size. The stock counter
// of an existing row is left alone so reseeding never rewrites balances.
func (r *MedicineRepo) Upsert(ctx context.Context, med stock.Medicine) (inserted bool, err error) {
	err = r.db.GetQuerier(ctx).QueryRow(ctx, `
		INSERT INTO medicines (id, name, stock, units_per_box)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, units_per_box = EXCLUDED.units_per_box, updated_at = NOW()
		RETURNING (xmax = 0)
	`, med.ID, med.Name, med.Stock, med.UnitsPerBox).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("upsert medicine %s: %w", med.ID, err)
	}
	return inserted, nil
}
