package register_repo

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmadesk/internal/domain/registers/stock"
	"pharmadesk/internal/infrastructure/storage/postgres"
)

type mockRow struct {
	val  int64
	flag bool
	err  error
}

func (r mockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	switch d := dest[0].(type) {
	case *int64:
		*d = r.val
	case *bool:
		*d = r.flag
	}
	return nil
}

// scriptedQuerier answers QueryRow calls from a queue.
type scriptedQuerier struct {
	rows  []mockRow
	calls []string
	args  [][]any
}

func (q *scriptedQuerier) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("unexpected exec")
}

func (q *scriptedQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected query")
}

func (q *scriptedQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.calls = append(q.calls, sql)
	q.args = append(q.args, args)
	row := q.rows[0]
	q.rows = q.rows[1:]
	return row
}

func (q *scriptedQuerier) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("unexpected copy")
}

type staticProvider struct{ q postgres.Querier }

func (p staticProvider) GetQuerier(context.Context) postgres.Querier { return p.q }

func TestIncrementStock(t *testing.T) {
	ctx := context.Background()

	t.Run("Applied", func(t *testing.T) {
		q := &scriptedQuerier{rows: []mockRow{{val: 7}}}
		left, err := NewMedicineRepo(staticProvider{q}).IncrementStock(ctx, "m1", -3)
		require.NoError(t, err)
		assert.Equal(t, int64(7), left)
		assert.Len(t, q.calls, 1)
	})

	t.Run("Underflow", func(t *testing.T) {
		q := &scriptedQuerier{rows: []mockRow{{err: pgx.ErrNoRows}, {val: 10}}}
		_, err := NewMedicineRepo(staticProvider{q}).IncrementStock(ctx, "m1", -15)

		var under *stock.UnderflowError
		require.ErrorAs(t, err, &under)
		assert.Equal(t, int64(10), under.Available)
		assert.Equal(t, int64(15), under.Requested)
	})

	t.Run("Missing", func(t *testing.T) {
		q := &scriptedQuerier{rows: []mockRow{{err: pgx.ErrNoRows}, {err: pgx.ErrNoRows}}}
		_, err := NewMedicineRepo(staticProvider{q}).IncrementStock(ctx, "ghost", 1)
		assert.ErrorIs(t, err, stock.ErrMedicineNotFound)
	})

	t.Run("DatabaseError", func(t *testing.T) {
		q := &scriptedQuerier{rows: []mockRow{{err: errors.New("conn refused")}}}
		_, err := NewMedicineRepo(staticProvider{q}).IncrementStock(ctx, "m1", 1)
		require.Error(t, err)
		assert.NotErrorIs(t, err, stock.ErrMedicineNotFound)
		assert.Len(t, q.calls, 1)
	})
}

func TestUpsert(t *testing.T) {
	ctx := context.Background()
	med := stock.Medicine{ID: "napa", Name: "Napa 500", Stock: 120, UnitsPerBox: 10}

	t.Run("Inserted", func(t *testing.T) {
		q := &scriptedQuerier{rows: []mockRow{{flag: true}}}
		inserted, err := NewMedicineRepo(staticProvider{q}).Upsert(ctx, med)
		require.NoError(t, err)
		assert.True(t, inserted)
		assert.Contains(t, q.calls[0], "ON CONFLICT (id) DO UPDATE")
		assert.NotContains(t, q.calls[0], "stock = EXCLUDED.stock")
		assert.Equal(t, []any{"napa", "Napa 500", int64(120), 10.0}, q.args[0])
	})

	t.Run("Refreshed", func(t *testing.T) {
		q := &scriptedQuerier{rows: []mockRow{{flag: false}}}
		inserted, err := NewMedicineRepo(staticProvider{q}).Upsert(ctx, med)
		require.NoError(t, err)
		assert.False(t, inserted)
	})

	t.Run("DatabaseError", func(t *testing.T) {
		q := &scriptedQuerier{rows: []mockRow{{err: errors.New("relation does not exist")}}}
		_, err := NewMedicineRepo(staticProvider{q}).Upsert(ctx, med)
		assert.ErrorContains(t, err, "upsert medicine napa")
	})
}
