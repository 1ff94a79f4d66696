package counter

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "pharmadesk/internal/core/numerator"
	"pharmadesk/internal/infrastructure/storage/postgres"
	"pharmadesk/pkg/numerator"
)

// --- postgres ---

type mockRow struct {
	val int64
	err error
}

func (r mockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int64)) = r.val
	return nil
}

// sequenceQuerier emulates sys_sequences UPSERTs.
type sequenceQuerier struct {
	mu   sync.Mutex
	vals map[string]int64
	err  error
}

func (q *sequenceQuerier) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (q *sequenceQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func (q *sequenceQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	if q.err != nil {
		return mockRow{err: q.err}
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	key := args[0].(string)
	q.vals[key] += args[1].(int64)
	return mockRow{val: q.vals[key]}
}

func (q *sequenceQuerier) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

type staticProvider struct{ q postgres.Querier }

func (p staticProvider) GetQuerier(context.Context) postgres.Querier { return p.q }

func TestPostgresCounter(t *testing.T) {
	ctx := context.Background()
	c := NewPostgresCounter(staticProvider{&sequenceQuerier{vals: map[string]int64{}}})

	v, err := c.Next(ctx, "invoice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	v, err = c.Reserve(ctx, "invoice", 50)
	require.NoError(t, err)
	assert.Equal(t, int64(51), v)

	v, err = c.Next(ctx, "purchase")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	_, err = c.Reserve(ctx, "invoice", 0)
	assert.Error(t, err)
}

func TestPostgresCounter_Error(t *testing.T) {
	c := NewPostgresCounter(staticProvider{&sequenceQuerier{err: errors.New("relation does not exist")}})

	_, err := c.Next(context.Background(), "invoice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relation does not exist")
}

func TestPostgresCounter_DrivesNumerator(t *testing.T) {
	c := NewPostgresCounter(staticProvider{&sequenceQuerier{vals: map[string]int64{}}})
	svc := numerator.New(c, nil)

	first, err := svc.GetNextNumber(context.Background(), corenumerator.InvoiceConfig)
	require.NoError(t, err)
	second, err := svc.GetNextNumber(context.Background(), corenumerator.InvoiceConfig)
	require.NoError(t, err)

	assert.Equal(t, "INV-00001", first)
	assert.Equal(t, "INV-00002", second)
}

// --- redis ---

type fakeRedis struct {
	mu   sync.Mutex
	vals map[string]int64
	keys []string
	err  error
}

func (f *fakeRedis) IncrBy(ctx context.Context, key string, value int64) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "incrby", key, value)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	f.vals[key] += value
	cmd.SetVal(f.vals[key])
	return cmd
}

func TestRedisCounter(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRedis{vals: map[string]int64{}}
	c := NewRedisCounter(fake, "")

	v, err := c.Next(ctx, "invoice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	v, err = c.Reserve(ctx, "invoice", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(11), v)

	assert.Equal(t, []string{"pharmadesk:seq:invoice", "pharmadesk:seq:invoice"}, fake.keys)

	_, err = c.Reserve(ctx, "invoice", -1)
	assert.Error(t, err)
}

func TestRedisCounter_Error(t *testing.T) {
	c := NewRedisCounter(&fakeRedis{err: redis.ErrClosed}, "shop1:")

	_, err := c.Next(context.Background(), "purchase")
	assert.ErrorIs(t, err, redis.ErrClosed)
}

func TestRedisCounter_CachedNumerator(t *testing.T) {
	fake := &fakeRedis{vals: map[string]int64{}}
	svc := numerator.New(NewRedisCounter(fake, "t:"), &corenumerator.Options{
		Strategy:  corenumerator.StrategyCached,
		RangeSize: 5,
	})

	for i := 1; i <= 6; i++ {
		_, err := svc.GetNextNumber(context.Background(), corenumerator.PurchaseConfig)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(10), fake.vals["t:purchase"], "two ranges of five reserved")
}
