package documents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmadesk/internal/core/apperror"
	"pharmadesk/internal/domain/billing"
	"pharmadesk/internal/domain/registers/stock"
)

type catalogStub struct {
	byID map[string]stock.Medicine
	err  error
}

func (c *catalogStub) FindByID(_ context.Context, medicineID string) (*stock.Medicine, error) {
	if c.err != nil {
		return nil, c.err
	}
	med, ok := c.byID[medicineID]
	if !ok {
		return nil, stock.ErrMedicineNotFound
	}
	return &med, nil
}

func (c *catalogStub) FindByName(_ context.Context, name string) (*stock.Medicine, error) {
	if c.err != nil {
		return nil, c.err
	}
	for _, med := range c.byID {
		if med.Name == name {
			return &med, nil
		}
	}
	return nil, stock.ErrMedicineNotFound
}

func (c *catalogStub) IncrementStock(context.Context, string, int64) (int64, error) {
	return 0, errors.New("not used")
}

func newCatalog() *catalogStub {
	return &catalogStub{byID: map[string]stock.Medicine{
		"m1": {ID: "m1", Name: "Napa", Stock: 5, UnitsPerBox: 12},
	}}
}

func TestResolve(t *testing.T) {
	r := NewMedicineResolver(newCatalog())
	rows := []billing.RawItem{
		{MedicineID: "m1", Quantity: 1},
		{Name: " Napa ", BoxQuantity: 2},
		{Name: "Bandage", Quantity: 1},
		{MedicineID: "m1", UnitsPerBox: 6},
	}

	out, err := r.Resolve(context.Background(), rows, true)
	require.NoError(t, err)
	require.Len(t, out, 4)

	assert.Equal(t, "Napa", out[0].Name, "empty name is filled from the catalog")
	assert.EqualValues(t, 12, out[0].UnitsPerBox)
	assert.Equal(t, "m1", out[1].MedicineID)
	assert.Empty(t, out[2].MedicineID)
	assert.EqualValues(t, 6, out[3].UnitsPerBox, "row pattern wins over the catalog")

	assert.Empty(t, rows[1].MedicineID, "input is not modified")
}

func TestResolve_WithoutBoxPattern(t *testing.T) {
	r := NewMedicineResolver(newCatalog())

	out, err := r.Resolve(context.Background(), []billing.RawItem{{MedicineID: "m1"}}, false)
	require.NoError(t, err)
	assert.Zero(t, out[0].UnitsPerBox)
}

func TestResolve_Errors(t *testing.T) {
	r := NewMedicineResolver(newCatalog())
	_, err := r.Resolve(context.Background(), []billing.RawItem{{MedicineID: "nope"}}, false)
	assert.True(t, apperror.IsNotFound(err))

	broken := &catalogStub{err: errors.New("connection reset")}
	_, err = NewMedicineResolver(broken).Resolve(context.Background(), []billing.RawItem{{Name: "Napa"}}, false)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDatabase, appErr.Code)
}
