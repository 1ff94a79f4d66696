package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmadesk/internal/domain/registers/stock"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMedicines_YAML(t *testing.T) {
	path := writeFile(t, "catalog.yaml", `
medicines:
  - id: napa
    name: " Napa 500 "
    stock: 120
    units_per_box: 10
  - id: seclo
    name: Seclo 20
    stock: 28
`)

	meds, err := LoadMedicines(path)
	require.NoError(t, err)
	assert.Equal(t, []stock.Medicine{
		{ID: "napa", Name: "Napa 500", Stock: 120, UnitsPerBox: 10},
		{ID: "seclo", Name: "Seclo 20", Stock: 28},
	}, meds)
}

func TestLoadMedicines_JSON(t *testing.T) {
	path := writeFile(t, "catalog.json", `{"medicines":[{"id":"napa","name":"Napa","stock":5,"units_per_box":12}]}`)

	meds, err := LoadMedicines(path)
	require.NoError(t, err)
	require.Len(t, meds, 1)
	assert.Equal(t, 12.0, meds[0].UnitsPerBox)
}

func TestLoadMedicines_Invalid(t *testing.T) {
	path := writeFile(t, "catalog.yaml", `
medicines:
  - id: ""
    name: Nameless id
  - id: napa
    name: Napa
    stock: -1
  - id: seclo
    name: Seclo
  - id: seclo
    name: Seclo again
`)

	_, err := LoadMedicines(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "medicines[0]: id is required")
	assert.Contains(t, err.Error(), "stock must not be negative")
	assert.Contains(t, err.Error(), "duplicate id seclo")
}

func TestLoadMedicines_MissingFile(t *testing.T) {
	_, err := LoadMedicines(filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)
}
