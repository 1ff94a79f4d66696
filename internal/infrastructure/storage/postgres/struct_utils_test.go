package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pharmadesk/internal/core/entity"
	"pharmadesk/internal/domain/billing"
)

type sampleDoc struct {
	entity.Document
	CustomerPhone string `db:"customer_phone"`
	billing.DocumentTotals
	Lines    []billing.LineItem `db:"-"`
	internal string
}

func TestExtractDBColumns_FlattensEmbedded(t *testing.T) {
	cols := ExtractDBColumns[sampleDoc]()

	for _, expected := range []string{"id", "number", "date", "pharmacy_id", "version", "customer_phone", "sub_total", "grand_total", "change_amount"} {
		assert.Contains(t, cols, expected)
	}
	assert.NotContains(t, cols, "Lines")
	assert.Equal(t, "id", cols[0], "embedded header comes first")
}

func TestExtractDBColumns_PointerType(t *testing.T) {
	assert.Equal(t, ExtractDBColumns[sampleDoc](), ExtractDBColumns[*sampleDoc]())
}

func TestStructToMap(t *testing.T) {
	doc := sampleDoc{Document: entity.NewDocument("ph-1"), CustomerPhone: "017"}
	doc.Number = "INV-00009"
	doc.Date = time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	doc.GrandTotal = 95

	m := StructToMap(&doc)

	assert.Equal(t, doc.ID, m["id"])
	assert.Equal(t, "INV-00009", m["number"])
	assert.Equal(t, 1, m["version"])
	assert.Equal(t, "017", m["customer_phone"])
	assert.Equal(t, 95.0, m["grand_total"])
	assert.NotContains(t, m, "internal")
}

func TestStructValues(t *testing.T) {
	line := billing.LineItem{ReferenceName: "Napa", EffectiveUnits: 5, LineTotal: 45}

	vals := StructValues(line, []string{"name", "effective_units", "line_total", "missing"})

	assert.Equal(t, []any{"Napa", 5.0, 45.0, nil}, vals)
}

func TestStructToMap_NonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
}
