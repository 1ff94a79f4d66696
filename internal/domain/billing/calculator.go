package billing

import (
	"math"

	"pharmadesk/internal/core/types"
)

// DocumentTotals is the aggregate of a document. It is always computed
// server-side; client-supplied totals are ignored.
type DocumentTotals struct {
	SubTotal              float64 `json:"subTotal" db:"sub_total"`
	ItemsDiscount         float64 `json:"itemsDiscount" db:"items_discount"`
	TotalVAT              float64 `json:"totalVat" db:"total_vat"`
	DocumentLevelDiscount float64 `json:"documentLevelDiscount" db:"document_discount"`
	TotalDiscount         float64 `json:"totalDiscount" db:"total_discount"`
	GrandTotal            float64 `json:"grandTotal" db:"grand_total"`
	PreviousBalance       float64 `json:"previousBalance" db:"previous_balance"`
	NetTotal              float64 `json:"netTotal" db:"net_total"`
	PaidAmount            float64 `json:"paidAmount" db:"paid_amount"`
	DueAmount             float64 `json:"dueAmount" db:"due_amount"`
	ChangeAmount          float64 `json:"changeAmount" db:"change_amount"`
}

// Adjustments are the document-level inputs to the calculator.
type Adjustments struct {
	DocumentDiscount float64
	PreviousBalance  float64
	PaidAmount       float64
}

// Calculate aggregates items under invoice rules: the previous balance is
// carried into the net total and overpayment is returned as change.
// An empty item list yields zero sums without error.
func Calculate(items []LineItem, adj Adjustments) DocumentTotals {
	t := sumItems(items, adj)

	t.PreviousBalance = adj.PreviousBalance
	t.NetTotal = t.GrandTotal + t.PreviousBalance
	t.DueAmount = math.Max(0, t.NetTotal-t.PaidAmount)
	t.ChangeAmount = math.Max(0, t.PaidAmount-t.NetTotal)

	return t.rounded()
}

// CalculatePayable aggregates items under purchase rules: the grand total is
// what is owed, no balance is carried and no change is given.
func CalculatePayable(items []LineItem, adj Adjustments) DocumentTotals {
	t := sumItems(items, adj)

	t.NetTotal = t.GrandTotal
	t.DueAmount = math.Max(0, t.NetTotal-t.PaidAmount)

	return t.rounded()
}

func sumItems(items []LineItem, adj Adjustments) DocumentTotals {
	var t DocumentTotals
	for _, it := range items {
		t.SubTotal += it.LineBase
		t.ItemsDiscount += it.LineDiscount
		t.TotalVAT += it.LineVAT
	}

	t.DocumentLevelDiscount = types.NonNegative(adj.DocumentDiscount)
	t.TotalDiscount = t.ItemsDiscount + t.DocumentLevelDiscount
	t.GrandTotal = t.SubTotal - t.TotalDiscount + t.TotalVAT
	t.PaidAmount = types.NonNegative(adj.PaidAmount)
	return t
}

func (t DocumentTotals) rounded() DocumentTotals {
	return DocumentTotals{
		SubTotal:              types.Round2(t.SubTotal),
		ItemsDiscount:         types.Round2(t.ItemsDiscount),
		TotalVAT:              types.Round2(t.TotalVAT),
		DocumentLevelDiscount: types.Round2(t.DocumentLevelDiscount),
		TotalDiscount:         types.Round2(t.TotalDiscount),
		GrandTotal:            types.Round2(t.GrandTotal),
		PreviousBalance:       types.Round2(t.PreviousBalance),
		NetTotal:              types.Round2(t.NetTotal),
		PaidAmount:            types.Round2(t.PaidAmount),
		DueAmount:             types.Round2(t.DueAmount),
		ChangeAmount:          types.Round2(t.ChangeAmount),
	}
}
