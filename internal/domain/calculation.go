package domain

// RowCategory tags a calculation row with the kind of charge it represents.
// Order sheets use the full set; product, delivery, and payment sheets are
// restricted to Item/Discount/Tax.
type RowCategory string

const (
	RowCategoryItem     RowCategory = "ITEM"
	RowCategoryDiscount RowCategory = "DISCOUNT"
	RowCategoryTax      RowCategory = "TAX"
	RowCategoryDelivery RowCategory = "DELIVERY"
	RowCategoryPayment  RowCategory = "PAYMENT"
)

// CalculationRow is one append-only ledger entry produced during a pricing
// pass. Amount is an integer in the owning sheet's currency minor unit.
// Corrections are expressed as new rows with negated amounts, never by
// mutating or removing existing rows.
type CalculationRow struct {
	Category   RowCategory
	Amount     int64
	DiscountID string
	Rate       float64
	IsTaxable  bool
	IsNetPrice bool
	Meta       map[string]any
}

// CloneRows copies a row slice so callers can hand it out without exposing
// the backing array of an accumulating calculation.
func CloneRows(rows []CalculationRow) []CalculationRow {
	if len(rows) == 0 {
		return nil
	}
	out := make([]CalculationRow, len(rows))
	copy(out, rows)
	return out
}

// DiscountPrice is the aggregated contribution of a single discount across
// all rows of a sheet.
type DiscountPrice struct {
	DiscountID string
	Amount     int64
	Currency   string
}
