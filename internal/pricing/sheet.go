package pricing

import (
	"errors"

	domain "github.com/hanko-field/pricing/internal/domain"
)

// ErrSheetQuantity signals a product sheet operation that needs a positive quantity.
var ErrSheetQuantity = errors.New("pricing sheet: quantity must be positive")

// RowFilter selects calculation rows by exact match on the set fields. A nil
// field is a wildcard and matches every row, including rows where the
// corresponding value is unset; it does not mean "match rows without it".
type RowFilter struct {
	Category   *domain.RowCategory
	DiscountID *string
	IsTaxable  *bool
	IsNetPrice *bool
}

func (f RowFilter) matches(row domain.CalculationRow) bool {
	if f.Category != nil && row.Category != *f.Category {
		return false
	}
	if f.DiscountID != nil && row.DiscountID != *f.DiscountID {
		return false
	}
	if f.IsTaxable != nil && row.IsTaxable != *f.IsTaxable {
		return false
	}
	if f.IsNetPrice != nil && row.IsNetPrice != *f.IsNetPrice {
		return false
	}
	return true
}

// Sheet is the read-mostly query facade over an ordered calculation row list.
// Rows are append-only during a pass; aggregates are pure functions of the
// row list. Domain sheets embed Sheet and restrict which categories their
// add methods may push.
type Sheet struct {
	rows     []domain.CalculationRow
	currency string
}

func newSheet(currency string, rows []domain.CalculationRow) Sheet {
	return Sheet{rows: domain.CloneRows(rows), currency: currency}
}

// Currency returns the ISO code all row amounts are denominated in.
func (s *Sheet) Currency() string { return s.currency }

// Rows returns a copy of the raw calculation rows.
func (s *Sheet) Rows() []domain.CalculationRow { return domain.CloneRows(s.rows) }

// IsValid reports whether at least one row was recorded.
func (s *Sheet) IsValid() bool { return len(s.rows) > 0 }

// Sum adds the amounts of all rows matching the filter.
func (s *Sheet) Sum(filter RowFilter) int64 {
	var total int64
	for _, row := range s.rows {
		if filter.matches(row) {
			total += row.Amount
		}
	}
	return total
}

// FilterBy returns copies of all rows matching the filter.
func (s *Sheet) FilterBy(filter RowFilter) []domain.CalculationRow {
	var out []domain.CalculationRow
	for _, row := range s.rows {
		if filter.matches(row) {
			out = append(out, row)
		}
	}
	return out
}

// Gross is the sum over every row of the sheet.
func (s *Sheet) Gross() int64 { return s.Sum(RowFilter{}) }

// TaxSum is the sum over all tax rows.
func (s *Sheet) TaxSum() int64 {
	category := domain.RowCategoryTax
	return s.Sum(RowFilter{Category: &category})
}

// Net is the gross amount minus the tax sum.
func (s *Sheet) Net() int64 { return s.Gross() - s.TaxSum() }

// Total aggregates a single category, or the whole sheet when category is nil.
func (s *Sheet) Total(category *domain.RowCategory) domain.Money {
	return domain.Money{
		Amount:   s.Sum(RowFilter{Category: category}),
		Currency: s.currency,
	}
}

// DiscountIDs lists the distinct discount identifiers present on the sheet,
// in first-seen order.
func (s *Sheet) DiscountIDs() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, row := range s.rows {
		if row.DiscountID == "" {
			continue
		}
		if _, ok := seen[row.DiscountID]; ok {
			continue
		}
		seen[row.DiscountID] = struct{}{}
		ids = append(ids, row.DiscountID)
	}
	return ids
}

// push appends one row. Domain sheets expose typed add methods that fix the
// category, so the restricted category sets hold by construction.
func (s *Sheet) push(row domain.CalculationRow) {
	s.rows = append(s.rows, row)
}

// discountPrices groups discount rows by discount ID, summing their amounts.
// Entries that sum to zero are dropped; a non-empty explicitID restricts the
// result to that single discount.
func (s *Sheet) discountPrices(explicitID string) []domain.DiscountPrice {
	sums := make(map[string]int64)
	var order []string
	for _, row := range s.rows {
		if row.DiscountID == "" || row.Category != domain.RowCategoryDiscount {
			continue
		}
		if explicitID != "" && row.DiscountID != explicitID {
			continue
		}
		if _, ok := sums[row.DiscountID]; !ok {
			order = append(order, row.DiscountID)
		}
		sums[row.DiscountID] += row.Amount
	}

	prices := make([]domain.DiscountPrice, 0, len(order))
	for _, id := range order {
		if sums[id] == 0 {
			continue
		}
		prices = append(prices, domain.DiscountPrice{
			DiscountID: id,
			Amount:     sums[id],
			Currency:   s.currency,
		})
	}
	return prices
}
