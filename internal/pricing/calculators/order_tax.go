package calculators

import (
	"context"
	"sort"

	domain "github.com/hanko-field/pricing/internal/domain"
	"github.com/hanko-field/pricing/internal/pricing"
)

// OrderTaxCalculator runs last and adds one tax row per distinct tax rate.
// Row amounts are net: tax is charged on top of the taxable rows. Item rows
// carry their own rate; taxable rows of other categories are taxed at the
// configured default rate.
type OrderTaxCalculator struct {
	DefaultRate float64
}

func (OrderTaxCalculator) Info() pricing.AdapterInfo {
	return pricing.AdapterInfo{
		Key:        KeyOrderTax,
		Label:      "Order tax",
		Version:    "1.0.0",
		OrderIndex: 500,
	}
}

func (OrderTaxCalculator) IsActivatedFor(pricing.OrderContext) bool { return true }

func (c OrderTaxCalculator) Calculate(_ context.Context, state pricing.CalculationState[pricing.OrderContext]) ([]domain.CalculationRow, error) {
	return taxRows(state.Rows, c.DefaultRate), nil
}

// taxRows aggregates the taxable base per rate and emits one tax row for
// every rate with a non-zero result. Rows are emitted in ascending rate
// order so repeated passes produce identical row sets.
func taxRows(rows []domain.CalculationRow, defaultRate float64) []domain.CalculationRow {
	bases := make(map[float64]int64)
	for _, row := range rows {
		if !row.IsTaxable || row.Category == domain.RowCategoryTax {
			continue
		}
		rate := defaultRate
		if row.Category == domain.RowCategoryItem {
			// Items carry their own rate; a zero-rated item stays untaxed
			// instead of falling back to the default.
			rate = row.Rate
		}
		if rate == 0 {
			continue
		}
		bases[rate] += row.Amount
	}

	rates := make([]float64, 0, len(bases))
	for rate := range bases {
		rates = append(rates, rate)
	}
	sort.Float64s(rates)

	var out []domain.CalculationRow
	for _, rate := range rates {
		tax := applyRate(bases[rate], rate)
		if tax == 0 {
			continue
		}
		out = append(out, domain.CalculationRow{
			Category: domain.RowCategoryTax,
			Amount:   tax,
			Rate:     rate,
			Meta:     map[string]any{"taxRate": rate},
		})
	}
	return out
}
