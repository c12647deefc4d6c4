package pricing

import (
	domain "github.com/hanko-field/pricing/internal/domain"
)

// OrderSheet is the order-level pricing sheet. It carries the full category
// set: item sums, discounts, taxes, delivery, and payment charges.
type OrderSheet struct {
	Sheet
}

// NewOrderSheet builds an order sheet over an existing row set. Pass nil rows
// to start an empty contribution sheet inside an adapter.
func NewOrderSheet(currency string, rows []domain.CalculationRow) *OrderSheet {
	return &OrderSheet{Sheet: newSheet(currency, rows)}
}

// AddItem records the aggregated product item amount for the order.
func (s *OrderSheet) AddItem(amount int64, meta map[string]any) {
	s.push(domain.CalculationRow{Category: domain.RowCategoryItem, Amount: amount, IsTaxable: true, Meta: meta})
}

// AddDiscount records an order-level discount contribution. Discount amounts
// are negative by convention.
func (s *OrderSheet) AddDiscount(amount int64, discountID string, taxable bool, meta map[string]any) {
	s.push(domain.CalculationRow{
		Category:   domain.RowCategoryDiscount,
		Amount:     amount,
		DiscountID: discountID,
		IsTaxable:  taxable,
		Meta:       meta,
	})
}

// AddTax records a tax row computed by an external tax adapter.
func (s *OrderSheet) AddTax(amount int64, rate float64, meta map[string]any) {
	s.push(domain.CalculationRow{Category: domain.RowCategoryTax, Amount: amount, Rate: rate, Meta: meta})
}

// AddDelivery records the delivery charge for the order.
func (s *OrderSheet) AddDelivery(amount int64, taxable bool, meta map[string]any) {
	s.push(domain.CalculationRow{Category: domain.RowCategoryDelivery, Amount: amount, IsTaxable: taxable, Meta: meta})
}

// AddPayment records the payment fee for the order.
func (s *OrderSheet) AddPayment(amount int64, taxable bool, meta map[string]any) {
	s.push(domain.CalculationRow{Category: domain.RowCategoryPayment, Amount: amount, IsTaxable: taxable, Meta: meta})
}

// DiscountPrices aggregates discount rows per discount ID, dropping entries
// that sum to zero. A non-empty explicitID narrows to one discount.
func (s *OrderSheet) DiscountPrices(explicitID string) []domain.DiscountPrice {
	return s.discountPrices(explicitID)
}

// DiscountSum is the summed contribution of a single discount on this sheet.
func (s *OrderSheet) DiscountSum(discountID string) int64 {
	category := domain.RowCategoryDiscount
	return s.Sum(RowFilter{Category: &category, DiscountID: &discountID})
}

// ItemsSum is the total of all item rows.
func (s *OrderSheet) ItemsSum() int64 {
	category := domain.RowCategoryItem
	return s.Sum(RowFilter{Category: &category})
}

// FormattedSummary maps the per-category totals, gross, and net through the
// supplied money formatter. Keys are the category names plus "gross" and
// "net". This is a presentation convenience for rendering layers.
func (s *OrderSheet) FormattedSummary(format func(domain.Money) string) map[string]string {
	if format == nil {
		format = func(m domain.Money) string { return m.Currency }
	}
	summary := make(map[string]string, 7)
	for _, category := range []domain.RowCategory{
		domain.RowCategoryItem,
		domain.RowCategoryDiscount,
		domain.RowCategoryTax,
		domain.RowCategoryDelivery,
		domain.RowCategoryPayment,
	} {
		c := category
		summary[string(category)] = format(s.Total(&c))
	}
	summary["gross"] = format(domain.Money{Amount: s.Gross(), Currency: s.currency})
	summary["net"] = format(domain.Money{Amount: s.Net(), Currency: s.currency})
	return summary
}
