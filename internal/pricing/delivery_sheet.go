package pricing

import (
	domain "github.com/hanko-field/pricing/internal/domain"
)

// DeliverySheet prices the delivery of an order: fee, discount, and tax rows.
type DeliverySheet struct {
	Sheet
}

// NewDeliverySheet builds a delivery sheet over an existing row set.
func NewDeliverySheet(currency string, rows []domain.CalculationRow) *DeliverySheet {
	return &DeliverySheet{Sheet: newSheet(currency, rows)}
}

// AddFee records a delivery fee contribution.
func (s *DeliverySheet) AddFee(amount int64, taxable bool, meta map[string]any) {
	s.push(domain.CalculationRow{Category: domain.RowCategoryItem, Amount: amount, IsTaxable: taxable, Meta: meta})
}

// AddDiscount records a delivery discount contribution.
func (s *DeliverySheet) AddDiscount(amount int64, discountID string, taxable bool, meta map[string]any) {
	s.push(domain.CalculationRow{
		Category:   domain.RowCategoryDiscount,
		Amount:     amount,
		DiscountID: discountID,
		IsTaxable:  taxable,
		Meta:       meta,
	})
}

// AddTax records a tax row.
func (s *DeliverySheet) AddTax(amount int64, rate float64, meta map[string]any) {
	s.push(domain.CalculationRow{Category: domain.RowCategoryTax, Amount: amount, Rate: rate, Meta: meta})
}

// DiscountPrices aggregates discount rows per discount ID, dropping zero sums.
func (s *DeliverySheet) DiscountPrices(explicitID string) []domain.DiscountPrice {
	return s.discountPrices(explicitID)
}
