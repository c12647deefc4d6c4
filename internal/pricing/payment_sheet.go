package pricing

import (
	domain "github.com/hanko-field/pricing/internal/domain"
)

// PaymentSheet prices the payment of an order: fee, discount, and tax rows.
type PaymentSheet struct {
	Sheet
}

// NewPaymentSheet builds a payment sheet over an existing row set.
func NewPaymentSheet(currency string, rows []domain.CalculationRow) *PaymentSheet {
	return &PaymentSheet{Sheet: newSheet(currency, rows)}
}

// AddFee records a payment fee contribution.
func (s *PaymentSheet) AddFee(amount int64, taxable bool, meta map[string]any) {
	s.push(domain.CalculationRow{Category: domain.RowCategoryItem, Amount: amount, IsTaxable: taxable, Meta: meta})
}

// AddDiscount records a payment discount contribution.
func (s *PaymentSheet) AddDiscount(amount int64, discountID string, taxable bool, meta map[string]any) {
	s.push(domain.CalculationRow{
		Category:   domain.RowCategoryDiscount,
		Amount:     amount,
		DiscountID: discountID,
		IsTaxable:  taxable,
		Meta:       meta,
	})
}

// AddTax records a tax row.
func (s *PaymentSheet) AddTax(amount int64, rate float64, meta map[string]any) {
	s.push(domain.CalculationRow{Category: domain.RowCategoryTax, Amount: amount, Rate: rate, Meta: meta})
}

// DiscountPrices aggregates discount rows per discount ID, dropping zero sums.
func (s *PaymentSheet) DiscountPrices(explicitID string) []domain.DiscountPrice {
	return s.discountPrices(explicitID)
}
