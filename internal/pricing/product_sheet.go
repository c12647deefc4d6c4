package pricing

import (
	domain "github.com/hanko-field/pricing/internal/domain"
)

// ProductSheet prices a single product line item for a given quantity.
// Categories are restricted to item, discount, and tax rows.
type ProductSheet struct {
	Sheet
	quantity int
}

// NewProductSheet builds a product sheet for the given quantity over an
// existing row set.
func NewProductSheet(currency string, quantity int, rows []domain.CalculationRow) *ProductSheet {
	return &ProductSheet{Sheet: newSheet(currency, rows), quantity: quantity}
}

// Quantity returns the line quantity the sheet was built for.
func (s *ProductSheet) Quantity() int { return s.quantity }

// AddItem records the catalog price contribution for the full quantity.
func (s *ProductSheet) AddItem(amount int64, taxable, netPrice bool, meta map[string]any) {
	s.push(domain.CalculationRow{
		Category:   domain.RowCategoryItem,
		Amount:     amount,
		IsTaxable:  taxable,
		IsNetPrice: netPrice,
		Meta:       meta,
	})
}

// AddDiscount records a product-level discount contribution.
func (s *ProductSheet) AddDiscount(amount int64, discountID string, taxable bool, meta map[string]any) {
	s.push(domain.CalculationRow{
		Category:   domain.RowCategoryDiscount,
		Amount:     amount,
		DiscountID: discountID,
		IsTaxable:  taxable,
		Meta:       meta,
	})
}

// AddTax records a tax row.
func (s *ProductSheet) AddTax(amount int64, rate float64, meta map[string]any) {
	s.push(domain.CalculationRow{Category: domain.RowCategoryTax, Amount: amount, Rate: rate, Meta: meta})
}

// DiscountPrices aggregates discount rows per discount ID, dropping zero sums.
func (s *ProductSheet) DiscountPrices(explicitID string) []domain.DiscountPrice {
	return s.discountPrices(explicitID)
}

// DiscountSum is the summed contribution of one discount on this sheet.
func (s *ProductSheet) DiscountSum(discountID string) int64 {
	category := domain.RowCategoryDiscount
	return s.Sum(RowFilter{Category: &category, DiscountID: &discountID})
}

// UnitPrice divides the sheet total by the quantity. With useNetPrice the
// net total is used, otherwise the gross. Remainders round toward zero; the
// sheet total stays authoritative for the full line amount.
func (s *ProductSheet) UnitPrice(useNetPrice bool) (domain.Money, error) {
	if s.quantity <= 0 {
		return domain.Money{}, ErrSheetQuantity
	}
	total := s.Gross()
	if useNetPrice {
		total = s.Net()
	}
	return domain.Money{
		Amount:   total / int64(s.quantity),
		Currency: s.currency,
	}, nil
}
