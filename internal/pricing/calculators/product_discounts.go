package calculators

import (
	"context"

	domain "github.com/hanko-field/pricing/internal/domain"
	"github.com/hanko-field/pricing/internal/pricing"
)

// ProductDiscountsCalculator applies the resolved discount configurations to
// the product's item rows, mirroring the order discount calculator on the
// product pass.
type ProductDiscountsCalculator struct{}

func (ProductDiscountsCalculator) Info() pricing.AdapterInfo {
	return pricing.AdapterInfo{
		Key:        KeyProductDiscounts,
		Label:      "Product discounts",
		Version:    "1.0.0",
		OrderIndex: 200,
	}
}

func (ProductDiscountsCalculator) IsActivatedFor(pricingCtx pricing.ProductContext) bool {
	return len(pricingCtx.Discounts) > 0
}

func (ProductDiscountsCalculator) Calculate(_ context.Context, state pricing.CalculationState[pricing.ProductContext]) ([]domain.CalculationRow, error) {
	itemSum := sumByCategory(state.Rows, domain.RowCategoryItem)

	var rows []domain.CalculationRow
	for _, ref := range state.Discounts {
		amount := discountAmount(ref.Configuration, itemSum)
		if amount == 0 {
			continue
		}
		rows = append(rows, domain.CalculationRow{
			Category:   domain.RowCategoryDiscount,
			Amount:     amount,
			DiscountID: ref.DiscountID,
			IsTaxable:  ref.Configuration.IsTaxable,
		})
	}
	return rows, nil
}
