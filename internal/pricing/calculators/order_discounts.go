package calculators

import (
	"context"

	domain "github.com/hanko-field/pricing/internal/domain"
	"github.com/hanko-field/pricing/internal/pricing"
)

// OrderDiscountsCalculator turns the resolved discount configurations of the
// current iteration into negative discount rows. Which discounts it sees is
// decided outside: the director re-resolves applicability before every
// adapter, so thresholds gate on the rows contributed up to this point.
type OrderDiscountsCalculator struct{}

func (OrderDiscountsCalculator) Info() pricing.AdapterInfo {
	return pricing.AdapterInfo{
		Key:        KeyOrderDiscounts,
		Label:      "Order discounts",
		Version:    "1.0.0",
		OrderIndex: 200,
	}
}

func (OrderDiscountsCalculator) IsActivatedFor(pricingCtx pricing.OrderContext) bool {
	return len(pricingCtx.Discounts) > 0
}

func (OrderDiscountsCalculator) Calculate(_ context.Context, state pricing.CalculationState[pricing.OrderContext]) ([]domain.CalculationRow, error) {
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

// discountAmount combines the proportional and fixed parts of a resolved
// configuration into one negative minor-unit amount.
func discountAmount(cfg *domain.DiscountConfiguration, base int64) int64 {
	if cfg == nil {
		return 0
	}
	var amount int64
	if cfg.Rate != 0 {
		amount -= applyRate(base, cfg.Rate)
	}
	if cfg.FixedAmount != 0 {
		fixed := cfg.FixedAmount
		if fixed > 0 {
			fixed = -fixed
		}
		amount += fixed
	}
	return amount
}
