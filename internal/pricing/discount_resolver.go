package pricing

import (
	"context"

	domain "github.com/hanko-field/pricing/internal/domain"
)

// RuleDiscountResolver resolves discounts from their stored rules: a
// discount applies to an adapter iff it carries a rule for that adapter key
// and the rule's threshold is met by the rows accumulated so far. Because the
// threshold reads the running rows, applicability genuinely changes across
// iterations of one pass: a minimum-gross discount stays dormant until the
// item adapters have contributed.
func RuleDiscountResolver() DiscountResolverFunc {
	return func(_ context.Context, discount domain.Discount, adapterKey string, rows []domain.CalculationRow) (*domain.DiscountConfiguration, error) {
		for _, rule := range discount.Rules {
			if rule.AdapterKey != adapterKey {
				continue
			}
			if rule.MinimumGross > 0 && runningGross(rows) < rule.MinimumGross {
				return nil, nil
			}
			return &domain.DiscountConfiguration{
				Rate:        rule.Rate,
				FixedAmount: rule.FixedAmount,
				IsTaxable:   rule.IsTaxable,
			}, nil
		}
		return nil, nil
	}
}

func runningGross(rows []domain.CalculationRow) int64 {
	var total int64
	for _, row := range rows {
		total += row.Amount
	}
	return total
}
