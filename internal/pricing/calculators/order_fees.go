package calculators

import (
	"context"

	domain "github.com/hanko-field/pricing/internal/domain"
	"github.com/hanko-field/pricing/internal/pricing"
)

// OrderDeliveryCalculator charges the selected delivery provider on the
// order pass: its flat fee plus its fee rate applied to the item rows minus
// discounts contributed so far.
type OrderDeliveryCalculator struct{}

func (OrderDeliveryCalculator) Info() pricing.AdapterInfo {
	return pricing.AdapterInfo{
		Key:        KeyOrderDelivery,
		Label:      "Order delivery cost",
		Version:    "1.0.0",
		OrderIndex: 300,
	}
}

func (OrderDeliveryCalculator) IsActivatedFor(pricingCtx pricing.OrderContext) bool {
	return pricingCtx.Delivery.Provider.ID != ""
}

func (OrderDeliveryCalculator) Calculate(_ context.Context, state pricing.CalculationState[pricing.OrderContext]) ([]domain.CalculationRow, error) {
	provider := state.Context.Delivery.Provider
	amount := providerFee(provider.FlatFee, provider.FeeRate, discountedItemSum(state.Rows))
	if amount == 0 {
		return nil, nil
	}
	return []domain.CalculationRow{{
		Category:  domain.RowCategoryDelivery,
		Amount:    amount,
		IsTaxable: provider.IsTaxable,
		Meta:      map[string]any{"providerId": provider.ID},
	}}, nil
}

// OrderPaymentCalculator charges the selected payment provider on the order
// pass, proportionally to everything charged before it.
type OrderPaymentCalculator struct{}

func (OrderPaymentCalculator) Info() pricing.AdapterInfo {
	return pricing.AdapterInfo{
		Key:        KeyOrderPayment,
		Label:      "Order payment fee",
		Version:    "1.0.0",
		OrderIndex: 400,
	}
}

func (OrderPaymentCalculator) IsActivatedFor(pricingCtx pricing.OrderContext) bool {
	return pricingCtx.Payment.Provider.ID != ""
}

func (OrderPaymentCalculator) Calculate(_ context.Context, state pricing.CalculationState[pricing.OrderContext]) ([]domain.CalculationRow, error) {
	provider := state.Context.Payment.Provider
	var base int64
	for _, row := range state.Rows {
		base += row.Amount
	}
	amount := providerFee(provider.FlatFee, provider.FeeRate, base)
	if amount == 0 {
		return nil, nil
	}
	return []domain.CalculationRow{{
		Category:  domain.RowCategoryPayment,
		Amount:    amount,
		IsTaxable: provider.IsTaxable,
		Meta:      map[string]any{"providerId": provider.ID},
	}}, nil
}

func providerFee(flatFee int64, feeRate float64, base int64) int64 {
	amount := flatFee
	if feeRate != 0 && base > 0 {
		amount += applyRate(base, feeRate)
	}
	return amount
}

func discountedItemSum(rows []domain.CalculationRow) int64 {
	return sumByCategory(rows, domain.RowCategoryItem) + sumByCategory(rows, domain.RowCategoryDiscount)
}
