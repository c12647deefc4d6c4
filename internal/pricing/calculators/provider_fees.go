package calculators

import (
	"context"

	domain "github.com/hanko-field/pricing/internal/domain"
	"github.com/hanko-field/pricing/internal/pricing"
)

// DeliveryFeeCalculator prices a delivery provider in isolation, for fee
// previews before the provider is attached to an order. The proportional
// part applies to the order value snapshot on the context.
type DeliveryFeeCalculator struct{}

func (DeliveryFeeCalculator) Info() pricing.AdapterInfo {
	return pricing.AdapterInfo{
		Key:        KeyDeliveryFee,
		Label:      "Delivery fee",
		Version:    "1.0.0",
		OrderIndex: 100,
	}
}

func (DeliveryFeeCalculator) IsActivatedFor(pricingCtx pricing.DeliveryContext) bool {
	return pricingCtx.Provider().ID != ""
}

func (DeliveryFeeCalculator) Calculate(_ context.Context, state pricing.CalculationState[pricing.DeliveryContext]) ([]domain.CalculationRow, error) {
	provider := state.Context.Provider()
	amount := providerFee(provider.FlatFee, provider.FeeRate, state.Context.OrderValue)
	return []domain.CalculationRow{{
		Category:  domain.RowCategoryItem,
		Amount:    amount,
		IsTaxable: provider.IsTaxable,
		Meta:      map[string]any{"providerId": provider.ID},
	}}, nil
}

// PaymentFeeCalculator prices a payment provider in isolation, mirroring the
// delivery fee calculator.
type PaymentFeeCalculator struct{}

func (PaymentFeeCalculator) Info() pricing.AdapterInfo {
	return pricing.AdapterInfo{
		Key:        KeyPaymentFee,
		Label:      "Payment fee",
		Version:    "1.0.0",
		OrderIndex: 100,
	}
}

func (PaymentFeeCalculator) IsActivatedFor(pricingCtx pricing.PaymentContext) bool {
	return pricingCtx.Provider().ID != ""
}

func (PaymentFeeCalculator) Calculate(_ context.Context, state pricing.CalculationState[pricing.PaymentContext]) ([]domain.CalculationRow, error) {
	provider := state.Context.Provider()
	amount := providerFee(provider.FlatFee, provider.FeeRate, state.Context.OrderValue)
	return []domain.CalculationRow{{
		Category:  domain.RowCategoryItem,
		Amount:    amount,
		IsTaxable: provider.IsTaxable,
		Meta:      map[string]any{"providerId": provider.ID},
	}}, nil
}
