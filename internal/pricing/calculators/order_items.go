package calculators

import (
	"context"

	domain "github.com/hanko-field/pricing/internal/domain"
	"github.com/hanko-field/pricing/internal/pricing"
)

// OrderItemsCalculator prices the order lines. It runs first so every later
// calculator can base proportional charges on the item rows.
type OrderItemsCalculator struct{}

func (OrderItemsCalculator) Info() pricing.AdapterInfo {
	return pricing.AdapterInfo{
		Key:        KeyOrderItems,
		Label:      "Order items",
		Version:    "1.0.0",
		OrderIndex: 100,
	}
}

func (OrderItemsCalculator) IsActivatedFor(pricingCtx pricing.OrderContext) bool {
	return len(pricingCtx.Items) > 0
}

func (OrderItemsCalculator) Calculate(_ context.Context, state pricing.CalculationState[pricing.OrderContext]) ([]domain.CalculationRow, error) {
	rows := make([]domain.CalculationRow, 0, len(state.Context.Items))
	for _, item := range state.Context.Items {
		quantity := item.Quantity
		if quantity <= 0 {
			continue
		}
		rows = append(rows, domain.CalculationRow{
			Category:  domain.RowCategoryItem,
			Amount:    item.UnitPrice * int64(quantity),
			Rate:      item.TaxRate,
			IsTaxable: item.IsTaxable,
			Meta: map[string]any{
				"itemId":    item.ID,
				"productId": item.ProductID,
				"sku":       item.SKU,
				"quantity":  quantity,
			},
		})
	}
	return rows, nil
}
