package calculators

import (
	"context"
	"errors"

	domain "github.com/hanko-field/pricing/internal/domain"
	"github.com/hanko-field/pricing/internal/pricing"
)

// ErrNoMatchingPrice signals that the product carries no price entry for the
// requested currency, country and quantity.
var ErrNoMatchingPrice = errors.New("calculators: no matching product price")

// ProductPriceCalculator resolves the catalog price entry for the requested
// currency, country and quantity, and contributes one item row for the full
// quantity. Among matching entries the most specific one wins: a country
// match beats the country wildcard and a tighter quantity cap beats a looser
// one.
type ProductPriceCalculator struct{}

func (ProductPriceCalculator) Info() pricing.AdapterInfo {
	return pricing.AdapterInfo{
		Key:        KeyProductPrice,
		Label:      "Product price",
		Version:    "1.0.0",
		OrderIndex: 100,
	}
}

func (ProductPriceCalculator) IsActivatedFor(pricingCtx pricing.ProductContext) bool {
	return len(pricingCtx.Product.Prices) > 0
}

func (ProductPriceCalculator) Calculate(_ context.Context, state pricing.CalculationState[pricing.ProductContext]) ([]domain.CalculationRow, error) {
	pricingCtx := state.Context
	quantity := pricingCtx.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	price, ok := selectPrice(pricingCtx.Product.Prices, pricingCtx.CurrencyCode(), pricingCtx.Country, quantity)
	if !ok {
		return nil, ErrNoMatchingPrice
	}

	return []domain.CalculationRow{{
		Category:   domain.RowCategoryItem,
		Amount:     price.Amount * int64(quantity),
		IsTaxable:  price.IsTaxable,
		IsNetPrice: price.IsNetPrice,
		Meta: map[string]any{
			"productId": pricingCtx.Product.ID,
			"sku":       pricingCtx.Product.SKU,
			"quantity":  quantity,
		},
	}}, nil
}

func selectPrice(prices []domain.ProductPrice, currency, country string, quantity int) (domain.ProductPrice, bool) {
	var (
		best      domain.ProductPrice
		bestScore = -1
	)
	for _, price := range prices {
		if price.Currency != currency {
			continue
		}
		if price.Country != "" && price.Country != country {
			continue
		}
		if price.MaxQuantity > 0 && quantity > price.MaxQuantity {
			continue
		}

		score := 0
		if price.Country != "" {
			score += 2
		}
		if price.MaxQuantity > 0 {
			score++
		}
		if score > bestScore {
			best = price
			bestScore = score
		}
	}
	return best, bestScore >= 0
}
