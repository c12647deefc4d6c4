// Package calculators carries the standard pricing adapters registered for
// every tenant. Each calculator is a pure value type: all of its input
// arrives through the calculation state and its only output is the rows it
// returns.
package calculators

import (
	"math"

	domain "github.com/hanko-field/pricing/internal/domain"
)

// Adapter keys double as the discount rule binding points, so they are part
// of the stored-data contract and must stay stable.
const (
	KeyOrderItems       = "order.items"
	KeyOrderDiscounts   = "order.discounts"
	KeyOrderDelivery    = "order.delivery"
	KeyOrderPayment     = "order.payment"
	KeyOrderTax         = "order.tax"
	KeyProductPrice     = "product.price"
	KeyProductDiscounts = "product.discounts"
	KeyDeliveryFee      = "delivery.fee"
	KeyPaymentFee       = "payment.fee"
)

func applyRate(amount int64, rate float64) int64 {
	return int64(math.Round(float64(amount) * rate))
}

func sumByCategory(rows []domain.CalculationRow, category domain.RowCategory) int64 {
	var total int64
	for _, row := range rows {
		if row.Category == category {
			total += row.Amount
		}
	}
	return total
}
