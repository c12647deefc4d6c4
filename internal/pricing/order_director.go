package pricing

import (
	"context"
	"errors"
	"strings"

	domain "github.com/hanko-field/pricing/internal/domain"
)

// OrderContext is the per-pass input of the order pricing director. It is
// built fresh for every Calculate call from the order's own references and
// never mutated by adapters.
type OrderContext struct {
	Order     domain.Order
	Items     []domain.OrderItem
	User      domain.User
	Delivery  domain.OrderDelivery
	Payment   domain.OrderPayment
	Discounts []domain.Discount
	Currency  string
}

// CurrencyCode resolves the currency the pass is denominated in, falling
// back to the order currency.
func (c OrderContext) CurrencyCode() string {
	if code := strings.TrimSpace(c.Currency); code != "" {
		return code
	}
	return strings.TrimSpace(c.Order.Currency)
}

// OrderDirectorDeps bundles what an order director needs.
type OrderDirectorDeps struct {
	Registry *OrderRegistry
	Resolver DiscountResolverFunc
	Logger   LogFunc
}

// OrderDirector folds the registered order adapters over an order context
// into a final calculation row set.
type OrderDirector struct {
	core director[OrderContext]
}

// NewOrderDirector wires an order pricing director.
func NewOrderDirector(deps OrderDirectorDeps) (*OrderDirector, error) {
	if deps.Registry == nil {
		return nil, errors.New("order director: registry is required")
	}
	return &OrderDirector{core: director[OrderContext]{
		registry:  deps.Registry,
		discounts: func(pricingCtx OrderContext) []domain.Discount { return pricingCtx.Discounts },
		resolver:  deps.Resolver,
		log:       deps.Logger,
	}}, nil
}

// Calculate runs one pricing pass, always starting from an empty row set.
// It never fails: broken adapters are skipped fail-open, so callers that
// need a completeness signal must inspect the resulting sheet themselves.
func (d *OrderDirector) Calculate(ctx context.Context, pricingCtx OrderContext) OrderCalculation {
	return OrderCalculation{
		rows:     d.core.run(ctx, pricingCtx),
		currency: pricingCtx.CurrencyCode(),
	}
}

// OrderCalculation is the immutable result of one order pricing pass.
type OrderCalculation struct {
	rows     []domain.CalculationRow
	currency string
}

// Rows returns a copy of the final calculation rows.
func (c OrderCalculation) Rows() []domain.CalculationRow { return domain.CloneRows(c.rows) }

// ResultSheet wraps the final rows in an order sheet.
func (c OrderCalculation) ResultSheet() *OrderSheet { return NewOrderSheet(c.currency, c.rows) }
