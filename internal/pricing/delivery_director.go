package pricing

import (
	"context"
	"errors"
	"strings"

	domain "github.com/hanko-field/pricing/internal/domain"
)

// DeliveryContext is the per-pass input of the delivery pricing director.
// Adapter activation predicates typically test only the provider.
type DeliveryContext struct {
	Order    domain.Order
	Delivery domain.OrderDelivery
	User     domain.User
	Currency string
	// OrderValue is the minor-unit item total the delivery fee rate applies
	// to when the provider charges proportionally.
	OrderValue int64
}

// Provider exposes the delivery provider the pass prices.
func (c DeliveryContext) Provider() domain.DeliveryProvider { return c.Delivery.Provider }

// CurrencyCode resolves the currency the pass is denominated in.
func (c DeliveryContext) CurrencyCode() string {
	if code := strings.TrimSpace(c.Currency); code != "" {
		return code
	}
	return strings.TrimSpace(c.Order.Currency)
}

// DeliveryDirectorDeps bundles what a delivery director needs. Delivery
// passes carry no discount resolution; discounts on delivery fees are
// expressed by adapters directly.
type DeliveryDirectorDeps struct {
	Registry *DeliveryRegistry
	Logger   LogFunc
}

// DeliveryDirector folds the registered delivery adapters over a delivery
// context into a final calculation row set.
type DeliveryDirector struct {
	core director[DeliveryContext]
}

// NewDeliveryDirector wires a delivery pricing director.
func NewDeliveryDirector(deps DeliveryDirectorDeps) (*DeliveryDirector, error) {
	if deps.Registry == nil {
		return nil, errors.New("delivery director: registry is required")
	}
	return &DeliveryDirector{core: director[DeliveryContext]{
		registry: deps.Registry,
		log:      deps.Logger,
	}}, nil
}

// Calculate runs one pricing pass from an empty row set.
func (d *DeliveryDirector) Calculate(ctx context.Context, pricingCtx DeliveryContext) DeliveryCalculation {
	return DeliveryCalculation{
		rows:     d.core.run(ctx, pricingCtx),
		currency: pricingCtx.CurrencyCode(),
	}
}

// DeliveryCalculation is the immutable result of one delivery pricing pass.
type DeliveryCalculation struct {
	rows     []domain.CalculationRow
	currency string
}

// Rows returns a copy of the final calculation rows.
func (c DeliveryCalculation) Rows() []domain.CalculationRow { return domain.CloneRows(c.rows) }

// ResultSheet wraps the final rows in a delivery sheet.
func (c DeliveryCalculation) ResultSheet() *DeliverySheet {
	return NewDeliverySheet(c.currency, c.rows)
}
