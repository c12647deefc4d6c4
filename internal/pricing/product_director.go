package pricing

import (
	"context"
	"errors"
	"strings"

	domain "github.com/hanko-field/pricing/internal/domain"
)

// ProductContext is the per-pass input of the product pricing director.
type ProductContext struct {
	Product   domain.Product
	Order     domain.Order
	User      domain.User
	Discounts []domain.Discount
	Currency  string
	Country   string
	Quantity  int
}

// CurrencyCode resolves the currency the pass is denominated in.
func (c ProductContext) CurrencyCode() string {
	if code := strings.TrimSpace(c.Currency); code != "" {
		return code
	}
	return strings.TrimSpace(c.Order.Currency)
}

// ProductDirectorDeps bundles what a product director needs.
type ProductDirectorDeps struct {
	Registry *ProductRegistry
	Resolver DiscountResolverFunc
	Logger   LogFunc
}

// ProductDirector folds the registered product adapters over a product
// context into a final calculation row set.
type ProductDirector struct {
	core director[ProductContext]
}

// NewProductDirector wires a product pricing director.
func NewProductDirector(deps ProductDirectorDeps) (*ProductDirector, error) {
	if deps.Registry == nil {
		return nil, errors.New("product director: registry is required")
	}
	return &ProductDirector{core: director[ProductContext]{
		registry:  deps.Registry,
		discounts: func(pricingCtx ProductContext) []domain.Discount { return pricingCtx.Discounts },
		resolver:  deps.Resolver,
		log:       deps.Logger,
	}}, nil
}

// Calculate runs one pricing pass from an empty row set.
func (d *ProductDirector) Calculate(ctx context.Context, pricingCtx ProductContext) ProductCalculation {
	return ProductCalculation{
		rows:     d.core.run(ctx, pricingCtx),
		currency: pricingCtx.CurrencyCode(),
		quantity: pricingCtx.Quantity,
	}
}

// ProductCalculation is the immutable result of one product pricing pass.
type ProductCalculation struct {
	rows     []domain.CalculationRow
	currency string
	quantity int
}

// Rows returns a copy of the final calculation rows.
func (c ProductCalculation) Rows() []domain.CalculationRow { return domain.CloneRows(c.rows) }

// ResultSheet wraps the final rows in a product sheet carrying the quantity.
func (c ProductCalculation) ResultSheet() *ProductSheet {
	return NewProductSheet(c.currency, c.quantity, c.rows)
}
