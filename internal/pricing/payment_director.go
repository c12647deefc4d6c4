package pricing

import (
	"context"
	"errors"
	"strings"

	domain "github.com/hanko-field/pricing/internal/domain"
)

// PaymentContext is the per-pass input of the payment pricing director.
// Adapter activation predicates typically test only the provider.
type PaymentContext struct {
	Order    domain.Order
	Payment  domain.OrderPayment
	User     domain.User
	Currency string
	// OrderValue is the minor-unit order total the payment fee rate applies
	// to when the provider charges proportionally.
	OrderValue int64
}

// Provider exposes the payment provider the pass prices.
func (c PaymentContext) Provider() domain.PaymentProvider { return c.Payment.Provider }

// CurrencyCode resolves the currency the pass is denominated in.
func (c PaymentContext) CurrencyCode() string {
	if code := strings.TrimSpace(c.Currency); code != "" {
		return code
	}
	return strings.TrimSpace(c.Order.Currency)
}

// PaymentDirectorDeps bundles what a payment director needs.
type PaymentDirectorDeps struct {
	Registry *PaymentRegistry
	Logger   LogFunc
}

// PaymentDirector folds the registered payment adapters over a payment
// context into a final calculation row set.
type PaymentDirector struct {
	core director[PaymentContext]
}

// NewPaymentDirector wires a payment pricing director.
func NewPaymentDirector(deps PaymentDirectorDeps) (*PaymentDirector, error) {
	if deps.Registry == nil {
		return nil, errors.New("payment director: registry is required")
	}
	return &PaymentDirector{core: director[PaymentContext]{
		registry: deps.Registry,
		log:      deps.Logger,
	}}, nil
}

// Calculate runs one pricing pass from an empty row set.
func (d *PaymentDirector) Calculate(ctx context.Context, pricingCtx PaymentContext) PaymentCalculation {
	return PaymentCalculation{
		rows:     d.core.run(ctx, pricingCtx),
		currency: pricingCtx.CurrencyCode(),
	}
}

// PaymentCalculation is the immutable result of one payment pricing pass.
type PaymentCalculation struct {
	rows     []domain.CalculationRow
	currency string
}

// Rows returns a copy of the final calculation rows.
func (c PaymentCalculation) Rows() []domain.CalculationRow { return domain.CloneRows(c.rows) }

// ResultSheet wraps the final rows in a payment sheet.
func (c PaymentCalculation) ResultSheet() *PaymentSheet {
	return NewPaymentSheet(c.currency, c.rows)
}
