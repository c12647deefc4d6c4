package pricing

import (
	"context"

	domain "github.com/hanko-field/pricing/internal/domain"
)

// AdapterInfo is the identity of a pricing adapter. Key must be globally
// unique within one registry; OrderIndex decides execution order, lower runs
// earlier.
type AdapterInfo struct {
	Key        string
	Label      string
	Version    string
	OrderIndex int
}

// CalculationState is the complete input an adapter sees for one iteration
// of a pricing pass. Every field is a value snapshot: Rows is a copy of the
// rows accumulated by earlier adapters, and nothing reachable from the state
// grants I/O capability. Adapter purity is structural, not conventional.
type CalculationState[C any] struct {
	Context   C
	Rows      []domain.CalculationRow
	Discounts []domain.DiscountRef
}

// Adapter is one pluggable calculator in a pricing chain.
//
// IsActivatedFor must be a pure predicate: no I/O, no panics. Calculate
// returns only the rows this adapter contributes; the director concatenates
// contributions in adapter order. A Calculate error is logged by the
// director and skipped (fail-open), it never aborts the pass.
type Adapter[C any] interface {
	Info() AdapterInfo
	IsActivatedFor(pricingCtx C) bool
	Calculate(ctx context.Context, state CalculationState[C]) ([]domain.CalculationRow, error)
}
