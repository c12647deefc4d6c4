package pricing

import (
	"context"
	"fmt"

	domain "github.com/hanko-field/pricing/internal/domain"
)

// LogFunc receives structured engine events. Directors log adapter failures
// through it and otherwise stay silent; a nil LogFunc drops events.
type LogFunc func(ctx context.Context, event string, fields map[string]any)

// DiscountResolverFunc decides whether a discount applies to the given
// adapter at the current point of a pass. The running rows are provided
// because applicability can depend on what earlier adapters contributed
// (e.g. a threshold discount that needs item rows first). A nil
// configuration means the discount is skipped for this adapter iteration.
type DiscountResolverFunc func(ctx context.Context, discount domain.Discount, adapterKey string, rows []domain.CalculationRow) (*domain.DiscountConfiguration, error)

// director runs the shared fold all four domain directors are built on.
//
// Adapters execute strictly sequentially: each adapter's visible input is the
// accumulated output of every adapter before it, so ordering is a correctness
// invariant, never a throughput concern. Do not parallelise this loop.
type director[C any] struct {
	registry  *Registry[C]
	discounts func(pricingCtx C) []domain.Discount
	resolver  DiscountResolverFunc
	log       LogFunc
}

func (d director[C]) run(ctx context.Context, pricingCtx C) []domain.CalculationRow {
	var rows []domain.CalculationRow
	for _, adapter := range d.registry.SortedAdapters() {
		info := adapter.Info()
		if !d.activated(ctx, adapter, pricingCtx) {
			continue
		}

		state := CalculationState[C]{
			Context:   pricingCtx,
			Rows:      domain.CloneRows(rows),
			Discounts: d.resolveDiscounts(ctx, pricingCtx, info.Key, rows),
		}

		contributed, err := d.calculate(ctx, adapter, state)
		if err != nil {
			// Fail-open: a broken adapter contributes nothing but never
			// aborts pricing for the whole entity.
			d.event(ctx, "pricing_adapter_failed", map[string]any{
				"adapterKey": info.Key,
				"version":    info.Version,
				"error":      err.Error(),
			})
			continue
		}
		rows = append(rows, contributed...)
	}
	return rows
}

// resolveDiscounts re-evaluates discount applicability for every adapter
// iteration. Resolver failures are isolated per discount, mirroring the
// fail-open adapter policy: the discount is dropped for this iteration and
// the pass continues.
func (d director[C]) resolveDiscounts(ctx context.Context, pricingCtx C, adapterKey string, rows []domain.CalculationRow) []domain.DiscountRef {
	if d.discounts == nil || d.resolver == nil {
		return nil
	}
	candidates := d.discounts(pricingCtx)
	if len(candidates) == 0 {
		return nil
	}

	var refs []domain.DiscountRef
	for _, discount := range candidates {
		configuration, err := d.resolver(ctx, discount, adapterKey, domain.CloneRows(rows))
		if err != nil {
			d.event(ctx, "pricing_discount_resolution_failed", map[string]any{
				"adapterKey": adapterKey,
				"discountId": discount.ID,
				"error":      err.Error(),
			})
			continue
		}
		if configuration == nil {
			continue
		}
		refs = append(refs, domain.DiscountRef{DiscountID: discount.ID, Configuration: configuration})
	}
	return refs
}

// activated shields the pass from predicate panics. Predicates are required
// to be pure and panic-free; a violation deactivates the adapter for this
// pass and is logged.
func (d director[C]) activated(ctx context.Context, adapter Adapter[C], pricingCtx C) (active bool) {
	defer func() {
		if rec := recover(); rec != nil {
			d.event(ctx, "pricing_adapter_predicate_panic", map[string]any{
				"adapterKey": adapter.Info().Key,
				"panic":      fmt.Sprint(rec),
			})
			active = false
		}
	}()
	return adapter.IsActivatedFor(pricingCtx)
}

func (d director[C]) calculate(ctx context.Context, adapter Adapter[C], state CalculationState[C]) (rows []domain.CalculationRow, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			rows = nil
			err = fmt.Errorf("adapter panic: %v", rec)
		}
	}()
	return adapter.Calculate(ctx, state)
}

func (d director[C]) event(ctx context.Context, event string, fields map[string]any) {
	if d.log == nil {
		return
	}
	d.log(ctx, event, fields)
}
