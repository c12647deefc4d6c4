package pricing

import (
	"context"
	"sort"

	domain "github.com/hanko-field/pricing/internal/domain"
)

// Registry holds the adapters available to one pricing director. It is an
// explicit value wired at the composition root, not process-global state:
// plugin packages register their adapters during startup and the registry is
// read-only afterwards. Concurrent registration during live traffic is
// unsupported.
type Registry[C any] struct {
	slots []registeredAdapter[C]
	index map[string]int
}

type registeredAdapter[C any] struct {
	adapter Adapter[C]
	seq     int
}

// NewRegistry constructs an empty adapter registry.
func NewRegistry[C any]() *Registry[C] {
	return &Registry[C]{index: make(map[string]int)}
}

// Register inserts the adapter, overwriting any previous adapter with the
// same key. Registration is idempotent by key, not cumulative; an overwrite
// keeps the original registration slot so tie-breaking stays stable.
func (r *Registry[C]) Register(adapter Adapter[C]) {
	if adapter == nil {
		return
	}
	key := adapter.Info().Key
	if slot, ok := r.index[key]; ok {
		r.slots[slot].adapter = adapter
		return
	}
	r.index[key] = len(r.slots)
	r.slots = append(r.slots, registeredAdapter[C]{adapter: adapter, seq: len(r.slots)})
}

// SortedAdapters returns a snapshot of all adapters ordered by OrderIndex
// ascending, ties broken by registration order.
func (r *Registry[C]) SortedAdapters() []Adapter[C] {
	slots := make([]registeredAdapter[C], len(r.slots))
	copy(slots, r.slots)
	sort.SliceStable(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if a.adapter.Info().OrderIndex == b.adapter.Info().OrderIndex {
			return a.seq < b.seq
		}
		return a.adapter.Info().OrderIndex < b.adapter.Info().OrderIndex
	})
	adapters := make([]Adapter[C], len(slots))
	for i, slot := range slots {
		adapters[i] = slot.adapter
	}
	return adapters
}

// Len reports the number of registered adapters.
func (r *Registry[C]) Len() int { return len(r.slots) }

// OrderRegistry aliases the registry specialisation for order pricing.
type OrderRegistry = Registry[OrderContext]

// ProductRegistry aliases the registry specialisation for product pricing.
type ProductRegistry = Registry[ProductContext]

// DeliveryRegistry aliases the registry specialisation for delivery pricing.
type DeliveryRegistry = Registry[DeliveryContext]

// PaymentRegistry aliases the registry specialisation for payment pricing.
type PaymentRegistry = Registry[PaymentContext]

// AdapterFunc builds a stateless adapter from its identity, predicate, and
// calculate function. Most standard calculators are plain AdapterFunc values.
type AdapterFunc[C any] struct {
	Identity  AdapterInfo
	Activated func(pricingCtx C) bool
	Run       func(ctx context.Context, state CalculationState[C]) ([]domain.CalculationRow, error)
}

// Info implements Adapter.
func (a AdapterFunc[C]) Info() AdapterInfo { return a.Identity }

// IsActivatedFor implements Adapter. A nil predicate activates always.
func (a AdapterFunc[C]) IsActivatedFor(pricingCtx C) bool {
	if a.Activated == nil {
		return true
	}
	return a.Activated(pricingCtx)
}

// Calculate implements Adapter.
func (a AdapterFunc[C]) Calculate(ctx context.Context, state CalculationState[C]) ([]domain.CalculationRow, error) {
	if a.Run == nil {
		return nil, nil
	}
	return a.Run(ctx, state)
}
