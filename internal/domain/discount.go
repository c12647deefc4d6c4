package domain

// Discount is the plain data record of a discount attached to an order or
// product pricing pass. Behaviour lives in the resolver, not on the type, so
// discount data can be stored and tested independently of the engine.
type Discount struct {
	ID    string
	Code  string
	Rules []DiscountRule
}

// DiscountRule scopes one discount effect to a single pricing adapter.
// Exactly one of Rate or FixedAmount is meaningful; Rate is a fraction of the
// running gross at resolution time, FixedAmount is a minor-unit value.
type DiscountRule struct {
	AdapterKey  string
	Rate        float64
	FixedAmount int64

	// MinimumGross gates the rule on the gross already accumulated by
	// earlier adapters in the same pass. Zero means no threshold.
	MinimumGross int64

	IsTaxable bool
}

// DiscountConfiguration is the resolved, adapter-specific shape of a
// discount for one iteration of a pricing pass.
type DiscountConfiguration struct {
	Rate        float64
	FixedAmount int64
	IsTaxable   bool
	Meta        map[string]any
}

// DiscountRef hands a discount and its resolved configuration to an adapter.
// Configuration is never nil by the time an adapter sees the ref; discounts
// that resolve to nil are dropped for that adapter iteration.
type DiscountRef struct {
	DiscountID    string
	Configuration *DiscountConfiguration
}
