package domain

import "time"

// The entity snapshots below are the read-only collaborator views a pricing
// pass works from. They arrive fully hydrated in a quote request; this
// service never persists products, orders, or users itself.

// User identifies the account a pricing pass runs for.
type User struct {
	ID      string
	Country string
	Tags    []string
}

// Order is the order header snapshot referenced by a pricing context.
type Order struct {
	ID        string
	UserID    string
	Currency  string
	Country   string
	CreatedAt time.Time
	Meta      map[string]any
}

// OrderItem is a single product line on an order, priced in the order
// currency. UnitPrice is a minor-unit amount.
type OrderItem struct {
	ID        string
	ProductID string
	SKU       string
	Quantity  int
	UnitPrice int64
	IsTaxable bool
	TaxRate   float64
	Meta      map[string]any
}

// DeliveryProvider describes the shipping option attached to an order.
type DeliveryProvider struct {
	ID        string
	Adapter   string
	FlatFee   int64
	FeeRate   float64
	IsTaxable bool
}

// PaymentProvider describes the payment option attached to an order.
type PaymentProvider struct {
	ID        string
	Adapter   string
	FlatFee   int64
	FeeRate   float64
	IsTaxable bool
}

// OrderDelivery snapshots the delivery selection on an order.
type OrderDelivery struct {
	ID       string
	Provider DeliveryProvider
	Meta     map[string]any
}

// OrderPayment snapshots the payment selection on an order.
type OrderPayment struct {
	ID       string
	Provider PaymentProvider
	Meta     map[string]any
}

// Product is the catalog snapshot a product pricing pass works from.
type Product struct {
	ID     string
	SKU    string
	Plan   string
	Prices []ProductPrice
	Meta   map[string]any
}

// ProductPrice is one catalog price entry. Country and MaxQuantity narrow
// the entry; empty country and zero MaxQuantity match anything.
type ProductPrice struct {
	Currency    string
	Country     string
	Amount      int64
	IsTaxable   bool
	IsNetPrice  bool
	MaxQuantity int
}
