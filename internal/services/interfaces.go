package services

import (
	"context"

	domain "github.com/hanko-field/pricing/internal/domain"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Money                 = domain.Money
	CalculationRow        = domain.CalculationRow
	DiscountPrice         = domain.DiscountPrice
	Discount              = domain.Discount
	DiscountRule          = domain.DiscountRule
	DiscountConfiguration = domain.DiscountConfiguration
	Currency              = domain.Currency
	RateRecord            = domain.RateRecord
	User                  = domain.User
	Order                 = domain.Order
	OrderItem             = domain.OrderItem
	OrderDelivery         = domain.OrderDelivery
	OrderPayment          = domain.OrderPayment
	Product               = domain.Product
	ProductPrice          = domain.ProductPrice
	SystemHealthReport    = domain.SystemHealthReport
	SystemHealthCheck     = domain.SystemHealthCheck
)

// PricingService orchestrates pricing passes over hydrated entity snapshots.
type PricingService interface {
	QuoteOrder(ctx context.Context, req OrderQuoteRequest) (OrderQuote, error)
	QuoteProduct(ctx context.Context, req ProductQuoteRequest) (ProductQuote, error)
	QuoteDeliveryFee(ctx context.Context, req ProviderFeeRequest) (FeeQuote, error)
	QuotePaymentFee(ctx context.Context, req ProviderFeeRequest) (FeeQuote, error)
}

// SystemService exposes operational metadata and health reports.
type SystemService interface {
	Health(ctx context.Context) (SystemHealthReport, error)
	Build() BuildInfo
}
