package repositories

import (
	"context"
	"time"

	domain "github.com/hanko-field/pricing/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Rates() RateRecordRepository
	Currencies() CurrencyRepository
	Discounts() DiscountRepository
	Products() ProductRepository
	Providers() ProviderRepository
	Health() HealthRepository
	UnitOfWork
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// UnitOfWork allows grouping repository operations in a transactional boundary when supported.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RateRecordRepository persists conversion rate records. Records are never
// deleted; superseded ones are archived so historical range queries keep
// working.
type RateRecordRepository interface {
	Insert(ctx context.Context, record domain.RateRecord) error
	Archive(ctx context.Context, recordID string) error
	// ListForPair returns records of the pair in either direction whose
	// validity window overlaps [from, to], archived ones included.
	ListForPair(ctx context.Context, base, quote string, from, to time.Time) ([]domain.RateRecord, error)
	// ListActiveForPair returns the unarchived records of the pair in either
	// direction regardless of validity window.
	ListActiveForPair(ctx context.Context, base, quote string) ([]domain.RateRecord, error)
}

// CurrencyRepository stores the currencies the engine can price in.
type CurrencyRepository interface {
	FindByCode(ctx context.Context, isoCode string) (domain.Currency, error)
	List(ctx context.Context) ([]domain.Currency, error)
	Upsert(ctx context.Context, currency domain.Currency) error
}

// DiscountRepository stores discounts and their per-adapter rules.
type DiscountRepository interface {
	FindByCode(ctx context.Context, code string) (domain.Discount, error)
	FindByIDs(ctx context.Context, discountIDs []string) ([]domain.Discount, error)
	Upsert(ctx context.Context, discount domain.Discount) error
}

// ProductRepository resolves products and their price matrix.
type ProductRepository interface {
	FindByID(ctx context.Context, productID string) (domain.Product, error)
}

// ProviderRepository resolves delivery and payment providers.
type ProviderRepository interface {
	FindDeliveryProvider(ctx context.Context, providerID string) (domain.DeliveryProvider, error)
	FindPaymentProvider(ctx context.Context, providerID string) (domain.PaymentProvider, error)
}

// HealthRepository exposes dependency liveness used by readiness probes.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.SystemHealthReport, error)
}
