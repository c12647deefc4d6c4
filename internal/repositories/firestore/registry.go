package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"

	pfirestore "github.com/hanko-field/pricing/internal/platform/firestore"
	"github.com/hanko-field/pricing/internal/repositories"
)

// Registry wires the Firestore-backed repository set behind the
// repositories.Registry interface.
type Registry struct {
	provider   *pfirestore.Provider
	rates      *RateRecordRepository
	currencies *CurrencyRepository
	discounts  *DiscountRepository
	products   *ProductRepository
	providers  *ProviderRepository
	health     repositories.HealthRepository
}

var _ repositories.Registry = (*Registry)(nil)

// NewRegistry constructs the Firestore repository registry on a shared provider.
func NewRegistry(provider *pfirestore.Provider, health repositories.HealthRepository) (*Registry, error) {
	if provider == nil {
		return nil, errors.New("repository registry: firestore provider is required")
	}
	if health == nil {
		return nil, errors.New("repository registry: health repository is required")
	}

	rates, err := NewRateRecordRepository(provider)
	if err != nil {
		return nil, err
	}
	currencies, err := NewCurrencyRepository(provider)
	if err != nil {
		return nil, err
	}
	discounts, err := NewDiscountRepository(provider)
	if err != nil {
		return nil, err
	}
	products, err := NewProductRepository(provider)
	if err != nil {
		return nil, err
	}
	providers, err := NewProviderRepository(provider)
	if err != nil {
		return nil, err
	}

	return &Registry{
		provider:   provider,
		rates:      rates,
		currencies: currencies,
		discounts:  discounts,
		products:   products,
		providers:  providers,
		health:     health,
	}, nil
}

func (r *Registry) Close(ctx context.Context) error {
	return r.provider.Close(ctx)
}

func (r *Registry) Rates() repositories.RateRecordRepository { return r.rates }

func (r *Registry) Currencies() repositories.CurrencyRepository { return r.currencies }

func (r *Registry) Discounts() repositories.DiscountRepository { return r.discounts }

func (r *Registry) Products() repositories.ProductRepository { return r.products }

func (r *Registry) Providers() repositories.ProviderRepository { return r.providers }

func (r *Registry) Health() repositories.HealthRepository { return r.health }

// RunInTx executes fn inside one Firestore transaction. Repository calls made
// with the scoped context join the transaction instead of writing directly.
func (r *Registry) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(contextWithTx(ctx, tx))
	})
}
