package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"

	domain "github.com/hanko-field/pricing/internal/domain"
	pfirestore "github.com/hanko-field/pricing/internal/platform/firestore"
)

const currenciesCollection = "currencies"

type currencyDocument struct {
	ISOCode  string `firestore:"isoCode"`
	Decimals *int   `firestore:"decimals"`
}

// CurrencyRepository stores the currencies the engine can price in, keyed by
// ISO code.
type CurrencyRepository struct {
	base *pfirestore.BaseRepository[domain.Currency]
}

// NewCurrencyRepository constructs a Firestore-backed currency repository.
func NewCurrencyRepository(provider *pfirestore.Provider) (*CurrencyRepository, error) {
	if provider == nil {
		return nil, errors.New("currency repository: firestore provider is required")
	}

	encoder := func(ctx context.Context, value domain.Currency) (any, error) {
		return currencyDocument{ISOCode: value.ISOCode, Decimals: value.Decimals}, nil
	}
	decoder := func(ctx context.Context, snap *firestore.DocumentSnapshot) (domain.Currency, error) {
		var doc currencyDocument
		if err := snap.DataTo(&doc); err != nil {
			return domain.Currency{}, err
		}
		if doc.ISOCode == "" {
			doc.ISOCode = snap.Ref.ID
		}
		return domain.Currency{ISOCode: doc.ISOCode, Decimals: doc.Decimals}, nil
	}

	base := pfirestore.NewBaseRepository[domain.Currency](provider, currenciesCollection, encoder, decoder)
	return &CurrencyRepository{base: base}, nil
}

// FindByCode loads a currency by its ISO code.
func (r *CurrencyRepository) FindByCode(ctx context.Context, isoCode string) (domain.Currency, error) {
	if r == nil || r.base == nil {
		return domain.Currency{}, errors.New("currency repository not initialised")
	}
	isoCode = strings.ToUpper(strings.TrimSpace(isoCode))
	if isoCode == "" {
		return domain.Currency{}, errors.New("currency repository: iso code is required")
	}
	doc, err := r.base.Get(ctx, isoCode)
	if err != nil {
		return domain.Currency{}, err
	}
	return doc.Data, nil
}

// List returns all configured currencies.
func (r *CurrencyRepository) List(ctx context.Context) ([]domain.Currency, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("currency repository not initialised")
	}
	docs, err := r.base.Query(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Currency, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.Data)
	}
	return out, nil
}

// Upsert stores or replaces a currency declaration.
func (r *CurrencyRepository) Upsert(ctx context.Context, currency domain.Currency) error {
	if r == nil || r.base == nil {
		return errors.New("currency repository not initialised")
	}
	currency.ISOCode = strings.ToUpper(strings.TrimSpace(currency.ISOCode))
	if currency.ISOCode == "" {
		return errors.New("currency repository: iso code is required")
	}
	_, err := r.base.Set(ctx, currency.ISOCode, currency)
	return err
}
