package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"

	domain "github.com/hanko-field/pricing/internal/domain"
	pfirestore "github.com/hanko-field/pricing/internal/platform/firestore"
)

const (
	deliveryProvidersCollection = "deliveryProviders"
	paymentProvidersCollection  = "paymentProviders"
)

type providerDocument struct {
	ID        string  `firestore:"-"`
	Adapter   string  `firestore:"adapter"`
	FlatFee   int64   `firestore:"flatFee"`
	FeeRate   float64 `firestore:"feeRate"`
	IsTaxable bool    `firestore:"isTaxable"`
}

// ProviderRepository resolves the delivery and payment providers an order can
// reference. Both provider kinds share one document shape in separate
// collections.
type ProviderRepository struct {
	delivery *pfirestore.BaseRepository[providerDocument]
	payment  *pfirestore.BaseRepository[providerDocument]
}

// NewProviderRepository constructs a Firestore-backed provider repository.
func NewProviderRepository(provider *pfirestore.Provider) (*ProviderRepository, error) {
	if provider == nil {
		return nil, errors.New("provider repository: firestore provider is required")
	}

	decoder := func(ctx context.Context, snap *firestore.DocumentSnapshot) (providerDocument, error) {
		var doc providerDocument
		if err := snap.DataTo(&doc); err != nil {
			return providerDocument{}, err
		}
		doc.ID = snap.Ref.ID
		return doc, nil
	}

	return &ProviderRepository{
		delivery: pfirestore.NewBaseRepository[providerDocument](provider, deliveryProvidersCollection, nil, decoder),
		payment:  pfirestore.NewBaseRepository[providerDocument](provider, paymentProvidersCollection, nil, decoder),
	}, nil
}

// FindDeliveryProvider loads a delivery provider by its identifier.
func (r *ProviderRepository) FindDeliveryProvider(ctx context.Context, providerID string) (domain.DeliveryProvider, error) {
	doc, err := r.find(ctx, r.delivery, providerID)
	if err != nil {
		return domain.DeliveryProvider{}, err
	}
	return domain.DeliveryProvider{
		ID:        doc.ID,
		Adapter:   doc.Adapter,
		FlatFee:   doc.FlatFee,
		FeeRate:   doc.FeeRate,
		IsTaxable: doc.IsTaxable,
	}, nil
}

// FindPaymentProvider loads a payment provider by its identifier.
func (r *ProviderRepository) FindPaymentProvider(ctx context.Context, providerID string) (domain.PaymentProvider, error) {
	doc, err := r.find(ctx, r.payment, providerID)
	if err != nil {
		return domain.PaymentProvider{}, err
	}
	return domain.PaymentProvider{
		ID:        doc.ID,
		Adapter:   doc.Adapter,
		FlatFee:   doc.FlatFee,
		FeeRate:   doc.FeeRate,
		IsTaxable: doc.IsTaxable,
	}, nil
}

func (r *ProviderRepository) find(ctx context.Context, base *pfirestore.BaseRepository[providerDocument], providerID string) (providerDocument, error) {
	if r == nil || base == nil {
		return providerDocument{}, errors.New("provider repository not initialised")
	}
	providerID = strings.TrimSpace(providerID)
	if providerID == "" {
		return providerDocument{}, errors.New("provider repository: id is required")
	}
	doc, err := base.Get(ctx, providerID)
	if err != nil {
		return providerDocument{}, err
	}
	return doc.Data, nil
}
