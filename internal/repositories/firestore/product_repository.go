package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"

	domain "github.com/hanko-field/pricing/internal/domain"
	pfirestore "github.com/hanko-field/pricing/internal/platform/firestore"
)

const productsCollection = "products"

type productDocument struct {
	ID     string                 `firestore:"-"`
	SKU    string                 `firestore:"sku"`
	Plan   string                 `firestore:"plan"`
	Prices []productPriceDocument `firestore:"prices"`
	Meta   map[string]any         `firestore:"meta,omitempty"`
}

type productPriceDocument struct {
	Currency    string `firestore:"currency"`
	Country     string `firestore:"country,omitempty"`
	Amount      int64  `firestore:"amount"`
	IsTaxable   bool   `firestore:"isTaxable"`
	IsNetPrice  bool   `firestore:"isNetPrice"`
	MaxQuantity int    `firestore:"maxQuantity,omitempty"`
}

// ProductRepository resolves product snapshots and their price matrix.
type ProductRepository struct {
	base *pfirestore.BaseRepository[domain.Product]
}

// NewProductRepository constructs a Firestore-backed product repository.
func NewProductRepository(provider *pfirestore.Provider) (*ProductRepository, error) {
	if provider == nil {
		return nil, errors.New("product repository: firestore provider is required")
	}

	encoder := func(ctx context.Context, value domain.Product) (any, error) {
		return encodeProductDocument(value), nil
	}
	decoder := func(ctx context.Context, snap *firestore.DocumentSnapshot) (domain.Product, error) {
		var doc productDocument
		if err := snap.DataTo(&doc); err != nil {
			return domain.Product{}, err
		}
		doc.ID = snap.Ref.ID
		return decodeProductDocument(doc), nil
	}

	base := pfirestore.NewBaseRepository[domain.Product](provider, productsCollection, encoder, decoder)
	return &ProductRepository{base: base}, nil
}

// FindByID loads a product by its identifier.
func (r *ProductRepository) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	if r == nil || r.base == nil {
		return domain.Product{}, errors.New("product repository not initialised")
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Product{}, errors.New("product repository: id is required")
	}
	doc, err := r.base.Get(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	return doc.Data, nil
}

func encodeProductDocument(product domain.Product) productDocument {
	prices := make([]productPriceDocument, 0, len(product.Prices))
	for _, price := range product.Prices {
		prices = append(prices, productPriceDocument{
			Currency:    price.Currency,
			Country:     price.Country,
			Amount:      price.Amount,
			IsTaxable:   price.IsTaxable,
			IsNetPrice:  price.IsNetPrice,
			MaxQuantity: price.MaxQuantity,
		})
	}
	return productDocument{SKU: product.SKU, Plan: product.Plan, Prices: prices, Meta: product.Meta}
}

func decodeProductDocument(doc productDocument) domain.Product {
	prices := make([]domain.ProductPrice, 0, len(doc.Prices))
	for _, price := range doc.Prices {
		prices = append(prices, domain.ProductPrice{
			Currency:    price.Currency,
			Country:     price.Country,
			Amount:      price.Amount,
			IsTaxable:   price.IsTaxable,
			IsNetPrice:  price.IsNetPrice,
			MaxQuantity: price.MaxQuantity,
		})
	}
	return domain.Product{ID: doc.ID, SKU: doc.SKU, Plan: doc.Plan, Prices: prices, Meta: doc.Meta}
}
