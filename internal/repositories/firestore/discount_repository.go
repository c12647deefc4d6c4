package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/hanko-field/pricing/internal/domain"
	pfirestore "github.com/hanko-field/pricing/internal/platform/firestore"
)

const discountsCollection = "discounts"

type discountDocument struct {
	ID    string                 `firestore:"-"`
	Code  string                 `firestore:"code"`
	Rules []discountRuleDocument `firestore:"rules"`
}

type discountRuleDocument struct {
	AdapterKey   string  `firestore:"adapterKey"`
	Rate         float64 `firestore:"rate"`
	FixedAmount  int64   `firestore:"fixedAmount"`
	MinimumGross int64   `firestore:"minimumGross"`
	IsTaxable    bool    `firestore:"isTaxable"`
}

// DiscountRepository stores discounts and their per-adapter rules.
type DiscountRepository struct {
	base *pfirestore.BaseRepository[domain.Discount]
}

// NewDiscountRepository constructs a Firestore-backed discount repository.
func NewDiscountRepository(provider *pfirestore.Provider) (*DiscountRepository, error) {
	if provider == nil {
		return nil, errors.New("discount repository: firestore provider is required")
	}

	encoder := func(ctx context.Context, value domain.Discount) (any, error) {
		return encodeDiscountDocument(value), nil
	}
	decoder := func(ctx context.Context, snap *firestore.DocumentSnapshot) (domain.Discount, error) {
		var doc discountDocument
		if err := snap.DataTo(&doc); err != nil {
			return domain.Discount{}, err
		}
		doc.ID = snap.Ref.ID
		return decodeDiscountDocument(doc), nil
	}

	base := pfirestore.NewBaseRepository[domain.Discount](provider, discountsCollection, encoder, decoder)
	return &DiscountRepository{base: base}, nil
}

// FindByCode returns the discount registered under a redeemable code.
func (r *DiscountRepository) FindByCode(ctx context.Context, code string) (domain.Discount, error) {
	if r == nil || r.base == nil {
		return domain.Discount{}, errors.New("discount repository not initialised")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Discount{}, errors.New("discount repository: code is required")
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("code", "==", code).Limit(1)
	})
	if err != nil {
		return domain.Discount{}, err
	}
	if len(docs) == 0 {
		return domain.Discount{}, pfirestore.WrapError("discounts.find_by_code", status.Error(codes.NotFound, "discount not found"))
	}
	return docs[0].Data, nil
}

// FindByIDs loads the given discounts; unknown identifiers are skipped.
func (r *DiscountRepository) FindByIDs(ctx context.Context, discountIDs []string) ([]domain.Discount, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("discount repository not initialised")
	}

	out := make([]domain.Discount, 0, len(discountIDs))
	for _, discountID := range discountIDs {
		discountID = strings.TrimSpace(discountID)
		if discountID == "" {
			continue
		}
		doc, err := r.base.Get(ctx, discountID)
		if err != nil {
			var repoErr *pfirestore.Error
			if errors.As(err, &repoErr) && repoErr.IsNotFound() {
				continue
			}
			return nil, err
		}
		out = append(out, doc.Data)
	}
	return out, nil
}

// Upsert stores or replaces a discount.
func (r *DiscountRepository) Upsert(ctx context.Context, discount domain.Discount) error {
	if r == nil || r.base == nil {
		return errors.New("discount repository not initialised")
	}
	discount.ID = strings.TrimSpace(discount.ID)
	if discount.ID == "" {
		return errors.New("discount repository: id is required")
	}
	_, err := r.base.Set(ctx, discount.ID, discount)
	return err
}

func encodeDiscountDocument(discount domain.Discount) discountDocument {
	rules := make([]discountRuleDocument, 0, len(discount.Rules))
	for _, rule := range discount.Rules {
		rules = append(rules, discountRuleDocument{
			AdapterKey:   rule.AdapterKey,
			Rate:         rule.Rate,
			FixedAmount:  rule.FixedAmount,
			MinimumGross: rule.MinimumGross,
			IsTaxable:    rule.IsTaxable,
		})
	}
	return discountDocument{Code: discount.Code, Rules: rules}
}

func decodeDiscountDocument(doc discountDocument) domain.Discount {
	rules := make([]domain.DiscountRule, 0, len(doc.Rules))
	for _, rule := range doc.Rules {
		rules = append(rules, domain.DiscountRule{
			AdapterKey:   rule.AdapterKey,
			Rate:         rule.Rate,
			FixedAmount:  rule.FixedAmount,
			MinimumGross: rule.MinimumGross,
			IsTaxable:    rule.IsTaxable,
		})
	}
	return domain.Discount{ID: doc.ID, Code: doc.Code, Rules: rules}
}
