package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/hanko-field/pricing/internal/domain"
	pfirestore "github.com/hanko-field/pricing/internal/platform/firestore"
)

const rateRecordsCollection = "rateRecords"

type rateRecordDocument struct {
	ID            string    `firestore:"-"`
	BaseCurrency  string    `firestore:"baseCurrency"`
	QuoteCurrency string    `firestore:"quoteCurrency"`
	Rate          float64   `firestore:"rate"`
	Timestamp     time.Time `firestore:"timestamp"`
	ExpiresAt     time.Time `firestore:"expiresAt"`
	Archived      bool      `firestore:"archived"`
}

// RateRecordRepository persists conversion rate records. Superseded records
// are archived in place so range queries over past windows stay answerable.
type RateRecordRepository struct {
	base *pfirestore.BaseRepository[domain.RateRecord]
}

// NewRateRecordRepository constructs a Firestore-backed rate record repository.
func NewRateRecordRepository(provider *pfirestore.Provider) (*RateRecordRepository, error) {
	if provider == nil {
		return nil, errors.New("rate record repository: firestore provider is required")
	}

	encoder := func(ctx context.Context, value domain.RateRecord) (any, error) {
		return encodeRateRecordDocument(value), nil
	}
	decoder := func(ctx context.Context, snap *firestore.DocumentSnapshot) (domain.RateRecord, error) {
		var doc rateRecordDocument
		if err := snap.DataTo(&doc); err != nil {
			return domain.RateRecord{}, err
		}
		doc.ID = snap.Ref.ID
		return decodeRateRecordDocument(doc), nil
	}

	base := pfirestore.NewBaseRepository[domain.RateRecord](provider, rateRecordsCollection, encoder, decoder)
	return &RateRecordRepository{base: base}, nil
}

// Insert stores a new rate record under its pre-assigned identifier.
func (r *RateRecordRepository) Insert(ctx context.Context, record domain.RateRecord) error {
	if r == nil || r.base == nil {
		return errors.New("rate record repository not initialised")
	}
	record.ID = strings.TrimSpace(record.ID)
	if record.ID == "" {
		return errors.New("rate record repository: id is required")
	}

	docRef, err := r.base.DocumentRef(ctx, record.ID)
	if err != nil {
		return err
	}
	payload := encodeRateRecordDocument(record)
	if tx, ok := txFromContext(ctx); ok {
		if err := tx.Create(docRef, payload); err != nil {
			return pfirestore.WrapError("rate_records.insert", err)
		}
		return nil
	}
	if _, err := docRef.Create(ctx, payload); err != nil {
		return pfirestore.WrapError("rate_records.insert", err)
	}
	return nil
}

// Archive flags a record as superseded. Records are never deleted.
func (r *RateRecordRepository) Archive(ctx context.Context, recordID string) error {
	if r == nil || r.base == nil {
		return errors.New("rate record repository not initialised")
	}
	recordID = strings.TrimSpace(recordID)
	if recordID == "" {
		return errors.New("rate record repository: id is required")
	}

	docRef, err := r.base.DocumentRef(ctx, recordID)
	if err != nil {
		return err
	}
	updates := []firestore.Update{{Path: "archived", Value: true}}
	if tx, ok := txFromContext(ctx); ok {
		if err := tx.Update(docRef, updates); err != nil {
			return pfirestore.WrapError("rate_records.archive", err)
		}
		return nil
	}
	if _, err := docRef.Update(ctx, updates); err != nil {
		return pfirestore.WrapError("rate_records.archive", err)
	}
	return nil
}

// ListForPair returns records of the pair, in either direction, whose
// validity window overlaps [from, to]. Archived records are included so
// historical and range lookups keep seeing superseded rates.
func (r *RateRecordRepository) ListForPair(ctx context.Context, base, quote string, from, to time.Time) ([]domain.RateRecord, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("rate record repository not initialised")
	}

	var out []domain.RateRecord
	for _, pair := range [][2]string{{base, quote}, {quote, base}} {
		pairBase, pairQuote := pair[0], pair[1]
		docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
			// Firestore limits range conditions to one field; the expiry
			// bound is applied client side.
			return q.Where("baseCurrency", "==", pairBase).
				Where("quoteCurrency", "==", pairQuote).
				Where("timestamp", "<=", to)
		})
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			if doc.Data.ExpiresAt.Before(from) {
				continue
			}
			out = append(out, doc.Data)
		}
	}
	return out, nil
}

// ListActiveForPair returns the unarchived records of the pair in either
// direction regardless of validity window.
func (r *RateRecordRepository) ListActiveForPair(ctx context.Context, base, quote string) ([]domain.RateRecord, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("rate record repository not initialised")
	}

	var out []domain.RateRecord
	for _, pair := range [][2]string{{base, quote}, {quote, base}} {
		pairBase, pairQuote := pair[0], pair[1]
		docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
			return q.Where("baseCurrency", "==", pairBase).
				Where("quoteCurrency", "==", pairQuote).
				Where("archived", "==", false)
		})
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			out = append(out, doc.Data)
		}
	}
	return out, nil
}

func encodeRateRecordDocument(record domain.RateRecord) rateRecordDocument {
	return rateRecordDocument{
		BaseCurrency:  record.BaseCurrency,
		QuoteCurrency: record.QuoteCurrency,
		Rate:          record.Rate,
		Timestamp:     record.Timestamp.UTC(),
		ExpiresAt:     record.ExpiresAt.UTC(),
		Archived:      record.Archived,
	}
}

func decodeRateRecordDocument(doc rateRecordDocument) domain.RateRecord {
	return domain.RateRecord{
		ID:            doc.ID,
		BaseCurrency:  doc.BaseCurrency,
		QuoteCurrency: doc.QuoteCurrency,
		Rate:          doc.Rate,
		Timestamp:     doc.Timestamp,
		ExpiresAt:     doc.ExpiresAt,
		Archived:      doc.Archived,
	}
}
