package domain

import "time"

// Currency describes a priceable currency. Decimals is nil for plain fiat
// currencies, which default to two minor-unit decimals; token currencies
// carry their native precision.
type Currency struct {
	ISOCode  string
	Decimals *int
}

// RateRecord is one stored conversion rate, valid from Timestamp until
// ExpiresAt. Records are stored in a single canonical direction; lookups
// consider both directions and invert when needed. Superseded records are
// archived rather than deleted: Archived only means the record is no longer
// the current rate, it stays visible to historical and range lookups.
type RateRecord struct {
	ID            string
	BaseCurrency  string
	QuoteCurrency string
	Rate          float64
	Timestamp     time.Time
	ExpiresAt     time.Time
	Archived      bool
}

// IsValidAt reports whether the record covers the given reference instant.
// Archived records still count: archival marks a superseded rate, not an
// invalid one.
func (r RateRecord) IsValidAt(at time.Time) bool {
	if r.Timestamp.After(at) {
		return false
	}
	return !r.ExpiresAt.Before(at)
}

// Overlaps reports whether the record's validity window intersects [from, to].
func (r RateRecord) Overlaps(from, to time.Time) bool {
	if r.Timestamp.After(to) {
		return false
	}
	return !r.ExpiresAt.Before(from)
}

// MatchesPair reports whether the record stores the given pair in either
// direction.
func (r RateRecord) MatchesPair(base, quote string) bool {
	if r.BaseCurrency == base && r.QuoteCurrency == quote {
		return true
	}
	return r.BaseCurrency == quote && r.QuoteCurrency == base
}
