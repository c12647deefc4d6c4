package rates

import (
	"math"

	domain "github.com/hanko-field/pricing/internal/domain"
)

const (
	// DefaultDecimals applies when a currency does not declare its minor-unit
	// precision.
	DefaultDecimals = 2

	// MaxDecimals caps declared precision. Crypto-style currencies declare up
	// to 18 decimals; amounts beyond 9 overflow int64 minor units for any
	// realistic value, so the precision is clamped.
	MaxDecimals = 9
)

// GetDecimals resolves the effective minor-unit precision of a currency.
// A nil declaration falls back to DefaultDecimals; zero stays zero (e.g. JPY,
// CLP); anything above two is clamped to MaxDecimals.
func GetDecimals(decimals *int) int {
	if decimals == nil {
		return DefaultDecimals
	}
	if *decimals > DefaultDecimals {
		return int(math.Min(float64(*decimals), MaxDecimals))
	}
	return *decimals
}

// NormalizeRate converts a stored rate record into the multiplier that maps a
// minor-unit amount of base into a minor-unit amount of quote.
//
// Records are stored once per pair and serve both directions: when the record
// is oriented the other way round the rate is inverted. Currencies with
// unequal precision additionally need a decimal shift so the multiplier works
// on minor units rather than major units.
func NormalizeRate(record domain.RateRecord, base, quote domain.Currency) float64 {
	rate := record.Rate
	// Direction is decided by the base side: a record whose base is not the
	// requested base is stored the other way round and must be inverted.
	if record.BaseCurrency != base.ISOCode {
		rate = 1 / rate
	}
	shift := GetDecimals(quote.Decimals) - GetDecimals(base.Decimals)
	if shift != 0 {
		rate *= math.Pow(10, float64(shift))
	}
	return rate
}

// ConvertMinorUnit applies a normalized rate to a minor-unit amount, rounding
// half away from zero.
func ConvertMinorUnit(amount int64, normalizedRate float64) int64 {
	return int64(math.Round(float64(amount) * normalizedRate))
}
