package rates

import (
	"math"
	"testing"

	domain "github.com/hanko-field/pricing/internal/domain"
)

func intPtr(v int) *int { return &v }

func TestGetDecimals(t *testing.T) {
	cases := []struct {
		name     string
		decimals *int
		want     int
	}{
		{"nil defaults to two", nil, 2},
		{"zero stays zero", intPtr(0), 0},
		{"one stays one", intPtr(1), 1},
		{"two stays two", intPtr(2), 2},
		{"eight stays eight", intPtr(8), 8},
		{"eighteen is clamped", intPtr(18), 9},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := GetDecimals(tc.decimals); got != tc.want {
				t.Fatalf("GetDecimals = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestNormalizeRate_SameDirectionSameDecimals(t *testing.T) {
	record := domain.RateRecord{BaseCurrency: "USD", QuoteCurrency: "CHF", Rate: 0.9}
	got := NormalizeRate(record, domain.Currency{ISOCode: "USD"}, domain.Currency{ISOCode: "CHF"})
	if got != 0.9 {
		t.Fatalf("NormalizeRate = %v, want stored rate unchanged", got)
	}
}

func TestNormalizeRate_Inverted(t *testing.T) {
	record := domain.RateRecord{BaseCurrency: "USD", QuoteCurrency: "CHF", Rate: 0.9}
	got := NormalizeRate(record, domain.Currency{ISOCode: "CHF"}, domain.Currency{ISOCode: "USD"})
	if got != 1.1111111111111112 {
		t.Fatalf("NormalizeRate = %v, want 1.1111111111111112", got)
	}
}

func TestNormalizeRate_InversionKeysOnBaseSide(t *testing.T) {
	// A record missing its base declaration still inverts correctly because
	// the direction check reads the base side, not the quote side.
	record := domain.RateRecord{QuoteCurrency: "USD", Rate: 0.9}
	got := NormalizeRate(record, domain.Currency{ISOCode: "CHF"}, domain.Currency{ISOCode: "USD"})
	if got != 1.1111111111111112 {
		t.Fatalf("NormalizeRate = %v, want 1.1111111111111112", got)
	}
}

func TestNormalizeRate_DecimalShift(t *testing.T) {
	// CLP has no minor unit: one minor unit of CLP is a whole peso, so the
	// minor-unit multiplier into CHF cents is the major-unit rate times 100.
	record := domain.RateRecord{BaseCurrency: "CLP", QuoteCurrency: "CHF", Rate: 0.0010451376}
	clp := domain.Currency{ISOCode: "CLP", Decimals: intPtr(0)}
	chf := domain.Currency{ISOCode: "CHF"}

	got := NormalizeRate(record, clp, chf)
	if math.Abs(got-0.10451376) > 1e-12 {
		t.Fatalf("NormalizeRate = %v, want 0.10451376", got)
	}

	back := NormalizeRate(record, chf, clp)
	if math.Abs(back-1/0.10451376) > 1e-6 {
		t.Fatalf("inverse NormalizeRate = %v, want %v", back, 1/0.10451376)
	}
}

func TestConvertMinorUnit(t *testing.T) {
	if got := ConvertMinorUnit(240000, 0.10451376); got != 25083 {
		t.Fatalf("ConvertMinorUnit = %d, want 25083", got)
	}
	if got := ConvertMinorUnit(-1000, 0.5); got != -500 {
		t.Fatalf("ConvertMinorUnit = %d, want -500", got)
	}
	if got := ConvertMinorUnit(0, 1.25); got != 0 {
		t.Fatalf("ConvertMinorUnit = %d, want 0", got)
	}
}
