package rates

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	domain "github.com/hanko-field/pricing/internal/domain"
)

type fakeRateRepository struct {
	records  []domain.RateRecord
	inserts  int
	archives int
	listErr  error
}

func (f *fakeRateRepository) Insert(_ context.Context, record domain.RateRecord) error {
	f.records = append(f.records, record)
	f.inserts++
	return nil
}

func (f *fakeRateRepository) Archive(_ context.Context, recordID string) error {
	for i := range f.records {
		if f.records[i].ID == recordID {
			f.records[i].Archived = true
			f.archives++
			return nil
		}
	}
	return fmt.Errorf("rate %s not found", recordID)
}

func (f *fakeRateRepository) ListForPair(_ context.Context, base, quote string, from, to time.Time) ([]domain.RateRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.RateRecord
	for _, record := range f.records {
		if !record.MatchesPair(base, quote) {
			continue
		}
		if record.Timestamp.After(to) || record.ExpiresAt.Before(from) {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

func (f *fakeRateRepository) ListActiveForPair(_ context.Context, base, quote string) ([]domain.RateRecord, error) {
	var out []domain.RateRecord
	for _, record := range f.records {
		if !record.Archived && record.MatchesPair(base, quote) {
			out = append(out, record)
		}
	}
	return out, nil
}

type currencyNotFoundError struct{ code string }

func (e currencyNotFoundError) Error() string       { return "currency not found: " + e.code }
func (e currencyNotFoundError) IsNotFound() bool    { return true }
func (e currencyNotFoundError) IsConflict() bool    { return false }
func (e currencyNotFoundError) IsUnavailable() bool { return false }

type fakeCurrencyRepository struct {
	currencies map[string]domain.Currency
}

func (f *fakeCurrencyRepository) FindByCode(_ context.Context, isoCode string) (domain.Currency, error) {
	if currency, ok := f.currencies[isoCode]; ok {
		return currency, nil
	}
	return domain.Currency{}, currencyNotFoundError{code: isoCode}
}

func (f *fakeCurrencyRepository) List(context.Context) ([]domain.Currency, error) {
	var out []domain.Currency
	for _, currency := range f.currencies {
		out = append(out, currency)
	}
	return out, nil
}

func (f *fakeCurrencyRepository) Upsert(_ context.Context, currency domain.Currency) error {
	if f.currencies == nil {
		f.currencies = make(map[string]domain.Currency)
	}
	f.currencies[currency.ISOCode] = currency
	return nil
}

type capturingPublisher struct {
	events []RatesUpdatedEvent
}

func (p *capturingPublisher) PublishRatesUpdated(_ context.Context, event RatesUpdatedEvent) (string, error) {
	p.events = append(p.events, event)
	return "msg-1", nil
}

func newTestService(t *testing.T, repo *fakeRateRepository, currencies *fakeCurrencyRepository, publisher EventPublisher, now time.Time) Service {
	t.Helper()
	if currencies == nil {
		currencies = &fakeCurrencyRepository{}
	}
	seq := 0
	svc, err := NewService(ServiceDeps{
		Rates:      repo,
		Currencies: currencies,
		Publisher:  publisher,
		Clock:      func() time.Time { return now },
		IDFactory: func() string {
			seq++
			return fmt.Sprintf("rate-%03d", seq)
		},
	})
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}
	return svc
}

func TestService_GetRatePicksMostRecentValid(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeRateRepository{records: []domain.RateRecord{
		{ID: "old", BaseCurrency: "EUR", QuoteCurrency: "USD", Rate: 1.05, Timestamp: now.Add(-48 * time.Hour), ExpiresAt: now.Add(48 * time.Hour)},
		{ID: "new", BaseCurrency: "EUR", QuoteCurrency: "USD", Rate: 1.08, Timestamp: now.Add(-1 * time.Hour), ExpiresAt: now.Add(23 * time.Hour)},
		{ID: "future", BaseCurrency: "EUR", QuoteCurrency: "USD", Rate: 1.2, Timestamp: now.Add(time.Hour), ExpiresAt: now.Add(48 * time.Hour)},
	}}
	svc := newTestService(t, repo, nil, nil, now)

	quote, err := svc.GetRate(context.Background(), "eur", "usd", nil)
	if err != nil {
		t.Fatalf("GetRate error: %v", err)
	}
	if quote == nil || quote.Record.ID != "new" || quote.Rate != 1.08 {
		t.Fatalf("quote = %+v, want record new at 1.08", quote)
	}
}

func TestService_GetRateHonoursReferenceTime(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeRateRepository{records: []domain.RateRecord{
		{ID: "old", BaseCurrency: "EUR", QuoteCurrency: "USD", Rate: 1.05, Timestamp: now.Add(-48 * time.Hour), ExpiresAt: now.Add(-24 * time.Hour)},
		{ID: "new", BaseCurrency: "EUR", QuoteCurrency: "USD", Rate: 1.08, Timestamp: now.Add(-1 * time.Hour), ExpiresAt: now.Add(23 * time.Hour)},
	}}
	svc := newTestService(t, repo, nil, nil, now)

	at := now.Add(-36 * time.Hour)
	quote, err := svc.GetRate(context.Background(), "EUR", "USD", &at)
	if err != nil {
		t.Fatalf("GetRate error: %v", err)
	}
	if quote == nil || quote.Record.ID != "old" {
		t.Fatalf("quote = %+v, want the historical record", quote)
	}
}

func TestService_GetRateMissingPairIsNil(t *testing.T) {
	now := time.Now().UTC()
	svc := newTestService(t, &fakeRateRepository{}, nil, nil, now)

	quote, err := svc.GetRate(context.Background(), "EUR", "GBP", nil)
	if err != nil {
		t.Fatalf("GetRate error: %v", err)
	}
	if quote != nil {
		t.Fatalf("quote = %+v, want nil for unknown pair (no parity fallback)", quote)
	}
}

func TestService_GetRateIdenticalPair(t *testing.T) {
	now := time.Now().UTC()
	svc := newTestService(t, &fakeRateRepository{}, nil, nil, now)

	quote, err := svc.GetRate(context.Background(), "CHF", "CHF", nil)
	if err != nil {
		t.Fatalf("GetRate error: %v", err)
	}
	if quote == nil || quote.Rate != 1 {
		t.Fatalf("quote = %+v, want parity for identical pair", quote)
	}
}

func TestService_GetRateInvertsOppositeDirection(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeRateRepository{records: []domain.RateRecord{
		{ID: "usd-chf", BaseCurrency: "USD", QuoteCurrency: "CHF", Rate: 0.9, Timestamp: now.Add(-time.Hour), ExpiresAt: now.Add(time.Hour)},
	}}
	svc := newTestService(t, repo, nil, nil, now)

	quote, err := svc.GetRate(context.Background(), "CHF", "USD", nil)
	if err != nil {
		t.Fatalf("GetRate error: %v", err)
	}
	if quote == nil || quote.Rate != 1.1111111111111112 {
		t.Fatalf("quote = %+v, want inverted rate 1.1111111111111112", quote)
	}
}

func TestService_GetRateAppliesDecimalShift(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeRateRepository{records: []domain.RateRecord{
		{ID: "clp-chf", BaseCurrency: "CLP", QuoteCurrency: "CHF", Rate: 0.0010451376, Timestamp: now.Add(-time.Hour), ExpiresAt: now.Add(time.Hour)},
	}}
	currencies := &fakeCurrencyRepository{currencies: map[string]domain.Currency{
		"CLP": {ISOCode: "CLP", Decimals: intPtr(0)},
		"CHF": {ISOCode: "CHF"},
	}}
	svc := newTestService(t, repo, currencies, nil, now)

	quote, err := svc.GetRate(context.Background(), "CLP", "CHF", nil)
	if err != nil {
		t.Fatalf("GetRate error: %v", err)
	}
	if quote == nil || math.Abs(quote.Rate-0.10451376) > 1e-12 {
		t.Fatalf("quote = %+v, want 0.10451376", quote)
	}
}

func TestService_GetRateRange(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeRateRepository{records: []domain.RateRecord{
		{ID: "a", BaseCurrency: "EUR", QuoteCurrency: "USD", Rate: 1.04, Timestamp: now.Add(-72 * time.Hour), ExpiresAt: now.Add(-48 * time.Hour)},
		{ID: "b", BaseCurrency: "EUR", QuoteCurrency: "USD", Rate: 1.1, Timestamp: now.Add(-48 * time.Hour), ExpiresAt: now.Add(-24 * time.Hour)},
		{ID: "c", BaseCurrency: "EUR", QuoteCurrency: "USD", Rate: 1.07, Timestamp: now.Add(-24 * time.Hour), ExpiresAt: now.Add(24 * time.Hour)},
	}}
	svc := newTestService(t, repo, nil, nil, now)

	result, err := svc.GetRateRange(context.Background(), "EUR", "USD", now.Add(-72*time.Hour), now)
	if err != nil {
		t.Fatalf("GetRateRange error: %v", err)
	}
	if result == nil {
		t.Fatalf("expected a range result")
	}
	if result.Min != 1.04 || result.Max != 1.1 || result.Samples != 3 {
		t.Fatalf("range = %+v, want min 1.04 max 1.1 over 3 samples", result)
	}
}

func TestService_GetRateRangeEmptyWindowIsNil(t *testing.T) {
	now := time.Now().UTC()
	svc := newTestService(t, &fakeRateRepository{}, nil, nil, now)

	result, err := svc.GetRateRange(context.Background(), "EUR", "USD", now.Add(-time.Hour), now)
	if err != nil {
		t.Fatalf("GetRateRange error: %v", err)
	}
	if result != nil {
		t.Fatalf("range = %+v, want nil for empty window", result)
	}
}

func TestService_UpdateRatesArchivesAndInserts(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeRateRepository{records: []domain.RateRecord{
		{ID: "stale", BaseCurrency: "EUR", QuoteCurrency: "USD", Rate: 1.0, Timestamp: now.Add(-24 * time.Hour), ExpiresAt: now.Add(24 * time.Hour)},
	}}
	publisher := &capturingPublisher{}
	svc := newTestService(t, repo, nil, publisher, now)

	err := svc.UpdateRates(context.Background(), []Update{
		{BaseCurrency: "EUR", QuoteCurrency: "USD", Rate: 1.09},
		{BaseCurrency: "USD", QuoteCurrency: "CHF", Rate: 0.9},
	})
	if err != nil {
		t.Fatalf("UpdateRates error: %v", err)
	}

	if repo.archives != 1 {
		t.Fatalf("archives = %d, want the stale EUR/USD record archived", repo.archives)
	}
	if repo.inserts != 2 {
		t.Fatalf("inserts = %d, want 2", repo.inserts)
	}
	for _, record := range repo.records {
		if record.ID == "stale" && !record.Archived {
			t.Fatalf("stale record was not archived: %+v", record)
		}
		if record.ID != "stale" && record.Archived {
			t.Fatalf("fresh record is archived: %+v", record)
		}
	}

	quote, err := svc.GetRate(context.Background(), "EUR", "USD", nil)
	if err != nil {
		t.Fatalf("GetRate error: %v", err)
	}
	if quote == nil || quote.Rate != 1.09 {
		t.Fatalf("quote after update = %+v, want 1.09", quote)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("published events = %d, want 1", len(publisher.events))
	}
	event := publisher.events[0]
	if event.Count != 2 || len(event.Pairs) != 2 {
		t.Fatalf("event = %+v, want both pairs", event)
	}
}

func TestService_UpdateRatesKeepsSupersededRecordsReadable(t *testing.T) {
	now := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)
	repo := &fakeRateRepository{}
	svc := newTestService(t, repo, nil, nil, now)

	firstStart := now.Add(-7 * 24 * time.Hour)
	err := svc.UpdateRates(context.Background(), []Update{{
		BaseCurrency: "EUR", QuoteCurrency: "USD", Rate: 0.90,
		Timestamp: firstStart, ExpiresAt: firstStart.Add(7 * 24 * time.Hour),
	}})
	if err != nil {
		t.Fatalf("UpdateRates error: %v", err)
	}
	secondStart := now.Add(-3 * 24 * time.Hour)
	err = svc.UpdateRates(context.Background(), []Update{{
		BaseCurrency: "EUR", QuoteCurrency: "USD", Rate: 0.95,
		Timestamp: secondStart, ExpiresAt: secondStart.Add(7 * 24 * time.Hour),
	}})
	if err != nil {
		t.Fatalf("UpdateRates error: %v", err)
	}
	if repo.archives != 1 {
		t.Fatalf("archives = %d, want the overlapping first record archived", repo.archives)
	}

	result, err := svc.GetRateRange(context.Background(), "EUR", "USD", firstStart, now)
	if err != nil {
		t.Fatalf("GetRateRange error: %v", err)
	}
	if result == nil || result.Samples != 2 || result.Min != 0.90 || result.Max != 0.95 {
		t.Fatalf("range = %+v, want both records with min 0.90 max 0.95", result)
	}

	// Only the superseded record covers this instant.
	at := firstStart.Add(24 * time.Hour)
	quote, err := svc.GetRate(context.Background(), "EUR", "USD", &at)
	if err != nil {
		t.Fatalf("GetRate error: %v", err)
	}
	if quote == nil || quote.Rate != 0.90 {
		t.Fatalf("quote = %+v, want the archived 0.90 record", quote)
	}

	current, err := svc.GetRate(context.Background(), "EUR", "USD", nil)
	if err != nil {
		t.Fatalf("GetRate error: %v", err)
	}
	if current == nil || current.Rate != 0.95 {
		t.Fatalf("quote = %+v, want the latest 0.95 record", current)
	}
}

func TestService_UpdateRatesLeavesDisjointRecordsActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeRateRepository{records: []domain.RateRecord{
		{ID: "future", BaseCurrency: "EUR", QuoteCurrency: "USD", Rate: 1.2, Timestamp: now.Add(48 * time.Hour), ExpiresAt: now.Add(72 * time.Hour)},
	}}
	svc := newTestService(t, repo, nil, nil, now)

	err := svc.UpdateRates(context.Background(), []Update{
		{BaseCurrency: "EUR", QuoteCurrency: "USD", Rate: 1.09},
	})
	if err != nil {
		t.Fatalf("UpdateRates error: %v", err)
	}
	if repo.archives != 0 {
		t.Fatalf("archives = %d, the future-dated record does not overlap and must stay active", repo.archives)
	}
	for _, record := range repo.records {
		if record.ID == "future" && record.Archived {
			t.Fatalf("future record was archived: %+v", record)
		}
	}
}

func TestService_UpdateRatesValidation(t *testing.T) {
	now := time.Now().UTC()
	svc := newTestService(t, &fakeRateRepository{}, nil, nil, now)

	cases := []struct {
		name    string
		updates []Update
	}{
		{"empty batch", nil},
		{"identical pair", []Update{{BaseCurrency: "EUR", QuoteCurrency: "EUR", Rate: 1}}},
		{"non-positive rate", []Update{{BaseCurrency: "EUR", QuoteCurrency: "USD", Rate: 0}}},
		{"expires before start", []Update{{
			BaseCurrency: "EUR", QuoteCurrency: "USD", Rate: 1.1,
			Timestamp: now, ExpiresAt: now.Add(-time.Hour),
		}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.UpdateRates(context.Background(), tc.updates); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestService_Convert(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeRateRepository{records: []domain.RateRecord{
		{ID: "clp-chf", BaseCurrency: "CLP", QuoteCurrency: "CHF", Rate: 0.0010451376, Timestamp: now.Add(-time.Hour), ExpiresAt: now.Add(time.Hour)},
	}}
	currencies := &fakeCurrencyRepository{currencies: map[string]domain.Currency{
		"CLP": {ISOCode: "CLP", Decimals: intPtr(0)},
		"CHF": {ISOCode: "CHF"},
	}}
	svc := newTestService(t, repo, currencies, nil, now)

	money, err := svc.Convert(context.Background(), 240000, "CLP", "CHF", nil)
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	if money == nil || money.Amount != 25083 || money.Currency != "CHF" {
		t.Fatalf("converted = %+v, want 25083 CHF", money)
	}

	missing, err := svc.Convert(context.Background(), 100, "EUR", "GBP", nil)
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	if missing != nil {
		t.Fatalf("converted = %+v, want nil without a rate", missing)
	}
}
