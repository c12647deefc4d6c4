package rates

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/hanko-field/pricing/internal/domain"
	"github.com/hanko-field/pricing/internal/repositories"
)

var (
	// ErrRateInvalidInput indicates the caller supplied invalid rate parameters.
	ErrRateInvalidInput = errors.New("rates: invalid input")
)

// Quote is a resolved conversion rate for a requested pair. Rate is already
// normalized: it maps minor units of Base into minor units of Quote.
type Quote struct {
	Base   string
	Quote  string
	Rate   float64
	Record domain.RateRecord
}

// Range aggregates the normalized rates valid inside a query window.
type Range struct {
	Base    string
	Quote   string
	Min     float64
	Max     float64
	Samples int
}

// Update carries one incoming rate observation.
type Update struct {
	BaseCurrency  string
	QuoteCurrency string
	Rate          float64
	Timestamp     time.Time
	ExpiresAt     time.Time
}

// RatesUpdatedEvent is emitted after a batch of rate records was committed.
type RatesUpdatedEvent struct {
	Pairs     []string  `json:"pairs"`
	Count     int       `json:"count"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EventPublisher notifies downstream consumers about committed rate batches.
type EventPublisher interface {
	PublishRatesUpdated(ctx context.Context, event RatesUpdatedEvent) (string, error)
}

// Service resolves, aggregates and updates conversion rates.
type Service interface {
	// GetRate returns the normalized rate of the most recent record valid at
	// the reference instant, or nil when no record covers the pair. There is
	// no parity fallback: an unknown pair is an absent rate, not rate one.
	GetRate(ctx context.Context, base, quote string, at *time.Time) (*Quote, error)
	// GetRateRange returns the minimum and maximum normalized rate over all
	// records valid inside [from, to], or nil when the window holds none.
	GetRateRange(ctx context.Context, base, quote string, from, to time.Time) (*Range, error)
	// UpdateRates commits a batch of rate observations atomically. Active
	// records of the affected pairs whose validity window overlaps the
	// incoming record are archived, never deleted; archived records stay
	// visible to historical reads.
	UpdateRates(ctx context.Context, updates []Update) error
	// Convert maps a minor-unit amount from base into quote using the rate
	// valid at the reference instant. Nil result means no rate was available.
	Convert(ctx context.Context, amount int64, base, quote string, at *time.Time) (*domain.Money, error)
}

// ServiceDeps bundles collaborators required to construct a rate service.
type ServiceDeps struct {
	Rates      repositories.RateRecordRepository
	Currencies repositories.CurrencyRepository
	UnitOfWork repositories.UnitOfWork
	Publisher  EventPublisher
	Clock      func() time.Time
	IDFactory  func() string
	// DefaultValidity caps how long an update without an explicit expiry
	// stays active. Zero falls back to 24 hours.
	DefaultValidity time.Duration
}

type service struct {
	rates      repositories.RateRecordRepository
	currencies repositories.CurrencyRepository
	uow        repositories.UnitOfWork
	publisher  EventPublisher
	clock      func() time.Time
	newID      func() string
	validity   time.Duration
}

var _ Service = (*service)(nil)

// NewService assembles the rate service on top of the rate and currency repositories.
func NewService(deps ServiceDeps) (Service, error) {
	if deps.Rates == nil {
		return nil, errors.New("rate service: rate repository is required")
	}
	if deps.Currencies == nil {
		return nil, errors.New("rate service: currency repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := deps.IDFactory
	if newID == nil {
		entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
		newID = func() string {
			return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), entropy).String()
		}
	}

	validity := deps.DefaultValidity
	if validity <= 0 {
		validity = 24 * time.Hour
	}

	return &service{
		rates:      deps.Rates,
		currencies: deps.Currencies,
		uow:        deps.UnitOfWork,
		publisher:  deps.Publisher,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID:    newID,
		validity: validity,
	}, nil
}

func (s *service) GetRate(ctx context.Context, base, quote string, at *time.Time) (*Quote, error) {
	base, quote, err := normalizePair(base, quote)
	if err != nil {
		return nil, err
	}

	reference := s.clock()
	if at != nil {
		reference = at.UTC()
	}

	if base == quote {
		return &Quote{Base: base, Quote: quote, Rate: 1}, nil
	}

	records, err := s.rates.ListForPair(ctx, base, quote, reference, reference)
	if err != nil {
		return nil, fmt.Errorf("list rates for %s/%s: %w", base, quote, err)
	}

	var best *domain.RateRecord
	for i := range records {
		record := records[i]
		if !record.IsValidAt(reference) || !record.MatchesPair(base, quote) {
			continue
		}
		if best == nil || record.Timestamp.After(best.Timestamp) {
			best = &record
		}
	}
	if best == nil {
		return nil, nil
	}

	baseCurrency, quoteCurrency, err := s.currencyPair(ctx, base, quote)
	if err != nil {
		return nil, err
	}
	return &Quote{
		Base:   base,
		Quote:  quote,
		Rate:   NormalizeRate(*best, baseCurrency, quoteCurrency),
		Record: *best,
	}, nil
}

func (s *service) GetRateRange(ctx context.Context, base, quote string, from, to time.Time) (*Range, error) {
	base, quote, err := normalizePair(base, quote)
	if err != nil {
		return nil, err
	}
	from, to = from.UTC(), to.UTC()
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end before start", ErrRateInvalidInput)
	}

	records, err := s.rates.ListForPair(ctx, base, quote, from, to)
	if err != nil {
		return nil, fmt.Errorf("list rates for %s/%s: %w", base, quote, err)
	}

	baseCurrency, quoteCurrency, err := s.currencyPair(ctx, base, quote)
	if err != nil {
		return nil, err
	}

	var result *Range
	for _, record := range records {
		if !record.MatchesPair(base, quote) {
			continue
		}
		rate := NormalizeRate(record, baseCurrency, quoteCurrency)
		if result == nil {
			result = &Range{Base: base, Quote: quote, Min: rate, Max: rate}
		}
		if rate < result.Min {
			result.Min = rate
		}
		if rate > result.Max {
			result.Max = rate
		}
		result.Samples++
	}
	return result, nil
}

func (s *service) UpdateRates(ctx context.Context, updates []Update) error {
	if len(updates) == 0 {
		return fmt.Errorf("%w: empty update batch", ErrRateInvalidInput)
	}

	now := s.clock()
	records := make([]domain.RateRecord, 0, len(updates))
	pairs := make([]string, 0, len(updates))
	for _, update := range updates {
		base, quote, err := normalizePair(update.BaseCurrency, update.QuoteCurrency)
		if err != nil {
			return err
		}
		if base == quote {
			return fmt.Errorf("%w: identical pair %s/%s", ErrRateInvalidInput, base, quote)
		}
		if update.Rate <= 0 {
			return fmt.Errorf("%w: non-positive rate for %s/%s", ErrRateInvalidInput, base, quote)
		}

		timestamp := update.Timestamp
		if timestamp.IsZero() {
			timestamp = now
		}
		expiresAt := update.ExpiresAt
		if expiresAt.IsZero() {
			expiresAt = timestamp.Add(s.validity)
		}
		if !expiresAt.After(timestamp) {
			return fmt.Errorf("%w: record for %s/%s expires before it starts", ErrRateInvalidInput, base, quote)
		}

		records = append(records, domain.RateRecord{
			ID:            s.newID(),
			BaseCurrency:  base,
			QuoteCurrency: quote,
			Rate:          update.Rate,
			Timestamp:     timestamp.UTC(),
			ExpiresAt:     expiresAt.UTC(),
		})
		pairs = append(pairs, base+"/"+quote)
	}

	commit := func(ctx context.Context) error {
		for _, record := range records {
			active, err := s.rates.ListActiveForPair(ctx, record.BaseCurrency, record.QuoteCurrency)
			if err != nil {
				return fmt.Errorf("list active rates for %s/%s: %w", record.BaseCurrency, record.QuoteCurrency, err)
			}
			for _, existing := range active {
				// Future-dated or otherwise disjoint records are not
				// superseded by this observation and stay active.
				if !existing.Overlaps(record.Timestamp, record.ExpiresAt) {
					continue
				}
				if err := s.rates.Archive(ctx, existing.ID); err != nil {
					return fmt.Errorf("archive rate %s: %w", existing.ID, err)
				}
			}
			if err := s.rates.Insert(ctx, record); err != nil {
				return fmt.Errorf("insert rate %s/%s: %w", record.BaseCurrency, record.QuoteCurrency, err)
			}
		}
		return nil
	}

	if s.uow != nil {
		if err := s.uow.RunInTx(ctx, commit); err != nil {
			return err
		}
	} else if err := commit(ctx); err != nil {
		return err
	}

	if s.publisher != nil {
		// Publishing is best effort: the records are committed either way and
		// consumers re-read on their own schedule.
		_, _ = s.publisher.PublishRatesUpdated(ctx, RatesUpdatedEvent{
			Pairs:     pairs,
			Count:     len(records),
			UpdatedAt: now,
		})
	}
	return nil
}

func (s *service) Convert(ctx context.Context, amount int64, base, quote string, at *time.Time) (*domain.Money, error) {
	quoteRate, err := s.GetRate(ctx, base, quote, at)
	if err != nil {
		return nil, err
	}
	if quoteRate == nil {
		return nil, nil
	}
	return &domain.Money{
		Amount:   ConvertMinorUnit(amount, quoteRate.Rate),
		Currency: quoteRate.Quote,
	}, nil
}

// currencyPair loads the decimal declarations of both sides. Unknown
// currencies fall back to the default precision instead of failing the
// lookup.
func (s *service) currencyPair(ctx context.Context, base, quote string) (domain.Currency, domain.Currency, error) {
	baseCurrency, err := s.lookupCurrency(ctx, base)
	if err != nil {
		return domain.Currency{}, domain.Currency{}, err
	}
	quoteCurrency, err := s.lookupCurrency(ctx, quote)
	if err != nil {
		return domain.Currency{}, domain.Currency{}, err
	}
	return baseCurrency, quoteCurrency, nil
}

func (s *service) lookupCurrency(ctx context.Context, isoCode string) (domain.Currency, error) {
	currency, err := s.currencies.FindByCode(ctx, isoCode)
	if err != nil {
		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) && repoErr.IsNotFound() {
			return domain.Currency{ISOCode: isoCode}, nil
		}
		return domain.Currency{}, fmt.Errorf("find currency %s: %w", isoCode, err)
	}
	return currency, nil
}

func normalizePair(base, quote string) (string, string, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	quote = strings.ToUpper(strings.TrimSpace(quote))
	if base == "" || quote == "" {
		return "", "", fmt.Errorf("%w: base and quote currencies are required", ErrRateInvalidInput)
	}
	return base, quote, nil
}
