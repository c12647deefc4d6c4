package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "github.com/hanko-field/pricing/internal/domain"
	"github.com/hanko-field/pricing/internal/pricing"
	"github.com/hanko-field/pricing/internal/rates"
	"github.com/hanko-field/pricing/internal/repositories"
)

var (
	// ErrPricingInvalidInput signals bad request data such as a missing currency or provider reference.
	ErrPricingInvalidInput = errors.New("pricing: invalid input")
)

// OrderQuoteRequest carries the hydrated order snapshot a pricing pass works from.
type OrderQuoteRequest struct {
	Order         Order
	Items         []OrderItem
	User          User
	Delivery      OrderDelivery
	Payment       OrderPayment
	DiscountCodes []string
	DiscountIDs   []string
	Currency      string
	// DisplayCurrency asks for the gross total converted into a second
	// currency for display. Absence of a rate leaves DisplayTotal nil.
	DisplayCurrency string
}

// OrderQuote is the priced result of one order pass.
type OrderQuote struct {
	Currency     string
	Valid        bool
	Rows         []CalculationRow
	Gross        Money
	Net          Money
	TaxSum       Money
	Discounts    []DiscountPrice
	Summary      map[string]string
	DisplayTotal *Money
}

// ProductQuoteRequest prices one product for a currency, country and quantity.
// Product may be supplied as a snapshot; otherwise ProductID is resolved
// through the catalog.
type ProductQuoteRequest struct {
	ProductID     string
	Product       *Product
	Order         Order
	User          User
	Currency      string
	Country       string
	Quantity      int
	DiscountCodes []string
	DiscountIDs   []string
}

// ProductQuote is the priced result of one product pass.
type ProductQuote struct {
	Currency  string
	Valid     bool
	Quantity  int
	Rows      []CalculationRow
	Total     Money
	UnitGross Money
	UnitNet   Money
	Discounts []DiscountPrice
}

// ProviderFeeRequest prices a delivery or payment provider in isolation.
type ProviderFeeRequest struct {
	ProviderID string
	Order      Order
	User       User
	Currency   string
	OrderValue int64
}

// FeeQuote is the priced result of one provider fee pass.
type FeeQuote struct {
	Currency string
	Rows     []CalculationRow
	Total    Money
}

// PricingServiceDeps bundles collaborators required to construct the pricing service.
type PricingServiceDeps struct {
	OrderDirector    *pricing.OrderDirector
	ProductDirector  *pricing.ProductDirector
	DeliveryDirector *pricing.DeliveryDirector
	PaymentDirector  *pricing.PaymentDirector
	Discounts        repositories.DiscountRepository
	Products         repositories.ProductRepository
	Providers        repositories.ProviderRepository
	Rates            rates.Service
	Formatter        *MoneyFormatter
	Logger           func(context.Context, string, map[string]any)
}

type pricingService struct {
	orders    *pricing.OrderDirector
	products  *pricing.ProductDirector
	delivery  *pricing.DeliveryDirector
	payment   *pricing.PaymentDirector
	discounts repositories.DiscountRepository
	catalog   repositories.ProductRepository
	providers repositories.ProviderRepository
	rates     rates.Service
	formatter *MoneyFormatter
	logger    func(context.Context, string, map[string]any)
}

var _ PricingService = (*pricingService)(nil)

// NewPricingService assembles the quote orchestration on top of the four directors.
func NewPricingService(deps PricingServiceDeps) (PricingService, error) {
	if deps.OrderDirector == nil {
		return nil, errors.New("pricing service: order director is required")
	}
	if deps.ProductDirector == nil {
		return nil, errors.New("pricing service: product director is required")
	}
	if deps.DeliveryDirector == nil {
		return nil, errors.New("pricing service: delivery director is required")
	}
	if deps.PaymentDirector == nil {
		return nil, errors.New("pricing service: payment director is required")
	}
	if deps.Discounts == nil {
		return nil, errors.New("pricing service: discount repository is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &pricingService{
		orders:    deps.OrderDirector,
		products:  deps.ProductDirector,
		delivery:  deps.DeliveryDirector,
		payment:   deps.PaymentDirector,
		discounts: deps.Discounts,
		catalog:   deps.Products,
		providers: deps.Providers,
		rates:     deps.Rates,
		formatter: deps.Formatter,
		logger:    logger,
	}, nil
}

func (s *pricingService) QuoteOrder(ctx context.Context, req OrderQuoteRequest) (OrderQuote, error) {
	currency := resolveCurrency(req.Currency, req.Order.Currency)
	if currency == "" {
		return OrderQuote{}, fmt.Errorf("%w: currency is required", ErrPricingInvalidInput)
	}

	discounts, err := s.resolveDiscounts(ctx, req.DiscountCodes, req.DiscountIDs)
	if err != nil {
		return OrderQuote{}, err
	}

	calc := s.orders.Calculate(ctx, pricing.OrderContext{
		Order:     req.Order,
		Items:     req.Items,
		User:      req.User,
		Delivery:  req.Delivery,
		Payment:   req.Payment,
		Discounts: discounts,
		Currency:  currency,
	})
	sheet := calc.ResultSheet()

	quote := OrderQuote{
		Currency:  currency,
		Valid:     sheet.IsValid(),
		Rows:      sheet.Rows(),
		Gross:     Money{Amount: sheet.Gross(), Currency: currency},
		Net:       Money{Amount: sheet.Net(), Currency: currency},
		TaxSum:    Money{Amount: sheet.TaxSum(), Currency: currency},
		Discounts: sheet.DiscountPrices(""),
	}
	if s.formatter != nil {
		quote.Summary = sheet.FormattedSummary(s.formatter.Format)
	}

	if display := resolveCurrency(req.DisplayCurrency, ""); display != "" && display != currency && s.rates != nil {
		converted, err := s.rates.Convert(ctx, quote.Gross.Amount, currency, display, nil)
		if err != nil {
			s.logger(ctx, "pricing_display_conversion_failed", map[string]any{
				"base":  currency,
				"quote": display,
				"error": err.Error(),
			})
		} else {
			quote.DisplayTotal = converted
		}
	}
	return quote, nil
}

func (s *pricingService) QuoteProduct(ctx context.Context, req ProductQuoteRequest) (ProductQuote, error) {
	currency := resolveCurrency(req.Currency, req.Order.Currency)
	if currency == "" {
		return ProductQuote{}, fmt.Errorf("%w: currency is required", ErrPricingInvalidInput)
	}
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	product := req.Product
	if product == nil {
		if s.catalog == nil || strings.TrimSpace(req.ProductID) == "" {
			return ProductQuote{}, fmt.Errorf("%w: product reference is required", ErrPricingInvalidInput)
		}
		loaded, err := s.catalog.FindByID(ctx, req.ProductID)
		if err != nil {
			return ProductQuote{}, fmt.Errorf("load product %s: %w", req.ProductID, err)
		}
		product = &loaded
	}

	discounts, err := s.resolveDiscounts(ctx, req.DiscountCodes, req.DiscountIDs)
	if err != nil {
		return ProductQuote{}, err
	}

	calc := s.products.Calculate(ctx, pricing.ProductContext{
		Product:   *product,
		Order:     req.Order,
		User:      req.User,
		Discounts: discounts,
		Currency:  currency,
		Country:   req.Country,
		Quantity:  quantity,
	})
	sheet := calc.ResultSheet()

	quote := ProductQuote{
		Currency:  currency,
		Valid:     sheet.IsValid(),
		Quantity:  quantity,
		Rows:      sheet.Rows(),
		Total:     sheet.Total(nil),
		Discounts: sheet.DiscountPrices(""),
	}
	if unit, err := sheet.UnitPrice(false); err == nil {
		quote.UnitGross = unit
	}
	if unit, err := sheet.UnitPrice(true); err == nil {
		quote.UnitNet = unit
	}
	return quote, nil
}

func (s *pricingService) QuoteDeliveryFee(ctx context.Context, req ProviderFeeRequest) (FeeQuote, error) {
	currency := resolveCurrency(req.Currency, req.Order.Currency)
	if currency == "" {
		return FeeQuote{}, fmt.Errorf("%w: currency is required", ErrPricingInvalidInput)
	}
	if s.providers == nil || strings.TrimSpace(req.ProviderID) == "" {
		return FeeQuote{}, fmt.Errorf("%w: provider reference is required", ErrPricingInvalidInput)
	}

	provider, err := s.providers.FindDeliveryProvider(ctx, req.ProviderID)
	if err != nil {
		return FeeQuote{}, fmt.Errorf("load delivery provider %s: %w", req.ProviderID, err)
	}

	calc := s.delivery.Calculate(ctx, pricing.DeliveryContext{
		Order:      req.Order,
		Delivery:   domain.OrderDelivery{Provider: provider},
		User:       req.User,
		Currency:   currency,
		OrderValue: req.OrderValue,
	})
	sheet := calc.ResultSheet()
	return FeeQuote{
		Currency: currency,
		Rows:     sheet.Rows(),
		Total:    sheet.Total(nil),
	}, nil
}

func (s *pricingService) QuotePaymentFee(ctx context.Context, req ProviderFeeRequest) (FeeQuote, error) {
	currency := resolveCurrency(req.Currency, req.Order.Currency)
	if currency == "" {
		return FeeQuote{}, fmt.Errorf("%w: currency is required", ErrPricingInvalidInput)
	}
	if s.providers == nil || strings.TrimSpace(req.ProviderID) == "" {
		return FeeQuote{}, fmt.Errorf("%w: provider reference is required", ErrPricingInvalidInput)
	}

	provider, err := s.providers.FindPaymentProvider(ctx, req.ProviderID)
	if err != nil {
		return FeeQuote{}, fmt.Errorf("load payment provider %s: %w", req.ProviderID, err)
	}

	calc := s.payment.Calculate(ctx, pricing.PaymentContext{
		Order:      req.Order,
		Payment:    domain.OrderPayment{Provider: provider},
		User:       req.User,
		Currency:   currency,
		OrderValue: req.OrderValue,
	})
	sheet := calc.ResultSheet()
	return FeeQuote{
		Currency: currency,
		Rows:     sheet.Rows(),
		Total:    sheet.Total(nil),
	}, nil
}

// resolveDiscounts hydrates the requested discounts. Unknown codes are
// dropped with a log line instead of failing the quote, matching the
// fail-open posture of the pass itself.
func (s *pricingService) resolveDiscounts(ctx context.Context, codes, ids []string) ([]Discount, error) {
	var out []Discount
	seen := make(map[string]struct{})

	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		discount, err := s.discounts.FindByCode(ctx, code)
		if err != nil {
			var repoErr repositories.RepositoryError
			if errors.As(err, &repoErr) && repoErr.IsNotFound() {
				s.logger(ctx, "pricing_discount_code_unknown", map[string]any{"code": code})
				continue
			}
			return nil, fmt.Errorf("resolve discount code: %w", err)
		}
		if _, ok := seen[discount.ID]; ok {
			continue
		}
		seen[discount.ID] = struct{}{}
		out = append(out, discount)
	}

	if len(ids) > 0 {
		loaded, err := s.discounts.FindByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("resolve discount ids: %w", err)
		}
		for _, discount := range loaded {
			if _, ok := seen[discount.ID]; ok {
				continue
			}
			seen[discount.ID] = struct{}{}
			out = append(out, discount)
		}
	}
	return out, nil
}

func resolveCurrency(values ...string) string {
	for _, value := range values {
		if code := strings.ToUpper(strings.TrimSpace(value)); code != "" {
			return code
		}
	}
	return ""
}
