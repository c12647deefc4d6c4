package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"google.golang.org/api/iterator"

	"github.com/hanko-field/pricing/internal/handlers"
	"github.com/hanko-field/pricing/internal/platform/config"
	pfirestore "github.com/hanko-field/pricing/internal/platform/firestore"
	"github.com/hanko-field/pricing/internal/platform/jobs"
	"github.com/hanko-field/pricing/internal/platform/observability"
	"github.com/hanko-field/pricing/internal/pricing"
	"github.com/hanko-field/pricing/internal/pricing/calculators"
	"github.com/hanko-field/pricing/internal/rates"
	"github.com/hanko-field/pricing/internal/repositories"
	firestoreRepo "github.com/hanko-field/pricing/internal/repositories/firestore"
	"github.com/hanko-field/pricing/internal/services"
)

func main() {
	ctx := context.Background()
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("pricing")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	buildInfo := buildInfoFromEnv(cfg, startedAt)

	firestoreProvider := pfirestore.NewProvider(cfg.Firestore)
	firestoreClient, err := firestoreProvider.Client(ctx)
	if err != nil {
		logger.Fatal("failed to initialise firestore client", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := firestoreProvider.Close(closeCtx); err != nil {
			logger.Warn("firestore close error", zap.Error(err))
		}
	}()

	var ratesPublisher rates.EventPublisher
	var ratesTopic *pubsub.Topic
	var pubsubClient *pubsub.Client
	if topicName := strings.TrimSpace(cfg.PubSub.RatesTopic); topicName != "" {
		pubsubClient, err = pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
		if err != nil {
			logger.Fatal("failed to initialise pubsub client", zap.Error(err))
		}
		ratesTopic = pubsubClient.Topic(topicName)
		publisher, err := jobs.NewPubSubRatesPublisher(ratesTopic)
		if err != nil {
			logger.Fatal("failed to initialise rates publisher", zap.Error(err))
		}
		ratesPublisher = publisher
	}
	defer func() {
		if ratesTopic != nil {
			ratesTopic.Stop()
		}
		if pubsubClient != nil {
			if err := pubsubClient.Close(); err != nil {
				logger.Warn("pubsub close error", zap.Error(err))
			}
		}
	}()

	healthRepo, err := newHealthRepository(firestoreClient, ratesTopic)
	if err != nil {
		logger.Fatal("failed to initialise health repository", zap.Error(err))
	}

	registry, err := firestoreRepo.NewRegistry(firestoreProvider, healthRepo)
	if err != nil {
		logger.Fatal("failed to initialise repository registry", zap.Error(err))
	}

	rateService, err := rates.NewService(rates.ServiceDeps{
		Rates:           registry.Rates(),
		Currencies:      registry.Currencies(),
		UnitOfWork:      registry,
		Publisher:       ratesPublisher,
		Clock:           time.Now,
		DefaultValidity: cfg.Rates.DefaultValidity,
	})
	if err != nil {
		logger.Fatal("failed to initialise rate service", zap.Error(err))
	}

	engineLog := zapEventLogger(logger.Named("engine"))

	orderRegistry := pricing.NewRegistry[pricing.OrderContext]()
	orderRegistry.Register(calculators.OrderItemsCalculator{})
	orderRegistry.Register(calculators.OrderDiscountsCalculator{})
	orderRegistry.Register(calculators.OrderDeliveryCalculator{})
	orderRegistry.Register(calculators.OrderPaymentCalculator{})
	orderRegistry.Register(calculators.OrderTaxCalculator{DefaultRate: cfg.Pricing.DefaultTaxRate})

	productRegistry := pricing.NewRegistry[pricing.ProductContext]()
	productRegistry.Register(calculators.ProductPriceCalculator{})
	productRegistry.Register(calculators.ProductDiscountsCalculator{})

	deliveryRegistry := pricing.NewRegistry[pricing.DeliveryContext]()
	deliveryRegistry.Register(calculators.DeliveryFeeCalculator{})

	paymentRegistry := pricing.NewRegistry[pricing.PaymentContext]()
	paymentRegistry.Register(calculators.PaymentFeeCalculator{})

	resolver := pricing.RuleDiscountResolver()

	orderDirector, err := pricing.NewOrderDirector(pricing.OrderDirectorDeps{
		Registry: orderRegistry,
		Resolver: resolver,
		Logger:   engineLog,
	})
	if err != nil {
		logger.Fatal("failed to initialise order director", zap.Error(err))
	}
	productDirector, err := pricing.NewProductDirector(pricing.ProductDirectorDeps{
		Registry: productRegistry,
		Resolver: resolver,
		Logger:   engineLog,
	})
	if err != nil {
		logger.Fatal("failed to initialise product director", zap.Error(err))
	}
	deliveryDirector, err := pricing.NewDeliveryDirector(pricing.DeliveryDirectorDeps{
		Registry: deliveryRegistry,
		Logger:   engineLog,
	})
	if err != nil {
		logger.Fatal("failed to initialise delivery director", zap.Error(err))
	}
	paymentDirector, err := pricing.NewPaymentDirector(pricing.PaymentDirectorDeps{
		Registry: paymentRegistry,
		Logger:   engineLog,
	})
	if err != nil {
		logger.Fatal("failed to initialise payment director", zap.Error(err))
	}

	pricingService, err := services.NewPricingService(services.PricingServiceDeps{
		OrderDirector:    orderDirector,
		ProductDirector:  productDirector,
		DeliveryDirector: deliveryDirector,
		PaymentDirector:  paymentDirector,
		Discounts:        registry.Discounts(),
		Products:         registry.Products(),
		Providers:        registry.Providers(),
		Rates:            rateService,
		Formatter:        services.NewMoneyFormatter(language.English),
		Logger:           zapEventLogger(logger.Named("pricing_service")),
	})
	if err != nil {
		logger.Fatal("failed to initialise pricing service", zap.Error(err))
	}

	systemService, err := services.NewSystemService(services.SystemServiceDeps{
		HealthRepository: registry.Health(),
		Clock:            time.Now,
		Build:            buildInfo,
	})
	if err != nil {
		logger.Fatal("failed to initialise system service", zap.Error(err))
	}

	quoteHandlers, err := handlers.NewQuoteHandlers(pricingService)
	if err != nil {
		logger.Fatal("failed to initialise quote handlers", zap.Error(err))
	}
	rateHandlers, err := handlers.NewRateHandlers(rateService)
	if err != nil {
		logger.Fatal("failed to initialise rate handlers", zap.Error(err))
	}

	projectID := strings.TrimSpace(cfg.Firestore.ProjectID)
	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(projectID),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(projectID),
	}

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(handlers.NewHealthHandlers(systemService)),
		handlers.WithQuoteRoutes(quoteHandlers.Routes),
		handlers.WithRateRoutes(rateHandlers.Routes),
		handlers.WithAdminRoutes(rateHandlers.AdminRoutes),
		handlers.WithAdminMiddlewares(handlers.RateLimitMiddleware(60, time.Minute)),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("pricing api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func buildInfoFromEnv(cfg config.Config, started time.Time) services.BuildInfo {
	version := strings.TrimSpace(os.Getenv("PRICING_BUILD_VERSION"))
	if version == "" {
		version = "dev"
	}
	commit := strings.TrimSpace(os.Getenv("PRICING_BUILD_COMMIT_SHA"))
	if commit == "" {
		commit = "unknown"
	}
	return services.BuildInfo{
		Version:     version,
		CommitSHA:   commit,
		Environment: cfg.Environment,
		StartedAt:   started,
	}
}

func newHealthRepository(client *firestore.Client, topic *pubsub.Topic) (repositories.HealthRepository, error) {
	checks := make([]repositories.DependencyCheck, 0, 2)
	if client != nil {
		c := client
		checks = append(checks, repositories.DependencyCheck{
			Name:    "firestore",
			Timeout: 1500 * time.Millisecond,
			Check: func(ctx context.Context) error {
				iter := c.Collections(ctx)
				_, err := iter.Next()
				if errors.Is(err, iterator.Done) {
					return nil
				}
				return err
			},
		})
	}
	if topic != nil {
		t := topic
		checks = append(checks, repositories.DependencyCheck{
			Name:    "pubsub",
			Timeout: time.Second,
			Check: func(ctx context.Context) error {
				_, err := t.Exists(ctx)
				return err
			},
		})
	}
	if len(checks) == 0 {
		return nil, errors.New("health: no dependency checks configured")
	}
	return repositories.NewDependencyHealthRepository(checks)
}

func zapEventLogger(logger *zap.Logger) pricing.LogFunc {
	return func(_ context.Context, event string, fields map[string]any) {
		zFields := make([]zap.Field, 0, len(fields)+1)
		zFields = append(zFields, zap.String("event", event))
		for k, v := range fields {
			zFields = append(zFields, zap.Any(k, v))
		}
		logger.Warn("pricing engine event", zFields...)
	}
}
