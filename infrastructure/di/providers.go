package di

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cloudmap-backend/application/commands"
	"cloudmap-backend/application/commands/bus"
	commandhandlers "cloudmap-backend/application/commands/handlers"
	"cloudmap-backend/application/ports"
	querybus "cloudmap-backend/application/queries/bus"
	queryhandlers "cloudmap-backend/application/queries/handlers"
	"cloudmap-backend/infrastructure/config"
	"cloudmap-backend/infrastructure/idgen"
	"cloudmap-backend/infrastructure/llm"
	"cloudmap-backend/infrastructure/messaging/eventbridge"
	"cloudmap-backend/infrastructure/messaging/noop"
	"cloudmap-backend/infrastructure/persistence/dynamodb"
	"cloudmap-backend/infrastructure/persistence/memory"
	"cloudmap-backend/infrastructure/persistence/sqlite"
	"cloudmap-backend/interfaces/http/rest"
	pkgerrors "cloudmap-backend/pkg/errors"
	"cloudmap-backend/pkg/observability"
	"cloudmap-backend/pkg/ratelimit"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
)

// ServiceName identifies the service in traces and the breaker
const ServiceName = "cloudmap-backend"

const slowQueryThreshold = 500 * time.Millisecond

// ProvideAtomicLevel parses the configured log level
func ProvideAtomicLevel(cfg *config.Config) (zap.AtomicLevel, error) {
	return observability.NewLevel(cfg.Log.Level)
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, error) {
	return observability.NewLogger(string(cfg.Environment), level)
}

// ProvideAWSConfig loads the shared AWS configuration. Nothing is loaded when
// no enabled component talks to AWS.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	if !cfg.NeedsAWS() {
		return aws.Config{Region: cfg.AWS.Region}, nil
	}
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWS.Region),
	)
}

// ProvideStore opens the configured record store
func ProvideStore(cfg *config.Config, awsCfg aws.Config, logger *zap.Logger) (ports.ArchitectureStore, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreDynamoDB:
		client := awsdynamodb.NewFromConfig(awsCfg)
		return dynamodb.NewArchitectureStore(client, cfg.Store.Table, logger), func() {}, nil
	case config.StoreSQLite:
		store, err := sqlite.Open(cfg.Store.Path, logger)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := store.Close(); err != nil {
				logger.Error("Failed to close store", zap.Error(err))
			}
		}
		return store, cleanup, nil
	case config.StoreMemory:
		if cfg.IsProduction() {
			logger.Warn("Using the in-memory store in production; records are lost on restart")
		}
		return memory.NewArchitectureStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// ProvideHealthChecker exposes the store's Ping when it has one
func ProvideHealthChecker(store ports.ArchitectureStore) ports.HealthChecker {
	if hc, ok := store.(ports.HealthChecker); ok {
		return hc
	}
	return nil
}

// ProvideModelProvider selects the completion backend and puts it behind a
// circuit breaker.
func ProvideModelProvider(cfg *config.Config, awsCfg aws.Config, logger *zap.Logger) (llm.Provider, error) {
	var provider llm.Provider
	switch cfg.Model.Provider {
	case config.ProviderBedrock:
		provider = llm.NewBedrockProvider(bedrockruntime.NewFromConfig(awsCfg), cfg.Model.ID)
	case config.ProviderFixture:
		var (
			fixtures *llm.FixtureProvider
			err      error
		)
		if cfg.Model.Fixtures != "" {
			fixtures, err = llm.LoadFixtureProvider(cfg.Model.Fixtures)
		} else {
			fixtures, err = llm.DefaultFixtureProvider()
		}
		if err != nil {
			return nil, err
		}
		provider = fixtures
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Model.Provider)
	}

	breaker := llm.DefaultBreakerConfig(ServiceName + "-model")
	breaker.MaxRequests = cfg.Breaker.MaxRequests
	breaker.Interval = cfg.Breaker.Interval
	breaker.Timeout = cfg.Breaker.Timeout
	breaker.FailureRatio = cfg.Breaker.FailureRatio
	breaker.MinRequests = cfg.Breaker.MinRequests

	logger.Info("Model provider configured",
		zap.String("provider", cfg.Model.Provider),
		zap.String("model", cfg.Model.ID),
	)
	return llm.NewBreakerProvider(provider, breaker, logger), nil
}

// ProvideModelClient wraps the provider with prompt handling and parsing
func ProvideModelClient(provider llm.Provider, cfg *config.Config, logger *zap.Logger) ports.ModelClient {
	clientCfg := llm.DefaultClientConfig()
	clientCfg.Timeout = cfg.Model.Timeout
	clientCfg.MaxTokens = cfg.Model.MaxTokens
	clientCfg.Temperature = cfg.Model.Temperature
	return llm.NewClient(provider, clientCfg, logger)
}

// ProvideIDGenerator returns the record id source
func ProvideIDGenerator() ports.IDGenerator {
	return idgen.NewUUIDGenerator()
}

// ProvideEventPublisher publishes to EventBridge when events are enabled
func ProvideEventPublisher(cfg *config.Config, awsCfg aws.Config, logger *zap.Logger) ports.EventPublisher {
	if !cfg.Events.Enabled {
		return noop.NewPublisher(logger)
	}
	return eventbridge.NewPublisher(awseventbridge.NewFromConfig(awsCfg), cfg.Events.BusName, logger)
}

// ProvideCollector creates the Prometheus collector, nil when metrics are off
func ProvideCollector(cfg *config.Config) *observability.Collector {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return observability.NewCollector(strings.ToLower(cfg.Metrics.Namespace))
}

// ProvideMetricsRecorder picks where pipeline metrics go. HTTP metrics stay
// on the collector either way.
func ProvideMetricsRecorder(cfg *config.Config, awsCfg aws.Config, collector *observability.Collector, logger *zap.Logger) ports.MetricsRecorder {
	switch {
	case !cfg.Metrics.Enabled:
		return observability.NewNopRecorder()
	case cfg.Metrics.Sink == config.SinkCloudWatch:
		namespace := fmt.Sprintf("%s/%s", cfg.Metrics.Namespace, cfg.Environment)
		return observability.NewCloudWatchRecorder(namespace, awscloudwatch.NewFromConfig(awsCfg), logger)
	default:
		return collector
	}
}

// ProvideRateLimiter creates the per-client limiter, nil when disabled
func ProvideRateLimiter(cfg *config.Config) (ratelimit.RateLimiter, func()) {
	if cfg.RateLimit.Requests == 0 {
		return nil, func() {}
	}
	limiter := ratelimit.NewWindowLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	limiter.StartCleanup(cfg.RateLimit.Window * 10)
	return limiter, limiter.Stop
}

// ProvideCommandBus registers both orchestrators
func ProvideCommandBus(
	store ports.ArchitectureStore,
	model ports.ModelClient,
	ids ports.IDGenerator,
	publisher ports.EventPublisher,
	metrics ports.MetricsRecorder,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	kv := observability.NewKVLogger(logger)

	commandBus := bus.NewCommandBus(
		bus.LoggingMiddleware(kv),
		bus.ValidationMiddleware(),
	)

	generation := commandhandlers.NewGenerationOrchestrator(store, model, ids, publisher, metrics, kv)
	if err := commandBus.Register(commands.CreateArchitectureCommand{}, generation); err != nil {
		return nil, err
	}

	augmentation := commandhandlers.NewAugmentationOrchestrator(store, model, publisher, metrics, kv)
	if err := commandBus.Register(commands.GenerateCodeCommand{}, augmentation); err != nil {
		return nil, err
	}

	return commandBus, nil
}

// ProvideQueryBus registers the read side
func ProvideQueryBus(store ports.ArchitectureStore, logger *zap.Logger) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus(
		querybus.SlowQueryMiddleware(observability.NewKVLogger(logger), slowQueryThreshold),
	)
	if err := queryhandlers.NewArchitectureQueryHandler(store, logger).Register(queryBus); err != nil {
		return nil, err
	}
	return queryBus, nil
}

// ProvideErrorHandler maps application errors to HTTP responses
func ProvideErrorHandler(logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger)
}

// ProvideTracer starts the OTLP exporter when tracing is enabled
func ProvideTracer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	if !cfg.Tracing.Enabled {
		return nil, func() {}, nil
	}
	tp, err := observability.InitTracing(ctx, ServiceName, string(cfg.Environment), cfg.Tracing.Endpoint)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Error("Failed to shut down tracer", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// ProvideHandler builds the HTTP handler
func ProvideHandler(
	cfg *config.Config,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	logger *zap.Logger,
	errorHandler *pkgerrors.ErrorHandler,
	collector *observability.Collector,
	limiter ratelimit.RateLimiter,
	health ports.HealthChecker,
	tracer *observability.TracerProvider,
) http.Handler {
	router := rest.NewRouter(commandBus, queryBus, logger, errorHandler, rest.Options{
		ServiceName:     ServiceName,
		AllowedOrigins:  cfg.CORS.Origins,
		Tracing:         tracer != nil,
		Metrics:         collector,
		Limiter:         limiter,
		RateLimitCount:  cfg.RateLimit.Requests,
		RateLimitWindow: cfg.RateLimit.Window,
		Health:          health,
	})
	return router.Setup()
}
