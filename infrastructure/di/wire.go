//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"cloudmap-backend/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideAtomicLevel,
	ProvideLogger,
	ProvideAWSConfig,
	ProvideStore,
	ProvideHealthChecker,
	ProvideModelProvider,
	ProvideModelClient,
	ProvideIDGenerator,
	ProvideEventPublisher,
	ProvideCollector,
	ProvideMetricsRecorder,
	ProvideRateLimiter,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideErrorHandler,
	ProvideTracer,
	ProvideHandler,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
