//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"retro-backend/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideTokenService,
	ProvideRuntimeConfig,
	ProvideStorage,
	ProvideBroadcaster,
	ProvideEventBus,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideCoordinator,
	ProvideHandler,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil
}
