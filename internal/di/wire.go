//go:build wireinject
// +build wireinject

package di

import (
	"CoinScope/pkg/config"
	"CoinScope/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideCache,

		// Repositories and external collaborators
		ProvideScoreStore,
		ProvideCandleSource,
		ProvideSentiment,

		// Use cases
		ProvideValuator,
		ProvideBatchRunner,
		ProvideReconciler,

		// Surfaces
		ProvideHandler,
		ProvideScheduler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
