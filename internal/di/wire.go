//go:build wireinject
// +build wireinject

package di

import (
	"CoinCast/pkg/config"
	"CoinCast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideArtifacts,
		ProvideClickHouseClient,
		ProvideForecastCache,
		ProvideForecastPublisher,
		ProvideRateLimiter,

		// Repositories
		ProvidePriceHistory,

		// Use cases
		ProvideWindowExtractor,
		ProvideForecastEngine,
		ProvideForecastService,

		// HTTP
		ProvidePredictHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}
