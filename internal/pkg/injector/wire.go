//go:build wireinject
// +build wireinject

package injector

import (
	"github.com/google/wire"
	"github.com/lk2023060901/raven-ai/internal/ai/biz"
	"github.com/lk2023060901/raven-ai/internal/ai/instruction"
	aiservice "github.com/lk2023060901/raven-ai/internal/ai/service"
	"github.com/lk2023060901/raven-ai/internal/conf"
	"github.com/lk2023060901/raven-ai/internal/pkg/logger"
	"github.com/lk2023060901/raven-ai/internal/server"
	"github.com/lk2023060901/raven-ai/internal/www"
)

// ProviderSet is the Wire provider set for all dependencies
var ProviderSet = wire.NewSet(
	// Data layer
	dataProviderSet,

	// Repositories
	repositoryProviderSet,

	// Use cases
	useCaseProviderSet,

	// HTTP services
	httpServiceProviderSet,

	// Servers
	serverProviderSet,
)

// Data layer providers
var dataProviderSet = wire.NewSet(
	provideData,
	provideRedisClient,
	provideHealthChecks,
)

// Repository providers
var repositoryProviderSet = wire.NewSet(
	provideSettingsRepo,
	providePromptRepo,
)

// Use case providers
var useCaseProviderSet = wire.NewSet(
	provideSessionManager,
	provideCSRFStore,
	providePermissionChecker,
	provideClientFactory,
	provideWorkerPool,
	provideAIOptions,
	instruction.NewRenderer,
	biz.NewAIFeaturesUseCase,
	provideWWWConfig,
	provideBootSource,
	provideCSRFIssuer,
	www.NewBuilder,
)

// HTTP service providers
var httpServiceProviderSet = wire.NewSet(
	aiservice.NewAIFeaturesService,
	www.NewHandler,
)

// Server providers
var serverProviderSet = wire.NewSet(
	server.NewHTTPServer,
)

// InitializeApp initializes the application with Wire
func InitializeApp(config *conf.Config, log *logger.Logger) (*App, func(), error) {
	wire.Build(ProviderSet, newApp)
	return nil, nil, nil
}
