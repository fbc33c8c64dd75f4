//go:build !wireinject
// +build !wireinject

// 与 wire.go 中的 ProviderSet 保持一致；修改依赖后运行 go generate 以 wire 的输出覆盖本文件

package injector

import (
	"github.com/lk2023060901/raven-ai/internal/ai/biz"
	"github.com/lk2023060901/raven-ai/internal/ai/instruction"
	"github.com/lk2023060901/raven-ai/internal/ai/service"
	"github.com/lk2023060901/raven-ai/internal/conf"
	"github.com/lk2023060901/raven-ai/internal/pkg/logger"
	"github.com/lk2023060901/raven-ai/internal/server"
	"github.com/lk2023060901/raven-ai/internal/www"
)

// InitializeApp initializes the application with Wire
func InitializeApp(config *conf.Config, log *logger.Logger) (*App, func(), error) {
	dataData, cleanup, err := provideData(config, log)
	if err != nil {
		return nil, nil, err
	}
	manager := provideSessionManager(config)
	client := provideRedisClient(dataData)
	healthChecks := provideHealthChecks(dataData)
	csrfStore := provideCSRFStore(client, config)
	settingsRepo := provideSettingsRepo(dataData)
	promptRepo := providePromptRepo(dataData)
	permissionChecker := providePermissionChecker(config)
	clientFactory := provideClientFactory(config)
	renderer, err := instruction.NewRenderer()
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	pool, cleanup2, err := provideWorkerPool(log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	options := provideAIOptions(config, pool)
	aiFeaturesUseCase := biz.NewAIFeaturesUseCase(settingsRepo, promptRepo, permissionChecker, clientFactory, renderer, options, log)
	aiFeaturesService := service.NewAIFeaturesService(aiFeaturesUseCase, log)
	wwwConfig := provideWWWConfig(config)
	bootSource := provideBootSource(wwwConfig)
	csrfIssuer := provideCSRFIssuer(csrfStore)
	builder := www.NewBuilder(bootSource, csrfIssuer, wwwConfig)
	handler := www.NewHandler(builder, log)
	httpServer := server.NewHTTPServer(config, log, manager, csrfStore, healthChecks, aiFeaturesService, handler)
	app := newApp(config, log, httpServer)
	return app, func() {
		cleanup2()
		cleanup()
	}, nil
}
