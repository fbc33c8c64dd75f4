package injector

import (
	"github.com/lk2023060901/raven-ai/internal/ai/biz"
	aidata "github.com/lk2023060901/raven-ai/internal/ai/data"
	"github.com/lk2023060901/raven-ai/internal/ai/provider/factory"
	"github.com/lk2023060901/raven-ai/internal/conf"
	"github.com/lk2023060901/raven-ai/internal/data"
	"github.com/lk2023060901/raven-ai/internal/pkg/logger"
	pkgredis "github.com/lk2023060901/raven-ai/internal/pkg/redis"
	"github.com/lk2023060901/raven-ai/internal/pkg/workerpool"
	"github.com/lk2023060901/raven-ai/internal/server"
	"github.com/lk2023060901/raven-ai/internal/session"
	"github.com/lk2023060901/raven-ai/internal/www"
)

// Data layer helpers

func provideData(config *conf.Config, log *logger.Logger) (*data.Data, func(), error) {
	return data.NewData(config, log)
}

func provideRedisClient(d *data.Data) *pkgredis.Client {
	return d.RedisClient
}

func provideHealthChecks(d *data.Data) server.HealthChecks {
	return server.HealthChecks{
		"database": d.DB.HealthCheck,
		"redis":    d.RedisClient.HealthCheck,
	}
}

// Repository providers

func provideSettingsRepo(d *data.Data) biz.SettingsRepo {
	return aidata.NewSettingsRepo(d.DB, d.SecretBox)
}

func providePromptRepo(d *data.Data) biz.PromptRepo {
	return aidata.NewPromptRepo(d.DB)
}

// Session and permissions

func provideSessionManager(config *conf.Config) *session.Manager {
	return session.NewManager(config.Auth.JWTSecret, config.Auth.JWTIssuer, config.Auth.SessionTTL)
}

func provideCSRFStore(rdb *pkgredis.Client, config *conf.Config) *session.CSRFStore {
	return session.NewCSRFStore(rdb, config.Auth.SessionTTL)
}

func providePermissionChecker(config *conf.Config) biz.PermissionChecker {
	return session.NewChecker(session.Rules(config.Permissions))
}

// AI providers

func provideClientFactory(config *conf.Config) biz.ClientFactory {
	return factory.New(
		factory.WithTimeout(config.AI.SDKTimeout),
		factory.WithLocalTimeout(config.AI.LocalLLMTimeout),
	)
}

func provideWorkerPool(log *logger.Logger) (*workerpool.Pool, func(), error) {
	pool, err := workerpool.New(workerpool.DefaultConfig(), log.Logger)
	if err != nil {
		return nil, nil, err
	}
	return pool, pool.Shutdown, nil
}

func provideAIOptions(config *conf.Config, pool *workerpool.Pool) biz.Options {
	return biz.Options{
		Runner:         pool,
		AllowPrefixes:  config.AI.AllowPrefixes,
		DenySubstrings: config.AI.DenySubstrings,
		SiteName:       config.Raven.SiteName,
		AppName:        config.Raven.AppName,
	}
}

// Web boot

func provideWWWConfig(config *conf.Config) www.Config {
	r := config.Raven
	return www.Config{
		AppName:             r.AppName,
		SiteName:            r.SiteName,
		Lang:                r.Lang,
		BuildVersion:        r.BuildVersion,
		PushRelayServerURL:  r.PushRelayServerURL,
		ServerScriptEnabled: r.ServerScriptEnabled,
		DeveloperMode:       r.DeveloperMode,
		Icons: www.Icons{
			Icon96:         r.Icons.Icon96,
			AppleTouchIcon: r.Icons.AppleTouchIcon,
			MaskIcon:       r.Icons.MaskIcon,
			FaviconSVG:     r.Icons.FaviconSVG,
			FaviconICO:     r.Icons.FaviconICO,
		},
	}
}

func provideBootSource(cfg www.Config) www.BootSource {
	return www.NewSiteBootSource(cfg)
}

func provideCSRFIssuer(store *session.CSRFStore) www.CSRFIssuer {
	return store
}

func newApp(
	config *conf.Config,
	log *logger.Logger,
	httpServer *server.HTTPServer,
) *App {
	return &App{
		Config:     config,
		Logger:     log,
		HTTPServer: httpServer,
	}
}
