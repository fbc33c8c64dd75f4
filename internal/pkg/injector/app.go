package injector

import (
	"github.com/lk2023060901/raven-ai/internal/conf"
	"github.com/lk2023060901/raven-ai/internal/pkg/logger"
	"github.com/lk2023060901/raven-ai/internal/server"
)

//go:generate go run -mod=mod github.com/google/wire/cmd/wire

// App encapsulates all application dependencies
type App struct {
	Config     *conf.Config
	Logger     *logger.Logger
	HTTPServer *server.HTTPServer
}
