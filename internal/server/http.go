package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	aiservice "github.com/lk2023060901/raven-ai/internal/ai/service"
	"github.com/lk2023060901/raven-ai/internal/conf"
	"github.com/lk2023060901/raven-ai/internal/pkg/logger"
	"github.com/lk2023060901/raven-ai/internal/session"
	"github.com/lk2023060901/raven-ai/internal/www"
	"go.uber.org/zap"
)

type HTTPServer struct {
	server *http.Server
	logger *logger.Logger
}

func NewHTTPServer(
	config *conf.Config,
	log *logger.Logger,
	sessions *session.Manager,
	csrf *session.CSRFStore,
	checks HealthChecks,
	aiService *aiservice.AIFeaturesService,
	wwwHandler *www.Handler,
) *HTTPServer {
	if config.Server.Mode != "" {
		gin.SetMode(config.Server.Mode)
	}

	router := NewRouter(config, log, sessions, csrf, checks, aiService, wwwHandler)

	return &HTTPServer{
		server: &http.Server{
			Addr:              config.Server.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: log,
	}
}

// NewRouter 注册全部路由
func NewRouter(
	config *conf.Config,
	log *logger.Logger,
	sessions *session.Manager,
	csrf *session.CSRFStore,
	checks HealthChecks,
	aiService *aiservice.AIFeaturesService,
	wwwHandler *www.Handler,
) *gin.Engine {
	router := gin.New()
	router.Use(logger.GinRecovery(log))
	router.Use(logger.GinLoggerWithConfig(log, logger.MiddlewareOptions{SkipPaths: []string{"/health"}}))

	www.LoadTemplates(router)

	// Health check
	router.GET("/health", healthHandler(checks, log))

	router.Use(session.Middleware(sessions, session.MiddlewareOptions{
		CookieName:   config.Auth.CookieName,
		SecureCookie: config.Auth.SecureCookie,
	}, log))

	// Web entry
	router.GET("/raven", wwwHandler.Page)

	method := router.Group("/api/method")
	method.POST("/raven.www.raven.get_context_for_dev", session.RequireCSRF(csrf), wwwHandler.ContextForDev)

	// API routes
	api := router.Group("/api/v1", session.RequireUser(), session.RequireCSRF(csrf))
	aiService.RegisterRoutes(api)

	aiMethods := method.Group("", session.RequireUser(), session.RequireCSRF(csrf))
	aiService.RegisterMethodRoutes(aiMethods)

	return router
}

func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}
