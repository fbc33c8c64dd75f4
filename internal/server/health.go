package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/raven-ai/internal/pkg/logger"
	"go.uber.org/zap"
)

const healthCheckTimeout = 3 * time.Second

// HealthCheck 依赖健康检查
type HealthCheck func(ctx context.Context) error

// HealthChecks 依赖名 -> 检查函数
type HealthChecks map[string]HealthCheck

// healthHandler 任一依赖不可用时返回 503
func healthHandler(checks HealthChecks, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				log.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		state := "ok"
		if status != http.StatusOK {
			state = "unavailable"
		}
		c.JSON(status, gin.H{
			"status": state,
			"checks": results,
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}
