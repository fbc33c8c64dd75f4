package session

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apperrors "github.com/lk2023060901/raven-ai/internal/pkg/errors"
	"github.com/lk2023060901/raven-ai/internal/pkg/logger"
	"github.com/lk2023060901/raven-ai/internal/pkg/response"
	"go.uber.org/zap"
)

const (
	userContextKey = "session_user"

	// GuestCookieName 访客会话 cookie
	GuestCookieName = "raven_guest_sid"
	// CSRFHeader 写请求携带的 CSRF header
	CSRFHeader = "X-Frappe-CSRF-Token"
)

// MiddlewareOptions 会话中间件选项
type MiddlewareOptions struct {
	CookieName   string
	SecureCookie bool
}

// Middleware 解析会话；令牌缺失或无效时降级为访客，不拦截请求
func Middleware(m *Manager, opts MiddlewareOptions, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := resolve(c, m, opts, log)

		c.Set(userContextKey, user)
		ctx := logger.WithUserID(c.Request.Context(), user.ID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func resolve(c *gin.Context, m *Manager, opts MiddlewareOptions, log *logger.Logger) *User {
	token, viaCookie := extractToken(c, opts.CookieName)
	if token != "" {
		claims, err := m.Verify(token)
		if err == nil {
			user := claims.User()
			user.ViaCookie = viaCookie
			return user
		}
		log.Warn("invalid session token, falling back to guest",
			zap.Error(err),
			zap.String("ip", c.ClientIP()))
	}

	sid, err := c.Cookie(GuestCookieName)
	if err != nil || sid == "" {
		sid = uuid.NewString()
		c.SetCookie(GuestCookieName, sid, int(m.TTL().Seconds()), "/", "", opts.SecureCookie, true)
	}
	return Guest(sid)
}

// extractToken 优先读取 Authorization: Bearer，其次读取会话 cookie
func extractToken(c *gin.Context, cookieName string) (string, bool) {
	const bearerPrefix = "Bearer "
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, bearerPrefix) {
		return strings.TrimSpace(header[len(bearerPrefix):]), false
	}
	if cookieName == "" {
		return "", false
	}
	if token, err := c.Cookie(cookieName); err == nil && token != "" {
		return token, true
	}
	return "", false
}

// FromGin 获取当前会话用户，未经过中间件时返回访客
func FromGin(c *gin.Context) *User {
	if v, ok := c.Get(userContextKey); ok {
		if user, ok := v.(*User); ok && user != nil {
			return user
		}
	}
	return Guest("")
}

// RequireUser 拒绝访客访问
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if FromGin(c).IsGuest() {
			response.HandleError(c, apperrors.NewUnauthorizedError("login required"))
			return
		}
		c.Next()
	}
}

// RequireCSRF 对基于 cookie 的会话校验写请求的 CSRF 令牌
func RequireCSRF(store *CSRFStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case "GET", "HEAD", "OPTIONS":
			c.Next()
			return
		}

		user := FromGin(c)
		if !user.ViaCookie {
			c.Next()
			return
		}

		ok, err := store.Validate(c.Request.Context(), user.SessionID, c.GetHeader(CSRFHeader))
		if err != nil {
			response.HandleError(c, apperrors.Wrap(err, apperrors.ErrServiceUnavail, "csrf store unavailable"))
			return
		}
		if !ok {
			response.HandleError(c, apperrors.New(apperrors.ErrSessionInvalidToken, "invalid CSRF token"))
			return
		}
		c.Next()
	}
}
