package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/raven-ai/internal/ai/biz"
	"github.com/lk2023060901/raven-ai/internal/ai/instruction"
	"github.com/lk2023060901/raven-ai/internal/ai/provider/factory"
	aiservice "github.com/lk2023060901/raven-ai/internal/ai/service"
	"github.com/lk2023060901/raven-ai/internal/conf"
	"github.com/lk2023060901/raven-ai/internal/pkg/logger"
	"github.com/lk2023060901/raven-ai/internal/pkg/redis"
	"github.com/lk2023060901/raven-ai/internal/session"
	"github.com/lk2023060901/raven-ai/internal/www"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routerFixture struct {
	router  *gin.Engine
	manager *session.Manager
	csrf    *session.CSRFStore
}

func newTestRouter(t *testing.T, developerMode bool, checks HealthChecks) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	csrf := session.NewCSRFStore(redis.NewFromClient(rdb, "raven:", logger.NewNop()), time.Hour)

	renderer, err := instruction.NewRenderer()
	require.NoError(t, err)

	log := logger.NewNop()
	uc := biz.NewAIFeaturesUseCase(nil, nil, session.NewChecker(nil), factory.New(), renderer, biz.Options{}, log)
	wwwCfg := www.Config{AppName: "Eden", SiteName: "localhost", Lang: "en", DeveloperMode: developerMode}
	wwwHandler := www.NewHandler(www.NewBuilder(www.NewSiteBootSource(wwwCfg), csrf, wwwCfg), log)

	config := &conf.Config{Auth: conf.AuthConfig{CookieName: "sid"}}
	manager := session.NewManager("secret", "raven", time.Hour)
	router := NewRouter(config, log, manager, csrf, checks, aiservice.NewAIFeaturesService(uc, log), wwwHandler)
	return &routerFixture{router: router, manager: manager, csrf: csrf}
}

func TestRouter(t *testing.T) {
	f := newTestRouter(t, false, nil)
	router := f.router

	token, err := f.manager.Issue(&session.User{ID: "bob@example.com", FullName: "Bob", Roles: []string{"Raven User"}})
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		bearer bool
		want   int
	}{
		{"health", http.MethodGet, "/health", false, http.StatusOK},
		{"page for guest", http.MethodGet, "/raven", false, http.StatusOK},
		{"dev context outside developer mode", http.MethodPost, "/api/method/raven.www.raven.get_context_for_dev", true, http.StatusForbidden},
		{"dev context without csrf token", http.MethodPost, "/api/method/raven.www.raven.get_context_for_dev", false, http.StatusUnauthorized},
		{"api requires login", http.MethodGet, "/api/v1/ai/sdk-version", false, http.StatusUnauthorized},
		{"api with token", http.MethodGet, "/api/v1/ai/sdk-version", true, http.StatusOK},
		{"method route with token", http.MethodGet, "/api/method/raven.api.ai_features.get_open_ai_version", true, http.StatusOK},
		{"unknown", http.MethodGet, "/nope", false, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.bearer {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestHealth(t *testing.T) {
	healthy := func(context.Context) error { return nil }

	f := newTestRouter(t, false, HealthChecks{"database": healthy, "redis": healthy})
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, map[string]string{"database": "ok", "redis": "ok"}, body.Checks)

	f = newTestRouter(t, false, HealthChecks{
		"database": healthy,
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unavailable", body.Status)
	assert.Equal(t, "connection refused", body.Checks["redis"])
	assert.Equal(t, "ok", body.Checks["database"])
}

func TestContextForDev_RequiresCSRFForCookieSessions(t *testing.T) {
	const path = "/api/method/raven.www.raven.get_context_for_dev"
	f := newTestRouter(t, true, nil)

	// 访客首次访问拿到会话 cookie
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/raven", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var guestCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == session.GuestCookieName {
			guestCookie = c
		}
	}
	require.NotNil(t, guestCookie)

	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.AddCookie(guestCookie)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := f.csrf.Token(context.Background(), guestCookie.Value)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, path, nil)
	req.AddCookie(guestCookie)
	req.Header.Set(session.CSRFHeader, token)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	bearer, err := f.manager.Issue(&session.User{ID: "bob@example.com", FullName: "Bob", Roles: []string{"Raven User"}})
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, path, nil)
	req.Header.Set("Authorization", "Bearer "+bearer)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
