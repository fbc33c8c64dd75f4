package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/lk2023060901/raven-ai/internal/pkg/errors"
	"github.com/lk2023060901/raven-ai/internal/pkg/logger"
	"github.com/lk2023060901/raven-ai/internal/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *User {
	return &User{
		ID:        "ada@example.com",
		FullName:  "Ada Lovelace",
		FirstName: "Ada",
		Email:     "ada@example.com",
		Roles:     []string{"Raven User"},
	}
}

func newCSRFStore(t *testing.T) (*CSRFStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewCSRFStore(redis.NewFromClient(rdb, "raven:", logger.NewNop()), time.Hour), mr
}

func TestManager_IssueVerify(t *testing.T) {
	m := NewManager("secret", "raven", time.Hour)

	token, err := m.Issue(testUser())
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	user := claims.User()
	assert.Equal(t, "ada@example.com", user.ID)
	assert.Equal(t, "Ada Lovelace", user.FullName)
	assert.Equal(t, []string{"Raven User"}, user.Roles)
	assert.NotEmpty(t, user.SessionID)

	again, err := m.Issue(testUser())
	require.NoError(t, err)
	claims2, err := m.Verify(again)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, claims2.ID)
}

func TestManager_VerifyRejects(t *testing.T) {
	m := NewManager("secret", "raven", time.Hour)
	token, err := m.Issue(testUser())
	require.NoError(t, err)

	_, err = NewManager("other", "raven", time.Hour).Verify(token)
	assert.Error(t, err)

	_, err = NewManager("secret", "someone-else", time.Hour).Verify(token)
	assert.Error(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: "ada@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "sid",
			Issuer:    "raven",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = m.Verify(expired)
	assert.Error(t, err)

	_, err = m.Verify("not-a-token")
	assert.Error(t, err)

	_, err = m.Issue(Guest("sid"))
	assert.Error(t, err)
}

func TestChecker(t *testing.T) {
	c := NewChecker(nil)
	user := testUser()

	assert.True(t, c.Allowed(user, ResourceRavenBot, ActionRead))
	assert.False(t, c.Allowed(user, ResourceRavenBot, ActionWrite))
	assert.False(t, c.Allowed(user, ResourceRavenSettings, ActionWrite))
	assert.False(t, c.Allowed(Guest("sid"), ResourceRavenBot, ActionRead))
	assert.True(t, c.Allowed(&User{ID: AdministratorUser}, ResourceRavenSettings, ActionWrite))

	err := c.Require(user, ResourceRavenSettings, ActionWrite)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrPermissionDenied))
	assert.Equal(t, http.StatusForbidden, apperrors.GetHTTPStatus(apperrors.ExtractCode(err)))
}

func TestChecker_CaseInsensitiveRules(t *testing.T) {
	c := NewChecker(Rules{"raven user": {"raven settings": {ActionWrite}}})
	assert.True(t, c.Allowed(testUser(), ResourceRavenSettings, ActionWrite))
	assert.False(t, c.Allowed(testUser(), ResourceRavenBot, ActionRead))
}

func TestUser_HasRole(t *testing.T) {
	user := testUser()
	assert.True(t, user.HasRole("Raven User"))
	assert.True(t, user.HasRole("raven user"))
	assert.False(t, user.HasRole("System Manager"))

	var none *User
	assert.False(t, none.HasRole("Raven User"))
}

func TestCSRFStore_ReusesTokenWithinSession(t *testing.T) {
	store, mr := newCSRFStore(t)
	ctx := context.Background()

	first, err := store.Token(ctx, "sid-1")
	require.NoError(t, err)
	second, err := store.Token(ctx, "sid-1")
	require.NoError(t, err)
	other, err := store.Token(ctx, "sid-2")
	require.NoError(t, err)

	assert.Len(t, first, 64)
	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.True(t, mr.Exists("raven:csrf:sid-1"))
	assert.Equal(t, time.Hour, mr.TTL("raven:csrf:sid-1"))

	ok, err := store.Validate(ctx, "sid-1", first)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Validate(ctx, "sid-1", other)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Validate(ctx, "sid-unknown", first)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Token(ctx, "")
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewManager("secret", "raven", time.Hour)
	token, err := m.Issue(testUser())
	require.NoError(t, err)

	router := gin.New()
	router.Use(Middleware(m, MiddlewareOptions{CookieName: "sid"}, logger.NewNop()))
	router.GET("/whoami", func(c *gin.Context) {
		u := FromGin(c)
		c.JSON(http.StatusOK, gin.H{"name": u.ID, "cookie": u.ViaCookie, "user_id": logger.GetUserID(c.Request.Context())})
	})
	router.GET("/private", RequireUser(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantName   string
		wantCookie bool
	}{
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, "ada@example.com", false},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "sid", Value: token}) }, "ada@example.com", true},
		{"invalid token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer garbage") }, GuestUser, true},
		{"anonymous", func(r *http.Request) {}, GuestUser, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantName, body["name"])
			assert.Equal(t, tt.wantName, body["user_id"])
			assert.Equal(t, tt.wantCookie, body["cookie"])
		})
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestMiddleware_GuestCookieIsStable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware(NewManager("secret", "", time.Hour), MiddlewareOptions{}, logger.NewNop()))

	var sid string
	router.GET("/", func(c *gin.Context) {
		sid = FromGin(c).SessionID
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, GuestCookieName, cookies[0].Name)
	assert.Equal(t, cookies[0].Value, sid)

	first := sid
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, first, sid)
	assert.Empty(t, w.Result().Cookies())
}

func TestRequireCSRF(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store, _ := newCSRFStore(t)
	m := NewManager("secret", "raven", time.Hour)
	token, err := m.Issue(testUser())
	require.NoError(t, err)
	claims, err := m.Verify(token)
	require.NoError(t, err)

	csrf, err := store.Token(context.Background(), claims.ID)
	require.NoError(t, err)

	router := gin.New()
	router.Use(Middleware(m, MiddlewareOptions{CookieName: "sid"}, logger.NewNop()), RequireCSRF(store))
	router.POST("/write", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/read", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	do := func(method, path string, mutate func(r *http.Request)) int {
		req := httptest.NewRequest(method, path, nil)
		mutate(req)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}
	withCookie := func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "sid", Value: token}) }

	assert.Equal(t, http.StatusNoContent, do(http.MethodGet, "/read", withCookie))
	assert.Equal(t, http.StatusUnauthorized, do(http.MethodPost, "/write", withCookie))
	assert.Equal(t, http.StatusNoContent, do(http.MethodPost, "/write", func(r *http.Request) {
		withCookie(r)
		r.Header.Set(CSRFHeader, csrf)
	}))
	assert.Equal(t, http.StatusNoContent, do(http.MethodPost, "/write", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}))
}
