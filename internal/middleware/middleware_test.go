package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MungomeniTM/VSX-changeZA-web/internal/config"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/logging"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTokenService() *services.TokenService {
	return services.NewTokenService(&config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", AccessTTL: time.Hour, RefreshTTL: 24 * time.Hour},
	})
}

func newAuthRouter(ts *services.TokenService) *gin.Engine {
	r := gin.New()
	r.Use(Identify(ts))
	r.GET("/open", func(c *gin.Context) {
		id, ok := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "ok": ok})
	})
	r.GET("/closed", RequireAuth(), func(c *gin.Context) {
		id, _ := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "email": CurrentEmail(c)})
	})
	return r
}

func doGet(r http.Handler, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestIdentify_Anonymous(t *testing.T) {
	r := newAuthRouter(newTokenService())

	w := doGet(r, "/open", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":0,"ok":false}`, w.Body.String())

	// a bad token on an open route is ignored
	w = doGet(r, "/open", "Bearer nonsense")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":0,"ok":false}`, w.Body.String())
}

func TestRequireAuth(t *testing.T) {
	ts := newTokenService()
	r := newAuthRouter(ts)
	pair, err := ts.GenerateTokens(42, "jo@example.com")
	require.NoError(t, err)

	w := doGet(r, "/closed", "Bearer "+pair.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":42,"email":"jo@example.com"}`, w.Body.String())

	w = doGet(r, "/closed", "bearer "+pair.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuth_Rejects(t *testing.T) {
	ts := newTokenService()
	r := newAuthRouter(ts)
	pair, err := ts.GenerateTokens(42, "jo@example.com")
	require.NoError(t, err)

	other := services.NewTokenService(&config.Config{JWT: config.JWTConfig{Secret: "other", AccessTTL: time.Hour}})
	forged, err := other.IssueToken(services.Claims{UserID: 1, Type: services.TokenTypeAccess}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"no header", "", "authentication required"},
		{"wrong scheme", "Basic abc", "malformed token"},
		{"empty bearer", "Bearer ", "malformed token"},
		{"garbage", "Bearer abc", "malformed token"},
		{"other key", "Bearer " + forged, "invalid token signature"},
		{"refresh token", "Bearer " + pair.RefreshToken, "invalid token"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doGet(r, "/closed", tc.header)
			require.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tc.want, errorBody(t, w))
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	ts := newTokenService()
	calls := 0
	r := gin.New()
	r.GET("/x", AuthMiddleware(ts), func(c *gin.Context) {
		calls++
		c.Status(http.StatusNoContent)
	})

	w := doGet(r, "/x", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, calls)

	pair, err := ts.GenerateTokens(7, "")
	require.NoError(t, err)
	w = doGet(r, "/x", "Bearer "+pair.AccessToken)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, calls)
}

func TestRateLimit(t *testing.T) {
	store := NewRateLimiterMemoryStore(RateLimiterConfig{Rate: rate.Limit(1), Burst: 3})
	now := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return now }

	r := gin.New()
	r.GET("/login", RateLimit(store), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doGet(r, "/login", "").Code, "request %d", i)
	}
	w := doGet(r, "/login", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate limit exceeded", errorBody(t, w))

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, doGet(r, "/login", "").Code)
}

func TestRateLimit_PerClient(t *testing.T) {
	store := NewRateLimiterMemoryStore(RateLimiterConfig{Rate: rate.Limit(1), Burst: 1})
	assert.True(t, store.Allow("10.0.0.1"))
	assert.False(t, store.Allow("10.0.0.1"))
	assert.True(t, store.Allow("10.0.0.2"))
}

func TestRateLimit_Disabled(t *testing.T) {
	store := NewRateLimiterMemoryStore(RateLimiterConfig{Rate: 0, Burst: 1})
	r := gin.New()
	r.GET("/login", RateLimit(store), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusOK, doGet(r, "/login", "").Code)
	}
}

func TestRateLimit_ForgetsIdleVisitors(t *testing.T) {
	store := NewRateLimiterMemoryStore(RateLimiterConfig{Rate: rate.Limit(1), Burst: 1, ExpiresIn: time.Minute})
	now := time.Now()
	store.now = func() time.Time { return now }

	store.Allow("a")
	store.Allow("b")
	now = now.Add(2 * time.Minute)
	store.Allow("b")

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.NotContains(t, store.visitors, "a")
	assert.Contains(t, store.visitors, "b")
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(logging.New(&buf, "debug")))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	doGet(r, "/ok", "")
	doGet(r, "/missing", "")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &second))
	assert.Equal(t, "INFO", first["level"])
	assert.Equal(t, "/ok", first["path"])
	assert.EqualValues(t, 200, first["status"])
	assert.Equal(t, "WARN", second["level"])
	assert.EqualValues(t, 404, second["status"])
}
