package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/publicvoice/internal/config"
	"github.com/iliyamo/publicvoice/internal/credential"
	"github.com/iliyamo/publicvoice/internal/model"
	"github.com/iliyamo/publicvoice/internal/repository"
)

type stubUsers map[uint64]*model.User

func (s stubUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

type failingUsers struct{}

func (failingUsers) GetByID(context.Context, uint64) (*model.User, error) {
	return nil, errors.New("db down")
}

func newCreds(t *testing.T) *credential.Service {
	t.Helper()
	c, err := credential.New(credential.Options{Secret: "test-secret", Algorithm: "HS256", BcryptCost: 4})
	require.NoError(t, err)
	return c
}

// serve runs a request through mws and a handler that echoes the current
// user id.
func serve(t *testing.T, authHeader string, mws ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.GET("/p", func(c echo.Context) error {
		u := CurrentUser(c)
		if u == nil {
			return c.String(http.StatusOK, "anon")
		}
		return c.JSON(http.StatusOK, echo.Map{"id": u.ID})
	}, mws...)
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	creds := newCreds(t)
	users := stubUsers{
		1: {ID: 1, FullName: "Amina", Role: model.RoleUser},
		2: {ID: 2, FullName: "Root", Role: model.RoleAdmin},
	}
	mw := JWTAuth(creds, users, zap.NewNop())

	tok, err := creds.IssueAccessToken(1, 0)
	require.NoError(t, err)
	rec := serve(t, "Bearer "+tok.Token, mw)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"id":1}`, rec.Body.String())

	rec = serve(t, "bearer "+tok.Token, mw)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, "", mw)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	require.JSONEq(t, `{"error":"not authenticated"}`, rec.Body.String())

	rec = serve(t, "Basic abc", mw)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(t, "Bearer "+tok.Token+"x", mw)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"error":"invalid or expired token"}`, rec.Body.String())

	ghost, err := creds.IssueAccessToken(99, 0)
	require.NoError(t, err)
	rec = serve(t, "Bearer "+ghost.Token, mw)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"error":"user not found"}`, rec.Body.String())

	rec = serve(t, "Bearer "+tok.Token, JWTAuth(creds, failingUsers{}, nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	creds := newCreds(t)
	users := stubUsers{
		1: {ID: 1, Role: model.RoleUser},
		2: {ID: 2, Role: model.RoleAdmin},
	}
	auth := JWTAuth(creds, users, nil)

	userTok, err := creds.IssueAccessToken(1, 0)
	require.NoError(t, err)
	adminTok, err := creds.IssueAccessToken(2, 0)
	require.NoError(t, err)

	rec := serve(t, "Bearer "+userTok.Token, auth, RequireAdmin())
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.JSONEq(t, `{"error":"admin access required"}`, rec.Body.String())

	rec = serve(t, "Bearer "+adminTok.Token, auth, RequireAdmin())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, "", RequireAdmin())
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.7")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/auth/login")

	cfg := config.RateLimitConfig{Prefix: "pv:rl", KeyStrategy: config.RateKeyIPRoute}
	require.Equal(t, "pv:rl:ip:10.0.0.7:route:POST /api/auth/login", rateKey(cfg, c))

	cfg.KeyStrategy = config.RateKeyIP
	require.Equal(t, "pv:rl:ip:10.0.0.7", rateKey(cfg, c))

	other := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/auth/login", nil), httptest.NewRecorder())
	other.Request().Header.Set(echo.HeaderXRealIP, "10.0.0.8")
	require.NotEqual(t, rateKey(cfg, c), rateKey(cfg, other))
}

func TestTokenBucket_DisabledAndFailOpen(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute, KeyStrategy: "ip", Prefix: "t"}

	rec := serve(t, "", NewTokenBucket(cfg, nil, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	t.Cleanup(func() { _ = rdb.Close() })
	rec = serve(t, "", NewTokenBucket(cfg, rdb, zap.NewNop()))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestAsInt64(t *testing.T) {
	require.Equal(t, int64(3), asInt64(int64(3)))
	require.Equal(t, int64(7), asInt64("7"))
	require.Equal(t, int64(0), asInt64(nil))
}
