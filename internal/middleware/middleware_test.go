// AngelaMos | 2026
// middleware_test.go

package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light618/linkbot-ai/internal/config"
	"github.com/light618/linkbot-ai/internal/core"
)

type stubVerifier struct {
	claims *AccessTokenClaims
	err    error
}

func (s stubVerifier) VerifyAccessToken(context.Context, string) (*AccessTokenClaims, error) {
	return s.claims, s.err
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticator_PopulatesContext(t *testing.T) {
	claims := &AccessTokenClaims{UserID: "1", Role: "admin", TenantID: "tenant-1"}

	var seen context.Context
	h := Authenticator(stubVerifier{claims: claims})(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			seen = r.Context()
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec := serve(h, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", GetUserID(seen))
	assert.Equal(t, "admin", GetClaims(seen).Role)
	assert.Equal(t, "tenant-1", GetTenantID(seen))
	assert.Same(t, claims, GetClaims(seen))
}

func TestAuthenticator_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		verifier stubVerifier
		code     string
	}{
		{"missing", "", stubVerifier{}, "UNAUTHORIZED"},
		{"wrong scheme", "Basic abc", stubVerifier{}, "UNAUTHORIZED"},
		{"expired", "Bearer abc", stubVerifier{err: core.ErrTokenExpired}, "TOKEN_EXPIRED"},
		{"invalid", "Bearer abc", stubVerifier{err: errors.New("bad")}, "TOKEN_INVALID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := serve(Authenticator(tt.verifier)(okHandler), req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	h := RequireRole("admin", "operator")(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusUnauthorized, serve(h, req).Code)

	for role, want := range map[string]int{
		"admin":    http.StatusOK,
		"operator": http.StatusOK,
		"viewer":   http.StatusForbidden,
	} {
		ctx := WithClaims(context.Background(), &AccessTokenClaims{UserID: "1", Role: role})
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		assert.Equal(t, want, serve(h, req).Code, role)
	}
}

func TestExtractToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer  tok ")
	assert.Equal(t, "tok", ExtractToken(req))

	req.Header.Set("Authorization", "Bearer")
	assert.Empty(t, ExtractToken(req))
}

func TestRequestID(t *testing.T) {
	var id string
	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		id = GetRequestID(r.Context())
	}))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, id)
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-id")
	rec = serve(h, req)
	assert.Equal(t, "client-id", rec.Header().Get(RequestIDHeader))
}

func TestLogger_PassesThrough(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestSecurityHeaders(t *testing.T) {
	rec := serve(SecurityHeaders(true)(okHandler), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))

	rec = serve(SecurityHeaders(false)(okHandler), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestCORS(t *testing.T) {
	h := CORS(config.CORSConfig{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := serve(h, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "300", rec.Header().Get("Access-Control-Max-Age"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = serve(h, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter_LocalBucket(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{
		Name:  "login",
		Limit: PerMinute(2, 2),
	})
	h := rl.Handler(okHandler)

	newReq := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		return req
	}

	assert.Equal(t, http.StatusOK, serve(h, newReq()).Code)
	assert.Equal(t, http.StatusOK, serve(h, newReq()).Code)

	rec := serve(h, newReq())
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")

	other := newReq()
	other.RemoteAddr = "10.0.0.2:1234"
	assert.Equal(t, http.StatusOK, serve(h, other).Code)
	assert.Equal(t, 2, rl.local.size())
}

func TestRateLimiter_ZeroRateDenies(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{Name: "global", Limit: PerMinute(0, 0)})

	rec := serve(rl.Handler(okHandler), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, 0, rl.local.size())
}

func TestRateLimiter_PoliciesDoNotShareBuckets(t *testing.T) {
	login := NewRateLimiter(nil, RateLimitConfig{Name: "login", Limit: PerMinute(1, 1)})
	global := NewRateLimiter(nil, RateLimitConfig{Name: "global", Limit: PerMinute(1, 1)})
	h := global.Handler(login.Handler(okHandler))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	assert.Equal(t, http.StatusOK, serve(h, req).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(h, req).Code)
}

func TestKeyByUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "ip:192.0.2.1", KeyByUser(req))

	ctx := WithClaims(req.Context(), &AccessTokenClaims{UserID: "7"})
	assert.Equal(t, "user:7", KeyByUser(req.WithContext(ctx)))
}

func TestRateLimiter_Bypass(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{
		Limit:      PerWindow(1, 1, time.Hour),
		BypassFunc: func(*http.Request) bool { return true },
	})
	h := rl.Handler(okHandler)

	for range 3 {
		assert.Equal(t, http.StatusOK, serve(h, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
}

func TestPerWindow_Defaults(t *testing.T) {
	l := PerWindow(20, 0, 0)
	assert.Equal(t, 20, l.Rate)
	assert.Equal(t, 20, l.Burst)
	assert.Equal(t, time.Minute, l.Period)
}

func TestKeyByIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "ip:192.0.2.1", KeyByIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 198.51.100.7")
	assert.Equal(t, "ip:198.51.100.7", KeyByIP(req))
}
