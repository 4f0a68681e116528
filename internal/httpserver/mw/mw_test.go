package mw

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sekawan-grup/raya/internal/logger"
	"github.com/sekawan-grup/raya/internal/service"
	"github.com/sekawan-grup/raya/internal/token"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func TestMatchOrigin(t *testing.T) {
	tests := []struct {
		origin   string
		pattern  string
		expected bool
	}{
		{"https://sekawan-grup.com", "https://sekawan-grup.com", true},
		{"http://sekawan-grup.com", "https://sekawan-grup.com", false},
		{"https://admin.sekawan-grup.com", "*.sekawan-grup.com", true},
		{"http://admin.sekawan-grup.com", "https://*.sekawan-grup.com", false},
		{"https://admin.sekawan-grup.com", "https://*.sekawan-grup.com", true},
		{"https://sekawan-grup.com", "*.sekawan-grup.com", false},
		{"https://evil-sekawan-grup.com", "*.sekawan-grup.com", false},
		{"https://anything.test", "*", true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s~%s", tt.origin, tt.pattern), func(t *testing.T) {
			assert.Equal(t, tt.expected, matchOrigin(tt.origin, tt.pattern))
		})
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://sekawan-grup.com"}, logger.NewNop())(okHandler)

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/category", nil)
		req.Header.Set("Origin", "https://sekawan-grup.com")
		req.Header.Set("Access-Control-Request-Method", "PATCH")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://sekawan-grup.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
		assert.Equal(t, "43200", rec.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("simple request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/categories-with-links", nil)
		req.Header.Set("Origin", "https://sekawan-grup.com")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Content-Length, Authorization", rec.Header().Get("Access-Control-Expose-Headers"))
	})

	t.Run("unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.test")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("no origin", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

type stubAuthenticator struct {
	claims token.Claims
	err    error
	got    string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, bearer string) (token.Claims, error) {
	s.got = bearer
	return s.claims, s.err
}

func TestRequireAuth(t *testing.T) {
	valid := token.Claims{AdminID: 7, Username: "admin"}

	tests := []struct {
		name          string
		header        string
		authErr       error
		expectedCode  int
		expectedMsg   string
		expectedToken string
	}{
		{name: "missing header", expectedCode: http.StatusUnauthorized, expectedMsg: "Authorization header required"},
		{name: "wrong scheme", header: "Basic abc", expectedCode: http.StatusUnauthorized, expectedMsg: "Invalid authorization format"},
		{name: "no token", header: "Bearer", expectedCode: http.StatusUnauthorized, expectedMsg: "Invalid authorization format"},
		{name: "extra parts", header: "Bearer a b", expectedCode: http.StatusUnauthorized, expectedMsg: "Invalid authorization format"},
		{name: "invalid token", header: "Bearer bad", authErr: fmt.Errorf("%w: boom", service.ErrUnauthorized),
			expectedCode: http.StatusUnauthorized, expectedMsg: "token tidak valid", expectedToken: "bad"},
		{name: "backend failure", header: "Bearer tok", authErr: errors.New("redis down"),
			expectedCode: http.StatusInternalServerError, expectedMsg: "Internal server error", expectedToken: "tok"},
		{name: "valid", header: "Bearer tok", expectedCode: http.StatusOK, expectedToken: "tok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &stubAuthenticator{claims: valid, err: tt.authErr}
			var seen token.Claims
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = ClaimsFrom(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			RequireAuth(auth, logger.NewNop())(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
			assert.Equal(t, tt.expectedToken, auth.got)
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, messageOf(t, rec))
			} else {
				assert.Equal(t, uint(7), seen.AdminID)
			}
		})
	}
}

func TestRequireMobile(t *testing.T) {
	tests := []struct {
		name     string
		enabled  bool
		ua       string
		expected int
	}{
		{name: "disabled", enabled: false, ua: "curl/8.0", expected: http.StatusOK},
		{name: "android", enabled: true, ua: "Mozilla/5.0 (Linux; Android 14)", expected: http.StatusOK},
		{name: "iphone", enabled: true, ua: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0)", expected: http.StatusOK},
		{name: "ipad", enabled: true, ua: "Mozilla/5.0 (iPad; CPU OS 17_0)", expected: http.StatusOK},
		{name: "desktop", enabled: true, ua: "Mozilla/5.0 (X11; Linux x86_64)", expected: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/login", nil)
			req.Header.Set("User-Agent", tt.ua)
			rec := httptest.NewRecorder()
			RequireMobile(tt.enabled, logger.NewNop())(okHandler).ServeHTTP(rec, req)
			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	h := RateLimit(RateLimitConfig{
		Name:              "login",
		Burst:             2,
		RefillPerIPPerMin: 1,
		Message:           "slow down",
		Now:               func() time.Time { return now },
	}, logger.NewNop())(okHandler)

	hit := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, hit("1.1.1.1").Code)
	second := hit("1.1.1.1")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))

	blocked := hit("1.1.1.1")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "60", blocked.Header().Get("Retry-After"))
	assert.Equal(t, "slow down", messageOf(t, blocked))

	assert.Equal(t, http.StatusOK, hit("2.2.2.2").Code, "buckets are per IP")

	now = now.Add(time.Minute)
	assert.Equal(t, http.StatusOK, hit("1.1.1.1").Code, "one token refilled after a minute")
}

func TestAllowOnlyCIDRS(t *testing.T) {
	h := AllowOnlyCIDRS([]string{"10.0.0.0/8"}, false, logger.NewNop())(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "10.1.2.3:1000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req.RemoteAddr = "192.168.0.1:1000"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	open := AllowOnlyCIDRS(nil, false, logger.NewNop())(okHandler)
	rec = httptest.NewRecorder()
	open.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec}
	_, _ = sw.Write([]byte("hello"))
	assert.Equal(t, http.StatusOK, sw.status)
	assert.Equal(t, 5, sw.bytes)

	rec = httptest.NewRecorder()
	sw = &statusWriter{ResponseWriter: rec}
	sw.WriteHeader(http.StatusNotFound)
	assert.Equal(t, http.StatusNotFound, sw.status)
}
