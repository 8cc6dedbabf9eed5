package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestLoginRateLimiter(t *testing.T) {
	t.Run("allows attempts under the limit", func(t *testing.T) {
		limiter := NewLoginRateLimiter()
		handler := limiter.Handler(okHandler())

		for i := 0; i < loginMaxAttempts; i++ {
			req := httptest.NewRequest("POST", "/api/auth/login/customer", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("blocks attempts over the limit", func(t *testing.T) {
		limiter := NewLoginRateLimiter()
		handler := limiter.Handler(okHandler())

		for i := 0; i < loginMaxAttempts; i++ {
			req := httptest.NewRequest("POST", "/api/auth/login/customer", nil)
			req.RemoteAddr = "10.0.0.2:1234"
			handler.ServeHTTP(httptest.NewRecorder(), req)
		}

		req := httptest.NewRequest("POST", "/api/auth/login/customer", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	})

	t.Run("tracks clients separately", func(t *testing.T) {
		limiter := NewLoginRateLimiter()
		handler := limiter.Handler(okHandler())

		for i := 0; i < loginMaxAttempts; i++ {
			req := httptest.NewRequest("POST", "/api/auth/login/customer", nil)
			req.RemoteAddr = "10.0.0.3:1234"
			handler.ServeHTTP(httptest.NewRecorder(), req)
		}

		req := httptest.NewRequest("POST", "/api/auth/login/customer", nil)
		req.RemoteAddr = "10.0.0.4:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestCSRFMiddleware(t *testing.T) {
	t.Run("issues a cookie and lets safe methods through", func(t *testing.T) {
		handler := NewCSRFMiddleware(false).Handler(okHandler())

		req := httptest.NewRequest("GET", "/api/properties", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, CSRFCookieName, cookies[0].Name)
		assert.False(t, cookies[0].HttpOnly)
	})

	t.Run("rejects a state change without the header", func(t *testing.T) {
		handler := NewCSRFMiddleware(false).Handler(okHandler())

		req := httptest.NewRequest("POST", "/api/customer/offers", nil)
		req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "tok"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("rejects a mismatched header", func(t *testing.T) {
		handler := NewCSRFMiddleware(false).Handler(okHandler())

		req := httptest.NewRequest("POST", "/api/customer/offers", nil)
		req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "tok"})
		req.Header.Set(CSRFHeaderName, "other")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("accepts the matching header", func(t *testing.T) {
		handler := NewCSRFMiddleware(false).Handler(okHandler())

		req := httptest.NewRequest("POST", "/api/customer/offers", nil)
		req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "tok"})
		req.Header.Set(CSRFHeaderName, "tok")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestBodyLimitMiddleware(t *testing.T) {
	t.Run("rejects oversized declared bodies", func(t *testing.T) {
		handler := NewBodyLimitMiddleware(16).Handler(okHandler())

		req := httptest.NewRequest("POST", "/api/customer/offers", strings.NewReader(strings.Repeat("x", 64)))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("passes small bodies through", func(t *testing.T) {
		handler := NewBodyLimitMiddleware(1024).Handler(okHandler())

		req := httptest.NewRequest("POST", "/api/customer/offers", strings.NewReader("{}"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	t.Run("sets baseline headers", func(t *testing.T) {
		handler := NewSecurityHeadersMiddleware(false).Handler(okHandler())

		req := httptest.NewRequest("GET", "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
		assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
		assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
	})

	t.Run("adds HSTS in production", func(t *testing.T) {
		handler := NewSecurityHeadersMiddleware(true).Handler(okHandler())

		req := httptest.NewRequest("GET", "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
	})
}
