package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estately/portal-server-go/internal/guard"
	"github.com/estately/portal-server-go/internal/model"
	"github.com/estately/portal-server-go/internal/session"
	"github.com/estately/portal-server-go/internal/upstream"
)

type stubSessionRepo struct {
	deletedHashes []string
}

func (s *stubSessionRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.PortalSession, error) {
	return nil, nil
}

func (s *stubSessionRepo) Create(ctx context.Context, params model.CreatePortalSessionParams) (*model.PortalSession, error) {
	return &model.PortalSession{ID: "s1", TokenHash: params.TokenHash, Identity: params.Identity, ExpiresAt: params.ExpiresAt}, nil
}

func (s *stubSessionRepo) Delete(ctx context.Context, id string) error {
	return nil
}

func (s *stubSessionRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	s.deletedHashes = append(s.deletedHashes, tokenHash)
	return nil
}

func (s *stubSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

func newAuthRouter(t *testing.T, marketplace http.HandlerFunc) (chi.Router, *stubSessionRepo) {
	t.Helper()
	srv := httptest.NewServer(marketplace)
	t.Cleanup(srv.Close)

	repo := &stubSessionRepo{}
	client := upstream.NewClient(srv.URL, time.Second)
	store := session.NewStore(repo, client, "handler-test-secret", time.Hour, "")

	h := NewAuthHandler(store, nil, false)
	r := chi.NewRouter()
	r.Mount("/api/auth", h.Routes())
	return r, repo
}

func TestLogin(t *testing.T) {
	t.Run("sets session cookie on success", func(t *testing.T) {
		router, _ := newAuthRouter(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/customers/login", r.URL.Path)
			w.Write([]byte(`{"message":"success","data":{"id":7,"email":"amy@example.com","name":"Amy","token":"upstream-token","active":true,"approved":true}}`))
		})

		req := httptest.NewRequest("POST", "/api/auth/login/customer", strings.NewReader(`{"email":"amy@example.com","password":"secret"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "amy@example.com")

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, guard.SessionCookie, cookies[0].Name)
		assert.NotEmpty(t, cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("maps bad credentials to a friendly message", func(t *testing.T) {
		router, _ := newAuthRouter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Bad credentials"}`))
		})

		req := httptest.NewRequest("POST", "/api/auth/login/customer", strings.NewReader(`{"email":"amy@example.com","password":"wrong"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid email or password")
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		router, _ := newAuthRouter(t, func(w http.ResponseWriter, r *http.Request) {})

		req := httptest.NewRequest("POST", "/api/auth/login/tenant", strings.NewReader(`{"email":"amy@example.com","password":"secret"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects missing credentials", func(t *testing.T) {
		router, _ := newAuthRouter(t, func(w http.ResponseWriter, r *http.Request) {})

		req := httptest.NewRequest("POST", "/api/auth/login/customer", strings.NewReader(`{"email":"amy@example.com"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRegister(t *testing.T) {
	t.Run("signs up without creating a session", func(t *testing.T) {
		router, _ := newAuthRouter(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/owners/signup", r.URL.Path)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"message":"success","data":{"id":3}}`))
		})

		req := httptest.NewRequest("POST", "/api/auth/register/owner", strings.NewReader(`{"email":"bo@example.com","password":"secret","name":"Bo"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), "/login/owner")
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("requires a name", func(t *testing.T) {
		router, _ := newAuthRouter(t, func(w http.ResponseWriter, r *http.Request) {})

		req := httptest.NewRequest("POST", "/api/auth/register/owner", strings.NewReader(`{"email":"bo@example.com","password":"secret"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLogout(t *testing.T) {
	t.Run("deletes the session and clears the cookie", func(t *testing.T) {
		router, repo := newAuthRouter(t, func(w http.ResponseWriter, r *http.Request) {})

		req := httptest.NewRequest("POST", "/api/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: guard.SessionCookie, Value: "browser-token"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, repo.deletedHashes, 1)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, guard.SessionCookie, cookies[0].Name)
		assert.Equal(t, -1, cookies[0].MaxAge)
	})

	t.Run("succeeds without a cookie", func(t *testing.T) {
		router, repo := newAuthRouter(t, func(w http.ResponseWriter, r *http.Request) {})

		req := httptest.NewRequest("POST", "/api/auth/logout", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, repo.deletedHashes)
	})
}

func TestMe(t *testing.T) {
	t.Run("returns 401 without a session", func(t *testing.T) {
		router, _ := newAuthRouter(t, func(w http.ResponseWriter, r *http.Request) {})

		req := httptest.NewRequest("GET", "/api/auth/me", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
