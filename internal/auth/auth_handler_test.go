package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stage-manager/internal/auth"
	autherrors "stage-manager/internal/auth/errors"
	"stage-manager/internal/permission"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeAuthService struct {
	LoginFn func(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error)
}

func (f *fakeAuthService) Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	return f.LoginFn(ctx, req)
}

func (f *fakeAuthService) Me(_ context.Context, actor permission.Actor) auth.AuthResponse {
	return auth.AuthResponse{ID: actor.ID, Name: actor.Name, Role: actor.Role.String()}
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthHandler_Login(t *testing.T) {
	okService := &fakeAuthService{
		LoginFn: func(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
			return auth.LoginResponse{
				User:        auth.AuthResponse{ID: "school", Name: "Escola", Role: "school"},
				AccessToken: "token-123",
			}, nil
		},
	}

	t.Run("web client gets cookie", func(t *testing.T) {
		h := auth.NewHandler(okService, false)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"role":"school"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Request.Header.Set("X-Client-Type", "web")

		h.Login(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Set-Cookie"), "access_token=token-123")
	})

	t.Run("api client gets token only", func(t *testing.T) {
		h := auth.NewHandler(okService, false)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"role":"school"}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Login(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Set-Cookie"))
		assert.Contains(t, w.Body.String(), "token-123")
	})

	t.Run("missing role", func(t *testing.T) {
		h := auth.NewHandler(okService, false)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Login(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("service error", func(t *testing.T) {
		h := auth.NewHandler(&fakeAuthService{
			LoginFn: func(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
				return auth.LoginResponse{}, autherrors.ErrInvalidRole
			},
		}, false)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"role":"admin"}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Login(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_MeAndLogout(t *testing.T) {
	h := auth.NewHandler(&fakeAuthService{}, true)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	c.Set("user_id", "101")
	c.Set("name", "Ana Silva")
	c.Set("role", "student")

	h.Me(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Ana Silva"`)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)

	h.Logout(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}
