package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"stage-manager/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeRBAC struct {
	allowed bool
	err     error
	got     []string
}

func (f *fakeRBAC) Enforce(role, resource, action string) (bool, error) {
	f.got = []string{role, resource, action}
	return f.allowed, f.err
}

func withRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if role != "" {
			c.Set("role", role)
			c.Set("user_id", "u-"+role)
		}
		c.Next()
	}
}

func TestRBACAuthorize(t *testing.T) {
	cases := []struct {
		name string
		role string
		svc  *fakeRBAC
		want int
	}{
		{"allowed", "school", &fakeRBAC{allowed: true}, http.StatusOK},
		{"denied", "student", &fakeRBAC{allowed: false}, http.StatusForbidden},
		{"enforcer error", "school", &fakeRBAC{err: errors.New("boom")}, http.StatusInternalServerError},
		{"no session", "", &fakeRBAC{allowed: true}, http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/a", withRole(tc.role), RBACAuthorize(tc.svc, "attendance", "write"), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/a", nil))

			assert.Equal(t, tc.want, w.Code)
			if tc.role != "" {
				assert.Equal(t, []string{tc.role, "attendance", "write"}, tc.svc.got)
			}
		})
	}
}

func TestRateLimitByIP(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimitByIP(0.0001, 1), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "TOO_MANY_REQUESTS")
}

func TestRateLimitByUser(t *testing.T) {
	r := gin.New()
	r.GET("/", withRole("school"), RateLimitByUser(0.0001, 1), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRequestIDAndContextLogger(t *testing.T) {
	var rid, role string
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", withRole("company"), ContextLogger(zap.NewNop()), func(c *gin.Context) {
		rid = contextutil.GetRequestID(c.Request.Context())
		role = contextutil.GetRole(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", rid)
	assert.Equal(t, "company", role)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}

func TestIdempotency(t *testing.T) {
	cacheKey := "idemp:/items:u-school:key-1"
	lockKey := cacheKey + ":lock"

	newRouter := func(rdbHandler gin.HandlerFunc, calls *int) *gin.Engine {
		r := gin.New()
		r.POST("/items", withRole("school"), rdbHandler, func(c *gin.Context) {
			*calls++
			c.JSON(http.StatusCreated, gin.H{"ok": true})
		})
		return r
	}

	t.Run("replays a stored response", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		stored, _ := json.Marshal(cachedResponse{Status: http.StatusCreated, Body: json.RawMessage(`{"ok":true}`)})
		mock.ExpectGet(cacheKey).SetVal(string(stored))

		calls := 0
		r := newRouter(Idempotency(rdb), &calls)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/items", nil)
		req.Header.Set("Idempotency-Key", "key-1")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "true", w.Header().Get("Idempotent-Replayed"))
		assert.Equal(t, 0, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects while locked", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(lockKey, "locked", idempotencyLockTTL).SetVal(false)

		calls := 0
		r := newRouter(Idempotency(rdb), &calls)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/items", nil)
		req.Header.Set("Idempotency-Key", "key-1")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, 0, calls)
	})

	t.Run("stores a fresh success", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(lockKey, "locked", idempotencyLockTTL).SetVal(true)
		stored, _ := json.Marshal(cachedResponse{Status: http.StatusCreated, Body: json.RawMessage(`{"ok":true}`)})
		mock.ExpectSet(cacheKey, stored, idempotencyResultTTL).SetVal("OK")
		mock.ExpectDel(lockKey).SetVal(1)

		calls := 0
		r := newRouter(Idempotency(rdb), &calls)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/items", nil)
		req.Header.Set("Idempotency-Key", "key-1")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no redis is a pass-through", func(t *testing.T) {
		calls := 0
		r := newRouter(Idempotency(nil), &calls)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/items", nil)
		req.Header.Set("Idempotency-Key", "key-1")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, calls)
	})
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
