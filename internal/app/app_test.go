package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stage-manager/internal/config"
	"stage-manager/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
	apperror.Init()
}

type envelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error json.RawMessage `json:"error"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	cfg := config.App{
		StoreBackend:   config.StoreMemory,
		JWTSecret:      "integration-secret",
		TokenTTL:       time.Hour,
		RateLimitRPS:   100,
		RateLimitBurst: 100,
		SeedDemoData:   true,
	}

	router := gin.New()
	cleanup, err := BuildApp(router, cfg)
	assert.NoError(t, err)
	t.Cleanup(cleanup)
	return router
}

func call(t *testing.T, router *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func login(t *testing.T, router *gin.Engine, body map[string]string) string {
	t.Helper()
	w, env := call(t, router, http.MethodPost, "/api/v1/auth/login", "", body)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	assert.NoError(t, json.Unmarshal(env.Data, &resp))
	return resp.AccessToken
}

func TestBuildApp_AttendanceFlow(t *testing.T) {
	router := newTestRouter(t)

	w, _ := call(t, router, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = call(t, router, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	school := login(t, router, map[string]string{"role": "school"})
	company := login(t, router, map[string]string{"role": "company"})
	ana := login(t, router, map[string]string{"role": "student", "studentId": "101"})

	// Mon 2024-07-01 .. Fri 2024-07-05: school writes Mon and Tue only.
	w, env := call(t, router, http.MethodPost, "/api/v1/attendances/generate", school,
		map[string]any{"from": "2024-07-01", "to": "2024-07-05", "all": true})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, string(env.Data), `"incoming":4`)

	// Wednesday is a company day.
	w, _ = call(t, router, http.MethodPost, "/api/v1/attendances/generate", school,
		map[string]any{"from": "2024-07-03", "to": "2024-07-03", "all": true})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = call(t, router, http.MethodPost, "/api/v1/attendances/generate", company,
		map[string]any{"from": "2024-07-03", "to": "2024-07-03", "studentIds": []string{"102"}})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, string(env.Data), `"total":5`)

	// Students may read but never write.
	w, _ = call(t, router, http.MethodPost, "/api/v1/attendances/generate", ana,
		map[string]any{"from": "2024-07-01", "to": "2024-07-01", "all": true})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = call(t, router, http.MethodGet, "/api/v1/attendances?studentId=102", ana, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var own []map[string]any
	assert.NoError(t, json.Unmarshal(env.Data, &own))
	assert.Len(t, own, 2)
	for _, r := range own {
		assert.Equal(t, "101", r["studentId"])
	}

	w, env = call(t, router, http.MethodGet, "/api/v1/reports/summary", school, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"totalRecords":5`)

	w, _ = call(t, router, http.MethodGet, "/api/v1/reports/export?format=xlsx&from=2024-07-01&to=2024-07-05", ana, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "relatorio-frequencia.xlsx")
}

func TestBuildApp_StudentsAndEvaluations(t *testing.T) {
	router := newTestRouter(t)

	school := login(t, router, map[string]string{"role": "school"})
	company := login(t, router, map[string]string{"role": "company"})

	w, _ := call(t, router, http.MethodPost, "/api/v1/students", company,
		map[string]string{"name": "Bruno", "company": "ABC", "contact": "b@x.com"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = call(t, router, http.MethodPost, "/api/v1/students", school,
		map[string]string{"name": "Bruno Oliveira", "company": "ABC", "contact": "bruno@email.com"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w, env := call(t, router, http.MethodGet, "/api/v1/students/options", company, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "Bruno Oliveira")

	w, _ = call(t, router, http.MethodPost, "/api/v1/evaluations", company, map[string]any{
		"studentId": "101", "attendance": 9, "socialInteraction": 8, "practicalLearning": 7, "workQuality": 9,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w, env = call(t, router, http.MethodGet, "/api/v1/evaluations", school, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"average":8.25`)

	w, env = call(t, router, http.MethodGet, "/api/v1/rbac/permissions", school, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"action":"create"`)
}

func TestBuildApp_RequiresSession(t *testing.T) {
	router := newTestRouter(t)

	w, _ := call(t, router, http.MethodGet, "/api/v1/attendances", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = call(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"role": "student", "studentId": "999"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOpenStore_UnknownBackend(t *testing.T) {
	_, err := openStore(config.App{StoreBackend: "sqlite"})
	assert.Error(t, err)
}

func TestCacheKey_InvalidateCache(t *testing.T) {
	rdb, rmock := redismock.NewClientMock()
	rmock.ExpectDel("reports:summary").SetVal(1)

	err := cacheKey{rdb: rdb, key: "reports:summary"}.InvalidateCache(context.Background())

	assert.NoError(t, err)
	assert.NoError(t, rmock.ExpectationsWereMet())
}
