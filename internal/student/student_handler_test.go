package student_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stage-manager/internal/student"
	studenterrors "stage-manager/internal/student/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeStudentService struct {
	CreateFn     func(ctx context.Context, req student.CreateStudentRequest) (student.StudentResponse, error)
	GetAllFn     func(ctx context.Context) ([]student.StudentResponse, error)
	GetOptionsFn func(ctx context.Context) ([]student.StudentOption, error)
	GetByIDFn    func(ctx context.Context, id string) (student.StudentResponse, error)
}

func (f *fakeStudentService) Create(ctx context.Context, req student.CreateStudentRequest) (student.StudentResponse, error) {
	return f.CreateFn(ctx, req)
}
func (f *fakeStudentService) GetAll(ctx context.Context) ([]student.StudentResponse, error) {
	return f.GetAllFn(ctx)
}
func (f *fakeStudentService) GetOptions(ctx context.Context) ([]student.StudentOption, error) {
	return f.GetOptionsFn(ctx)
}
func (f *fakeStudentService) GetByID(ctx context.Context, id string) (student.StudentResponse, error) {
	return f.GetByIDFn(ctx, id)
}
func (f *fakeStudentService) InvalidateCache(context.Context) error { return nil }
func (f *fakeStudentService) SeedDemo(context.Context) error        { return nil }

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStudentHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeStudentService{
			CreateFn: func(ctx context.Context, req student.CreateStudentRequest) (student.StudentResponse, error) {
				assert.Equal(t, "Ana Silva", req.Name)
				return student.StudentResponse{ID: "1", Name: req.Name, Company: req.Company, Contact: req.Contact}, nil
			},
		}
		h := student.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		body := `{"name":"Ana Silva","company":"Tech Solutions","contact":"ana@email.com"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/students", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "Ana Silva")
	})

	t.Run("validation error", func(t *testing.T) {
		h := student.NewHandler(&fakeStudentService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/students", strings.NewReader(`{"name":"Ana"}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_INPUT")
	})
}

func TestStudentHandler_GetAll(t *testing.T) {
	svc := &fakeStudentService{
		GetAllFn: func(ctx context.Context) ([]student.StudentResponse, error) {
			return []student.StudentResponse{
				{ID: "2", Name: "Carlos Mendes", Company: "InnovaSoft"},
				{ID: "1", Name: "Ana Silva", Company: "Tech Solutions"},
				{ID: "3", Name: "Bruna Costa", Company: "Tech Solutions"},
			}, nil
		},
	}
	h := student.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/students?q=tech&page=1&page_size=1", nil)

	h.GetAll(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Ok   bool                      `json:"ok"`
		Data []student.StudentResponse `json:"data"`
		Meta struct {
			Total      int `json:"total"`
			TotalPages int `json:"totalPages"`
		} `json:"meta"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Ok)
	assert.Equal(t, 2, body.Meta.Total)
	assert.Equal(t, 2, body.Meta.TotalPages)
	if assert.Len(t, body.Data, 1) {
		assert.Equal(t, "Ana Silva", body.Data[0].Name)
	}
}

func TestStudentHandler_GetByID_NotFound(t *testing.T) {
	svc := &fakeStudentService{
		GetByIDFn: func(ctx context.Context, id string) (student.StudentResponse, error) {
			return student.StudentResponse{}, studenterrors.ErrStudentNotFound
		},
	}
	h := student.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/students/404", nil)
	c.Params = gin.Params{{Key: "id", Value: "404"}}

	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}
