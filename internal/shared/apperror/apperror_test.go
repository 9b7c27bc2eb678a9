package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestAppError_IsMatchesRewrappedSentinel(t *testing.T) {
	sentinel := New(CodeForbidden, "write not allowed", http.StatusForbidden)
	wrapped := WithCause(sentinel, errors.New("monday only"))

	assert.True(t, errors.Is(wrapped, sentinel))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, "write not allowed: monday only", wrapped.Error())
}

type dayDetail struct{ day string }

func (d dayDetail) Error() string { return "not on " + d.day }

func (d dayDetail) ClientDetail() any { return map[string]string{"day": d.day} }

func TestToHTTP(t *testing.T) {
	t.Run("storage cause is not exposed", func(t *testing.T) {
		httpErr := ToHTTP(Wrap(errors.New("pq: disk full on /var/lib/postgresql"), CodeServiceUnavailable, "storage down", http.StatusServiceUnavailable))
		assert.Equal(t, http.StatusServiceUnavailable, httpErr.Status)
		assert.Equal(t, CodeServiceUnavailable, httpErr.Code)
		assert.Equal(t, "storage down", httpErr.Message)
		assert.Nil(t, httpErr.Details)
	})

	t.Run("client detail is exposed", func(t *testing.T) {
		cause := fmt.Errorf("checking day: %w", dayDetail{"monday"})
		httpErr := ToHTTP(WithCause(ErrForbidden, cause))
		assert.Equal(t, http.StatusForbidden, httpErr.Status)
		assert.Equal(t, map[string]string{"day": "monday"}, httpErr.Details)
	})

	t.Run("plain error is hidden", func(t *testing.T) {
		httpErr := ToHTTP(errors.New("boom"))
		assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
		assert.Equal(t, CodeInternalError, httpErr.Code)
		assert.Nil(t, httpErr.Details)
	})
}

type sampleRequest struct {
	StudentID   string `json:"studentId" validate:"required"`
	Date        string `json:"date" validate:"required,isodate"`
	CheckInTime string `json:"checkInTime" validate:"omitempty,clock"`
	Score       int    `json:"score" validate:"min=0,max=10"`
}

func TestMapValidationError(t *testing.T) {
	v := validator.New()
	RegisterValidations(v)

	tests := []struct {
		name string
		req  sampleRequest
		msg  string
	}{
		{"required", sampleRequest{Date: "2024-07-01"}, "Student Id is required"},
		{"isodate", sampleRequest{StudentID: "1", Date: "01/07/2024"}, "Date must be a date in YYYY-MM-DD format"},
		{"clock", sampleRequest{StudentID: "1", Date: "2024-07-01", CheckInTime: "8h"}, "Check In Time must be a time in HH:MM format"},
		{"max", sampleRequest{StudentID: "1", Date: "2024-07-01", Score: 11}, "Score must be at most 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapValidationError(v.Struct(tt.req))
			var appErr *AppError
			assert.True(t, errors.As(err, &appErr))
			assert.Equal(t, CodeInvalidInput, appErr.Code)
			assert.Equal(t, tt.msg, appErr.Message)
		})
	}
}
