package attendanceerrors

import (
	"net/http"

	"stage-manager/internal/shared/apperror"
)

var (
	ErrPermissionDenied = apperror.New(
		apperror.CodeForbidden,
		"Your role cannot write attendance on this day",
		http.StatusForbidden,
	)
	ErrEmptySelection = apperror.New(
		apperror.CodeInvalidInput,
		"Select at least one student",
		http.StatusBadRequest,
	)
	ErrRecordNotFound = apperror.New(
		apperror.CodeNotFound,
		"Attendance record not found",
		http.StatusNotFound,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"Date must be in YYYY-MM-DD format",
		http.StatusBadRequest,
	)
	ErrRangeTooLong = apperror.New(
		apperror.CodeInvalidInput,
		"Date range cannot exceed 366 days",
		http.StatusBadRequest,
	)
)
