package studenterrors

import (
	"net/http"

	"stage-manager/internal/shared/apperror"
)

var (
	ErrStudentNotFound = apperror.New(
		apperror.CodeNotFound,
		"Student not found",
		http.StatusNotFound,
	)
	ErrStudentAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Student with the same id already exists",
		http.StatusConflict,
	)
)
