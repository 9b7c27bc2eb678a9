package evaluationerrors

import (
	"net/http"

	"stage-manager/internal/shared/apperror"
)

var (
	ErrEvaluatorRole = apperror.New(
		apperror.CodeForbidden,
		"Only school or company users can evaluate students",
		http.StatusForbidden,
	)
	ErrScoreOutOfRange = apperror.New(
		apperror.CodeInvalidInput,
		"Scores must be between 0 and 10",
		http.StatusBadRequest,
	)
)
