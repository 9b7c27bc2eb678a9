package reporterrors

import (
	"net/http"

	"stage-manager/internal/shared/apperror"
)

var (
	ErrUnsupportedFormat = apperror.New(
		apperror.CodeInvalidInput,
		"Export format must be pdf or xlsx",
		http.StatusBadRequest,
	)
	ErrRenderFailed = apperror.New(
		apperror.CodeInternalError,
		"Failed to render report",
		http.StatusInternalServerError,
	)
)
