package apperror

import (
	"errors"
	"net/http"
)

type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details any
}

// ClientDetail is implemented by causes a client can act on. Only those are
// rendered as details; any other cause stays server side.
type ClientDetail interface {
	ClientDetail() any
}

// ToHTTP converts any error into the shape rendered by response.Error.
// Unknown errors are reported as INTERNAL_ERROR without leaking their text.
func ToHTTP(err error) HTTPError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		var details any
		var cd ClientDetail
		if appErr.Err != nil && errors.As(appErr.Err, &cd) {
			details = cd.ClientDetail()
		}
		return HTTPError{
			Status:  appErr.HTTPStatus,
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: details,
		}
	}

	return HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternalError,
		Message: ErrInternal.Message,
	}
}
