package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// formatFieldName turns json names into labels: checkInTime -> Check In Time.
func formatFieldName(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r == '_' {
			b.WriteRune(' ')
			continue
		}
		if i > 0 && unicode.IsUpper(r) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}

	caser := cases.Title(language.English)
	return caser.String(b.String())
}

func MapValidationError(err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		// Ambil error pertama
		e := errs[0]
		humanReadableField := formatFieldName(e.Field())

		switch e.Tag() {
		case "required":
			return RequiredField(humanReadableField)
		case "isodate":
			return New(CodeInvalidInput,
				fmt.Sprintf("%s must be a date in YYYY-MM-DD format", humanReadableField),
				http.StatusBadRequest)
		case "clock":
			return New(CodeInvalidInput,
				fmt.Sprintf("%s must be a time in HH:MM format", humanReadableField),
				http.StatusBadRequest)
		case "min":
			return New(CodeInvalidInput,
				fmt.Sprintf("%s must be at least %s", humanReadableField, e.Param()),
				http.StatusBadRequest)
		case "max":
			return New(CodeInvalidInput,
				fmt.Sprintf("%s must be at most %s", humanReadableField, e.Param()),
				http.StatusBadRequest)
		default:
			return InvalidField(humanReadableField)
		}
	}

	return New(
		CodeInvalidInput,
		"Invalid input",
		http.StatusBadRequest,
	)
}
