package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/roadmap-api/internal/domain"
	"github.com/phrazzld/roadmap-api/internal/service"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrQuotaExceeded):
		return http.StatusTooManyRequests

	case errors.Is(err, service.ErrReportNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidRoadmap),
		errors.Is(err, service.ErrReportNotReady),
		errors.Is(err, service.ErrReportAlreadySent),
		errors.Is(err, service.ErrReportFailed):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-facing message for err that never
// includes internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return genericErrorMessage
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) && ve.Message != "" {
		return capitalize(ve.Message)
	}

	switch {
	case errors.Is(err, domain.ErrInvalidRoadmap):
		return "The AI response wasn't a valid roadmap, please try again"
	case errors.Is(err, service.ErrQuotaExceeded):
		return "Daily request limit reached, please try again tomorrow"
	case errors.Is(err, service.ErrReportNotFound):
		return "Report not found"
	case errors.Is(err, service.ErrReportNotReady):
		return "Report is not ready yet"
	case errors.Is(err, service.ErrReportAlreadySent):
		return "Report has already been sent"
	case errors.Is(err, service.ErrReportFailed):
		return "Report generation failed"
	case errors.Is(err, service.ErrEmailFailed):
		return "Failed to send email, please try again"
	case errors.Is(err, service.ErrUpstream):
		return "The AI service is unavailable, please try again later"
	default:
		return genericErrorMessage
	}
}

const genericErrorMessage = "A critical server error occurred."

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// SanitizeValidationError turns struct tag failures into a message naming
// the first offending field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}
	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "uuid":
		return "invalid id format"
	default:
		return "validation failed"
	}
}
