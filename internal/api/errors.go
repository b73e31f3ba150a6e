package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fluentpath/fluent-api/internal/api/shared"
	"github.com/fluentpath/fluent-api/internal/domain"
	"github.com/fluentpath/fluent-api/internal/service"
	"github.com/fluentpath/fluent-api/internal/service/auth"
	"github.com/fluentpath/fluent-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing internal error types to clients.
func MapErrorToStatusCode(err error) int {
	var verrs validator.ValidationErrors

	switch {
	case errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrLessonLocked):
		return http.StatusForbidden

	case errors.Is(err, service.ErrPlanLimitReached):
		return http.StatusTooManyRequests

	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrInvalidBody),
		errors.As(err, &verrs):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err. Store and
// driver details never reach the message.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var (
		notFound   *domain.NotFoundError
		validation *domain.ValidationError
		verrs      validator.ValidationErrors
	)

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"
	case errors.Is(err, domain.ErrUnauthorized):
		return "Not authorized"

	case errors.Is(err, service.ErrLessonLocked):
		return "Lesson is locked"
	case errors.Is(err, service.ErrPlanLimitReached):
		return "Plan limit reached"

	case errors.As(err, &notFound):
		return fmt.Sprintf("%s not found", cases.Title(language.English).String(notFound.Entity))
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, store.ErrDuplicate):
		return "Already exists"

	case errors.As(err, &verrs):
		return SanitizeValidationError(err)
	case errors.As(err, &validation):
		if validation.Field == "" {
			return "Invalid request"
		}
		return fmt.Sprintf("Invalid %s: %s", validation.Field, validation.Message)
	case errors.Is(err, shared.ErrInvalidBody):
		return "Invalid request body"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator errors into a message naming the
// first offending field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}
	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "uuid", "uuid4":
		return "invalid id format"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the error response for err. fallbackMessage replaces
// the generic message of 500 responses when set.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallbackMessage != "" {
		message = fallbackMessage
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
