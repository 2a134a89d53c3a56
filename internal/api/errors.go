package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xtlz/xtlz-english/internal/api/shared"
	"github.com/xtlz/xtlz-english/internal/domain"
	"github.com/xtlz/xtlz-english/internal/generation"
	"github.com/xtlz/xtlz-english/internal/service"
	"github.com/xtlz/xtlz-english/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrItemNotFound),
		store.IsNotFoundError(err):
		return http.StatusNotFound

	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrEmptySession),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, generation.ErrEmptyPrompt):
		return http.StatusBadRequest

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, generation.ErrQuotaExceeded):
		return http.StatusTooManyRequests

	case errors.Is(err, generation.ErrInvalidResponse),
		errors.Is(err, generation.ErrContentBlocked):
		return http.StatusUnprocessableEntity

	case errors.Is(err, generation.ErrDisabled),
		errors.Is(err, generation.ErrUnauthorized),
		errors.Is(err, generation.ErrInvalidConfig),
		errors.Is(err, generation.ErrRegionUnavailable),
		errors.Is(err, generation.ErrTransientFailure):
		return http.StatusServiceUnavailable

	case errors.Is(err, generation.ErrGenerationFailed):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-facing message for err. It never
// includes the raw error text.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, service.ErrItemNotFound),
		store.IsNotFoundError(err):
		return "Item not found"
	case errors.Is(err, service.ErrEmptySession):
		return "Review session has no results"
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, domain.ErrValidation):
		return invalidInputMessage(err)
	case errors.Is(err, store.ErrDuplicate):
		return "Item already exists"
	case isGenerationError(err):
		return generation.FriendlyMessage(err)
	default:
		return "An unexpected error occurred"
	}
}

// invalidInputMessage names the domain rule that was broken. Domain
// sentinel texts are fixed strings and safe to echo.
func invalidInputMessage(err error) string {
	for _, sentinel := range []error{
		domain.ErrCardFrontEmpty,
		domain.ErrRuleTitleEmpty,
		domain.ErrEmptyContent,
		domain.ErrInvalidID,
		domain.ErrInvalidStatus,
		domain.ErrInvalidReviewState,
		domain.ErrInvalidItemKind,
		domain.ErrInvalidLevel,
		domain.ErrInvalidDate,
	} {
		if errors.Is(err, sentinel) {
			return "Invalid input: " + sentinel.Error()
		}
	}
	return "Invalid input"
}

func isGenerationError(err error) bool {
	for _, sentinel := range []error{
		generation.ErrGenerationFailed,
		generation.ErrInvalidResponse,
		generation.ErrContentBlocked,
		generation.ErrTransientFailure,
		generation.ErrInvalidConfig,
		generation.ErrQuotaExceeded,
		generation.ErrUnauthorized,
		generation.ErrRegionUnavailable,
		generation.ErrEmptyPrompt,
		generation.ErrDisabled,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// SanitizeValidationError turns request validation errors into a short
// message naming the first offending field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}

	first := verrs[0]
	field := first.Field()
	if field == "" {
		field = strings.ToLower(first.StructField())
	}
	return fmt.Sprintf("Invalid %s: %s", field, validationTagMessage(first.Tag()))
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "dive":
		return "invalid item"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status and safe message for err. A non-empty
// fallback replaces the generic message for unexpected errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
