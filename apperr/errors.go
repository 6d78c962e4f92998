// Package apperr defines the error values returned to API and CLI callers.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrBadRequest = NewAppError("BAD_REQUEST", "invalid request", http.StatusBadRequest)
	ErrValidation = NewAppError("VALIDATION_ERROR", "input validation failed", http.StatusBadRequest)
	ErrGeneration = NewAppError("GENERATION_ERROR", "tip generation failed", http.StatusBadGateway)
	ErrTimeout    = NewAppError("TIMEOUT", "tip generation timed out", http.StatusGatewayTimeout)
	ErrCanceled   = NewAppError("REQUEST_CANCELED", "request canceled by client", http.StatusRequestTimeout)
	ErrInternal   = NewAppError("INTERNAL_SERVER_ERROR", "internal server error", http.StatusInternalServerError)
)

// AppError carries a stable code, an HTTP status and optional field details.
type AppError struct {
	Code       string
	Message    string
	StatusCode int
	Details    map[string]interface{}
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another AppError with the same code, so errors.Is(err, ErrValidation)
// holds for clones made by WithDetails and WithError.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	clone := e.clone()
	clone.Details = make(map[string]interface{}, len(details))
	for k, v := range details {
		clone.Details[k] = v
	}
	return clone
}

func (e *AppError) WithError(err error) *AppError {
	clone := e.clone()
	clone.Err = err
	return clone
}

func NewAppError(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    make(map[string]interface{}),
	}
}

func (e *AppError) clone() *AppError {
	clone := *e
	clone.Details = make(map[string]interface{}, len(e.Details))
	for k, v := range e.Details {
		clone.Details[k] = v
	}
	return &clone
}

// AsAppError unwraps err to the first AppError in its chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// FromError maps any error onto an AppError.
func FromError(err error) *AppError {
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout.WithError(err)
	}
	if errors.Is(err, context.Canceled) {
		return ErrCanceled.WithError(err)
	}
	return ErrInternal.WithError(err)
}

// NewValidationError reports a single invalid field.
func NewValidationError(field, message string) *AppError {
	return ErrValidation.WithDetails(map[string]interface{}{
		"fields": []map[string]string{{"field": field, "message": message}},
	})
}

// ParseValidationErrors converts validator errors into a VALIDATION_ERROR
// listing each failing field. Other errors become BAD_REQUEST.
func ParseValidationErrors(err error) *AppError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return ErrBadRequest.WithError(err)
	}

	fieldErrors := make([]map[string]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fieldErrors = append(fieldErrors, map[string]string{
			"field":   fieldPath(fieldErr),
			"message": validationMessage(fieldErr),
		})
	}

	return ErrValidation.WithError(err).WithDetails(map[string]interface{}{
		"fields": fieldErrors,
	})
}

// fieldPath is the namespace without the root struct name, e.g.
// "budget.categories[Food]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must have at least %s characters", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	default:
		return fmt.Sprintf("validation '%s' failed for %s", fe.Tag(), fe.Field())
	}
}
