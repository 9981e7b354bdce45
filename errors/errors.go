package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

const (
	ErrCodeNotFound         = "not_found"
	ErrCodeAlreadyExists    = "already_exists"
	ErrCodeValidation       = "validation_error"
	ErrCodeInvalidOperation = "invalid_operation"
	ErrCodePermissionDenied = "permission_denied"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeHeaderMismatch   = "header_mismatch"
	ErrCodeConfiguration    = "configuration_error"
	ErrCodeDatabase         = "database_error"
	ErrCodeSystemError      = "system_error"
)

// Sentinels used with ErrorBuilder.Mark. Match them with the Is* helpers,
// which understand cockroachdb marks.
var (
	ErrNotFound         = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists    = new(ErrCodeAlreadyExists, "resource already exists")
	ErrValidation       = new(ErrCodeValidation, "validation error")
	ErrInvalidOperation = new(ErrCodeInvalidOperation, "invalid operation")
	ErrPermissionDenied = new(ErrCodePermissionDenied, "permission denied")
	ErrUnauthorized     = new(ErrCodeUnauthorized, "unauthorized")
	ErrHeaderMismatch   = new(ErrCodeHeaderMismatch, "invalid headers")
	ErrConfiguration    = new(ErrCodeConfiguration, "configuration error")
	ErrDatabase         = new(ErrCodeDatabase, "database error")
	ErrSystem           = new(ErrCodeSystemError, "system error")

	// order matters: the first match wins in HTTPStatusFromErr
	statusCodes = []struct {
		err    error
		status int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrAlreadyExists, http.StatusConflict},
		{ErrValidation, http.StatusBadRequest},
		{ErrInvalidOperation, http.StatusBadRequest},
		{ErrHeaderMismatch, http.StatusBadRequest},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrPermissionDenied, http.StatusForbidden},
		{ErrConfiguration, http.StatusInternalServerError},
		{ErrDatabase, http.StatusInternalServerError},
		{ErrSystem, http.StatusInternalServerError},
	}
)

// InternalError is a coded domain error.
type InternalError struct {
	Code    string
	Message string
	Err     error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

func (e *InternalError) Is(target error) bool {
	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}
	return e.Code == t.Code
}

func new(code, message string) *InternalError {
	return &InternalError{Code: code, Message: message}
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsAlreadyExists(err error) bool { return errors.Is(err, ErrAlreadyExists) }

func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

func IsHeaderMismatch(err error) bool { return errors.Is(err, ErrHeaderMismatch) }

func IsConfiguration(err error) bool { return errors.Is(err, ErrConfiguration) }

func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }

// HTTPStatusFromErr maps a marked error to a response status, 500 when unmarked.
func HTTPStatusFromErr(err error) int {
	for _, sc := range statusCodes {
		if errors.Is(err, sc.err) {
			return sc.status
		}
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the text that may be shown to a caller: the hints
// attached through WithHint, else the sentinel message for client errors.
// Server errors without a hint never leak their cause.
func PublicMessage(err error) string {
	if hint := errors.FlattenHints(err); hint != "" {
		return hint
	}
	status := HTTPStatusFromErr(err)
	if status >= http.StatusInternalServerError {
		return "internal server error"
	}
	for _, sc := range statusCodes {
		if errors.Is(err, sc.err) {
			if ie, ok := sc.err.(*InternalError); ok {
				return ie.Message
			}
		}
	}
	return http.StatusText(status)
}
