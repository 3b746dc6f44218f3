package common

import (
	"errors"
	"net/http"
)

// AppError couples a machine-readable error code with the HTTP status it
// should surface as. Handlers translate their sentinel errors into AppErrors
// and hand them to Render; anything that reaches Render untranslated is
// treated as an internal fault.
type AppError struct {
	Code    string
	Message string
	Status  int
	Details any
	Err     error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the wrapped error to errors.Is/As.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError wrapping err.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, Status: status, Err: err}
}

// IsAppError reports whether err carries an AppError anywhere in its chain.
// Handlers use it to decide whether a failure is expected (already mapped to
// a client-facing code) or worth an error-level log.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}

// Render writes err through the canonical error envelope. An AppError keeps
// its code, status, and details; any other error becomes a generic 500.
func Render(w http.ResponseWriter, err error) {
	var app *AppError
	if errors.As(err, &app) {
		status := app.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		message := app.Message
		if message == "" {
			message = http.StatusText(status)
		}
		JSONError(w, status, app.Code, message, app.Details)
		return
	}
	JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
}
