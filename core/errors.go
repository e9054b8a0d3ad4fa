package core

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// RemoteError is returned when a backend call fails: either the backend answered
// with a non-2xx status, or (StatusCode 0) it could not be reached at all.
// Body is kept for diagnostics only; it is never parsed.
type RemoteError struct {
	Operation  string
	StatusCode int
	Body       string
	Err        error // transport failure
}

func (err *RemoteError) Error() string {
	if err.StatusCode == 0 {
		if err.Err == nil {
			return err.Operation + ": backend unreachable"
		}
		return err.Operation + ": " + err.Err.Error()
	}
	return fmt.Sprintf("%s: backend responded %d %s", err.Operation, err.StatusCode, http.StatusText(err.StatusCode))
}

func (err *RemoteError) Unwrap() error { return err.Err }

// Unreachable reports whether the request never got a response.
func (err *RemoteError) Unreachable() bool { return err.StatusCode == 0 }

// IsRemote reports whether err (or its cause) is a *RemoteError.
func IsRemote(err error) bool {
	_, ok := errors.Cause(err).(*RemoteError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
