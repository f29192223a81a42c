package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTransport covers unreachable backends, timeouts and malformed responses.
	ErrTransport = errors.New("backend unavailable")
	// ErrInvalidCredentials is a login or registration rejected by the backend.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionInvalid is a stored or in-use credential rejected by the backend.
	ErrSessionInvalid = errors.New("session invalid")
	// ErrValidation is malformed input caught before any network call.
	ErrValidation = errors.New("validation error")

	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
	ErrRequestFailed = errors.New("request failed")
)

// APIError is the typed failure returned by the Gateway.
//
// Kind is one of the sentinel errors above and is what errors.Is matches.
// Status is 0 when no HTTP response was received.
type APIError struct {
	Op      string
	Status  int
	Message string
	Kind    error
	Err     error
}

func (e *APIError) Error() string {
	msg := e.kind().Error()
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (%d)", msg, e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	return msg
}

func (e *APIError) Unwrap() []error {
	errs := []error{e.kind()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// kind defaults an unset Kind to ErrRequestFailed.
func (e *APIError) kind() error {
	if e.Kind == nil {
		return ErrRequestFailed
	}
	return e.Kind
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// kindForStatus maps a non-2xx status to its sentinel. withCredential tells
// whether the request carried a bearer credential.
func kindForStatus(status int, withCredential bool) error {
	switch {
	case status == http.StatusUnauthorized && withCredential:
		return ErrSessionInvalid
	case status == http.StatusUnauthorized:
		return ErrInvalidCredentials
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	default:
		return ErrRequestFailed
	}
}
