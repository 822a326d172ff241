package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound        = "not_found"
	CodeAlreadyExists   = "already_exists"
	CodeInvalidInput    = "invalid_input"
	CodeExternalFailure = "external_service_failure"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func NotFound(err error) *Error {
	return New(http.StatusNotFound, CodeNotFound, err)
}

func AlreadyExists(err error) *Error {
	return New(http.StatusConflict, CodeAlreadyExists, err)
}

func InvalidInput(err error) *Error {
	return New(http.StatusBadRequest, CodeInvalidInput, err)
}

func ExternalFailure(err error) *Error {
	return New(http.StatusBadGateway, CodeExternalFailure, err)
}

// From pulls an *Error out of an error chain, defaulting to a 500.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return New(http.StatusInternalServerError, "internal_error", err)
}

func IsCode(err error, code string) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Code == code
}
