package apperrors

import (
	"errors"
	"strings"
)

// appError implements the apperrors.Error interface
type appError struct {
	msg           string
	base          *appError
	wrappedErrors []error
	statuscode    int
	expandError   bool
}

func (e *appError) Error() string {
	return e.msg
}

// ErrorAll returns the message followed by the wrapped errors when expansion is on.
func (e *appError) ErrorAll() string {
	if !e.expandError || len(e.wrappedErrors) == 0 {
		return e.msg
	}
	parts := make([]string, 0, len(e.wrappedErrors))
	for _, err := range e.wrappedErrors {
		parts = append(parts, err.Error())
	}
	return e.msg + ": " + strings.Join(parts, ";")
}

func (e *appError) Unwrap() []error {
	return e.wrappedErrors
}

func (e *appError) clone() *appError {
	c := *e
	c.wrappedErrors = append([]error(nil), e.wrappedErrors...)
	return &c
}

// New derives a child error that matches e under errors.Is.
func (e *appError) New(msg string) Error {
	return &appError{
		msg:         msg,
		statuscode:  e.statuscode,
		expandError: e.expandError,
		base:        e,
	}
}

func (e *appError) Msg(msg string) Error {
	c := e.clone()
	c.base = e
	c.msg = msg
	return c
}

func (e *appError) MsgErr(msg string, err ...error) Error {
	c := e.clone()
	c.base = e
	c.msg = msg
	c.wrappedErrors = append(c.wrappedErrors, err...)
	return c
}

func (e *appError) Err(err ...error) Error {
	c := e.clone()
	c.base = e
	c.wrappedErrors = append(c.wrappedErrors, err...)
	return c
}

func (e *appError) Is(target error) bool {
	for b := e; b != nil; b = b.base {
		if t, ok := target.(*appError); ok && b == t {
			return true
		}
	}
	for _, err := range e.wrappedErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (e *appError) SetExpandError(expand bool) Error {
	c := e.clone()
	c.base = e
	c.expandError = expand
	return c
}

func (e *appError) SetStatusCode(code int) Error {
	c := e.clone()
	c.base = e
	c.statuscode = code
	return c
}

func (e *appError) StatusCode() int {
	return e.statuscode
}

func New(msg string) Error {
	return &appError{
		msg: msg,
	}
}
