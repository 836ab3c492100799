// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package fedora

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrRequestSubmitted is returned from Request.Submit() if the request
// has already been sent once.  Requests are single-use.
var ErrRequestSubmitted = errors.New("Request has already been submitted")

// ErrConnection is returned when a request could not be completed at
// the transport level, even after retrying.  Err holds the last
// transport error seen.
type ErrConnection struct {
	Err error
}

func (e ErrConnection) Error() string {
	return "Connection error: " + e.Err.Error()
}

// Unwrap returns the underlying transport error.
func (e ErrConnection) Unwrap() error {
	return e.Err
}

// ErrorHTTP is returned when the server answers with a non-success
// status code.
type ErrorHTTP struct {
	// Code is the HTTP status code.
	Code int

	// Reason is the status text.
	Reason string

	// Body holds the contents of the response body, presumed to
	// be text.
	Body string
}

func (e *ErrorHTTP) Error() string {
	head := e.Body
	if i := strings.IndexAny(head, "\r\n"); i >= 0 {
		head = head[:i]
	}
	return fmt.Sprintf("HTTP code=%d, Reason=%s, body=%s", e.Code, e.Reason, head)
}

// IsConflict returns true if this is a 409 Conflict error.
func (e *ErrorHTTP) IsConflict() bool {
	return e.Code == http.StatusConflict
}

// IsNotFound returns true if err is an ErrorHTTP with a 404 code.
func IsNotFound(err error) bool {
	var httpErr *ErrorHTTP
	return errors.As(err, &httpErr) && httpErr.Code == http.StatusNotFound
}

// ErrLoad is returned when the server's API description cannot be
// fetched or parsed.
type ErrLoad struct {
	Err error
}

func (e ErrLoad) Error() string {
	return "Could not load API description: " + e.Err.Error()
}

// Unwrap returns the underlying fetch or parse error.
func (e ErrLoad) Unwrap() error {
	return e.Err
}

// ErrUnknownParameter is returned from Request.Submit() when a
// parameter is not declared by the method.
type ErrUnknownParameter struct {
	Method string
	Param  string
}

func (e ErrUnknownParameter) Error() string {
	return fmt.Sprintf("Method %q has no param %q", e.Method, e.Param)
}

// ErrTypeMismatch is returned from Request.Submit() when a parameter
// value does not have the declared type.
type ErrTypeMismatch struct {
	Method   string
	Param    string
	Expected string
	Got      string
}

func (e ErrTypeMismatch) Error() string {
	return fmt.Sprintf("Expected %s for param %q on method %q, got %s instead",
		e.Expected, e.Param, e.Method, e.Got)
}

// ErrMissingPathParameter is returned when a method's URL template
// names a placeholder that was not given a value.
type ErrMissingPathParameter struct {
	Method string
	Param  string
}

func (e ErrMissingPathParameter) Error() string {
	return fmt.Sprintf("Method %q needs path parameter %q", e.Method, e.Param)
}

// ErrNoSuchMethod is returned when a named method cannot be found,
// either in the API description or in an object's method listing.
type ErrNoSuchMethod struct {
	Name string
}

func (e ErrNoSuchMethod) Error() string {
	return fmt.Sprintf("No such method: %s", e.Name)
}

// ErrBadResponse is returned when a server response cannot be parsed.
type ErrBadResponse struct {
	Method string
	Err    error
}

func (e ErrBadResponse) Error() string {
	return fmt.Sprintf("Could not parse %s response: %v", e.Method, e.Err)
}

// Unwrap returns the underlying parse error.
func (e ErrBadResponse) Unwrap() error {
	return e.Err
}

// ErrInvalidState is returned when an object state is not one of the
// single-letter codes in StateNames.
type ErrInvalidState struct {
	State string
}

func (e ErrInvalidState) Error() string {
	return fmt.Sprintf("Invalid object state %q", e.State)
}
