// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package fakerepo

import (
	"fmt"
	"net/http"
)

// errorStatus describes errors that correspond to specific HTTP
// status codes.  Errors that do not implement it are reported as 500
// Internal Server Error.
type errorStatus interface {
	// HTTPStatus returns the HTTP status code for this error.
	HTTPStatus() int
}

// errNotFound indicates that, due to the embedded error, the server
// should return 404 Not Found.
type errNotFound struct {
	Err error
}

func (e errNotFound) Error() string {
	return e.Err.Error()
}

func (e errNotFound) HTTPStatus() int {
	return http.StatusNotFound
}

// errBadRequest is returned when there is an error in the query
// parameters or the request body.
type errBadRequest struct {
	Err error
}

func (e errBadRequest) Error() string {
	return e.Err.Error()
}

func (e errBadRequest) HTTPStatus() int {
	return http.StatusBadRequest
}

// errUnauthorized is returned when authentication is required and
// the request's credentials are missing or wrong.
type errUnauthorized struct{}

func (e errUnauthorized) Error() string {
	return "Unauthorized"
}

func (e errUnauthorized) HTTPStatus() int {
	return http.StatusUnauthorized
}

// errObjectExists is returned when ingesting an object whose PID is
// already in use.  Like the real server, this is an internal error.
type errObjectExists struct {
	PID string
}

func (e errObjectExists) Error() string {
	return fmt.Sprintf("The PID %q already exists in the registry; the object can't be re-created.", e.PID)
}

// errStatus is an injected failure with an arbitrary status code.
type errStatus struct {
	Code int
}

func (e errStatus) Error() string {
	return fmt.Sprintf("injected failure: %s", http.StatusText(e.Code))
}

func (e errStatus) HTTPStatus() int {
	return e.Code
}

// errMethodNotAllowed flags an HTTP method a resource does not
// handle.
type errMethodNotAllowed struct {
	Method string
}

func (e errMethodNotAllowed) Error() string {
	return fmt.Sprintf("Method %v not allowed", e.Method)
}

func (e errMethodNotAllowed) HTTPStatus() int {
	return http.StatusMethodNotAllowed
}
