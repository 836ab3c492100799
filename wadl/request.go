// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package wadl

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/diffeo/go-fedora/fedora"
)

// Params holds query parameter values for Request.Submit, keyed by
// parameter name.  Values must match the parameter's declared type.
type Params map[string]interface{}

// Request is a single call to a Method, with its URL template already
// filled in.  A Request can be submitted only once.
type Request struct {
	// URL is the request path, relative to the repository base
	// URL, without a query string.
	URL string

	// Header holds the headers to send.  It starts as a copy of
	// the connection's default headers; callers may add to it,
	// for instance to set Content-Type.
	Header http.Header

	// Undocumented holds extra query parameters that the server
	// accepts but does not describe.  These are sent as-is and
	// are not checked.
	Undocumented url.Values

	method    *Method
	submitted bool
}

// Method returns the method this request calls.
func (r *Request) Method() *Method {
	return r.method
}

// Query checks params against the method's parameter schema and
// builds the query string values, including defaults for
// parameters that were not supplied.
func (r *Request) Query(params Params) (url.Values, error) {
	query := make(url.Values)
	for name, param := range r.method.Params {
		if param.HasDefault {
			query.Set(name, param.Default)
		}
	}
	for name, value := range params {
		param, known := r.method.Params[name]
		if !known {
			return nil, fedora.ErrUnknownParameter{Method: r.method.ID, Param: name}
		}
		encoded, err := r.encode(param, value)
		if err != nil {
			return nil, err
		}
		query.Set(name, encoded)
	}
	for name, values := range r.Undocumented {
		query[name] = append(query[name], values...)
	}
	return query, nil
}

// encode converts value to its query string form, if it has the
// declared type of param.
func (r *Request) encode(param Param, value interface{}) (string, error) {
	switch param.Type {
	case Int:
		switch v := value.(type) {
		case int:
			return strconv.Itoa(v), nil
		case int32:
			return strconv.FormatInt(int64(v), 10), nil
		case int64:
			return strconv.FormatInt(v, 10), nil
		}
	case Bool:
		if v, ok := value.(bool); ok {
			return strconv.FormatBool(v), nil
		}
	case String:
		if v, ok := value.(string); ok {
			return v, nil
		}
	}
	return "", fedora.ErrTypeMismatch{
		Method:   r.method.ID,
		Param:    param.Name,
		Expected: param.Type.String(),
		Got:      fmt.Sprintf("%T", value),
	}
}

// Submit sends the request with the given body and query parameters.
// The caller must close the response body.
//
// Returns fedora.ErrUnknownParameter if params names a parameter the
// method does not declare, and fedora.ErrTypeMismatch if a value has
// the wrong type; in either case nothing is sent and the request may
// be submitted again.
func (r *Request) Submit(body []byte, params Params) (*http.Response, error) {
	if r.submitted {
		return nil, fedora.ErrRequestSubmitted
	}
	query, err := r.Query(params)
	if err != nil {
		return nil, err
	}
	target := r.URL
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	r.Header.Set("Content-Length", strconv.Itoa(len(body)))
	r.submitted = true
	return r.method.api.conn.Open(target, body, r.Header, r.method.Name)
}
