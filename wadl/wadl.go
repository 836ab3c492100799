// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package wadl builds typed repository requests from the server's own
// WADL description of its REST API.
//
// Load fetches the description once and creates one Method per
// described operation.  A Method knows its HTTP verb, its URL
// template, and the names, types, and defaults of its query
// parameters.  Calling Method.Request with values for the URL
// template's placeholders produces a single-use Request; Submit
// validates the query parameters against the description and sends
// the request through the connection.
//
//     api, err := wadl.Load(conn)
//     req, err := api.Request("getObjectProfile", map[string]string{"pid": "demo:1"})
//     resp, err := req.Submit(nil, wadl.Params{"format": "xml"})
//     defer resp.Body.Close()
package wadl

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"sort"
	"strings"

	"github.com/diffeo/go-fedora/fedora"
	"github.com/hashicorp/go-multierror"
)

// DescriptionPath is where the server publishes its WADL document,
// relative to the repository base URL.
const DescriptionPath = "/objects/application.wadl"

// objectRoot is the path every method URL must start with.  Some
// server versions publish descriptions whose resource paths omit it.
const objectRoot = "/objects"

// Opener sends requests to a repository.  *connection.Connection is
// the usual implementation.
type Opener interface {
	// Open sends a request and returns its response, or an error
	// if the response was not successful.
	Open(path string, body []byte, header http.Header, method string) (*http.Response, error)

	// DefaultHeaders returns a new copy of the headers to send
	// with every request.
	DefaultHeaders() http.Header
}

// These types mirror the parts of a WADL document that matter here.
// Tags have no namespace so that they match in any namespace.

type application struct {
	XMLName   xml.Name       `xml:"application"`
	Resources []resourceList `xml:"resources"`
}

type resourceList struct {
	Base      string     `xml:"base,attr"`
	Resources []resource `xml:"resource"`
}

type resource struct {
	Path      string       `xml:"path,attr"`
	Methods   []methodDesc `xml:"method"`
	Resources []resource   `xml:"resource"`
}

type methodDesc struct {
	ID     string      `xml:"id,attr"`
	Name   string      `xml:"name,attr"`
	Params []paramDesc `xml:"request>param"`
}

type paramDesc struct {
	Name    string `xml:"name,attr"`
	Style   string `xml:"style,attr"`
	Type    string `xml:"type,attr"`
	Default string `xml:"default,attr"`
}

// API is the set of methods described by a repository server.  It
// does not change after it is loaded.
type API struct {
	conn    Opener
	methods map[string]*Method
}

// Load fetches the WADL description from the server and builds the
// API from it.  Any failure is returned as fedora.ErrLoad.
func Load(conn Opener) (*API, error) {
	resp, err := conn.Open(DescriptionPath, nil, conn.DefaultHeaders(), http.MethodGet)
	if err != nil {
		return nil, fedora.ErrLoad{Err: err}
	}
	data, err := ioutil.ReadAll(resp.Body)
	err = firstError(err, resp.Body.Close())
	if err != nil {
		return nil, fedora.ErrLoad{Err: err}
	}
	return New(conn, data)
}

// New builds an API from an already-fetched WADL document.  Requests
// created from it are sent through conn.
func New(conn Opener, document []byte) (*API, error) {
	var doc application
	if err := xml.Unmarshal(document, &doc); err != nil {
		return nil, fedora.ErrLoad{Err: err}
	}

	api := &API{
		conn:    conn,
		methods: make(map[string]*Method),
	}
	var result *multierror.Error
	for _, list := range doc.Resources {
		for _, r := range list.Resources {
			if err := api.walk(r, nil); err != nil {
				result = multierror.Append(result, err)
			}
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, fedora.ErrLoad{Err: err}
	}
	if len(api.methods) == 0 {
		return nil, fedora.ErrLoad{Err: errors.New("description has no methods")}
	}
	return api, nil
}

// walk adds the methods under r, whose ancestors have the given
// paths, root first.
func (api *API) walk(r resource, ancestors []string) error {
	var result *multierror.Error
	paths := append(append([]string(nil), ancestors...), r.Path)
	for _, desc := range r.Methods {
		if desc.ID == "" {
			// A reference to a method defined elsewhere
			continue
		}
		if _, dup := api.methods[desc.ID]; dup {
			result = multierror.Append(result, fmt.Errorf("method %q described twice", desc.ID))
			continue
		}
		method, err := newMethod(api, desc, resolvePath(paths))
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		api.methods[desc.ID] = method
	}
	for _, child := range r.Resources {
		if err := api.walk(child, paths); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// resolvePath joins resource paths into a single URL template path,
// collapsing repeated separators and making sure the path is under
// the object root.
func resolvePath(paths []string) string {
	joined := "/" + strings.Join(paths, "/")
	var b strings.Builder
	for i := 0; i < len(joined); i++ {
		if joined[i] == '/' && b.Len() > 0 && joined[i-1] == '/' {
			continue
		}
		b.WriteByte(joined[i])
	}
	path := b.String()
	if path != objectRoot && !strings.HasPrefix(path, objectRoot+"/") {
		path = objectRoot + path
	}
	return path
}

// Method looks up a method by its identifier.
func (api *API) Method(id string) (*Method, error) {
	method, present := api.methods[id]
	if !present {
		return nil, fedora.ErrNoSuchMethod{Name: id}
	}
	return method, nil
}

// Methods returns the identifiers of all known methods, sorted.
func (api *API) Methods() []string {
	result := make([]string, 0, len(api.methods))
	for id := range api.methods {
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}

// Request creates a new request for the method id, filling in the
// URL template from vars.
func (api *API) Request(id string, vars map[string]string) (*Request, error) {
	method, err := api.Method(id)
	if err != nil {
		return nil, err
	}
	return method.Request(vars)
}

// Opener returns the connection requests are sent through.
func (api *API) Opener() Opener {
	return api.conn
}

func firstError(e1, e2 error) error {
	if e1 != nil {
		return e1
	}
	return e2
}
