// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package wadl

import (
	"fmt"
	"strings"

	"github.com/diffeo/go-fedora/fedora"
	"github.com/jtacoma/uritemplates"
)

// Type is the declared type of a query parameter.
type Type int

const (
	// String parameters take Go string values.
	String Type = iota

	// Int parameters take Go int, int32, or int64 values.
	Int

	// Bool parameters take Go bool values, and are sent as
	// "true" or "false".
	Bool
)

func (t Type) String() string {
	switch t {
	case String:
		return "string"
	case Int:
		return "int"
	case Bool:
		return "bool"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// xsdTypes maps WADL (XML Schema) type names to parameter types.
// A parameter with no declared type is a string.
var xsdTypes = map[string]Type{
	"":           String,
	"xs:string":  String,
	"xs:int":     Int,
	"xs:integer": Int,
	"xs:long":    Int,
	"xs:boolean": Bool,
}

// Param describes one query parameter of a method.
type Param struct {
	Name string
	Type Type

	// Default is the value sent when the caller does not supply
	// one, if HasDefault is set.
	Default    string
	HasDefault bool
}

// Method describes one remote operation.
type Method struct {
	// ID is the method's identifier in the description, such as
	// "getObjectProfile".
	ID string

	// Name is the HTTP verb.
	Name string

	// Path is the URL template, relative to the repository base
	// URL, for instance "/objects/{pid}/datastreams".
	Path string

	// Params holds the query parameter schema, keyed by name.
	Params map[string]Param

	api          *API
	template     *uritemplates.UriTemplate
	placeholders []string
}

func newMethod(api *API, desc methodDesc, path string) (*Method, error) {
	template, err := uritemplates.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("method %q: %v", desc.ID, err)
	}
	method := &Method{
		ID:           desc.ID,
		Name:         strings.ToUpper(desc.Name),
		Path:         path,
		Params:       make(map[string]Param),
		api:          api,
		template:     template,
		placeholders: placeholders(path),
	}
	for _, p := range desc.Params {
		if p.Style != "" && p.Style != "query" {
			// template and header parameters are not part of
			// the query string
			continue
		}
		t, known := xsdTypes[p.Type]
		if !known {
			return nil, fmt.Errorf("method %q param %q: unknown type %q", desc.ID, p.Name, p.Type)
		}
		method.Params[p.Name] = Param{
			Name:       p.Name,
			Type:       t,
			Default:    p.Default,
			HasDefault: p.Default != "",
		}
	}
	return method, nil
}

// placeholders returns the names of the {name} placeholders in a URL
// template, in order.
func placeholders(path string) []string {
	var result []string
	for {
		start := strings.IndexByte(path, '{')
		if start < 0 {
			return result
		}
		end := strings.IndexByte(path[start:], '}')
		if end < 0 {
			return result
		}
		result = append(result, path[start+1:start+end])
		path = path[start+end+1:]
	}
}

// Request creates a new request for this method.  vars supplies a
// value for every placeholder in the URL template; values are
// percent-encoded as needed.
func (m *Method) Request(vars map[string]string) (*Request, error) {
	values := make(map[string]interface{}, len(vars))
	for _, name := range m.placeholders {
		value, present := vars[name]
		if !present {
			return nil, fedora.ErrMissingPathParameter{Method: m.ID, Param: name}
		}
		values[name] = value
	}
	expanded, err := m.template.Expand(values)
	if err != nil {
		return nil, err
	}
	return &Request{
		URL:          expanded,
		Header:       m.api.conn.DefaultHeaders(),
		Undocumented: make(map[string][]string),
		method:       m,
	}, nil
}
