// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package client provides named operations on a Fedora Commons
// repository: creating and updating objects, managing datastreams,
// invoking dissemination methods, and searching.
//
// Every operation is built from the server's own API description
// (see package wadl), so parameters are checked against what the
// server declares before anything is sent.  Operations that return
// XML parse it into Go values; operations that return content hand
// back the *http.Response, and the caller must close its body.
package client

import (
	"bytes"
	"encoding/xml"
	"net/http"
	"net/url"
	"strings"

	"github.com/diffeo/go-fedora/fedora"
	"github.com/diffeo/go-fedora/wadl"
	"github.com/diffeo/go-fedora/xmlmap"
	"github.com/sirupsen/logrus"
)

// Client is a connection to a repository with its API description
// loaded.  It is not safe for concurrent use.
type Client struct {
	api    *wadl.API
	conn   wadl.Opener
	Logger logrus.FieldLogger
}

// New loads the API description through conn and creates a Client.
// conn is usually a *connection.Connection.
func New(conn wadl.Opener) (*Client, error) {
	api, err := wadl.Load(conn)
	if err != nil {
		return nil, err
	}
	return NewWithAPI(api), nil
}

// NewWithAPI creates a Client from an already-loaded API.
func NewWithAPI(api *wadl.API) *Client {
	return &Client{
		api:    api,
		conn:   api.Opener(),
		Logger: logrus.StandardLogger(),
	}
}

// API returns the API description this client uses.
func (c *Client) API() *wadl.API {
	return c.api
}

// submit builds and sends a request for the method id.
func (c *Client) submit(id string, vars map[string]string, body []byte, params wadl.Params, header http.Header) (*http.Response, error) {
	req, err := c.api.Request(id, vars)
	if err != nil {
		return nil, err
	}
	for name, values := range header {
		req.Header[name] = values
	}
	return req.Submit(body, params)
}

// discard closes the body of a response that carries nothing of
// interest.
func discard(resp *http.Response, err error) error {
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// readXML reads, closes, and parses an XML response body.
func readXML(method string, resp *http.Response, err error) (*xmlmap.Node, error) {
	if err != nil {
		return nil, err
	}
	data, err := readAll(resp)
	if err != nil {
		return nil, err
	}
	root, err := xmlmap.Parse(data)
	if err != nil {
		return nil, fedora.ErrBadResponse{Method: method, Err: err}
	}
	return root, nil
}

// copyParams returns a copy of params that can be changed freely.
func copyParams(params wadl.Params) wadl.Params {
	result := make(wadl.Params, len(params)+4)
	for k, v := range params {
		result[k] = v
	}
	return result
}

// GetNextPID reserves numPIDs new object identifiers in namespace.
// If namespace is empty, the server's default namespace is used.
func (c *Client) GetNextPID(namespace string, numPIDs int) ([]string, error) {
	params := wadl.Params{"numPIDs": numPIDs, "format": "xml"}
	if namespace != "" {
		params["namespace"] = namespace
	}
	resp, err := c.submit("getNextPID", nil, nil, params, nil)
	root, err := readXML("getNextPID", resp, err)
	if err != nil {
		return nil, err
	}
	var pids []string
	for _, pid := range root.Children("pid") {
		pids = append(pids, strings.TrimSpace(pid.Text))
	}
	return pids, nil
}

type foxmlProperty struct {
	Name  string `xml:"NAME,attr"`
	Value string `xml:"VALUE,attr"`
}

type foxmlObject struct {
	XMLName    xml.Name        `xml:"foxml:digitalObject"`
	Namespace  string          `xml:"xmlns:foxml,attr"`
	Version    string          `xml:"VERSION,attr"`
	PID        string          `xml:"PID,attr"`
	Properties []foxmlProperty `xml:"foxml:objectProperties>foxml:property"`
}

// foxml builds a minimal FOXML 1.1 ingest document.
func foxml(pid, label, state string) ([]byte, error) {
	return xml.Marshal(foxmlObject{
		Namespace: fedora.FOXMLNamespace,
		Version:   "1.1",
		PID:       pid,
		Properties: []foxmlProperty{
			{Name: fedora.ModelNamespace + "state", Value: fedora.StateNames[state]},
			{Name: fedora.ModelNamespace + "label", Value: label},
		},
	})
}

// CreateObject ingests a new, empty object.  state is one of "A",
// "I", or "D", and defaults to "A" if empty.  If pid is "new" the
// server picks an identifier.  Returns the PID of the new object.
func (c *Client) CreateObject(pid, label, state string) (string, error) {
	if state == "" {
		state = "A"
	}
	if _, ok := fedora.StateNames[state]; !ok {
		return "", fedora.ErrInvalidState{State: state}
	}
	body, err := foxml(pid, label, state)
	if err != nil {
		return "", err
	}
	header := http.Header{"Content-Type": {"text/xml; charset=utf-8"}}
	params := wadl.Params{"state": state, "label": label}
	resp, err := c.submit("createObject", map[string]string{"pid": pid}, body, params, header)
	if err != nil {
		return "", err
	}
	data, err := readAll(resp)
	if err != nil {
		return "", err
	}
	if created := strings.TrimSpace(string(data)); created != "" {
		pid = created
	}
	return pid, nil
}

// GetObjectProfile fetches the properties of an object.
func (c *Client) GetObjectProfile(pid string) (fedora.ObjectProfile, error) {
	var profile fedora.ObjectProfile
	vars := map[string]string{"pid": pid}
	params := wadl.Params{"format": "xml"}
	resp, err := c.submit("getObjectProfile", vars, nil, params, nil)
	root, err := readXML("getObjectProfile", resp, err)
	if err == nil {
		err = decodeProfile("getObjectProfile", root, objectProfileTags, &profile)
	}
	return profile, err
}

// UpdateObject changes object properties, such as "label" or
// "state", named in params.
func (c *Client) UpdateObject(pid string, body []byte, params wadl.Params) error {
	return discard(c.submit("updateObject", map[string]string{"pid": pid}, body, params, nil))
}

// DeleteObject purges an object from the repository.
func (c *Client) DeleteObject(pid string, params wadl.Params) error {
	return discard(c.submit("deleteObject", map[string]string{"pid": pid}, nil, params, nil))
}

// ListDatastreams returns the IDs of an object's datastreams.
func (c *Client) ListDatastreams(pid string) ([]string, error) {
	vars := map[string]string{"pid": pid}
	params := wadl.Params{"format": "xml"}
	resp, err := c.submit("listDatastreams", vars, nil, params, nil)
	root, err := readXML("listDatastreams", resp, err)
	if err != nil {
		return nil, err
	}
	dsids := []string{}
	for _, child := range root.Children("") {
		if dsid, ok := child.Attr("dsid"); ok {
			dsids = append(dsids, dsid)
		}
	}
	return dsids, nil
}

// dsRenames maps friendly datastream parameter names to the names
// the server uses.
var dsRenames = map[string]string{
	"label":    "dsLabel",
	"location": "dsLocation",
	"state":    "dsState",
}

// fixDatastreamParams returns a copy of params with friendly names
// replaced by server names.
func fixDatastreamParams(params wadl.Params) wadl.Params {
	result := make(wadl.Params, len(params))
	for name, value := range params {
		if renamed, ok := dsRenames[name]; ok {
			name = renamed
		}
		result[name] = value
	}
	return result
}

// AddDatastream adds a datastream to an object.
//
// An empty RELS-EXT datastream gets an empty RDF document as its
// content.  If params does not give a "mimeType", inline XML
// datastreams (controlGroup "X", the default) are "text/xml" and
// others are "application/binary".  "checksumType" defaults to
// "MD5".  The parameters "label", "location", and "state" may be
// used for "dsLabel", "dsLocation", and "dsState".
func (c *Client) AddDatastream(pid, dsid string, body []byte, params wadl.Params) error {
	params = copyParams(params)
	if dsid == "RELS-EXT" && len(body) == 0 {
		body = []byte(`<rdf:RDF xmlns:rdf="` + fedora.RDFNamespace + `"/>`)
		params["mimeType"] = "application/rdf+xml"
		params["formatURI"] = fedora.RelsExtFormatURI
	}
	if _, ok := params["mimeType"]; !ok {
		controlGroup, ok := params["controlGroup"]
		if !ok || controlGroup == fedora.ControlGroupInline {
			params["mimeType"] = "text/xml"
		} else {
			params["mimeType"] = "application/binary"
		}
	}
	if _, ok := params["checksumType"]; !ok {
		params["checksumType"] = "MD5"
	}
	params = fixDatastreamParams(params)

	header := http.Header{}
	if mimeType, ok := params["mimeType"].(string); ok {
		header.Set("Content-Type", mimeType)
	}
	vars := map[string]string{"pid": pid, "dsID": dsid}
	return discard(c.submit("addDatastream", vars, body, params, header))
}

// GetDatastreamProfile fetches the properties of one datastream.
func (c *Client) GetDatastreamProfile(pid, dsid string) (fedora.DatastreamProfile, error) {
	var profile fedora.DatastreamProfile
	vars := map[string]string{"pid": pid, "dsID": dsid}
	params := wadl.Params{"format": "xml"}
	resp, err := c.submit("getDatastreamProfile", vars, nil, params, nil)
	root, err := readXML("getDatastreamProfile", resp, err)
	if err == nil {
		err = decodeProfile("getDatastreamProfile", root, datastreamProfileTags, &profile)
	}
	return profile, err
}

// ModifyDatastream changes a datastream's content and properties.
// Parameter names are as for AddDatastream.
func (c *Client) ModifyDatastream(pid, dsid string, body []byte, params wadl.Params) error {
	vars := map[string]string{"pid": pid, "dsID": dsid}
	return discard(c.submit("modifyDatastream", vars, body, fixDatastreamParams(params), nil))
}

// GetDatastream fetches the content of a datastream.  The caller
// must close the response body.
func (c *Client) GetDatastream(pid, dsid string) (*http.Response, error) {
	vars := map[string]string{"pid": pid, "dsID": dsid}
	return c.submit("getDatastream", vars, nil, nil, nil)
}

// DeleteDatastream purges a datastream.
func (c *Client) DeleteDatastream(pid, dsid string, params wadl.Params) error {
	vars := map[string]string{"pid": pid, "dsID": dsid}
	return discard(c.submit("deleteDatastream", vars, nil, params, nil))
}

// GetAllObjectMethods lists the dissemination methods available on
// an object.
func (c *Client) GetAllObjectMethods(pid string, params wadl.Params) ([]fedora.ObjectMethod, error) {
	params = copyParams(params)
	params["format"] = "xml"
	vars := map[string]string{"pid": pid}
	resp, err := c.submit("getAllObjectMethods", vars, nil, params, nil)
	root, err := readXML("getAllObjectMethods", resp, err)
	if err != nil {
		return nil, err
	}
	var methods []fedora.ObjectMethod
	for _, sdef := range root.Children("") {
		sdefPID, _ := sdef.Attr("pid")
		for _, method := range sdef.Children("") {
			name, _ := method.Attr("name")
			methods = append(methods, fedora.ObjectMethod{SDef: sdefPID, Method: name})
		}
	}
	return methods, nil
}

// InvokeSDefMethodUsingGET runs a dissemination method.  The server
// does not describe method parameters, so params are sent without
// checking.  The caller must close the response body.
func (c *Client) InvokeSDefMethodUsingGET(pid, sdef, method string, params url.Values) (*http.Response, error) {
	vars := map[string]string{"pid": pid, "sDef": sdef, "method": method}
	req, err := c.api.Request("invokeSDefMethodUsingGET", vars)
	if err != nil {
		return nil, err
	}
	for name, values := range params {
		req.Undocumented[name] = append(req.Undocumented[name], values...)
	}
	return req.Submit(nil, nil)
}

// readAll reads and closes a response body.
func readAll(resp *http.Response) ([]byte, error) {
	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	err = firstError(err, resp.Body.Close())
	return buf.Bytes(), err
}

func firstError(e1, e2 error) error {
	if e1 != nil {
		return e1
	}
	return e2
}
