// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package client

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/diffeo/go-fedora/fedora"
	"github.com/diffeo/go-fedora/wadl"
	"github.com/sirupsen/logrus"
)

// SearchOptions changes how SearchObjects runs.
type SearchOptions struct {
	// Terms, if set, treats the query as a set of terms to be
	// found in any field, rather than a field query such as
	// "pid~demo:*".
	Terms bool

	// MaxResults is the number of results fetched per request.
	// If unset, defaults to 10.
	MaxResults int
}

func (opts *SearchOptions) setDefaults() {
	if opts.MaxResults == 0 {
		opts.MaxResults = 10
	}
}

// SearchIterator steps through the results of a search, fetching
// pages from the server as needed.
//
//     it := c.SearchObjects("pid~demo:*", []string{"pid", "title"}, client.SearchOptions{})
//     for it.Next() {
//         fmt.Println(it.Record()["pid"])
//     }
//     if err := it.Err(); err != nil {
//         ...
//     }
type SearchIterator struct {
	client *Client
	query  string
	fields []string
	opts   SearchOptions

	// token continues the search; it is empty before the first
	// page and after the last one.
	token   string
	started bool
	pending []fedora.SearchRecord
	record  fedora.SearchRecord
	err     error
	pages   int
}

// SearchObjects searches the repository.  Each result holds the
// named fields.  Nothing is sent until the first call to Next.
func (c *Client) SearchObjects(query string, fields []string, opts SearchOptions) *SearchIterator {
	opts.setDefaults()
	return &SearchIterator{
		client: c,
		query:  query,
		fields: append([]string(nil), fields...),
		opts:   opts,
	}
}

// Next advances to the next result, returning false when there are
// no more results or a request fails.
func (it *SearchIterator) Next() bool {
	for len(it.pending) == 0 {
		if it.err != nil || (it.started && it.token == "") {
			it.record = nil
			return false
		}
		it.err = it.fetch()
	}
	it.record = it.pending[0]
	it.pending = it.pending[1:]
	return true
}

// Record returns the current result.
func (it *SearchIterator) Record() fedora.SearchRecord {
	return it.record
}

// Err returns the error, if any, that stopped the iteration.
func (it *SearchIterator) Err() error {
	return it.err
}

// Pages returns the number of pages fetched so far.
func (it *SearchIterator) Pages() int {
	return it.pages
}

// fetch requests one page of results.
func (it *SearchIterator) fetch() error {
	req, err := it.client.api.Request("searchObjects", nil)
	if err != nil {
		return err
	}
	for _, field := range it.fields {
		req.Undocumented.Set(field, "true")
	}
	params := wadl.Params{
		"maxResults":   it.opts.MaxResults,
		"resultFormat": "xml",
	}
	if it.opts.Terms {
		params["terms"] = it.query
	} else {
		params["query"] = it.query
	}
	if it.token != "" {
		params["sessionToken"] = it.token
	}
	it.client.Logger.WithFields(logrus.Fields{
		"query": it.query,
		"page":  it.pages,
	}).Debug("Fetching search results")

	resp, err := req.Submit(nil, params)
	root, err := readXML("searchObjects", resp, err)
	it.started = true
	it.token = ""
	if err != nil {
		return err
	}
	it.pages++
	if token, ok := root.FindText("token"); ok {
		it.token = strings.TrimSpace(token)
	}
	for _, fields := range root.Find("objectFields") {
		record := make(fedora.SearchRecord)
		for _, field := range fields.Children("") {
			record[field.Local()] = append(record[field.Local()], field.Text)
		}
		it.pending = append(it.pending, record)
	}
	return nil
}

// TripleOptions changes how SearchTriples runs.
type TripleOptions struct {
	// Lang is the query language.  If unset, defaults to
	// "sparql".
	Lang string

	// Format is the result format requested from the server.
	// If unset, defaults to "Sparql", which is the only format
	// SearchTriples can parse.
	Format string

	// Limit caps the number of results.  If unset, defaults to
	// 100; if negative, no limit is sent.
	Limit int

	// Type is the kind of query.  If unset, defaults to
	// "tuples".
	Type string

	// DT controls whether literal datatypes are returned.  If
	// unset, defaults to "on".
	DT string

	// NoFlush skips flushing the server's pending index updates
	// before running the query.
	NoFlush bool
}

func (opts *TripleOptions) setDefaults() {
	if opts.Lang == "" {
		opts.Lang = "sparql"
	}
	if opts.Format == "" {
		opts.Format = "Sparql"
	}
	if opts.Limit == 0 {
		opts.Limit = 100
	}
	if opts.Type == "" {
		opts.Type = "tuples"
	}
	if opts.DT == "" {
		opts.DT = "on"
	}
}

// riSearchPath is the resource index query endpoint.  It is not part
// of the API description.
const riSearchPath = "/risearch"

// SearchTriples runs a query against the repository's resource index
// and returns the result rows.
func (c *Client) SearchTriples(query string, opts TripleOptions) ([]fedora.Binding, error) {
	opts.setDefaults()
	params := url.Values{
		"query":  {query},
		"lang":   {opts.Lang},
		"format": {opts.Format},
		"type":   {opts.Type},
		"dt":     {opts.DT},
		"flush":  {strconv.FormatBool(!opts.NoFlush)},
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	header := c.conn.DefaultHeaders()
	header.Set("Accept", "text/xml")
	header.Set("Content-Length", "0")
	resp, err := c.conn.Open(riSearchPath+"?"+params.Encode(), nil, header, http.MethodPost)
	root, err := readXML("risearch", resp, err)
	if err != nil {
		return nil, err
	}

	var result []fedora.Binding
	for _, row := range root.Find("result") {
		binding := make(fedora.Binding)
		for _, el := range row.Children("") {
			var value fedora.TripleValue
			if uri, ok := el.Attr("uri"); ok && uri != "" {
				value = fedora.URI(uri)
			} else {
				value = fedora.Literal(el.Text)
				if datatype, ok := el.Attr("datatype"); ok && datatype != "" {
					value.Datatype = datatype
				} else if lang, ok := el.Attr("lang"); ok {
					value.Lang = lang
				}
			}
			binding[el.Local()] = value
		}
		result = append(result, binding)
	}
	return result, nil
}
