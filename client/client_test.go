// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package client

import (
	"errors"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/diffeo/go-fedora/connection"
	"github.com/diffeo/go-fedora/fakerepo"
	"github.com/diffeo/go-fedora/fedora"
	"github.com/diffeo/go-fedora/wadl"
	"github.com/diffeo/go-fedora/xmlmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is an http.RoundTripper that remembers every request URL.
type recorder struct {
	Transport *http.Transport
	URLs      []*url.URL
}

func (r *recorder) RoundTrip(req *http.Request) (*http.Response, error) {
	u := *req.URL
	r.URLs = append(r.URLs, &u)
	return r.Transport.RoundTrip(req)
}

func (r *recorder) CloseIdleConnections() {
	r.Transport.CloseIdleConnections()
}

// Last returns the most recent request URL whose path ends with
// suffix.
func (r *recorder) Last(suffix string) *url.URL {
	for i := len(r.URLs) - 1; i >= 0; i-- {
		if strings.HasSuffix(r.URLs[i].Path, suffix) {
			return r.URLs[i]
		}
	}
	return nil
}

// fixture is a client talking to a private fake repository.
type fixture struct {
	Repo     *fakerepo.Repository
	Server   *httptest.Server
	Recorder *recorder
	Conn     *connection.Connection
	Client   *Client
}

func newFixture(t *testing.T, config connection.Config) *fixture {
	f := &fixture{
		Repo:     fakerepo.New(),
		Recorder: &recorder{Transport: &http.Transport{}},
	}
	f.Server = httptest.NewServer(f.Repo.Handler("/fedora"))
	config.URL = f.Server.URL + "/fedora"
	config.Transport = f.Recorder
	if config.ConflictDelay == 0 {
		config.ConflictDelay = time.Millisecond
	}
	var err error
	f.Conn, err = connection.New(config)
	require.NoError(t, err)
	f.Client, err = New(f.Conn)
	require.NoError(t, err)
	return f
}

func (f *fixture) Close() {
	f.Server.Close()
}

func (f *fixture) createObject(t *testing.T, pid, label string) {
	created, err := f.Client.CreateObject(pid, label, "")
	require.NoError(t, err)
	require.Equal(t, pid, created)
}

func TestGetNextPID(t *testing.T) {
	f := newFixture(t, connection.Config{})
	defer f.Close()

	pids, err := f.Client.GetNextPID("test", 3)
	if assert.NoError(t, err) {
		assert.Equal(t, []string{"test:1", "test:2", "test:3"}, pids)
	}

	u := f.Recorder.Last("/nextPID")
	if assert.NotNil(t, u) {
		assert.Equal(t, "test", u.Query().Get("namespace"))
		assert.Equal(t, "3", u.Query().Get("numPIDs"))
	}

	pids, err = f.Client.GetNextPID("", 1)
	if assert.NoError(t, err) {
		assert.Equal(t, []string{"changeme:1"}, pids)
	}
}

func TestCreateObject(t *testing.T) {
	f := newFixture(t, connection.Config{})
	defer f.Close()

	f.createObject(t, "demo:1", "Hello")
	profile, err := f.Client.GetObjectProfile("demo:1")
	if assert.NoError(t, err) {
		assert.Equal(t, "Hello", profile.Label)
		assert.Equal(t, "A", profile.State)
		assert.Equal(t, "", profile.OwnerID)
		assert.NotEmpty(t, profile.CreatedDate)
		assert.NotEmpty(t, profile.LastModifiedDate)
	}
	u := f.Recorder.Last("/demo:1")
	if assert.NotNil(t, u) {
		assert.Equal(t, "xml", u.Query().Get("format"))
	}
}

func TestCreateObjectNewPID(t *testing.T) {
	f := newFixture(t, connection.Config{})
	defer f.Close()

	pid, err := f.Client.CreateObject("new", "Whatever", "I")
	if assert.NoError(t, err) {
		assert.Equal(t, "changeme:1", pid)
	}
	profile, err := f.Client.GetObjectProfile(pid)
	if assert.NoError(t, err) {
		assert.Equal(t, "I", profile.State)
	}
}

func TestCreateObjectErrors(t *testing.T) {
	f := newFixture(t, connection.Config{})
	defer f.Close()

	_, err := f.Client.CreateObject("demo:1", "x", "Q")
	assert.Equal(t, fedora.ErrInvalidState{State: "Q"}, err)

	f.createObject(t, "demo:1", "x")
	_, err = f.Client.CreateObject("demo:1", "x", "A")
	var httpErr *fedora.ErrorHTTP
	if assert.True(t, errors.As(err, &httpErr), "got %v", err) {
		assert.Equal(t, http.StatusInternalServerError, httpErr.Code)
		assert.Contains(t, httpErr.Body, "demo:1")
	}
}

func TestFOXML(t *testing.T) {
	body, err := foxml("demo:1", "A <label>", "D")
	require.NoError(t, err)
	root, err := xmlmap.Parse(body)
	require.NoError(t, err)
	assert.Equal(t, fedora.FOXMLNamespace, root.XMLName.Space)
	assert.Equal(t, "digitalObject", root.Local())
	pid, _ := root.Attr("PID")
	assert.Equal(t, "demo:1", pid)
	version, _ := root.Attr("VERSION")
	assert.Equal(t, "1.1", version)

	props := map[string]string{}
	for _, prop := range root.Find("property") {
		name, _ := prop.Attr("NAME")
		value, _ := prop.Attr("VALUE")
		props[name] = value
	}
	assert.Equal(t, map[string]string{
		fedora.ModelNamespace + "state": "Deleted",
		fedora.ModelNamespace + "label": "A <label>",
	}, props)
}

func TestUpdateAndDeleteObject(t *testing.T) {
	f := newFixture(t, connection.Config{})
	defer f.Close()
	f.createObject(t, "demo:1", "Before")

	err := f.Client.UpdateObject("demo:1", nil, wadl.Params{
		"label":      "After",
		"ownerId":    "me",
		"logMessage": "relabel",
	})
	require.NoError(t, err)
	profile, err := f.Client.GetObjectProfile("demo:1")
	if assert.NoError(t, err) {
		assert.Equal(t, "After", profile.Label)
		assert.Equal(t, "me", profile.OwnerID)
	}

	err = f.Client.UpdateObject("demo:1", nil, wadl.Params{"colour": "blue"})
	assert.Equal(t, fedora.ErrUnknownParameter{Method: "updateObject", Param: "colour"}, err)

	require.NoError(t, f.Client.DeleteObject("demo:1", wadl.Params{"logMessage": "bye"}))
	_, err = f.Client.GetObjectProfile("demo:1")
	assert.True(t, fedora.IsNotFound(err), "got %v", err)
}

func TestDatastreams(t *testing.T) {
	f := newFixture(t, connection.Config{})
	defer f.Close()
	f.createObject(t, "demo:1", "Hello")

	dsids, err := f.Client.ListDatastreams("demo:1")
	if assert.NoError(t, err) {
		assert.Equal(t, []string{"DC"}, dsids)
	}

	err = f.Client.AddDatastream("demo:1", "TEXT", []byte("hello"), wadl.Params{
		"controlGroup": "M",
		"label":        "Greeting",
		"mimeType":     "text/plain",
	})
	require.NoError(t, err)
	u := f.Recorder.Last("/TEXT")
	if assert.NotNil(t, u) {
		assert.Equal(t, "Greeting", u.Query().Get("dsLabel"))
		assert.Equal(t, "MD5", u.Query().Get("checksumType"))
		_, hasLabel := u.Query()["label"]
		assert.False(t, hasLabel)
	}

	dsids, err = f.Client.ListDatastreams("demo:1")
	if assert.NoError(t, err) {
		assert.Equal(t, []string{"DC", "TEXT"}, dsids)
	}

	profile, err := f.Client.GetDatastreamProfile("demo:1", "TEXT")
	if assert.NoError(t, err) {
		assert.Equal(t, "Greeting", profile.Label)
		assert.Equal(t, "text/plain", profile.MimeType)
		assert.Equal(t, "M", profile.ControlGroup)
		assert.Equal(t, int64(5), profile.Size)
		assert.True(t, profile.Versionable)
		assert.Equal(t, "MD5", profile.ChecksumType)
		assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", profile.Checksum)
		assert.Equal(t, "TEXT.0", profile.VersionID)
		assert.Equal(t, "A", profile.State)
	}

	resp, err := f.Client.GetDatastream("demo:1", "TEXT")
	if assert.NoError(t, err) {
		content, err := ioutil.ReadAll(resp.Body)
		assert.NoError(t, err)
		assert.NoError(t, resp.Body.Close())
		assert.Equal(t, "hello", string(content))
		assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))
	}

	require.NoError(t, f.Client.DeleteDatastream("demo:1", "TEXT", nil))
	dsids, err = f.Client.ListDatastreams("demo:1")
	if assert.NoError(t, err) {
		assert.Equal(t, []string{"DC"}, dsids)
	}
	_, err = f.Client.GetDatastreamProfile("demo:1", "TEXT")
	assert.True(t, fedora.IsNotFound(err), "got %v", err)
}

func TestAddDatastreamDefaults(t *testing.T) {
	f := newFixture(t, connection.Config{})
	defer f.Close()
	f.createObject(t, "demo:1", "Hello")

	require.NoError(t, f.Client.AddDatastream("demo:1", "RELS-EXT", nil, nil))
	profile, err := f.Client.GetDatastreamProfile("demo:1", "RELS-EXT")
	if assert.NoError(t, err) {
		assert.Equal(t, "application/rdf+xml", profile.MimeType)
		assert.Equal(t, fedora.RelsExtFormatURI, profile.FormatURI)
		assert.Equal(t, "X", profile.ControlGroup)
	}
	resp, err := f.Client.GetDatastream("demo:1", "RELS-EXT")
	require.NoError(t, err)
	content, err := readAll(resp)
	require.NoError(t, err)
	rels, err := xmlmap.ParseRDF(content)
	if assert.NoError(t, err) {
		assert.Empty(t, rels)
	}

	// An empty body goes out as a placeholder upload form
	require.NoError(t, f.Client.AddDatastream("demo:1", "XML", nil, nil))
	profile, err = f.Client.GetDatastreamProfile("demo:1", "XML")
	if assert.NoError(t, err) {
		assert.Equal(t, "text/xml", profile.MimeType)
		assert.Equal(t, int64(0), profile.Size)
	}

	params := wadl.Params{"controlGroup": "M"}
	require.NoError(t, f.Client.AddDatastream("demo:1", "BIN", []byte{0, 1, 2}, params))
	profile, err = f.Client.GetDatastreamProfile("demo:1", "BIN")
	if assert.NoError(t, err) {
		assert.Equal(t, "application/binary", profile.MimeType)
		assert.Equal(t, int64(3), profile.Size)
	}
	assert.Equal(t, wadl.Params{"controlGroup": "M"}, params, "caller's params changed")
}

func TestModifyDatastream(t *testing.T) {
	f := newFixture(t, connection.Config{})
	defer f.Close()
	f.createObject(t, "demo:1", "Hello")
	require.NoError(t, f.Client.AddDatastream("demo:1", "TEXT", []byte("hello"), wadl.Params{
		"controlGroup": "M",
		"mimeType":     "text/plain",
	}))

	err := f.Client.ModifyDatastream("demo:1", "TEXT", []byte("goodbye"), wadl.Params{
		"label": "Farewell",
		"state": "I",
	})
	require.NoError(t, err)
	profile, err := f.Client.GetDatastreamProfile("demo:1", "TEXT")
	if assert.NoError(t, err) {
		assert.Equal(t, "Farewell", profile.Label)
		assert.Equal(t, "I", profile.State)
		assert.Equal(t, int64(7), profile.Size)
		assert.Equal(t, "TEXT.1", profile.VersionID)
	}

	err = f.Client.ModifyDatastream("demo:1", "TEXT", nil, wadl.Params{
		"versionable":   false,
		"ignoreContent": true,
	})
	require.NoError(t, err)
	u := f.Recorder.Last("/TEXT")
	if assert.NotNil(t, u) {
		assert.Equal(t, "false", u.Query().Get("versionable"))
		assert.Equal(t, "true", u.Query().Get("ignoreContent"))
	}
	profile, err = f.Client.GetDatastreamProfile("demo:1", "TEXT")
	if assert.NoError(t, err) {
		assert.False(t, profile.Versionable)
		assert.Equal(t, int64(7), profile.Size)
	}
}

func TestObjectMethods(t *testing.T) {
	f := newFixture(t, connection.Config{})
	defer f.Close()
	f.createObject(t, "demo:1", "Hello")

	methods, err := f.Client.GetAllObjectMethods("demo:1", nil)
	if assert.NoError(t, err) {
		assert.Equal(t, []fedora.ObjectMethod{
			{SDef: fakerepo.SystemService, Method: "viewDublinCore"},
			{SDef: fakerepo.SystemService, Method: "viewItemIndex"},
		}, methods)
	}

	resp, err := f.Client.InvokeSDefMethodUsingGET("demo:1", fakerepo.SystemService, "viewItemIndex",
		url.Values{"extra": {"yes"}})
	require.NoError(t, err)
	content, err := readAll(resp)
	if assert.NoError(t, err) {
		assert.Equal(t, "DC\n", string(content))
	}
	u := f.Recorder.Last("/viewItemIndex")
	if assert.NotNil(t, u) {
		assert.Equal(t, "yes", u.Query().Get("extra"))
		assert.Equal(t, "/fedora/objects/demo:1/methods/fedora-system:3/viewItemIndex", u.Path)
	}

	_, err = f.Client.InvokeSDefMethodUsingGET("demo:1", fakerepo.SystemService, "frobnicate", nil)
	assert.True(t, fedora.IsNotFound(err), "got %v", err)
}

func TestSearchPagination(t *testing.T) {
	f := newFixture(t, connection.Config{})
	defer f.Close()
	f.createObject(t, "demo:1", "One")
	f.createObject(t, "demo:2", "Two")
	f.createObject(t, "demo:3", "Three")
	f.createObject(t, "other:1", "Other")

	it := f.Client.SearchObjects("pid~demo:*", []string{"pid", "label"}, SearchOptions{MaxResults: 2})
	var records []fedora.SearchRecord
	for it.Next() {
		records = append(records, it.Record())
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []fedora.SearchRecord{
		{"pid": {"demo:1"}, "label": {"One"}},
		{"pid": {"demo:2"}, "label": {"Two"}},
		{"pid": {"demo:3"}, "label": {"Three"}},
	}, records)
	assert.Equal(t, 2, it.Pages())
	assert.False(t, it.Next(), "iteration should stay finished")

	var searches []url.Values
	for _, u := range f.Recorder.URLs {
		if u.Path == "/fedora/objects" {
			searches = append(searches, u.Query())
		}
	}
	if assert.Len(t, searches, 2) {
		assert.Equal(t, "", searches[0].Get("sessionToken"))
		assert.NotEqual(t, "", searches[1].Get("sessionToken"))
		for _, query := range searches {
			assert.Equal(t, "pid~demo:*", query.Get("query"))
			assert.Equal(t, "true", query.Get("pid"))
			assert.Equal(t, "true", query.Get("label"))
			assert.Equal(t, "2", query.Get("maxResults"))
			assert.Equal(t, "xml", query.Get("resultFormat"))
		}
	}
}

func TestSearchTerms(t *testing.T) {
	f := newFixture(t, connection.Config{})
	defer f.Close()
	f.createObject(t, "demo:1", "Hello world")
	f.createObject(t, "demo:2", "Goodbye")

	it := f.Client.SearchObjects("world", []string{"pid", "title"}, SearchOptions{Terms: true})
	require.True(t, it.Next(), "error %v", it.Err())
	assert.Equal(t, fedora.SearchRecord{
		"pid":   {"demo:1"},
		"title": {"Hello world"},
	}, it.Record())
	assert.False(t, it.Next())
	assert.NoError(t, it.Err())
	assert.Equal(t, 1, it.Pages())

	u := f.Recorder.Last("/objects")
	if assert.NotNil(t, u) {
		assert.Equal(t, "world", u.Query().Get("terms"))
		assert.Equal(t, "10", u.Query().Get("maxResults"))
		_, hasQuery := u.Query()["query"]
		assert.False(t, hasQuery)
	}
}

func TestSearchNoResults(t *testing.T) {
	f := newFixture(t, connection.Config{})
	defer f.Close()

	it := f.Client.SearchObjects("pid=nothing:1", []string{"pid"}, SearchOptions{})
	assert.False(t, it.Next())
	assert.NoError(t, it.Err())
	assert.Nil(t, it.Record())
	assert.Equal(t, 1, it.Pages())
}

func TestSearchError(t *testing.T) {
	f := newFixture(t, connection.Config{})
	defer f.Close()

	it := f.Client.SearchObjects("not a query", []string{"pid"}, SearchOptions{})
	assert.False(t, it.Next())
	var httpErr *fedora.ErrorHTTP
	if assert.True(t, errors.As(it.Err(), &httpErr), "got %v", it.Err()) {
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	}
}

func TestSearchTriples(t *testing.T) {
	f := newFixture(t, connection.Config{})
	defer f.Close()
	f.createObject(t, "demo:1", "Hello")

	rels := xmlmap.Relations{
		fedora.ModelNamespace + "hasModel": {fedora.URI("info:fedora/demo:CModel")},
		"http://example.com/ns#pages": {{
			Type:     fedora.TypeLiteral,
			Value:    "12",
			Datatype: "http://www.w3.org/2001/XMLSchema#int",
		}},
		"http://example.com/ns#title": {{Type: fedora.TypeLiteral, Value: "Bonjour", Lang: "fr"}},
	}
	content, err := xmlmap.FormatRDF("demo:1", rels)
	require.NoError(t, err)
	require.NoError(t, f.Client.AddDatastream("demo:1", "RELS-EXT", content, wadl.Params{
		"mimeType":  "application/rdf+xml",
		"formatURI": fedora.RelsExtFormatURI,
	}))

	bindings, err := f.Client.SearchTriples("select ?s ?p ?o where { ?s ?p ?o }", TripleOptions{})
	require.NoError(t, err)
	subject := fedora.URI("info:fedora/demo:1")
	assert.Equal(t, []fedora.Binding{
		{"s": subject, "p": fedora.URI("http://example.com/ns#pages"), "o": rels["http://example.com/ns#pages"][0]},
		{"s": subject, "p": fedora.URI("http://example.com/ns#title"), "o": rels["http://example.com/ns#title"][0]},
		{"s": subject, "p": fedora.URI(fedora.ModelNamespace + "hasModel"), "o": fedora.URI("info:fedora/demo:CModel")},
	}, bindings)

	u := f.Recorder.Last("/risearch")
	if assert.NotNil(t, u) {
		assert.Equal(t, url.Values{
			"query":  {"select ?s ?p ?o where { ?s ?p ?o }"},
			"lang":   {"sparql"},
			"format": {"Sparql"},
			"limit":  {"100"},
			"type":   {"tuples"},
			"dt":     {"on"},
			"flush":  {"true"},
		}, u.Query())
	}

	bindings, err = f.Client.SearchTriples("select ?s ?p ?o where { ?s ?p ?o }", TripleOptions{
		Limit:   1,
		NoFlush: true,
	})
	if assert.NoError(t, err) {
		assert.Len(t, bindings, 1)
	}
	u = f.Recorder.Last("/risearch")
	if assert.NotNil(t, u) {
		assert.Equal(t, "false", u.Query().Get("flush"))
		assert.Equal(t, "1", u.Query().Get("limit"))
	}
}

func TestConflictRetried(t *testing.T) {
	f := newFixture(t, connection.Config{Persistent: true})
	defer f.Close()
	f.createObject(t, "demo:1", "Hello")

	f.Repo.FailNext(http.StatusConflict, 1)
	profile, err := f.Client.GetObjectProfile("demo:1")
	if assert.NoError(t, err) {
		assert.Equal(t, "Hello", profile.Label)
	}
	assert.Equal(t, 1, f.Conn.Reconnects())
	assert.Equal(t, connection.Idle, f.Conn.State())

	f.Repo.FailNext(http.StatusConflict, 3)
	_, err = f.Client.GetObjectProfile("demo:1")
	var httpErr *fedora.ErrorHTTP
	if assert.True(t, errors.As(err, &httpErr), "got %v", err) {
		assert.Equal(t, http.StatusConflict, httpErr.Code)
	}
}

func TestAuthentication(t *testing.T) {
	repo := fakerepo.New()
	repo.RequireAuth("fedoraAdmin", "secret")
	server := httptest.NewServer(repo.Handler("/fedora"))
	defer server.Close()

	conn, err := connection.New(connection.Config{URL: server.URL + "/fedora"})
	require.NoError(t, err)
	_, err = New(conn)
	assert.IsType(t, fedora.ErrLoad{}, err)
	var httpErr *fedora.ErrorHTTP
	if assert.True(t, errors.As(err, &httpErr), "got %v", err) {
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	}

	conn, err = connection.New(connection.Config{
		URL:      server.URL + "/fedora",
		Username: "fedoraAdmin",
		Password: "secret",
	})
	require.NoError(t, err)
	c, err := New(conn)
	require.NoError(t, err)
	pid, err := c.CreateObject("demo:1", "Secret", "A")
	if assert.NoError(t, err) {
		assert.Equal(t, "demo:1", pid)
	}
	bindings, err := c.SearchTriples("select * where { ?s ?p ?o }", TripleOptions{})
	if assert.NoError(t, err) {
		assert.Empty(t, bindings)
	}
}

func TestDecodeProfile(t *testing.T) {
	root, err := xmlmap.Parse([]byte(`<datastreamProfile xmlns="http://www.fedora.info/definitions/1/0/management/">
  <dsLabel> Greeting </dsLabel>
  <dsVerionId>TEXT.3</dsVerionId>
  <dsSize>1024</dsSize>
  <dsVersionable>false</dsVersionable>
  <dsFormatURI></dsFormatURI>
  <dsAltID>ignored</dsAltID>
</datastreamProfile>`))
	require.NoError(t, err)

	var profile fedora.DatastreamProfile
	err = decodeProfile("getDatastreamProfile", root, datastreamProfileTags, &profile)
	if assert.NoError(t, err) {
		assert.Equal(t, fedora.DatastreamProfile{
			Label:       "Greeting",
			VersionID:   "TEXT.3",
			Size:        1024,
			Versionable: false,
		}, profile)
	}

	root, err = xmlmap.Parse([]byte(`<datastreamProfile><dsSize>huge</dsSize></datastreamProfile>`))
	require.NoError(t, err)
	err = decodeProfile("getDatastreamProfile", root, datastreamProfileTags, &profile)
	assert.IsType(t, fedora.ErrBadResponse{}, err)
}
