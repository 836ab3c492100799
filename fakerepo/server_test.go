// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package fakerepo

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diffeo/go-fedora/fedora"
	"github.com/diffeo/go-fedora/xmlmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// do sends one request straight to the handler.
func do(handler http.Handler, method, target string, body []byte, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	for name, values := range header {
		req.Header[name] = values
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestServeDescription(t *testing.T) {
	handler := New().Handler("/fedora/")
	resp := do(handler, "GET", "/fedora/objects/application.wadl", nil, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/vnd.sun.wadl+xml", resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Body.String(), `id="getNextPID"`)

	resp = do(handler, "GET", "/objects/application.wadl", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestServeAuth(t *testing.T) {
	repo := New()
	repo.RequireAuth("fedoraAdmin", "secret")
	handler := repo.Handler("")

	resp := do(handler, "GET", "/objects/application.wadl", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	req := httptest.NewRequest("GET", "/objects/application.wadl", nil)
	req.SetBasicAuth("fedoraAdmin", "wrong")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest("GET", "/objects/application.wadl", nil)
	req.SetBasicAuth("fedoraAdmin", "secret")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServeFailNext(t *testing.T) {
	repo := New()
	handler := repo.Handler("")
	repo.FailNext(http.StatusServiceUnavailable, 2)

	assert.Equal(t, http.StatusServiceUnavailable, do(handler, "POST", "/objects/nextPID", nil, nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(handler, "POST", "/objects/nextPID", nil, nil).Code)
	resp := do(handler, "POST", "/objects/nextPID?namespace=x&numPIDs=2", nil, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	root, err := xmlmap.Parse(resp.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "pidList", root.Local())
	var pids []string
	for _, pid := range root.Children("pid") {
		pids = append(pids, pid.Text)
	}
	assert.Equal(t, []string{"x:1", "x:2"}, pids)
}

func TestServeMethodNotAllowed(t *testing.T) {
	handler := New().Handler("")
	resp := do(handler, "GET", "/objects/nextPID", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header().Get("Content-Type"))
}

func TestServeObjectLifecycle(t *testing.T) {
	repo := New()
	handler := repo.Handler("")

	resp := do(handler, "POST", "/objects/demo:1?label=Hi", nil, nil)
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, "demo:1", resp.Body.String())

	resp = do(handler, "GET", "/objects/demo%3A1?format=xml", nil, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	root, err := xmlmap.Parse(resp.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "objectProfile", root.Local())
	label, _ := root.FindText("objLabel")
	assert.Equal(t, "Hi", label)

	resp = do(handler, "DELETE", "/objects/demo:1", nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = do(handler, "GET", "/objects/demo:1", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "demo:1")
}

func TestServeMultipartBody(t *testing.T) {
	repo := New()
	handler := repo.Handler("")
	_, err := repo.CreateObject("demo:1", nil, nil)
	require.NoError(t, err)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "data.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("uploaded"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	header := http.Header{"Content-Type": {w.FormDataContentType()}}
	resp := do(handler, "POST", "/objects/demo:1/datastreams/DATA?controlGroup=M&mimeType=text/plain",
		body.Bytes(), header)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	root, err := xmlmap.Parse(resp.Body.Bytes())
	require.NoError(t, err)
	size, _ := root.FindText("dsSize")
	assert.Equal(t, "8", size)

	resp = do(handler, "GET", "/objects/demo:1/datastreams/DATA/content", nil, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "text/plain", resp.Header().Get("Content-Type"))
	assert.Equal(t, "uploaded", resp.Body.String())

	// A form without a file part is rejected
	body.Reset()
	w = multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("other", "value"))
	require.NoError(t, w.Close())
	header = http.Header{"Content-Type": {w.FormDataContentType()}}
	resp = do(handler, "PUT", "/objects/demo:1/datastreams/DATA", body.Bytes(), header)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestServeSearch(t *testing.T) {
	repo := New()
	handler := repo.Handler("")
	populate(t, repo, map[string]string{"demo:1": "One", "demo:2": "Two"})

	resp := do(handler, "GET", "/objects?query=pid~demo:*&pid=true&maxResults=1&resultFormat=xml", nil, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	root, err := xmlmap.Parse(resp.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, fedora.TypesNamespace, root.XMLName.Space)
	token, ok := root.FindText("token")
	require.True(t, ok)
	records := root.Find("objectFields")
	if assert.Len(t, records, 1) {
		pid, _ := records[0].FindText("pid")
		assert.Equal(t, "demo:1", pid)
		_, hasLabel := records[0].FindText("label")
		assert.False(t, hasLabel)
	}

	resp = do(handler, "GET", "/objects?sessionToken="+token+"&maxResults=1", nil, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	root, err = xmlmap.Parse(resp.Body.Bytes())
	require.NoError(t, err)
	_, ok = root.FindText("token")
	assert.False(t, ok)
	pid, _ := root.FindText("pid")
	assert.Equal(t, "demo:2", pid)
}

func TestServeRISearch(t *testing.T) {
	repo := New()
	handler := repo.Handler("")

	for _, target := range []string{
		"/risearch?lang=sparql&type=triples&query=x",
		"/risearch?lang=cypher&query=x",
		"/risearch?lang=sparql",
		"/risearch?lang=sparql&query=x&limit=ten",
	} {
		resp := do(handler, "POST", target, nil, nil)
		assert.Equal(t, http.StatusBadRequest, resp.Code, target)
	}

	resp := do(handler, "GET", "/risearch?lang=itql&query=x", nil, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	root, err := xmlmap.Parse(resp.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, fedora.SparqlResultNamespace, root.XMLName.Space)
	var variables []string
	for _, variable := range root.Find("variable") {
		name, _ := variable.Attr("name")
		variables = append(variables, name)
	}
	assert.Equal(t, []string{"s", "p", "o"}, variables)
	assert.Empty(t, root.Find("result"))
	assert.True(t, strings.HasPrefix(resp.Header().Get("Content-Type"), "text/xml"))
}
