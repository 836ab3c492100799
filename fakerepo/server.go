// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package fakerepo

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Handler creates an HTTP handler serving the repository's REST API
// under the URL path base, for instance "/fedora".  For more control
// over this setup, create a mux.Router and call PopulateRouter
// instead.
func (r *Repository) Handler(base string) http.Handler {
	router := mux.NewRouter()
	base = strings.TrimRight(base, "/")
	if base == "" {
		r.PopulateRouter(router)
	} else {
		r.PopulateRouter(router.PathPrefix(base).Subrouter())
	}
	return router
}

// PopulateRouter adds the repository's URL paths to an existing
// router.
func (r *Repository) PopulateRouter(router *mux.Router) {
	router.Path("/objects/application.wadl").Name("description").Handler(&resourceHandler{
		Repository: r,
		Get:        r.serveDescription,
	})
	router.Path("/objects/nextPID").Name("nextPID").Handler(&resourceHandler{
		Repository: r,
		Post:       r.serveNextPID,
	})
	router.Path("/objects").Name("objects").Handler(&resourceHandler{
		Repository: r,
		Get:        r.serveSearch,
	})
	router.Path("/objects/{pid}").Name("object").Handler(&resourceHandler{
		Repository: r,
		Get:        r.serveObjectProfile,
		Post:       r.serveCreateObject,
		Put:        r.serveUpdateObject,
		Delete:     r.serveDeleteObject,
	})
	router.Path("/objects/{pid}/datastreams").Name("datastreams").Handler(&resourceHandler{
		Repository: r,
		Get:        r.serveListDatastreams,
	})
	router.Path("/objects/{pid}/datastreams/{dsID}").Name("datastream").Handler(&resourceHandler{
		Repository: r,
		Get:        r.serveDatastreamProfile,
		Post:       r.serveAddDatastream,
		Put:        r.serveModifyDatastream,
		Delete:     r.serveDeleteDatastream,
	})
	router.Path("/objects/{pid}/datastreams/{dsID}/content").Name("content").Handler(&resourceHandler{
		Repository: r,
		Get:        r.serveDatastreamContent,
	})
	router.Path("/objects/{pid}/methods").Name("methods").Handler(&resourceHandler{
		Repository: r,
		Get:        r.serveObjectMethods,
	})
	router.Path("/objects/{pid}/methods/{sDef}/{method}").Name("invoke").Handler(&resourceHandler{
		Repository: r,
		Get:        r.serveInvoke,
	})
	router.Path("/risearch").Name("risearch").Handler(&resourceHandler{
		Repository: r,
		Get:        r.serveRISearch,
		Post:       r.serveRISearch,
	})
}

// context holds the information extracted from one request.
type context struct {
	PID    string
	DSID   string
	SDef   string
	Method string
	Query  url.Values
	Body   []byte
}

// rawResponse is returned from handler functions that produce a body
// that is not XML.
type rawResponse struct {
	ContentType string
	Body        []byte
}

// responseCreated is returned from handler functions that want to
// indicate that a new resource was created.
type responseCreated struct {
	// Body is sent as the body of the response.
	Body interface{}
}

type handlerFunc func(*context) (interface{}, error)

type resourceHandler struct {
	Repository *Repository
	Get        handlerFunc
	Put        handlerFunc
	Post       handlerFunc
	Delete     handlerFunc
}

func (h *resourceHandler) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	var (
		ctx *context
		out interface{}
		err error
	)

	// Recover from panics by sending an HTTP error.
	defer func() {
		if recovered := recover(); recovered != nil {
			logrus.WithFields(logrus.Fields{
				"url":   req.URL.String(),
				"panic": recovered,
			}).Error("Panic serving request")
			writeError(resp, fmt.Errorf("%v", recovered))
		}
	}()

	err = h.Repository.checkRequest(req)
	if err == nil {
		ctx, err = newContext(req)
	}
	if err == nil {
		err = errMethodNotAllowed{Method: req.Method}
		var handler handlerFunc
		switch req.Method {
		case "GET", "HEAD":
			handler = h.Get
		case "PUT":
			handler = h.Put
		case "POST":
			handler = h.Post
		case "DELETE":
			handler = h.Delete
		}
		if handler != nil {
			out, err = handler(ctx)
		}
	}
	if err != nil {
		writeError(resp, err)
		return
	}

	status := http.StatusOK
	if created, isCreated := out.(responseCreated); isCreated {
		status = http.StatusCreated
		out = created.Body
	}
	switch body := out.(type) {
	case nil:
		if status == http.StatusOK {
			status = http.StatusNoContent
		}
		resp.WriteHeader(status)
	case rawResponse:
		resp.Header().Set("Content-Type", body.ContentType)
		resp.WriteHeader(status)
		if req.Method != "HEAD" {
			_, _ = resp.Write(body.Body)
		}
	default:
		var buf bytes.Buffer
		buf.WriteString(xml.Header)
		if err := xml.NewEncoder(&buf).Encode(out); err != nil {
			writeError(resp, err)
			return
		}
		resp.Header().Set("Content-Type", "text/xml; charset=utf-8")
		resp.WriteHeader(status)
		if req.Method != "HEAD" {
			_, _ = resp.Write(buf.Bytes())
		}
	}
}

func writeError(resp http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var errS errorStatus
	if errors.As(err, &errS) {
		status = errS.HTTPStatus()
	}
	resp.Header().Set("Content-Type", "text/plain; charset=utf-8")
	resp.WriteHeader(status)
	_, _ = io.WriteString(resp, err.Error()+"\n")
}

// newContext extracts URL parameters and the request body.  An empty
// upload sent as a multipart form is unwrapped to its "file" part.
func newContext(req *http.Request) (*context, error) {
	vars := mux.Vars(req)
	ctx := &context{
		PID:    vars["pid"],
		DSID:   vars["dsID"],
		SDef:   vars["sDef"],
		Method: vars["method"],
		Query:  req.URL.Query(),
	}
	if req.Body == nil {
		return ctx, nil
	}
	body, err := ioutil.ReadAll(req.Body)
	if err != nil {
		return nil, errBadRequest{Err: err}
	}
	ctx.Body = body

	mediaType, params, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		return ctx, nil
	}
	reader := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			return nil, errBadRequest{Err: errors.New("multipart form has no file part")}
		}
		if err != nil {
			return nil, errBadRequest{Err: err}
		}
		if part.FormName() == "file" {
			ctx.Body, err = ioutil.ReadAll(part)
			if err != nil {
				return nil, errBadRequest{Err: err}
			}
			return ctx, nil
		}
	}
}

func (r *Repository) serveDescription(ctx *context) (interface{}, error) {
	return rawResponse{ContentType: "application/vnd.sun.wadl+xml", Body: []byte(description)}, nil
}

func (r *Repository) serveNextPID(ctx *context) (interface{}, error) {
	n, err := parseLimit(ctx.Query.Get("numPIDs"), 1)
	if err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, errBadRequest{Err: fmt.Errorf("invalid numPIDs %d", n)}
	}
	return pidListXML{PIDs: r.NextPIDs(ctx.Query.Get("namespace"), n)}, nil
}

func (r *Repository) serveSearch(ctx *context) (interface{}, error) {
	maxResults, err := parseLimit(ctx.Query.Get("maxResults"), 25)
	if err != nil {
		return nil, err
	}
	var page SearchPage
	if token := ctx.Query.Get("sessionToken"); token != "" {
		page, err = r.ResumeSearch(token, maxResults)
	} else {
		var fields []string
		for _, name := range SearchFields {
			if ctx.Query.Get(name) == "true" {
				fields = append(fields, name)
			}
		}
		page, err = r.Search(ctx.Query.Get("query"), ctx.Query.Get("terms"), fields, maxResults)
	}
	if err != nil {
		return nil, err
	}
	return renderSearch(page), nil
}

func (r *Repository) serveObjectProfile(ctx *context) (interface{}, error) {
	profile, err := r.ObjectProfile(ctx.PID)
	if err != nil {
		return nil, err
	}
	return renderObjectProfile(ctx.PID, profile), nil
}

func (r *Repository) serveCreateObject(ctx *context) (interface{}, error) {
	pid, err := r.CreateObject(ctx.PID, ctx.Body, ctx.Query)
	if err != nil {
		return nil, err
	}
	return responseCreated{Body: rawResponse{ContentType: "text/plain", Body: []byte(pid)}}, nil
}

func (r *Repository) serveUpdateObject(ctx *context) (interface{}, error) {
	if err := r.UpdateObject(ctx.PID, ctx.Query); err != nil {
		return nil, err
	}
	profile, err := r.ObjectProfile(ctx.PID)
	if err != nil {
		return nil, err
	}
	return rawResponse{ContentType: "text/plain", Body: []byte(profile.LastModifiedDate)}, nil
}

func (r *Repository) serveDeleteObject(ctx *context) (interface{}, error) {
	return nil, r.DeleteObject(ctx.PID)
}

func (r *Repository) serveListDatastreams(ctx *context) (interface{}, error) {
	dsids, profiles, err := r.Datastreams(ctx.PID)
	if err != nil {
		return nil, err
	}
	return renderDatastreams(ctx.PID, dsids, profiles), nil
}

func (r *Repository) serveDatastreamProfile(ctx *context) (interface{}, error) {
	profile, err := r.DatastreamProfile(ctx.PID, ctx.DSID)
	if err != nil {
		return nil, err
	}
	return renderDatastreamProfile(ctx.PID, ctx.DSID, profile), nil
}

func (r *Repository) serveAddDatastream(ctx *context) (interface{}, error) {
	if err := r.AddDatastream(ctx.PID, ctx.DSID, ctx.Body, ctx.Query); err != nil {
		return nil, err
	}
	profile, err := r.serveDatastreamProfile(ctx)
	if err != nil {
		return nil, err
	}
	return responseCreated{Body: profile}, nil
}

func (r *Repository) serveModifyDatastream(ctx *context) (interface{}, error) {
	if err := r.ModifyDatastream(ctx.PID, ctx.DSID, ctx.Body, ctx.Query); err != nil {
		return nil, err
	}
	return r.serveDatastreamProfile(ctx)
}

func (r *Repository) serveDeleteDatastream(ctx *context) (interface{}, error) {
	return nil, r.DeleteDatastream(ctx.PID, ctx.DSID)
}

func (r *Repository) serveDatastreamContent(ctx *context) (interface{}, error) {
	mimeType, content, err := r.DatastreamContent(ctx.PID, ctx.DSID)
	if err != nil {
		return nil, err
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return rawResponse{ContentType: mimeType, Body: content}, nil
}

func (r *Repository) serveObjectMethods(ctx *context) (interface{}, error) {
	methods, err := r.ObjectMethods(ctx.PID)
	if err != nil {
		return nil, err
	}
	return renderMethods(ctx.PID, methods), nil
}

func (r *Repository) serveInvoke(ctx *context) (interface{}, error) {
	contentType, body, err := r.Invoke(ctx.PID, ctx.SDef, ctx.Method, ctx.Query)
	if err != nil {
		return nil, err
	}
	return rawResponse{ContentType: contentType, Body: body}, nil
}

// serveRISearch answers a resource index query.  Only tuple queries
// are supported, and the query text itself is not interpreted: the
// answer holds every RELS-EXT relation as bindings of s, p, and o.
func (r *Repository) serveRISearch(ctx *context) (interface{}, error) {
	if t := ctx.Query.Get("type"); t != "" && t != "tuples" {
		return nil, errBadRequest{Err: fmt.Errorf("unsupported query type %q", t)}
	}
	switch strings.ToLower(ctx.Query.Get("lang")) {
	case "sparql", "itql":
	default:
		return nil, errBadRequest{Err: fmt.Errorf("unsupported query language %q", ctx.Query.Get("lang"))}
	}
	if ctx.Query.Get("query") == "" {
		return nil, errBadRequest{Err: errors.New("no query given")}
	}
	limit, err := parseLimit(ctx.Query.Get("limit"), 0)
	if err != nil {
		return nil, err
	}
	bindings := r.Relations()
	if limit > 0 && len(bindings) > limit {
		bindings = bindings[:limit]
	}
	return renderBindings([]string{"s", "p", "o"}, bindings, ctx.Query.Get("dt") == "on"), nil
}
