// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package fakerepo provides an in-process, in-memory imitation of a
// Fedora Commons repository server.  It serves a WADL description of
// its REST API and the subset of that API the client packages use:
// object and datastream CRUD, dissemination methods, field search
// with paging, and a very small resource index.
//
// There is no persistence.  The entire repository is behind a single
// mutex.  This is intended for testing the client packages, and for
// trying out command-line tools without a real server; it is tuned
// for correctness, not performance.
//
//     repo := fakerepo.New()
//     server := httptest.NewServer(repo.Handler("/fedora"))
//     defer server.Close()
package fakerepo

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-fedora/fedora"
	"github.com/diffeo/go-fedora/xmlmap"
)

// TimeFormat is the layout of timestamps in profiles.
const TimeFormat = "2006-01-02T15:04:05.000Z"

// DefaultNamespace is the PID namespace used when a caller does not
// name one.
const DefaultNamespace = "changeme"

// MethodFunc implements a dissemination method.  It is called
// without the repository lock held, and may call back into the
// repository.
type MethodFunc func(pid string, params url.Values) (contentType string, body []byte, err error)

type datastream struct {
	Profile fedora.DatastreamProfile
	Content []byte
	Version int
}

type object struct {
	PID         string
	Profile     fedora.ObjectProfile
	Datastreams map[string]*datastream
	// DSIDs holds the datastream IDs in creation order.
	DSIDs []string
}

// searchSession holds the remaining results of a paged search.
type searchSession struct {
	PIDs   []string
	Fields []string
	Cursor int
}

// failure is an injected error response.
type failure struct {
	Code      int
	Remaining int
}

// Repository is an in-memory repository.  It is safe for concurrent
// use.
type Repository struct {
	clock    clock.Clock
	lock     sync.Mutex
	objects  map[string]*object
	nextPID  map[string]int
	sessions map[string]*searchSession
	services map[string]map[string]MethodFunc
	failure  failure
	username string
	password string
}

// New creates a new empty repository using the system clock.
func New() *Repository {
	return NewWithClock(clock.New())
}

// NewWithClock creates a new empty repository with an explicit time
// source.
func NewWithClock(clk clock.Clock) *Repository {
	r := &Repository{
		clock:    clk,
		objects:  make(map[string]*object),
		nextPID:  make(map[string]int),
		sessions: make(map[string]*searchSession),
		services: make(map[string]map[string]MethodFunc),
	}
	r.AddService(SystemService, map[string]MethodFunc{
		"viewDublinCore": r.viewDublinCore,
		"viewItemIndex":  r.viewItemIndex,
	})
	return r
}

// RequireAuth makes the repository reject requests that do not carry
// HTTP basic authentication with the given credentials.
func (r *Repository) RequireAuth(username, password string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.username = username
	r.password = password
}

// FailNext makes the next n requests fail with the HTTP status code,
// before they are otherwise processed.
func (r *Repository) FailNext(code, n int) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.failure = failure{Code: code, Remaining: n}
}

// AddService adds a service definition offering the named methods on
// every object.
func (r *Repository) AddService(sdef string, methods map[string]MethodFunc) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.services[sdef] = methods
}

// ObjectCount returns the number of objects in the repository.
func (r *Repository) ObjectCount() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.objects)
}

// SystemService is the service definition every object has.
const SystemService = "fedora-system:3"

// The remainder of this file holds the repository operations behind
// the HTTP handlers.  Each one takes the lock itself.

func (r *Repository) now() string {
	return r.clock.Now().UTC().Format(TimeFormat)
}

// checkRequest applies authentication and injected failures.
func (r *Repository) checkRequest(req *http.Request) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.username != "" {
		username, password, ok := req.BasicAuth()
		if !ok || username != r.username || password != r.password {
			return errUnauthorized{}
		}
	}
	if r.failure.Remaining > 0 {
		r.failure.Remaining--
		return errStatus{Code: r.failure.Code}
	}
	return nil
}

func (r *Repository) allocatePIDs(namespace string, n int) []string {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	pids := make([]string, 0, n)
	for len(pids) < n {
		r.nextPID[namespace]++
		pid := namespace + ":" + strconv.Itoa(r.nextPID[namespace])
		if _, exists := r.objects[pid]; !exists {
			pids = append(pids, pid)
		}
	}
	return pids
}

// NextPIDs reserves n new PIDs in namespace.
func (r *Repository) NextPIDs(namespace string, n int) []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.allocatePIDs(namespace, n)
}

// stateCode converts a FOXML state name or single-letter code into
// its single-letter code.
func stateCode(state string) (string, error) {
	if state == "" {
		return "A", nil
	}
	if _, ok := fedora.StateNames[state]; ok {
		return state, nil
	}
	for code, name := range fedora.StateNames {
		if strings.EqualFold(name, state) {
			return code, nil
		}
	}
	return "", errBadRequest{Err: fmt.Errorf("invalid state %q", state)}
}

// foxmlProperties extracts the PID and object properties from a
// FOXML document.
func foxmlProperties(body []byte) (pid string, props map[string]string, err error) {
	props = make(map[string]string)
	if len(body) == 0 {
		return "", props, nil
	}
	root, err := xmlmap.Parse(body)
	if err != nil {
		return "", nil, errBadRequest{Err: err}
	}
	if root.Local() != "digitalObject" {
		return "", nil, errBadRequest{Err: fmt.Errorf("unexpected root element %q", root.Local())}
	}
	pid, _ = root.Attr("PID")
	for _, prop := range root.Find("property") {
		name, _ := prop.Attr("NAME")
		value, _ := prop.Attr("VALUE")
		if strings.HasPrefix(name, fedora.ModelNamespace) {
			props[strings.TrimPrefix(name, fedora.ModelNamespace)] = value
		}
	}
	return pid, props, nil
}

// CreateObject ingests a new object.  pid may be "new" or empty to
// allocate one.  The FOXML body, if any, supplies the PID and object
// properties; params override them.  Returns the object's PID.
func (r *Repository) CreateObject(pid string, body []byte, params url.Values) (string, error) {
	foxmlPID, props, err := foxmlProperties(body)
	if err != nil {
		return "", err
	}
	if pid == "" || pid == "new" {
		pid = foxmlPID
	}
	for _, name := range []string{"label", "state", "ownerId"} {
		if value := params.Get(name); value != "" {
			props[name] = value
		}
	}
	state, err := stateCode(props["state"])
	if err != nil {
		return "", err
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	if pid == "" || pid == "new" {
		pid = r.allocatePIDs(params.Get("namespace"), 1)[0]
	}
	if !strings.Contains(pid, ":") {
		return "", errBadRequest{Err: fmt.Errorf("malformed PID %q", pid)}
	}
	if _, exists := r.objects[pid]; exists {
		return "", errObjectExists{PID: pid}
	}
	now := r.now()
	obj := &object{
		PID: pid,
		Profile: fedora.ObjectProfile{
			Label:            props["label"],
			OwnerID:          props["ownerId"],
			CreatedDate:      now,
			LastModifiedDate: now,
			State:            state,
		},
		Datastreams: make(map[string]*datastream),
	}
	dc := xmlmap.DublinCore{"identifier": {pid}}
	if obj.Profile.Label != "" {
		dc["title"] = []string{obj.Profile.Label}
	}
	r.putDatastream(obj, "DC", xmlmap.FormatDC(dc), fedora.DatastreamProfile{
		Label:        "Dublin Core Record for this object",
		MimeType:     "text/xml",
		FormatURI:    "http://www.openarchives.org/OAI/2.0/oai_dc/",
		ControlGroup: fedora.ControlGroupInline,
		State:        "A",
		Versionable:  true,
		ChecksumType: "DISABLED",
		InfoType:     "",
	})
	r.objects[pid] = obj
	return pid, nil
}

// putDatastream stores a datastream, filling in the profile fields
// the repository manages.
func (r *Repository) putDatastream(obj *object, dsid string, content []byte, profile fedora.DatastreamProfile) {
	ds, exists := obj.Datastreams[dsid]
	if exists {
		ds.Version++
	} else {
		ds = &datastream{}
		obj.Datastreams[dsid] = ds
		obj.DSIDs = append(obj.DSIDs, dsid)
	}
	profile.VersionID = dsid + "." + strconv.Itoa(ds.Version)
	profile.CreatedDate = r.now()
	profile.Size = int64(len(content))
	if profile.ChecksumType == "" {
		profile.ChecksumType = "DISABLED"
	}
	profile.Checksum = checksum(profile.ChecksumType, content)
	if profile.ControlGroup == fedora.ControlGroupExternal || profile.ControlGroup == fedora.ControlGroupRedirect {
		profile.LocationType = "URL"
	} else {
		profile.Location = obj.PID + "+" + dsid + "+" + profile.VersionID
		profile.LocationType = "INTERNAL_ID"
	}
	ds.Profile = profile
	ds.Content = content
	obj.Profile.LastModifiedDate = profile.CreatedDate
}

// checksums holds the supported checksum algorithms.
var checksums = map[string]func() hash.Hash{
	"MD5":     md5.New,
	"SHA-1":   sha1.New,
	"SHA-256": sha256.New,
}

// checksum computes the hex digest of content, or "none" if
// checksums are disabled.
func checksum(checksumType string, content []byte) string {
	newHash, ok := checksums[checksumType]
	if !ok {
		return "none"
	}
	h := newHash()
	_, _ = h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

func (r *Repository) object(pid string) (*object, error) {
	obj, exists := r.objects[pid]
	if !exists {
		return nil, errNotFound{Err: fmt.Errorf("no such object %q", pid)}
	}
	return obj, nil
}

func (r *Repository) datastream(pid, dsid string) (*object, *datastream, error) {
	obj, err := r.object(pid)
	if err != nil {
		return nil, nil, err
	}
	ds, exists := obj.Datastreams[dsid]
	if !exists {
		return nil, nil, errNotFound{Err: fmt.Errorf("no datastream %q on object %q", dsid, pid)}
	}
	return obj, ds, nil
}

// ObjectProfile returns the profile of one object.
func (r *Repository) ObjectProfile(pid string) (fedora.ObjectProfile, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	obj, err := r.object(pid)
	if err != nil {
		return fedora.ObjectProfile{}, err
	}
	return obj.Profile, nil
}

// UpdateObject changes object properties named in params.
func (r *Repository) UpdateObject(pid string, params url.Values) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	obj, err := r.object(pid)
	if err != nil {
		return err
	}
	if _, present := params["state"]; present {
		state, err := stateCode(params.Get("state"))
		if err != nil {
			return err
		}
		obj.Profile.State = state
	}
	if _, present := params["label"]; present {
		obj.Profile.Label = params.Get("label")
	}
	if _, present := params["ownerId"]; present {
		obj.Profile.OwnerID = params.Get("ownerId")
	}
	obj.Profile.LastModifiedDate = r.now()
	return nil
}

// DeleteObject purges an object.
func (r *Repository) DeleteObject(pid string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, err := r.object(pid); err != nil {
		return err
	}
	delete(r.objects, pid)
	return nil
}

// Datastreams returns the profiles of an object's datastreams, keyed
// by datastream ID, and the IDs in creation order.
func (r *Repository) Datastreams(pid string) ([]string, map[string]fedora.DatastreamProfile, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	obj, err := r.object(pid)
	if err != nil {
		return nil, nil, err
	}
	profiles := make(map[string]fedora.DatastreamProfile, len(obj.Datastreams))
	for dsid, ds := range obj.Datastreams {
		profiles[dsid] = ds.Profile
	}
	return append([]string(nil), obj.DSIDs...), profiles, nil
}

// datastreamProfile builds a profile from datastream query
// parameters, starting from an existing profile.
func datastreamProfile(profile fedora.DatastreamProfile, params url.Values) (fedora.DatastreamProfile, error) {
	set := func(out *string, name string) {
		if _, present := params[name]; present {
			*out = params.Get(name)
		}
	}
	set(&profile.Label, "dsLabel")
	set(&profile.MimeType, "mimeType")
	set(&profile.FormatURI, "formatURI")
	set(&profile.Location, "dsLocation")
	set(&profile.ChecksumType, "checksumType")
	set(&profile.Checksum, "checksum")
	if t := profile.ChecksumType; t != "" && t != "DISABLED" {
		if _, ok := checksums[t]; !ok {
			return profile, errBadRequest{Err: fmt.Errorf("unsupported checksum type %q", t)}
		}
	}
	if _, present := params["dsState"]; present {
		state, err := stateCode(params.Get("dsState"))
		if err != nil {
			return profile, err
		}
		profile.State = state
	}
	if _, present := params["versionable"]; present {
		versionable, err := strconv.ParseBool(params.Get("versionable"))
		if err != nil {
			return profile, errBadRequest{Err: err}
		}
		profile.Versionable = versionable
	}
	return profile, nil
}

// AddDatastream adds a new datastream to an object.
func (r *Repository) AddDatastream(pid, dsid string, content []byte, params url.Values) error {
	profile := fedora.DatastreamProfile{
		ControlGroup: params.Get("controlGroup"),
		State:        "A",
		Versionable:  true,
	}
	if profile.ControlGroup == "" {
		profile.ControlGroup = fedora.ControlGroupInline
	}
	if len(profile.ControlGroup) != 1 || !strings.Contains("XMER", profile.ControlGroup) {
		return errBadRequest{Err: fmt.Errorf("invalid control group %q", profile.ControlGroup)}
	}
	profile, err := datastreamProfile(profile, params)
	if err != nil {
		return err
	}
	if profile.ControlGroup == fedora.ControlGroupInline && len(content) > 0 {
		if _, err := xmlmap.Parse(content); err != nil {
			return errBadRequest{Err: fmt.Errorf("inline datastream %q is not well-formed XML: %v", dsid, err)}
		}
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	obj, err := r.object(pid)
	if err != nil {
		return err
	}
	if _, exists := obj.Datastreams[dsid]; exists {
		return errBadRequest{Err: fmt.Errorf("datastream %q already exists on %q", dsid, pid)}
	}
	r.putDatastream(obj, dsid, content, profile)
	return nil
}

// DatastreamProfile returns the profile of one datastream.
func (r *Repository) DatastreamProfile(pid, dsid string) (fedora.DatastreamProfile, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	_, ds, err := r.datastream(pid, dsid)
	if err != nil {
		return fedora.DatastreamProfile{}, err
	}
	return ds.Profile, nil
}

// ModifyDatastream changes a datastream's properties and, unless
// ignoreContent is set or content is empty, its content.
func (r *Repository) ModifyDatastream(pid, dsid string, content []byte, params url.Values) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	obj, ds, err := r.datastream(pid, dsid)
	if err != nil {
		return err
	}
	profile, err := datastreamProfile(ds.Profile, params)
	if err != nil {
		return err
	}
	ignore, _ := strconv.ParseBool(params.Get("ignoreContent"))
	if ignore || len(content) == 0 {
		content = ds.Content
	} else if profile.ControlGroup == fedora.ControlGroupInline {
		if _, err := xmlmap.Parse(content); err != nil {
			return errBadRequest{Err: fmt.Errorf("inline datastream %q is not well-formed XML: %v", dsid, err)}
		}
	}
	r.putDatastream(obj, dsid, content, profile)
	return nil
}

// DatastreamContent returns a datastream's MIME type and content.
func (r *Repository) DatastreamContent(pid, dsid string) (string, []byte, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	_, ds, err := r.datastream(pid, dsid)
	if err != nil {
		return "", nil, err
	}
	return ds.Profile.MimeType, append([]byte(nil), ds.Content...), nil
}

// DeleteDatastream purges a datastream.
func (r *Repository) DeleteDatastream(pid, dsid string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	obj, _, err := r.datastream(pid, dsid)
	if err != nil {
		return err
	}
	delete(obj.Datastreams, dsid)
	for i, id := range obj.DSIDs {
		if id == dsid {
			obj.DSIDs = append(obj.DSIDs[:i], obj.DSIDs[i+1:]...)
			break
		}
	}
	obj.Profile.LastModifiedDate = r.now()
	return nil
}

// ObjectMethods lists the dissemination methods available on an
// object, sorted by service definition and then method name.
func (r *Repository) ObjectMethods(pid string) ([]fedora.ObjectMethod, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, err := r.object(pid); err != nil {
		return nil, err
	}
	var result []fedora.ObjectMethod
	for sdef, methods := range r.services {
		for name := range methods {
			result = append(result, fedora.ObjectMethod{SDef: sdef, Method: name})
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SDef != result[j].SDef {
			return result[i].SDef < result[j].SDef
		}
		return result[i].Method < result[j].Method
	})
	return result, nil
}

// Invoke runs a dissemination method on an object.
func (r *Repository) Invoke(pid, sdef, method string, params url.Values) (string, []byte, error) {
	r.lock.Lock()
	_, err := r.object(pid)
	fn := r.services[sdef][method]
	r.lock.Unlock()
	if err != nil {
		return "", nil, err
	}
	if fn == nil {
		return "", nil, errNotFound{Err: fmt.Errorf("no method %q in service %q", method, sdef)}
	}
	return fn(pid, params)
}

func (r *Repository) viewDublinCore(pid string, params url.Values) (string, []byte, error) {
	_, content, err := r.DatastreamContent(pid, "DC")
	return "text/xml", content, err
}

func (r *Repository) viewItemIndex(pid string, params url.Values) (string, []byte, error) {
	dsids, _, err := r.Datastreams(pid)
	if err != nil {
		return "", nil, err
	}
	return "text/plain", []byte(strings.Join(dsids, "\n") + "\n"), nil
}
