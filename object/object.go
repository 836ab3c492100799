// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package object provides lazily-loaded views of repository objects
// and their datastreams.
//
// An Object holds a copy of its object profile, fetched when it is
// opened.  Getters read that copy; setters change the repository and
// then fetch the profile again before returning.  Datastream listings,
// datastream profiles, and method listings are fetched on first use
// and remembered.
//
//     obj, err := object.Open(c, "demo:1")
//     if err == nil {
//         err = obj.SetLabel("New label")
//     }
package object

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/diffeo/go-fedora/fedora"
	"github.com/diffeo/go-fedora/wadl"
	"github.com/sirupsen/logrus"
)

// Repository is the set of repository operations the views need.
// *client.Client implements it.
type Repository interface {
	CreateObject(pid, label, state string) (string, error)
	GetObjectProfile(pid string) (fedora.ObjectProfile, error)
	UpdateObject(pid string, body []byte, params wadl.Params) error
	DeleteObject(pid string, params wadl.Params) error
	ListDatastreams(pid string) ([]string, error)
	AddDatastream(pid, dsid string, body []byte, params wadl.Params) error
	GetDatastreamProfile(pid, dsid string) (fedora.DatastreamProfile, error)
	ModifyDatastream(pid, dsid string, body []byte, params wadl.Params) error
	GetDatastream(pid, dsid string) (*http.Response, error)
	DeleteDatastream(pid, dsid string, params wadl.Params) error
	GetAllObjectMethods(pid string, params wadl.Params) ([]fedora.ObjectMethod, error)
	InvokeSDefMethodUsingGET(pid, sdef, method string, params url.Values) (*http.Response, error)
}

// Object is a view of one repository object.  It is not safe for
// concurrent use.
type Object struct {
	repo Repository

	// PID is the object's persistent identifier.
	PID string

	// Profile is the most recently fetched object profile.
	Profile fedora.ObjectProfile

	// Logger receives warnings about degraded operations.
	Logger logrus.FieldLogger

	dsids       []string
	methods     []fedora.ObjectMethod
	datastreams map[string]*Datastream
	dc          *DublinCore
	rels        *Relations
}

// Open creates a view of an existing object, fetching its profile.
func Open(repo Repository, pid string) (*Object, error) {
	obj := &Object{
		repo:   repo,
		PID:    pid,
		Logger: logrus.StandardLogger(),
	}
	if err := obj.Refresh(); err != nil {
		return nil, err
	}
	return obj, nil
}

// Create ingests a new object and opens a view of it.  pid may be
// "new" to let the repository choose.
func Create(repo Repository, pid, label, state string) (*Object, error) {
	pid, err := repo.CreateObject(pid, label, state)
	if err != nil {
		return nil, err
	}
	return Open(repo, pid)
}

// Refresh fetches the object profile again.
func (obj *Object) Refresh() error {
	profile, err := obj.repo.GetObjectProfile(obj.PID)
	if err != nil {
		return err
	}
	obj.Profile = profile
	return nil
}

// Label returns the object's label.
func (obj *Object) Label() string {
	return obj.Profile.Label
}

// OwnerID returns the user ID of the object's owner.
func (obj *Object) OwnerID() string {
	return obj.Profile.OwnerID
}

// State returns the object state, "A", "I", or "D".
func (obj *Object) State() string {
	return obj.Profile.State
}

// CreatedDate returns the time the object was ingested, as the
// server formats it.
func (obj *Object) CreatedDate() string {
	return obj.Profile.CreatedDate
}

// LastModifiedDate returns the time of the object's last change.
func (obj *Object) LastModifiedDate() string {
	return obj.Profile.LastModifiedDate
}

// setProperty changes one object property and refetches the profile.
func (obj *Object) setProperty(name, value string) error {
	params := wadl.Params{
		name:         value,
		"logMessage": fmt.Sprintf("Changed %s object property", name),
	}
	if err := obj.repo.UpdateObject(obj.PID, nil, params); err != nil {
		return err
	}
	return obj.Refresh()
}

// SetLabel changes the object label and refetches the profile.
func (obj *Object) SetLabel(label string) error {
	return obj.setProperty("label", label)
}

// SetOwnerID changes the object owner and refetches the profile.
func (obj *Object) SetOwnerID(ownerID string) error {
	return obj.setProperty("ownerId", ownerID)
}

// SetState changes the object state to "A", "I", or "D" and
// refetches the profile.
func (obj *Object) SetState(state string) error {
	if _, ok := fedora.StateNames[state]; !ok {
		return fedora.ErrInvalidState{State: state}
	}
	return obj.setProperty("state", state)
}

// Delete purges the object from the repository.  The view should not
// be used afterwards.
func (obj *Object) Delete(params wadl.Params) error {
	return obj.repo.DeleteObject(obj.PID, params)
}

// Datastreams returns the IDs of the object's datastreams.  The list
// is fetched once and remembered.  If it cannot be fetched, for
// instance because the object has been purged since it was opened,
// the failure is logged and the list is empty.
func (obj *Object) Datastreams() []string {
	if obj.dsids == nil {
		dsids, err := obj.repo.ListDatastreams(obj.PID)
		if err != nil {
			obj.Logger.WithFields(logrus.Fields{
				"pid": obj.PID,
				"err": err,
			}).Warn("Could not list datastreams, perhaps the object was purged")
			dsids = []string{}
		}
		obj.dsids = dsids
	}
	return obj.dsids
}

// HasDatastream returns true if the object has a datastream with
// this ID.
func (obj *Object) HasDatastream(dsid string) bool {
	for _, id := range obj.Datastreams() {
		if id == dsid {
			return true
		}
	}
	return false
}

// Datastream returns a view of one datastream, fetching its profile
// the first time it is requested.
func (obj *Object) Datastream(dsid string) (*Datastream, error) {
	if ds, ok := obj.datastreams[dsid]; ok {
		return ds, nil
	}
	ds := &Datastream{object: obj, DSID: dsid}
	if err := ds.Refresh(); err != nil {
		return nil, err
	}
	if obj.datastreams == nil {
		obj.datastreams = make(map[string]*Datastream)
	}
	obj.datastreams[dsid] = ds
	return ds, nil
}

// AddDatastream adds a datastream to the object.  params are as for
// client.Client.AddDatastream.
func (obj *Object) AddDatastream(dsid string, body []byte, params wadl.Params) error {
	err := obj.repo.AddDatastream(obj.PID, dsid, body, params)
	obj.dsids = nil
	return err
}

// DeleteDatastream purges a datastream.
func (obj *Object) DeleteDatastream(dsid string, params wadl.Params) error {
	err := obj.repo.DeleteDatastream(obj.PID, dsid, params)
	obj.forget(dsid)
	return err
}

// forget drops everything remembered about a datastream.
func (obj *Object) forget(dsid string) {
	obj.dsids = nil
	delete(obj.datastreams, dsid)
	switch dsid {
	case "DC":
		obj.dc = nil
	case "RELS-EXT":
		obj.rels = nil
	}
}

// Methods returns the names of the dissemination methods available
// on the object.  The listing is fetched once and remembered.
func (obj *Object) Methods() ([]string, error) {
	if obj.methods == nil {
		methods, err := obj.repo.GetAllObjectMethods(obj.PID, nil)
		if err != nil {
			return nil, err
		}
		if methods == nil {
			methods = []fedora.ObjectMethod{}
		}
		obj.methods = methods
	}
	names := make([]string, len(obj.methods))
	for i, m := range obj.methods {
		names[i] = m.Method
	}
	return names, nil
}

// Call runs the named dissemination method, using the first service
// definition that offers it.  The caller must close the response
// body.
func (obj *Object) Call(method string, params url.Values) (*http.Response, error) {
	if _, err := obj.Methods(); err != nil {
		return nil, err
	}
	for _, m := range obj.methods {
		if m.Method == method {
			return obj.repo.InvokeSDefMethodUsingGET(obj.PID, m.SDef, m.Method, params)
		}
	}
	return nil, fedora.ErrNoSuchMethod{Name: method}
}
