// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package object

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/diffeo/go-fedora/fedora"
	"github.com/diffeo/go-fedora/wadl"
)

// Datastream is a view of one datastream of an Object.
type Datastream struct {
	object *Object

	// DSID is the datastream ID.
	DSID string

	// Profile is the most recently fetched datastream profile.
	Profile fedora.DatastreamProfile
}

// Object returns the object this datastream belongs to.
func (ds *Datastream) Object() *Object {
	return ds.object
}

// Refresh fetches the datastream profile again.
func (ds *Datastream) Refresh() error {
	profile, err := ds.object.repo.GetDatastreamProfile(ds.object.PID, ds.DSID)
	if err != nil {
		return err
	}
	ds.Profile = profile
	return nil
}

// Label returns the datastream label.
func (ds *Datastream) Label() string {
	return ds.Profile.Label
}

// VersionID returns the ID of the current version, such as "DC.1".
func (ds *Datastream) VersionID() string {
	return ds.Profile.VersionID
}

// CreatedDate returns the time the current version was created.
func (ds *Datastream) CreatedDate() string {
	return ds.Profile.CreatedDate
}

// State returns the datastream state, "A", "I", or "D".
func (ds *Datastream) State() string {
	return ds.Profile.State
}

// MimeType returns the content type.
func (ds *Datastream) MimeType() string {
	return ds.Profile.MimeType
}

// FormatURI returns the URI naming the content format, if any.
func (ds *Datastream) FormatURI() string {
	return ds.Profile.FormatURI
}

// ControlGroup returns "X", "M", "E", or "R".
func (ds *Datastream) ControlGroup() string {
	return ds.Profile.ControlGroup
}

// Size returns the content length in bytes.
func (ds *Datastream) Size() int64 {
	return ds.Profile.Size
}

// Versionable reports whether changes keep earlier versions.
func (ds *Datastream) Versionable() bool {
	return ds.Profile.Versionable
}

// InfoType returns the datastream's info type, usually empty.
func (ds *Datastream) InfoType() string {
	return ds.Profile.InfoType
}

// Location returns the content URL or internal storage ID.
func (ds *Datastream) Location() string {
	return ds.Profile.Location
}

// LocationType returns "INTERNAL_ID" or "URL".
func (ds *Datastream) LocationType() string {
	return ds.Profile.LocationType
}

// Checksum returns the content digest, or "none".
func (ds *Datastream) Checksum() string {
	return ds.Profile.Checksum
}

// ChecksumType returns the digest algorithm, such as "MD5".
func (ds *Datastream) ChecksumType() string {
	return ds.Profile.ChecksumType
}

// setProperty changes one datastream property, leaving the content
// alone, and refetches the profile.
func (ds *Datastream) setProperty(name string, value interface{}) error {
	params := wadl.Params{
		name:            value,
		"logMessage":    fmt.Sprintf("Changed %s datastream property", name),
		"ignoreContent": true,
	}
	err := ds.object.repo.ModifyDatastream(ds.object.PID, ds.DSID, nil, params)
	if err != nil {
		return err
	}
	return ds.Refresh()
}

// SetLabel changes the datastream label and refetches the profile.
func (ds *Datastream) SetLabel(label string) error {
	return ds.setProperty("label", label)
}

// SetLocation changes the URL of an external or redirect datastream
// and refetches the profile.
func (ds *Datastream) SetLocation(location string) error {
	return ds.setProperty("location", location)
}

// SetState changes the datastream state to "A", "I", or "D" and
// refetches the profile.
func (ds *Datastream) SetState(state string) error {
	if _, ok := fedora.StateNames[state]; !ok {
		return fedora.ErrInvalidState{State: state}
	}
	return ds.setProperty("state", state)
}

// SetMimeType changes the content type and refetches the profile.
func (ds *Datastream) SetMimeType(mimeType string) error {
	return ds.setProperty("mimeType", mimeType)
}

// SetFormatURI changes the format URI and refetches the profile.
func (ds *Datastream) SetFormatURI(formatURI string) error {
	return ds.setProperty("formatURI", formatURI)
}

// SetVersionable changes whether the server keeps old versions and
// refetches the profile.
func (ds *Datastream) SetVersionable(versionable bool) error {
	return ds.setProperty("versionable", versionable)
}

// SetChecksumType changes the digest algorithm and refetches the
// profile.
func (ds *Datastream) SetChecksumType(checksumType string) error {
	return ds.setProperty("checksumType", checksumType)
}

// Content fetches the datastream content.  The caller must close the
// response body.
func (ds *Datastream) Content() (*http.Response, error) {
	return ds.object.repo.GetDatastream(ds.object.PID, ds.DSID)
}

// ReadContent fetches the entire datastream content.
func (ds *Datastream) ReadContent() ([]byte, error) {
	resp, err := ds.Content()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	if closeErr := resp.Body.Close(); err == nil {
		err = closeErr
	}
	return buf.Bytes(), err
}

// SetContent replaces the datastream content and refetches the
// profile.  The repository fails to parse inline XML content unless
// it is followed by a line break, so one is added.
func (ds *Datastream) SetContent(data []byte, params wadl.Params) error {
	if ds.Profile.ControlGroup == fedora.ControlGroupInline {
		data = append(append([]byte(nil), data...), '\r', '\n')
	}
	err := ds.object.repo.ModifyDatastream(ds.object.PID, ds.DSID, data, params)
	if err != nil {
		return err
	}
	return ds.Refresh()
}

// Delete purges the datastream.  The view should not be used
// afterwards.
func (ds *Datastream) Delete(params wadl.Params) error {
	return ds.object.DeleteDatastream(ds.DSID, params)
}
