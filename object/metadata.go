// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package object

import (
	"github.com/diffeo/go-fedora/wadl"
	"github.com/diffeo/go-fedora/xmlmap"
)

// DublinCore is a view of an object's DC datastream as a mapping.
type DublinCore struct {
	*Datastream
	values xmlmap.DublinCore
}

// DublinCore returns a view of the object's DC datastream.
func (obj *Object) DublinCore() (*DublinCore, error) {
	if obj.dc == nil {
		ds, err := obj.Datastream("DC")
		if err != nil {
			return nil, err
		}
		obj.dc = &DublinCore{Datastream: ds}
	}
	return obj.dc, nil
}

// Values returns the Dublin Core elements, fetching and parsing the
// content on first use.  Changes to the returned mapping are written
// by Save.
func (dc *DublinCore) Values() (xmlmap.DublinCore, error) {
	if dc.values == nil {
		content, err := dc.ReadContent()
		if err != nil {
			return nil, err
		}
		values, err := xmlmap.ParseDC(content)
		if err != nil {
			return nil, err
		}
		dc.values = values
	}
	return dc.values, nil
}

// Save writes the Dublin Core mapping back as the datastream
// content.  The mapping is parsed again on the next call to Values.
func (dc *DublinCore) Save(params wadl.Params) error {
	values, err := dc.Values()
	if err != nil {
		return err
	}
	dc.values = nil
	return dc.SetContent(xmlmap.FormatDC(values), params)
}

// Relations is a view of an object's RELS-EXT datastream as a
// mapping from predicate URI to objects.
type Relations struct {
	*Datastream
	values xmlmap.Relations
}

// Relations returns a view of the object's RELS-EXT datastream.  If
// the object has none, an empty one is added first.
func (obj *Object) Relations() (*Relations, error) {
	if obj.rels == nil {
		if !obj.HasDatastream("RELS-EXT") {
			if err := obj.AddDatastream("RELS-EXT", nil, nil); err != nil {
				return nil, err
			}
		}
		ds, err := obj.Datastream("RELS-EXT")
		if err != nil {
			return nil, err
		}
		obj.rels = &Relations{Datastream: ds}
	}
	return obj.rels, nil
}

// Values returns the relations, fetching and parsing the content on
// first use.  Changes to the returned mapping are written by Save.
func (rels *Relations) Values() (xmlmap.Relations, error) {
	if rels.values == nil {
		content, err := rels.ReadContent()
		if err != nil {
			return nil, err
		}
		values, err := xmlmap.ParseRDF(content)
		if err != nil {
			return nil, err
		}
		rels.values = values
	}
	return rels.values, nil
}

// Save writes the relations back as the datastream content.
func (rels *Relations) Save(params wadl.Params) error {
	values, err := rels.Values()
	if err != nil {
		return err
	}
	content, err := xmlmap.FormatRDF(rels.object.PID, values)
	if err != nil {
		return err
	}
	rels.values = nil
	return rels.SetContent(content, params)
}
