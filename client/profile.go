// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package client

import (
	"strings"

	"github.com/diffeo/go-fedora/fedora"
	"github.com/diffeo/go-fedora/xmlmap"
	"github.com/mitchellh/mapstructure"
)

// objectProfileTags maps object profile element names to
// fedora.ObjectProfile field names.
var objectProfileTags = map[string]string{
	"objLabel":       "label",
	"objOwnerId":     "ownerId",
	"objCreateDate":  "createdDate",
	"objLastModDate": "lastModifiedDate",
	"objState":       "state",
}

// datastreamProfileTags maps datastream profile element names to
// fedora.DatastreamProfile field names.  Some server versions
// misspell the version ID element.
var datastreamProfileTags = map[string]string{
	"dsLabel":        "label",
	"dsVersionID":    "versionId",
	"dsVerionId":     "versionId",
	"dsCreateDate":   "createdDate",
	"dsState":        "state",
	"dsMIME":         "mimeType",
	"dsFormatURI":    "formatURI",
	"dsControlGroup": "controlGroup",
	"dsSize":         "size",
	"dsVersionable":  "versionable",
	"dsInfoType":     "infoType",
	"dsLocation":     "location",
	"dsLocationType": "locationType",
	"dsChecksum":     "checksum",
	"dsChecksumType": "checksumType",
}

// decodeProfile fills out, a pointer to a profile struct, from the
// children of root.  Element names are matched without their
// namespace and renamed through tags; unknown and empty elements are
// ignored.  Text values are converted to the field types.
func decodeProfile(method string, root *xmlmap.Node, tags map[string]string, out interface{}) error {
	values := make(map[string]interface{})
	for _, child := range root.Children("") {
		name, known := tags[child.Local()]
		value := strings.TrimSpace(child.Text)
		if !known || value == "" {
			continue
		}
		values[name] = value
	}
	config := mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	}
	decoder, err := mapstructure.NewDecoder(&config)
	if err != nil {
		return err
	}
	if err = decoder.Decode(values); err != nil {
		return fedora.ErrBadResponse{Method: method, Err: err}
	}
	return nil
}
