// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package fakerepo

import (
	"encoding/xml"

	"github.com/diffeo/go-fedora/fedora"
)

type pidListXML struct {
	XMLName xml.Name `xml:"http://www.fedora.info/definitions/1/0/management/ pidList"`
	PIDs    []string `xml:"pid"`
}

type objectProfileXML struct {
	XMLName     xml.Name `xml:"http://www.fedora.info/definitions/1/0/access/ objectProfile"`
	PID         string   `xml:"pid,attr"`
	Label       string   `xml:"objLabel"`
	OwnerID     string   `xml:"objOwnerId"`
	Models      []string `xml:"objModels>model"`
	CreateDate  string   `xml:"objCreateDate"`
	LastModDate string   `xml:"objLastModDate"`
	State       string   `xml:"objState"`
}

func renderObjectProfile(pid string, profile fedora.ObjectProfile) interface{} {
	return objectProfileXML{
		PID:         pid,
		Label:       profile.Label,
		OwnerID:     profile.OwnerID,
		Models:      []string{"info:fedora/fedora-system:FedoraObject-3.0"},
		CreateDate:  profile.CreatedDate,
		LastModDate: profile.LastModifiedDate,
		State:       profile.State,
	}
}

type datastreamProfileXML struct {
	XMLName      xml.Name `xml:"http://www.fedora.info/definitions/1/0/management/ datastreamProfile"`
	PID          string   `xml:"pid,attr"`
	DSID         string   `xml:"dsID,attr"`
	Label        string   `xml:"dsLabel"`
	VersionID    string   `xml:"dsVersionID"`
	CreateDate   string   `xml:"dsCreateDate"`
	State        string   `xml:"dsState"`
	MIME         string   `xml:"dsMIME"`
	FormatURI    string   `xml:"dsFormatURI"`
	ControlGroup string   `xml:"dsControlGroup"`
	Size         int64    `xml:"dsSize"`
	Versionable  bool     `xml:"dsVersionable"`
	InfoType     string   `xml:"dsInfoType"`
	Location     string   `xml:"dsLocation"`
	LocationType string   `xml:"dsLocationType"`
	ChecksumType string   `xml:"dsChecksumType"`
	Checksum     string   `xml:"dsChecksum"`
}

func renderDatastreamProfile(pid, dsid string, p fedora.DatastreamProfile) interface{} {
	return datastreamProfileXML{
		PID:          pid,
		DSID:         dsid,
		Label:        p.Label,
		VersionID:    p.VersionID,
		CreateDate:   p.CreatedDate,
		State:        p.State,
		MIME:         p.MimeType,
		FormatURI:    p.FormatURI,
		ControlGroup: p.ControlGroup,
		Size:         p.Size,
		Versionable:  p.Versionable,
		InfoType:     p.InfoType,
		Location:     p.Location,
		LocationType: p.LocationType,
		ChecksumType: p.ChecksumType,
		Checksum:     p.Checksum,
	}
}

type datastreamXML struct {
	DSID     string `xml:"dsid,attr"`
	Label    string `xml:"label,attr"`
	MimeType string `xml:"mimeType,attr"`
}

type objectDatastreamsXML struct {
	XMLName     xml.Name        `xml:"http://www.fedora.info/definitions/1/0/access/ objectDatastreams"`
	PID         string          `xml:"pid,attr"`
	Datastreams []datastreamXML `xml:"datastream"`
}

func renderDatastreams(pid string, dsids []string, profiles map[string]fedora.DatastreamProfile) interface{} {
	result := objectDatastreamsXML{PID: pid}
	for _, dsid := range dsids {
		result.Datastreams = append(result.Datastreams, datastreamXML{
			DSID:     dsid,
			Label:    profiles[dsid].Label,
			MimeType: profiles[dsid].MimeType,
		})
	}
	return result
}

type methodXML struct {
	Name string `xml:"name,attr"`
}

type sdefXML struct {
	PID     string      `xml:"pid,attr"`
	Methods []methodXML `xml:"method"`
}

type objectMethodsXML struct {
	XMLName xml.Name  `xml:"http://www.fedora.info/definitions/1/0/access/ objectMethods"`
	PID     string    `xml:"pid,attr"`
	SDefs   []sdefXML `xml:"sDef"`
}

func renderMethods(pid string, methods []fedora.ObjectMethod) interface{} {
	result := objectMethodsXML{PID: pid}
	for _, m := range methods {
		n := len(result.SDefs)
		if n == 0 || result.SDefs[n-1].PID != m.SDef {
			result.SDefs = append(result.SDefs, sdefXML{PID: m.SDef})
			n++
		}
		result.SDefs[n-1].Methods = append(result.SDefs[n-1].Methods, methodXML{Name: m.Method})
	}
	return result
}

// fieldXML is an element whose name is chosen at run time.
type fieldXML struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type objectFieldsXML struct {
	Fields []fieldXML
}

type listSessionXML struct {
	Token            string `xml:"token"`
	Cursor           int    `xml:"cursor"`
	CompleteListSize int    `xml:"completeListSize"`
}

type searchResultXML struct {
	XMLName     xml.Name          `xml:"http://www.fedora.info/definitions/1/0/types/ result"`
	ListSession *listSessionXML   `xml:"listSession,omitempty"`
	Results     []objectFieldsXML `xml:"resultList>objectFields"`
}

func renderSearch(page SearchPage) interface{} {
	result := searchResultXML{}
	if page.Token != "" {
		result.ListSession = &listSessionXML{
			Token:            page.Token,
			Cursor:           page.Cursor,
			CompleteListSize: page.Total,
		}
	}
	for _, record := range page.Results {
		var fields objectFieldsXML
		for _, field := range record {
			fields.Fields = append(fields.Fields, fieldXML{
				XMLName: xml.Name{Local: field.Name},
				Value:   field.Value,
			})
		}
		result.Results = append(result.Results, fields)
	}
	return result
}

type variableXML struct {
	Name string `xml:"name,attr"`
}

type bindingValueXML struct {
	XMLName  xml.Name
	URI      string `xml:"uri,attr,omitempty"`
	Datatype string `xml:"datatype,attr,omitempty"`
	Lang     string `xml:"http://www.w3.org/XML/1998/namespace lang,attr,omitempty"`
	Value    string `xml:",chardata"`
}

type sparqlResultXML struct {
	Values []bindingValueXML
}

type sparqlXML struct {
	XMLName   xml.Name          `xml:"http://www.w3.org/2001/sw/DataAccess/rf1/result sparql"`
	Variables []variableXML     `xml:"head>variable"`
	Results   []sparqlResultXML `xml:"results>result"`
}

// renderBindings writes query results with the given variables, in
// order.  If datatypes is false, literal datatypes are left out.
func renderBindings(variables []string, bindings []fedora.Binding, datatypes bool) interface{} {
	result := sparqlXML{}
	for _, name := range variables {
		result.Variables = append(result.Variables, variableXML{Name: name})
	}
	for _, binding := range bindings {
		var row sparqlResultXML
		for _, name := range variables {
			value, ok := binding[name]
			if !ok {
				continue
			}
			v := bindingValueXML{XMLName: xml.Name{Local: name}}
			if value.Type == fedora.TypeURI {
				v.URI = value.Value
			} else {
				v.Value = value.Value
				if datatypes {
					v.Datatype = value.Datatype
				}
				v.Lang = value.Lang
			}
			row.Values = append(row.Values, v)
		}
		result.Results = append(result.Results, row)
	}
	return result
}
