// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package fedora defines the data types and errors shared by the
// Fedora Commons repository client packages.
//
// The client is layered.  Package connection owns the HTTP session
// and its retry policy.  Package wadl reads the server's WADL
// description and builds typed requests from it.  Package client
// offers named repository operations on top of that, and package
// object provides lazily-loaded views of objects and datastreams.
//
// A typical program looks like
//
//     conn, err := connection.New(connection.Config{
//         URL:      "http://localhost:8080/fedora",
//         Username: "fedoraAdmin",
//         Password: "fedoraAdmin",
//     })
//     c, err := client.New(conn)
//     obj, err := object.Open(c, "demo:1")
//     fmt.Println(obj.Label())
package fedora

// Well-known namespaces used in repository XML.
const (
	// FOXMLNamespace is the namespace of FOXML ingest documents.
	FOXMLNamespace = "info:fedora/fedora-system:def/foxml#"

	// ModelNamespace holds object property and content model
	// predicates.
	ModelNamespace = "info:fedora/fedora-system:def/model#"

	// RelsExtNamespace holds the standard external relationship
	// predicates.
	RelsExtNamespace = "info:fedora/fedora-system:def/relations-external#"

	// RDFNamespace is the W3C RDF syntax namespace.
	RDFNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

	// DCNamespace is the Dublin Core elements namespace.
	DCNamespace = "http://purl.org/dc/elements/1.1/"

	// OAIDCNamespace is the OAI Dublin Core container namespace.
	OAIDCNamespace = "http://www.openarchives.org/OAI/2.0/oai_dc/"

	// TypesNamespace is used by search results.
	TypesNamespace = "http://www.fedora.info/definitions/1/0/types/"

	// SparqlResultNamespace is used by resource index query results.
	SparqlResultNamespace = "http://www.w3.org/2001/sw/DataAccess/rf1/result"
)

// RelsExtFormatURI is the format URI of RELS-EXT datastreams.
const RelsExtFormatURI = "info:fedora/fedora-system:FedoraRELSExt-1.0"

// Control groups classify how a datastream's content is stored.
const (
	// ControlGroupInline is inline XML, stored inside the object.
	ControlGroupInline = "X"

	// ControlGroupManaged is content managed by the repository.
	ControlGroupManaged = "M"

	// ControlGroupExternal is content referenced by URL and
	// fetched by the repository.
	ControlGroupExternal = "E"

	// ControlGroupRedirect is content referenced by URL and
	// served by redirect.
	ControlGroupRedirect = "R"
)

// StateNames maps the single-letter object states to their FOXML names.
var StateNames = map[string]string{
	"A": "Active",
	"I": "Inactive",
	"D": "Deleted",
}

// ObjectProfile holds the properties of a digital object.
type ObjectProfile struct {
	Label            string `mapstructure:"label" codec:"label"`
	OwnerID          string `mapstructure:"ownerId" codec:"ownerId"`
	CreatedDate      string `mapstructure:"createdDate" codec:"createdDate"`
	LastModifiedDate string `mapstructure:"lastModifiedDate" codec:"lastModifiedDate"`
	State            string `mapstructure:"state" codec:"state"`
}

// DatastreamProfile holds the properties of one datastream.
type DatastreamProfile struct {
	Label        string `mapstructure:"label" codec:"label"`
	VersionID    string `mapstructure:"versionId" codec:"versionId"`
	CreatedDate  string `mapstructure:"createdDate" codec:"createdDate"`
	State        string `mapstructure:"state" codec:"state"`
	MimeType     string `mapstructure:"mimeType" codec:"mimeType"`
	FormatURI    string `mapstructure:"formatURI" codec:"formatURI"`
	ControlGroup string `mapstructure:"controlGroup" codec:"controlGroup"`
	Size         int64  `mapstructure:"size" codec:"size"`
	Versionable  bool   `mapstructure:"versionable" codec:"versionable"`
	InfoType     string `mapstructure:"infoType" codec:"infoType"`
	Location     string `mapstructure:"location" codec:"location"`
	LocationType string `mapstructure:"locationType" codec:"locationType"`
	Checksum     string `mapstructure:"checksum" codec:"checksum"`
	ChecksumType string `mapstructure:"checksumType" codec:"checksumType"`
}

// ObjectMethod names one dissemination method available on an
// object, along with the service definition that provides it.
type ObjectMethod struct {
	SDef   string `codec:"sdef"`
	Method string `codec:"method"`
}

// Kinds of TripleValue.
const (
	TypeURI     = "uri"
	TypeLiteral = "literal"
)

// TripleValue is one RDF term, either a URI or a literal.  Literals
// may carry a datatype or a language, but not both.
type TripleValue struct {
	Type     string `codec:"type"`
	Value    string `codec:"value"`
	Datatype string `codec:"datatype,omitempty"`
	Lang     string `codec:"lang,omitempty"`
}

// URI creates a TripleValue holding a URI.
func URI(value string) TripleValue {
	return TripleValue{Type: TypeURI, Value: value}
}

// Literal creates a plain TripleValue literal.
func Literal(value string) TripleValue {
	return TripleValue{Type: TypeLiteral, Value: value}
}

// Binding is one row of a triple-store query result, mapping variable
// name to its value.
type Binding map[string]TripleValue

// SearchRecord is one object returned by a search, mapping field name
// to the (possibly repeated) field values.
type SearchRecord map[string][]string
