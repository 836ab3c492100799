// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package xmlmap

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/diffeo/go-fedora/fedora"
)

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// wellKnownPrefixes are the namespace prefixes FormatRDF uses for
// namespaces it recognizes.  Others get generated prefixes.
var wellKnownPrefixes = map[string]string{
	fedora.RDFNamespace:     "rdf",
	fedora.ModelNamespace:   "fedora-model",
	fedora.RelsExtNamespace: "rel",
}

// Relations maps an RDF predicate URI to its objects.
type Relations map[string][]fedora.TripleValue

// Keys returns the predicates in sorted order.
func (r Relations) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseRDF reads an RDF/XML document, such as a RELS-EXT datastream,
// into a map from predicate URI to objects.  Statements from every
// rdf:Description are merged.
func ParseRDF(data []byte) (Relations, error) {
	root, err := Parse(data)
	if err != nil {
		return nil, err
	}
	result := make(Relations)
	for _, desc := range root.Children("Description") {
		for _, stmt := range desc.Children("") {
			predicate := stmt.XMLName.Space + stmt.XMLName.Local
			var value fedora.TripleValue
			if resource, ok := stmt.AttrNS(fedora.RDFNamespace, "resource"); ok {
				value = fedora.URI(resource)
			} else {
				value = fedora.Literal(stmt.Text)
				if datatype, ok := stmt.AttrNS(fedora.RDFNamespace, "datatype"); ok {
					value.Datatype = datatype
				} else if lang, ok := stmt.AttrNS(xmlNamespace, "lang"); ok {
					value.Lang = lang
				}
			}
			result[predicate] = append(result[predicate], value)
		}
	}
	return result, nil
}

// splitPredicate splits a predicate URI into a namespace and a local
// name, at the last '#' or '/'.
func splitPredicate(predicate string) (string, string, error) {
	i := strings.LastIndexAny(predicate, "#/")
	if i < 0 || i == len(predicate)-1 {
		return "", "", fmt.Errorf("cannot split predicate %q into namespace and name", predicate)
	}
	return predicate[:i+1], predicate[i+1:], nil
}

// FormatRDF writes relations about the object pid as an RDF/XML
// document.  Predicates and their objects are written in sorted
// predicate order.
func FormatRDF(pid string, rels Relations) ([]byte, error) {
	subject := pid
	if !strings.HasPrefix(subject, "info:fedora/") {
		subject = "info:fedora/" + subject
	}

	// Assign a prefix to every namespace used
	prefixes := map[string]string{fedora.RDFNamespace: "rdf"}
	var namespaces []string
	keys := rels.Keys()
	for _, predicate := range keys {
		ns, _, err := splitPredicate(predicate)
		if err != nil {
			return nil, err
		}
		if _, present := prefixes[ns]; present {
			continue
		}
		prefix, known := wellKnownPrefixes[ns]
		if !known {
			prefix = fmt.Sprintf("ns%d", len(namespaces))
		}
		prefixes[ns] = prefix
		namespaces = append(namespaces, ns)
	}

	var buf bytes.Buffer
	buf.WriteString(`<rdf:RDF xmlns:rdf="`)
	escape(&buf, fedora.RDFNamespace)
	buf.WriteString(`"`)
	for _, ns := range namespaces {
		fmt.Fprintf(&buf, ` xmlns:%s="`, prefixes[ns])
		escape(&buf, ns)
		buf.WriteString(`"`)
	}
	buf.WriteString(`><rdf:Description rdf:about="`)
	escape(&buf, subject)
	buf.WriteString(`">`)

	for _, predicate := range keys {
		ns, local, _ := splitPredicate(predicate)
		tag := prefixes[ns] + ":" + local
		for _, value := range rels[predicate] {
			buf.WriteString("<" + tag)
			if value.Type == fedora.TypeURI {
				buf.WriteString(` rdf:resource="`)
				escape(&buf, value.Value)
				buf.WriteString(`"/>`)
				continue
			}
			if value.Datatype != "" {
				buf.WriteString(` rdf:datatype="`)
				escape(&buf, value.Datatype)
				buf.WriteString(`"`)
			} else if value.Lang != "" {
				buf.WriteString(` xml:lang="`)
				escape(&buf, value.Lang)
				buf.WriteString(`"`)
			}
			buf.WriteString(">")
			escape(&buf, value.Value)
			buf.WriteString("</" + tag + ">")
		}
	}
	buf.WriteString("</rdf:Description></rdf:RDF>")
	return buf.Bytes(), nil
}
