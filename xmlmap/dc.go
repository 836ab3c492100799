// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package xmlmap

import (
	"bytes"
	"sort"

	"github.com/diffeo/go-fedora/fedora"
)

// DublinCore maps a Dublin Core element name, such as "title", to its
// values.
type DublinCore map[string][]string

// Keys returns the element names in sorted order.
func (dc DublinCore) Keys() []string {
	keys := make([]string, 0, len(dc))
	for k := range dc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseDC reads an oai_dc document.  Empty elements are skipped.
func ParseDC(data []byte) (DublinCore, error) {
	root, err := Parse(data)
	if err != nil {
		return nil, err
	}
	result := make(DublinCore)
	for _, child := range root.Children("") {
		if child.Text == "" {
			continue
		}
		result[child.Local()] = append(result[child.Local()], child.Text)
	}
	return result, nil
}

// FormatDC writes an oai_dc document, with elements in sorted order.
func FormatDC(dc DublinCore) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<oai_dc:dc xmlns:oai_dc="` + fedora.OAIDCNamespace +
		`" xmlns:dc="` + fedora.DCNamespace + `">` + "\n")
	for _, key := range dc.Keys() {
		for _, value := range dc[key] {
			buf.WriteString("  <dc:" + key + ">")
			escape(&buf, value)
			buf.WriteString("</dc:" + key + ">\n")
		}
	}
	buf.WriteString("</oai_dc:dc>\n")
	return buf.Bytes()
}
