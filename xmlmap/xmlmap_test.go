// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package xmlmap

import (
	"testing"

	"github.com/diffeo/go-fedora/fedora"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const relsExt = `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
    xmlns:fedora-model="info:fedora/fedora-system:def/model#"
    xmlns:myns="http://example.com/ns#">
  <rdf:Description rdf:about="info:fedora/demo:1">
    <fedora-model:hasModel rdf:resource="info:fedora/demo:CModel"/>
    <myns:title xml:lang="en">A &amp; B</myns:title>
    <myns:pages rdf:datatype="http://www.w3.org/2001/XMLSchema#int">12</myns:pages>
    <myns:title>Plain</myns:title>
  </rdf:Description>
</rdf:RDF>`

func TestNodeFind(t *testing.T) {
	root, err := Parse([]byte(`<a xmlns="urn:x"><b id="1"><c>one</c></b><b id="2"><c>two</c></b></a>`))
	require.NoError(t, err)
	assert.Equal(t, "a", root.Local())
	assert.Len(t, root.Children("b"), 2)
	assert.Len(t, root.Children(""), 2)
	cs := root.Find("c")
	if assert.Len(t, cs, 2) {
		assert.Equal(t, "one", cs[0].Text)
		assert.Equal(t, "two", cs[1].Text)
	}
	id, ok := root.Children("b")[1].Attr("id")
	assert.True(t, ok)
	assert.Equal(t, "2", id)
	_, ok = root.Attr("missing")
	assert.False(t, ok)
	text, ok := root.FindText("c")
	assert.True(t, ok)
	assert.Equal(t, "one", text)
}

func TestParseError(t *testing.T) {
	_, err := Parse([]byte("<unclosed>"))
	assert.Error(t, err)
}

func TestParseRDF(t *testing.T) {
	rels, err := ParseRDF([]byte(relsExt))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"http://example.com/ns#pages",
		"http://example.com/ns#title",
		"info:fedora/fedora-system:def/model#hasModel",
	}, rels.Keys())
	assert.Equal(t, []fedora.TripleValue{fedora.URI("info:fedora/demo:CModel")},
		rels[fedora.ModelNamespace+"hasModel"])
	assert.Equal(t, []fedora.TripleValue{
		{Type: fedora.TypeLiteral, Value: "A & B", Lang: "en"},
		fedora.Literal("Plain"),
	}, rels["http://example.com/ns#title"])
	assert.Equal(t, "http://www.w3.org/2001/XMLSchema#int",
		rels["http://example.com/ns#pages"][0].Datatype)
}

func TestRDFRoundTrip(t *testing.T) {
	rels, err := ParseRDF([]byte(relsExt))
	require.NoError(t, err)
	data, err := FormatRDF("demo:1", rels)
	require.NoError(t, err)
	assert.Contains(t, string(data), `rdf:about="info:fedora/demo:1"`)
	assert.Contains(t, string(data), `xmlns:fedora-model="info:fedora/fedora-system:def/model#"`)

	again, err := ParseRDF(data)
	require.NoError(t, err)
	assert.Equal(t, rels, again)
}

func TestFormatRDFEmpty(t *testing.T) {
	data, err := FormatRDF("info:fedora/demo:1", Relations{})
	require.NoError(t, err)
	rels, err := ParseRDF(data)
	require.NoError(t, err)
	assert.Empty(t, rels)
}

func TestFormatRDFBadPredicate(t *testing.T) {
	_, err := FormatRDF("demo:1", Relations{"nonamespace": {fedora.Literal("x")}})
	assert.Error(t, err)
}

func TestDCRoundTrip(t *testing.T) {
	doc := `<oai_dc:dc xmlns:oai_dc="http://www.openarchives.org/OAI/2.0/oai_dc/"
    xmlns:dc="http://purl.org/dc/elements/1.1/">
  <dc:title>Hello &lt;world&gt;</dc:title>
  <dc:identifier>demo:1</dc:identifier>
  <dc:identifier>urn:x</dc:identifier>
  <dc:description></dc:description>
</oai_dc:dc>`
	dc, err := ParseDC([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, DublinCore{
		"title":      {"Hello <world>"},
		"identifier": {"demo:1", "urn:x"},
	}, dc)
	assert.Equal(t, []string{"identifier", "title"}, dc.Keys())

	again, err := ParseDC(FormatDC(dc))
	require.NoError(t, err)
	assert.Equal(t, dc, again)
}
