// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"bytes"
	"io/ioutil"
	"os"
	"testing"
	"time"

	"github.com/diffeo/go-fedora/fedora"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	f, err := ioutil.TempFile("", "fedoractl")
	require.NoError(t, err)
	defer os.Remove(f.Name())
	_, err = f.WriteString(`url: http://repo.example.com/fedora
username: fedoraAdmin
password: secret
persistent: true
max_attempts: "5"
conflict_delay: 2s
`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	raw, err := loadConfigYaml(f.Name())
	require.NoError(t, err)
	config, err := decodeConfig(raw)
	if assert.NoError(t, err) {
		assert.Equal(t, fileConfig{
			URL:           "http://repo.example.com/fedora",
			Username:      "fedoraAdmin",
			Password:      "secret",
			Persistent:    true,
			MaxAttempts:   5,
			ConflictDelay: 2 * time.Second,
		}, config)
	}
}

func TestDecodeConfigUnknownKey(t *testing.T) {
	_, err := decodeConfig(map[string]interface{}{"uri": "http://example.com"})
	assert.Error(t, err)
}

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"a=1", "b=x=y", "a=2"})
	if assert.NoError(t, err) {
		assert.Equal(t, []string{"1", "2"}, params["a"])
		assert.Equal(t, "x=y", params.Get("b"))
	}
	_, err = parseParams([]string{"novalue"})
	assert.Error(t, err)
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	err := printJSON(&buf, fedora.ObjectProfile{Label: "Hi", State: "A"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"label":"Hi"`)
	assert.Contains(t, buf.String(), `"state":"A"`)
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))
}
