// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package connection

// The repository rejects a zero-length body when a datastream is
// added or modified, even when the request only changes metadata.
// Such requests get a one-part form with an empty file instead.

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
)

const ingestBoundary = "----------ThIs_Is_tHe_bouNdaRY"

func needsIngestForm(method string, target *url.URL, body []byte) bool {
	if len(body) != 0 {
		return false
	}
	if method != http.MethodPut && method != http.MethodPost {
		return false
	}
	return strings.Contains(target.Path, "datastreams/")
}

// ingestForm builds the placeholder form body and returns it with
// its content type.
func ingestForm(target *url.URL) ([]byte, string, error) {
	mimeType := target.Query().Get("mimeType")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.SetBoundary(ingestBoundary); err != nil {
		return nil, "", err
	}
	part := make(textproto.MIMEHeader)
	part.Set("Content-Disposition", `form-data; name="file"; filename="empty"`)
	part.Set("Content-Type", mimeType)
	if _, err := w.CreatePart(part); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
