package testutils

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// FileField is a file part of a multipart form.
type FileField struct {
	Field    string
	Filename string
	Content  []byte
}

// NewMultipartRequest builds a multipart/form-data request.
func NewMultipartRequest(t *testing.T, method, target string, fields map[string]string, files ...FileField) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		require.NoError(t, err)
		_, err = part.Write(f.Content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

// NewJSONRequest builds a request with a JSON body.
func NewJSONRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DecodeJSON decodes a recorded response body into a map.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

// AssertErrorResponse checks the status code and that the error message
// contains want.
func AssertErrorResponse(t *testing.T, rec *httptest.ResponseRecorder, status int, want string) {
	t.Helper()

	assert.Equal(t, status, rec.Code, "body: %s", rec.Body.String())
	body := DecodeJSON(t, rec)
	msg, _ := body["error"].(string)
	assert.Contains(t, msg, want)
}
