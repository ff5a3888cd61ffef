// Package testutil provides request builders and response decoders for
// handler and end-to-end tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewJSONRequest builds a request whose body is body marshaled to JSON.
func NewJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err, "failed to marshal request body")
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewRawRequest builds a JSON request with a literal body, for malformed input.
func NewRawRequest(t *testing.T, method, path, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// Do serves req on handler and returns the recorder.
func Do(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// Decode unmarshals the recorded body into T.
func Decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), "failed to unmarshal response: %s", rr.Body.String())
	return out
}

// ErrorMessage returns the "error" field of a JSON error reply.
func ErrorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return Decode[map[string]string](t, rr)["error"]
}

// RequireError asserts status and error message together.
func RequireError(t *testing.T, rr *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	require.Equal(t, status, rr.Code, "unexpected status, body: %s", rr.Body.String())
	require.Equal(t, message, ErrorMessage(t, rr))
}
