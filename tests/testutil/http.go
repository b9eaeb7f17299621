package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope mirrors the API response wrapper with the payload left raw.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"requestId"`
		Details   []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	} `json:"error"`
	Meta *struct {
		Total      int64 `json:"total"`
		Page       int   `json:"page"`
		PageSize   int   `json:"pageSize"`
		TotalPages int   `json:"totalPages"`
	} `json:"meta"`
}

// Request describes one call against an engine.
type Request struct {
	Method  string
	Path    string
	Body    any // encoded as JSON unless it is an io.Reader
	Token   string
	Headers map[string]string
}

// Do serves req on engine and returns the recorder.
func Do(t *testing.T, engine *gin.Engine, req Request) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	switch b := req.Body.(type) {
	case nil:
	case io.Reader:
		body = b
	default:
		body = ToJSONReader(t, b)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	r := httptest.NewRequest(method, req.Path, body)
	if _, isReader := req.Body.(io.Reader); req.Body != nil && !isReader {
		r.Header.Set("Content-Type", "application/json")
	}
	if req.Token != "" {
		r.Header.Set("Authorization", "Bearer "+req.Token)
	}
	for k, v := range req.Headers {
		r.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, r)
	return w
}

// DecodeEnvelope parses the response wrapper.
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "Failed to parse JSON response: %s", w.Body.String())
	return env
}

// DecodeData parses the response wrapper and its data payload into T.
func DecodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	env := DecodeEnvelope(t, w)
	require.True(t, env.Success, "Expected success response, got %s", w.Body.String())

	var data T
	require.NoError(t, json.Unmarshal(env.Data, &data), "Failed to parse response data")
	return data
}

// AssertErrorCode asserts the status and error code of a failed response.
func AssertErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	assert.Equal(t, status, w.Code, "Unexpected status code: %s", w.Body.String())
	env := DecodeEnvelope(t, w)
	assert.False(t, env.Success, "Expected success to be false")
	require.NotNil(t, env.Error, "Expected error object in response")
	assert.Equal(t, code, env.Error.Code, "Unexpected error code")
}

// ToJSONReader converts a value to a JSON io.Reader.
func ToJSONReader(t *testing.T, v any) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err, "Failed to marshal to JSON")
	return bytes.NewReader(data)
}

// MultipartFile is one file part of a multipart body.
type MultipartFile struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// Multipart builds a multipart/form-data body and returns it with its
// content type.
func Multipart(t *testing.T, fields map[string]string, files ...MultipartFile) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		h := make(map[string][]string)
		h["Content-Disposition"] = []string{`form-data; name="` + f.Field + `"; filename="` + f.Filename + `"`}
		h["Content-Type"] = []string{f.ContentType}
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.Data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}
