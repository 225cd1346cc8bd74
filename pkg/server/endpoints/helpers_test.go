package endpoints

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/casq89/mibauu-backend/pkg/server"
)

// testServer bundles a server wired to mocks
type testServer struct {
	records *MockRecordStore
	objects *MockObjectStore
	health  *MockHealthStore
	auth    *MockAuthenticator
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		records: NewMockRecordStore(),
		objects: NewMockObjectStore(),
		health:  NewMockHealthStore(),
		auth:    NewMockAuthenticator(),
	}
	srv := server.NewServer(nil, server.Stores{
		Records: ts.records,
		Objects: ts.objects,
		Health:  ts.health,
	}, ts.auth, zerolog.Nop(), "127.0.0.1", "0")
	RegisterAll(srv)
	ts.handler = srv.Handler()

	t.Cleanup(func() {
		ts.records.AssertExpectations(t)
		ts.objects.AssertExpectations(t)
		ts.health.AssertExpectations(t)
		ts.auth.AssertExpectations(t)
	})
	return ts
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func jsonRequest(method, target, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// formFile is one file part of a multipart request
type formFile struct {
	field       string
	filename    string
	contentType string
	content     string
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, file *formFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+file.field+`"; filename="`+file.filename+`"`)
		if file.contentType != "" {
			h.Set("Content-Type", file.contentType)
		}
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(file.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// decode returns the response body as a generic JSON value
func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
