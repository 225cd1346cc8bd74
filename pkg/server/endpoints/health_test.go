package endpoints

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestHealth(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		ts := newTestServer(t)
		ts.health.On("CheckConnectivity", mock.Anything).Return(nil)
		ts.auth.On("Status", mock.Anything).Return(nil)

		w := ts.do(jsonRequest(http.MethodGet, "/health", ""))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok","authenticator":"mock"}`, w.Body.String())
	})

	t.Run("record store down", func(t *testing.T) {
		ts := newTestServer(t)
		ts.health.On("CheckConnectivity", mock.Anything).Return(errors.New("dial tcp: connection refused"))

		w := ts.do(jsonRequest(http.MethodGet, "/health", ""))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"error","error":"record store connectivity check failed"}`, w.Body.String())
	})

	t.Run("authenticator down", func(t *testing.T) {
		ts := newTestServer(t)
		ts.health.On("CheckConnectivity", mock.Anything).Return(nil)
		ts.auth.On("Status", mock.Anything).Return(errors.New("auth api: unexpected status 502"))

		w := ts.do(jsonRequest(http.MethodGet, "/health", ""))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"error","error":"authenticator mock is unavailable"}`, w.Body.String())
	})
}
