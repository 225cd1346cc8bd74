package endpoints

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreflight(t *testing.T) {
	ts := newTestServer(t)

	for _, target := range []string{
		"/categories", "/products/1", "/offers", "/order-detail/9", "/consents",
		"/mobile-categories", "/mobile-offer/3", "/mobile-products", "/mobile-consents/dev-1", "/login",
	} {
		w := ts.do(jsonRequest(http.MethodOptions, target, ""))

		assert.Equal(t, http.StatusOK, w.Code, target)
		assert.Equal(t, "ok", w.Body.String(), target)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"), target)
		assert.Equal(t, "authorization, x-client-info, apikey, content-type", w.Header().Get("Access-Control-Allow-Headers"), target)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)

	cases := map[string]string{
		"/categories":        "GET, POST, PUT, DELETE, OPTIONS",
		"/products/4":        "GET, POST, PUT, DELETE, OPTIONS",
		"/offers":            "GET, POST, PUT, DELETE, OPTIONS",
		"/order-detail":      "GET, POST, PUT, DELETE, OPTIONS",
		"/consents":          "GET, OPTIONS",
		"/mobile-categories": "GET, OPTIONS",
		"/mobile-offer":      "GET, OPTIONS",
		"/mobile-products/1": "GET, PUT, OPTIONS",
		"/mobile-consents":   "GET, POST, OPTIONS",
	}
	for target, allow := range cases {
		w := ts.do(jsonRequest(http.MethodPatch, target, `{}`))

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, target)
		assert.Equal(t, allow, w.Header().Get("Allow"), target)
		assert.JSONEq(t, `{"error":"Method is not allowed"}`, w.Body.String(), target)
	}

	w := ts.do(jsonRequest(http.MethodDelete, "/consents/1", ""))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestAllowHeader(t *testing.T) {
	assert.Equal(t, "GET, PUT, OPTIONS", allowHeader(map[string]bool{"OPTIONS": true, "PUT": true, "GET": true}))
	assert.Equal(t, "", allowHeader(nil))
}
