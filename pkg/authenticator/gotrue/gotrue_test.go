package gotrue

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casq89/mibauu-backend/pkg/authenticator"
	"github.com/casq89/mibauu-backend/pkg/server/store/supabase"
)

func newServer(t *testing.T, handler http.HandlerFunc) *Authenticator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(supabase.NewClient(srv.URL, "anon-key", 5*time.Second))
}

func TestAuthenticator_Name(t *testing.T) {
	assert.Equal(t, "gotrue", New(supabase.NewClient("https://x", "k", time.Second)).Name())
}

func TestAuthenticator_SignIn_Success(t *testing.T) {
	auth := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ana@example.com", body["email"])
		assert.Equal(t, "secret", body["password"])

		_, _ = w.Write([]byte(`{"access_token":"jwt-token","token_type":"bearer","user":{"email":"ana@example.com"}}`))
	})

	session, err := auth.SignIn(context.Background(), authenticator.Credentials{Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", session.AccessToken)
	assert.Equal(t, "ana@example.com", session.Email)
}

func TestAuthenticator_SignIn_Rejected(t *testing.T) {
	auth := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":400,"error_code":"invalid_credentials","msg":"Invalid login credentials"}`))
	})

	_, err := auth.SignIn(context.Background(), authenticator.Credentials{Email: "ana@example.com", Password: "wrong"})
	assert.EqualError(t, err, "Invalid login credentials")
}

func TestAuthenticator_SignIn_MissingToken(t *testing.T) {
	auth := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := auth.SignIn(context.Background(), authenticator.Credentials{Email: "a@b.c", Password: "p"})
	assert.Error(t, err)
}

func TestAuthenticator_Status(t *testing.T) {
	auth := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"name":"GoTrue"}`))
	})
	assert.NoError(t, auth.Status(context.Background()))
}

func TestAuthenticator_Status_Down(t *testing.T) {
	auth := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"msg":"database unavailable"}`))
	})
	assert.EqualError(t, auth.Status(context.Background()), "auth api: database unavailable")
}

func TestAuthenticator_SignIn_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	auth := New(supabase.NewClient(srv.URL, "anon-key", time.Second))
	_, err := auth.SignIn(context.Background(), authenticator.Credentials{Email: "a@b.c", Password: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth request failed")
}
