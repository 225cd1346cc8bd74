// Package gotrue signs users in through the managed platform's auth API.
package gotrue

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/casq89/mibauu-backend/pkg/authenticator"
	"github.com/casq89/mibauu-backend/pkg/server/store/supabase"
)

var _ authenticator.Authenticator = (*Authenticator)(nil)

// Authenticator implements password sign in against /auth/v1
type Authenticator struct {
	client *supabase.Client
}

// New creates a new platform authenticator sharing the client's key and timeout
func New(client *supabase.Client) *Authenticator {
	return &Authenticator{client: client}
}

// Name returns the authenticator name
func (a *Authenticator) Name() string {
	return "gotrue"
}

// SignIn exchanges email and password for an access token
func (a *Authenticator) SignIn(ctx context.Context, creds authenticator.Credentials) (*authenticator.Session, error) {
	query := url.Values{"grant_type": {"password"}}
	status, body, err := a.client.Call(ctx, http.MethodPost, "/auth/v1/token", query, creds)
	if err != nil {
		return nil, fmt.Errorf("auth request failed: %w", err)
	}
	if status < 200 || status >= 300 {
		return nil, errors.New(supabase.ErrorMessage(body, status))
	}

	token := gjson.GetBytes(body, "access_token").String()
	if token == "" {
		return nil, errors.New("auth response did not include an access token")
	}
	email := gjson.GetBytes(body, "user.email").String()
	if email == "" {
		email = creds.Email
	}
	return &authenticator.Session{AccessToken: token, Email: email}, nil
}

// Status checks the auth API health endpoint
func (a *Authenticator) Status(ctx context.Context) error {
	status, body, err := a.client.Call(ctx, http.MethodGet, "/auth/v1/health", nil, nil)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("auth api: %s", supabase.ErrorMessage(body, status))
	}
	return nil
}
