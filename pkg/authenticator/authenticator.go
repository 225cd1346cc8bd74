package authenticator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrInvalidCredentials is returned when the email/password pair is rejected
var ErrInvalidCredentials = errors.New("Invalid login credentials")

// Authenticator defines the interface for password authenticators
type Authenticator interface {
	// Name returns the authenticator name (e.g., "gotrue", "local")
	Name() string

	// SignIn verifies the credentials and returns a session on success.
	// The error text is shown to the caller as is.
	SignIn(ctx context.Context, creds Credentials) (*Session, error)

	// Status checks if the authenticator's backend is reachable
	Status(ctx context.Context) error
}

// Credentials is an email/password pair
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is the result of a successful sign in
type Session struct {
	AccessToken string
	Email       string
}

// Registry holds the authenticators available to the server
type Registry struct {
	mu             sync.RWMutex
	authenticators map[string]Authenticator
}

// NewRegistry creates a new authenticator registry
func NewRegistry() *Registry {
	return &Registry{
		authenticators: make(map[string]Authenticator),
	}
}

// Register adds an authenticator to the registry
func (r *Registry) Register(auth Authenticator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.authenticators[auth.Name()] = auth
}

// Get returns an authenticator by name
func (r *Registry) Get(name string) (Authenticator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	auth, ok := r.authenticators[name]
	return auth, ok
}

// Lookup returns the named authenticator or an error naming the installed ones
func (r *Registry) Lookup(name string) (Authenticator, error) {
	if auth, ok := r.Get(name); ok {
		return auth, nil
	}
	return nil, fmt.Errorf("authenticator %q not found (installed: %v)", name, r.Installed())
}

// Installed returns all installed authenticator names, sorted
func (r *Registry) Installed() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.authenticators))
	for name := range r.authenticators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
