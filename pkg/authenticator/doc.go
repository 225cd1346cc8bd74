// Package authenticator defines the interface for password authenticators.
//
// The login endpoint exchanges an email and password for a bearer token
// through whichever authenticator the server is configured with.
//
// # Authenticator Interface
//
//	type Authenticator interface {
//	    Name() string
//	    SignIn(ctx context.Context, creds Credentials) (*Session, error)
//	    Status(ctx context.Context) error
//	}
//
// # Built-in Authenticators
//
//   - gotrue: the managed platform's auth API - see [github.com/casq89/mibauu-backend/pkg/authenticator/gotrue]
//   - local: bcrypt hashes in the users table, HS256 tokens - see [github.com/casq89/mibauu-backend/pkg/authenticator/authn]
//
// # Configuration
//
// The active authenticator is chosen with MIBAUU_AUTH_DRIVER (default gotrue).
package authenticator
