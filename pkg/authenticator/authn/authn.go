// Package authn verifies passwords against the users table and issues
// HS256 bearer tokens.
package authn

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/casq89/mibauu-backend/pkg/authenticator"
	"github.com/casq89/mibauu-backend/pkg/model"
)

var _ authenticator.Authenticator = (*Authenticator)(nil)

// Issuer is the iss claim of locally issued tokens
const Issuer = "mibauu"

// Claims are the claims carried by locally issued tokens
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator implements local password authentication
type Authenticator struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// New creates a new local authenticator signing tokens with secret
func New(db *gorm.DB, secret []byte, ttl time.Duration) *Authenticator {
	return &Authenticator{
		db:     db,
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Name returns the authenticator name
func (a *Authenticator) Name() string {
	return "local"
}

// SignIn checks the password against the stored bcrypt hash
func (a *Authenticator) SignIn(ctx context.Context, creds authenticator.Credentials) (*authenticator.Session, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if email == "" || creds.Password == "" {
		return nil, authenticator.ErrInvalidCredentials
	}

	var user model.User
	row := a.db.WithContext(ctx).Raw(`SELECT id, email, encrypted_password FROM users WHERE lower(email) = ?`, email).Row()
	if err := row.Scan(&user.ID, &user.Email, &user.EncryptedPassword); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authenticator.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.EncryptedPassword), []byte(creds.Password)); err != nil {
		return nil, authenticator.ErrInvalidCredentials
	}

	now := a.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: user.Email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	})
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &authenticator.Session{AccessToken: signed, Email: user.Email}, nil
}

// Status checks if the authenticator is healthy
func (a *Authenticator) Status(ctx context.Context) error {
	return a.db.WithContext(ctx).Exec("SELECT 1").Error
}
