// Package auth implements the single-admin login wall.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	stderrors "errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"impactdash/domain/core"
	"impactdash/internal"
	"impactdash/internal/config"
	"impactdash/internal/errors"
)

const (
	// CookieName holds the signed session token
	CookieName = "impactdash_session"

	// HashCost is the bcrypt cost used by HashPassword
	HashCost = 10

	issuer = "impactdash"
)

// ErrInvalidCredentials is returned for any failed login
var ErrInvalidCredentials = errors.Unauthorized("Ungültige Anmeldedaten")

// Claims defines the structure of the JWT claims.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// User is the authenticated principal
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Admin is the only user the dashboard knows
var Admin = User{ID: "admin", Name: "Admin", Email: "admin@impactfactory.de"}

// Authenticator checks credentials and issues session tokens
type Authenticator struct {
	username     string
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	clock        core.Clock
	logger       *internal.Logger
}

// New creates an authenticator. Without AUTH_SECRET a random key is
// generated, so sessions do not survive a restart.
func New(cfg config.AuthConfig, clock core.Clock, logger *internal.Logger) *Authenticator {
	if clock == nil {
		clock = core.SystemClock{}
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		buf := make([]byte, 32)
		_, _ = rand.Read(buf)
		secret = []byte(hex.EncodeToString(buf))
		logger.Warn("[auth] AUTH_SECRET not set, using a random key; sessions end on restart")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 9 * time.Hour
	}
	username := cfg.Username
	if username == "" {
		username = "admin"
	}
	return &Authenticator{
		username:     username,
		passwordHash: []byte(cfg.PasswordHash),
		secret:       secret,
		ttl:          ttl,
		clock:        clock,
		logger:       logger,
	}
}

// TTL returns the session lifetime
func (a *Authenticator) TTL() time.Duration {
	return a.ttl
}

// Verify checks username and password against the configured admin
func (a *Authenticator) Verify(username, password string) (User, error) {
	if len(a.passwordHash) == 0 {
		a.logger.Error("[auth] ADMIN_PASSWORD_HASH not configured")
		return User{}, ErrInvalidCredentials
	}
	if username != a.username {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		if !stderrors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			a.logger.Error("[auth] password hash unusable: %v", err)
		}
		return User{}, ErrInvalidCredentials
	}
	return Admin, nil
}

// IssueToken signs a session token for username
func (a *Authenticator) IssueToken(username string) (string, time.Time, error) {
	now := a.clock.Now()
	expires := now.Add(a.ttl)
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   Admin.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "failed to sign session token")
	}
	return signed, expires, nil
}

// ParseToken validates a session token
func (a *Authenticator) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidCredentials
		}
		return a.secret, nil
	},
		jwt.WithTimeFunc(a.clock.Now),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, errors.Unauthorized("invalid session")
	}
	return claims, nil
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.InvalidInput("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
