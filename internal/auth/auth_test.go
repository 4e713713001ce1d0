package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"impactdash/domain/core"
	"impactdash/internal/config"
)

func newTestAuth(t *testing.T, clock core.Clock) *Authenticator {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("geheim"), bcrypt.MinCost)
	require.NoError(t, err)
	return New(config.AuthConfig{
		Username:     "admin",
		PasswordHash: string(hash),
		Secret:       "test-secret",
		TokenTTL:     9 * time.Hour,
	}, clock, nil)
}

func TestVerify(t *testing.T) {
	a := newTestAuth(t, nil)

	user, err := a.Verify("admin", "geheim")
	require.NoError(t, err)
	assert.Equal(t, Admin, user)

	_, err = a.Verify("admin", "falsch")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = a.Verify("root", "geheim")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyWithoutHashAlwaysFails(t *testing.T) {
	a := New(config.AuthConfig{Username: "admin", Secret: "s"}, nil, nil)
	_, err := a.Verify("admin", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestTokenExpiry(t *testing.T) {
	clock := core.NewManualClock(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))
	a := newTestAuth(t, clock)

	token, expires, err := a.IssueToken("admin")
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(9*time.Hour), expires)

	claims, err := a.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)

	clock.Advance(9*time.Hour + time.Second)
	_, err = a.ParseToken(token)
	assert.Error(t, err)
}

func TestTokenFromOtherSecretRejected(t *testing.T) {
	a := newTestAuth(t, nil)
	other := New(config.AuthConfig{Secret: "other"}, nil, nil)

	token, _, err := other.IssueToken("admin")
	require.NoError(t, err)
	_, err = a.ParseToken(token)
	assert.Error(t, err)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("geheim")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, HashCost, cost)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("geheim")))

	_, err = HashPassword("")
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a := newTestAuth(t, nil)
	token, _, err := a.IssueToken("admin")
	require.NoError(t, err)

	r := gin.New()
	r.Use(a.Middleware())
	for _, p := range []string{"/", "/login", "/news", "/api/news", "/api/chat", "/api/newsletter/subscribe", "/healthz"} {
		r.GET(p, func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	}

	tests := []struct {
		path     string
		loggedIn bool
		status   int
		location string
	}{
		{path: "/", status: http.StatusFound, location: "/login"},
		{path: "/api/chat", status: http.StatusUnauthorized},
		{path: "/api/news", status: http.StatusOK},
		{path: "/api/newsletter/subscribe", status: http.StatusOK},
		{path: "/news", status: http.StatusOK},
		{path: "/healthz", status: http.StatusOK},
		{path: "/login", status: http.StatusOK},
		{path: "/", loggedIn: true, status: http.StatusOK},
		{path: "/api/chat", loggedIn: true, status: http.StatusOK},
		{path: "/login", loggedIn: true, status: http.StatusFound, location: "/"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		if tt.loggedIn {
			req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, tt.status, w.Code, "%s loggedIn=%v", tt.path, tt.loggedIn)
		if tt.location != "" {
			assert.Equal(t, tt.location, w.Header().Get("Location"))
		}
	}
}
