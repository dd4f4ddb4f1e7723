package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-auth-otp/internal/config"
	"github.com/go-auth-otp/internal/domain"
	jwtinfra "github.com/go-auth-otp/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUserStore struct {
	u   *domain.User
	err error
}

func (s *stubUserStore) Get(_ context.Context, _ string) (*domain.User, error) {
	return s.u, s.err
}

func newGuardProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	p, err := jwtinfra.NewProvider(&config.Config{JWTSecret: "guard-secret", JWTExpiry: time.Hour})
	require.NoError(t, err)
	return p
}

func strPtr(s string) *string { return &s }

func okHandler(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func activeUser(version string) *domain.User {
	return &domain.User{
		UserID:         "u1",
		Role:           domain.RoleUser,
		IsVerified:     true,
		SessionVersion: strPtr(version),
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	p := newGuardProvider(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	Auth(p, &stubUserStore{u: activeUser("sv1")})(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_MalformedHeader(t *testing.T) {
	p := newGuardProvider(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rr := httptest.NewRecorder()
	Auth(p, &stubUserStore{u: activeUser("sv1")})(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_BadToken(t *testing.T) {
	p := newGuardProvider(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rr := httptest.NewRecorder()
	Auth(p, &stubUserStore{u: activeUser("sv1")})(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_AccountGone(t *testing.T) {
	p := newGuardProvider(t)
	signed, err := p.Sign("u1", "sv1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rr := httptest.NewRecorder()
	Auth(p, &stubUserStore{err: domain.ErrNotFound})(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_StaleSessionVersion(t *testing.T) {
	p := newGuardProvider(t)
	signed, err := p.Sign("u1", "sv1")
	require.NoError(t, err)

	// A later login rotated the account's version.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rr := httptest.NewRecorder()
	Auth(p, &stubUserStore{u: activeUser("sv2")})(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_NoSessionEverIssued(t *testing.T) {
	p := newGuardProvider(t)
	signed, err := p.Sign("u1", "sv1")
	require.NoError(t, err)

	u := activeUser("sv1")
	u.SessionVersion = nil
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rr := httptest.NewRecorder()
	Auth(p, &stubUserStore{u: u})(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_PasswordChangedAfterIssue(t *testing.T) {
	p := newGuardProvider(t)
	signed, err := p.Sign("u1", "sv1")
	require.NoError(t, err)

	u := activeUser("sv1")
	changed := time.Now().Add(time.Minute)
	u.PasswordChangedAt = &changed

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rr := httptest.NewRecorder()
	Auth(p, &stubUserStore{u: u})(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_PasswordChangedBeforeIssue_Allowed(t *testing.T) {
	p := newGuardProvider(t)
	signed, err := p.Sign("u1", "sv1")
	require.NoError(t, err)

	u := activeUser("sv1")
	changed := time.Now().Add(-time.Hour)
	u.PasswordChangedAt = &changed

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rr := httptest.NewRecorder()
	Auth(p, &stubUserStore{u: u})(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuth_PasswordChangedSameSecondAsIssue_Allowed(t *testing.T) {
	p := newGuardProvider(t)
	signed, err := p.Sign("u1", "sv1")
	require.NoError(t, err)

	// Issued-at is floored to the second, so a change a few hundred
	// milliseconds after signing lands in the same second as the token.
	claims, err := p.Verify(signed)
	require.NoError(t, err)
	u := activeUser("sv1")
	changed := claims.IssuedAt.Time.Add(500 * time.Millisecond)
	u.PasswordChangedAt = &changed

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rr := httptest.NewRecorder()
	Auth(p, &stubUserStore{u: u})(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuth_ValidToken_InjectsResolvedAccount(t *testing.T) {
	p := newGuardProvider(t)
	signed, err := p.Sign("u1", "sv1")
	require.NoError(t, err)

	var gotUser *domain.User
	captureHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rr := httptest.NewRecorder()
	Auth(p, &stubUserStore{u: activeUser("sv1")})(captureHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, gotUser)
	assert.Equal(t, "u1", gotUser.UserID)
	assert.Equal(t, domain.RoleUser, gotUser.Role)
}
