package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-auth-otp/internal/domain"
	jwtinfra "github.com/go-auth-otp/internal/infrastructure/jwt"
)

type contextKey string

const userKey contextKey = "user"

type tokenVerifier interface {
	Verify(token string) (*jwtinfra.Claims, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// Auth returns middleware that validates the Bearer JWT, re-resolves the
// account, and enforces the session-integrity checks: the account must
// still exist, the token must not predate a password change, and the
// session version it carries must match the account's current one. The
// resolved account is injected into the request context.
func Auth(verifier tokenVerifier, users userStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "you are not logged in, please log in to get access")
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := verifier.Verify(tokenStr)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			u, err := users.Get(r.Context(), claims.Subject)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "the user belonging to this token no longer exists")
				return
			}

			// Token issued-at carries second precision, so the change
			// timestamp is floored to seconds before comparing; a token
			// minted in the same second as a password change stays valid.
			if u.PasswordChangedAt != nil && claims.IssuedAt != nil &&
				claims.IssuedAt.Time.Before(u.PasswordChangedAt.Truncate(time.Second)) {
				writeJSONError(w, http.StatusUnauthorized, "password recently changed, please log in again")
				return
			}

			if u.SessionVersion == nil || claims.SessionVersion != *u.SessionVersion {
				writeJSONError(w, http.StatusUnauthorized, "session is no longer valid, please log in again")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext extracts the resolved account from the request context.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(userKey).(*domain.User)
	return u, ok
}
