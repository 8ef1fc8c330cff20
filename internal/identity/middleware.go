package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/moodtune/playlist-api/internal/model"
)

// contextKey is an unexported type used for context keys in this package.
// A package-private type prevents collisions: only this package can create
// a key of type contextKey, so only this package can read or write the
// authenticated user ID in the context.
type contextKey string

const userIDKey contextKey = "userID"

// UserStore is the narrow slice of the user repository the middleware
// needs: resolving a provider UID to a registered user.
type UserStore interface {
	GetUserByUID(ctx context.Context, uid string) (*model.User, error)
}

// RequireAuth enforces authentication on protected routes.
//
// It reads the bearer token from the Authorization header, verifies it,
// and resolves the provider UID to a registered user. The user's internal
// ID is stored in the request context for handlers to read. A missing or
// invalid token — or a UID with no user row (token valid but never logged
// in) — ends the request with 401 Unauthorized.
func RequireAuth(verifier Verifier, users UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			ident, err := verifier.Verify(token)
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}

			user, err := users.GetUserByUID(r.Context(), ident.UID)
			if err != nil {
				// An unknown UID means the token is genuine but the account
				// was never registered via login — still a credential
				// problem, so 401, not 404.
				unauthorized(w, "user not registered")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), user.ID)))
		})
	}
}

// ContextWithUserID returns a context carrying the authenticated user's
// internal ID. Normally only RequireAuth calls this; tests use it to
// exercise protected handlers without a token round-trip.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext retrieves the authenticated user's internal ID from the
// request context.
//
// Returns ("", false) if the request is anonymous.
//
// Usage in handlers:
//
//	userID, ok := identity.UserIDFromContext(r.Context())
//	if !ok {
//	    // anonymous user
//	}
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// bearerToken extracts the credential from "Authorization: Bearer <token>".
// Returns "" if the header is missing or not a bearer scheme.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized","message":"` + message + `"}`))
}
