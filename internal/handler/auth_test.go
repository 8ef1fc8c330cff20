package handler_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodtune/playlist-api/internal/handler"
	"github.com/moodtune/playlist-api/internal/identity"
	"github.com/moodtune/playlist-api/internal/model"
	"github.com/moodtune/playlist-api/internal/repository/sqlite"
	"github.com/moodtune/playlist-api/internal/service"
)

const (
	authTestSecret = "handler-test-secret-0123456789"
	authTestIssuer = "moodtune-identity"
)

func newAuthHandler(t *testing.T) (*handler.AuthHandler, *sqlite.DB) {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	verifier, err := identity.NewTokenVerifier(authTestSecret, authTestIssuer)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return handler.NewAuthHandler(service.NewAuthService(db, verifier, logger), logger), db
}

func signedLoginToken(t *testing.T, uid, name string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  uid,
		"name": name,
		"iss":  authTestIssuer,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(authTestSecret))
	require.NoError(t, err)
	return signed
}

func TestHandleLogin(t *testing.T) {
	h, db := newAuthHandler(t)

	t.Run("first login registers the user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.Header.Set("Authorization", "Bearer "+signedLoginToken(t, "uid-1", "Ana"))
		rr := httptest.NewRecorder()

		h.HandleLogin(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var res struct {
			User *model.User `json:"user"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "uid-1", res.User.UID)
		assert.Equal(t, "Ana", res.User.DisplayName)
		assert.NotEmpty(t, res.User.ID)
	})

	t.Run("second login refreshes the profile, keeps the ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.Header.Set("Authorization", "Bearer "+signedLoginToken(t, "uid-1", "Ana Maria"))
		rr := httptest.NewRecorder()

		h.HandleLogin(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		user, err := db.GetUserByUID(req.Context(), "uid-1")
		require.NoError(t, err)
		assert.Equal(t, "Ana Maria", user.DisplayName)
	})

	t.Run("missing token is 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		rr := httptest.NewRecorder()

		h.HandleLogin(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)

		var res errorEnvelope
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "unauthorized", res.Error)
	})

	t.Run("forged token is 401", func(t *testing.T) {
		forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "uid-evil",
			"iss": authTestIssuer,
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		signed, err := forged.SignedString([]byte("wrong-secret-0123456789abcd"))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rr := httptest.NewRecorder()

		h.HandleLogin(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
