package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/moodtune/playlist-api/internal/model"
	"github.com/moodtune/playlist-api/internal/service"
)

// AuthHandler exposes the login endpoint.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type userResponse struct {
	User *model.User `json:"user"`
}

// HandleLogin verifies the bearer token from the identity provider and
// upserts the user record.
//
// HTTP: POST /api/auth/login
// Header: Authorization: Bearer <provider token>
//
// This is the registration path: a token whose UID has never been seen
// creates the user; a known UID refreshes the stored profile.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)

	user, err := h.auth.Login(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{User: user})
}

// bearerToken extracts the credential from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
