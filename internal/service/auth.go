package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/moodtune/playlist-api/internal/apperror"
	"github.com/moodtune/playlist-api/internal/identity"
	"github.com/moodtune/playlist-api/internal/model"
	"github.com/moodtune/playlist-api/internal/repository"
)

// AuthService orchestrates login: verify the provider token, then upsert
// the user record.
//
// This is the only place a user row is ever created — the first
// successful login inserts it, every later login refreshes the profile
// fields from the token's claims.
type AuthService struct {
	users    repository.UserRepository
	verifier identity.Verifier
	logger   *slog.Logger
}

func NewAuthService(users repository.UserRepository, verifier identity.Verifier, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		verifier: verifier,
		logger:   logger,
	}
}

// Login verifies a bearer token and upserts the corresponding user.
// An unverifiable token is Unauthenticated (401), never a 500 — the
// failure belongs to the credential, not the server.
func (s *AuthService) Login(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, apperror.Unauthenticated("missing bearer token")
	}

	ident, err := s.verifier.Verify(token)
	if err != nil {
		return nil, apperror.Unauthenticated("invalid or expired token")
	}

	user := &model.User{
		UID:         ident.UID,
		Email:       ident.Email,
		DisplayName: ident.DisplayName,
		PhotoURL:    ident.PhotoURL,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("upserting user (uid=%s): %w", ident.UID, err)
	}

	s.logger.Info("user logged in",
		slog.String("userID", user.ID),
		slog.String("uid", user.UID),
	)

	return user, nil
}
