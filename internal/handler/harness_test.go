package handler_test

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"testing"

	"github.com/moodtune/playlist-api/internal/handler"
	"github.com/moodtune/playlist-api/internal/identity"
	"github.com/moodtune/playlist-api/internal/model"
	"github.com/moodtune/playlist-api/internal/repository/sqlite"
	"github.com/moodtune/playlist-api/internal/service"
)

// harness wires handlers to real services over an in-memory database.
// Handler tests exercise the full request path below the router: JSON
// decoding, service rules, storage, and the error-to-status mapping.
type harness struct {
	db          *sqlite.DB
	playlists   *handler.PlaylistHandler
	engagements *handler.EngagementHandler
	search      *handler.SearchHandler
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	playlistSvc := service.NewPlaylistService(db, logger)
	engagementSvc := service.NewEngagementService(db, db, logger)

	return &harness{
		db:          db,
		playlists:   handler.NewPlaylistHandler(playlistSvc, logger),
		engagements: handler.NewEngagementHandler(engagementSvc, logger),
		search:      handler.NewSearchHandler(playlistSvc, logger),
	}
}

func (h *harness) createUser(t *testing.T, uid, displayName string) *model.User {
	t.Helper()
	user := &model.User{UID: uid, Email: uid + "@example.com", DisplayName: displayName}
	if err := h.db.Upsert(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func (h *harness) createPlaylist(t *testing.T, ownerID, name string, isPublic bool) *model.Playlist {
	t.Helper()
	playlist := &model.Playlist{
		UserID:   ownerID,
		Name:     name,
		Category: "chill",
		IsPublic: isPublic,
	}
	if err := h.db.Create(context.Background(), playlist); err != nil {
		t.Fatalf("failed to create playlist: %v", err)
	}
	return playlist
}

// asUser marks the request as authenticated, the way RequireAuth would
// after verifying a token.
func asUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(identity.ContextWithUserID(r.Context(), userID))
}

// withID sets the {id} path value the router would have extracted.
func withID(r *http.Request, id string) *http.Request {
	r.SetPathValue("id", id)
	return r
}
