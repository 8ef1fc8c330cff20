package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/moodtune/playlist-api/internal/model"
)

// newTestDB opens a fresh in-memory database for a single test. The
// connection (and with it the whole database) is torn down in cleanup,
// so tests never see each other's rows.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, uid, displayName string) *model.User {
	t.Helper()
	user := &model.User{
		UID:         uid,
		Email:       uid + "@example.com",
		DisplayName: displayName,
	}
	if err := db.Upsert(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestPlaylist(t *testing.T, db *DB, ownerID, name string) *model.Playlist {
	t.Helper()
	playlist := &model.Playlist{
		UserID:   ownerID,
		Name:     name,
		Category: "chill",
		Tags:     []string{"lofi"},
		IsPublic: true,
	}
	if err := db.Create(context.Background(), playlist); err != nil {
		t.Fatalf("failed to create test playlist: %v", err)
	}
	return playlist
}

// countRows is used to assert on table state the public API doesn't
// expose directly, e.g. that cascade deletes left no orphans.
func countRows(t *testing.T, db *DB, table, column, value string) int {
	t.Helper()
	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", table, column)
	if err := db.conn.QueryRow(query, value).Scan(&n); err != nil {
		t.Fatalf("failed to count rows in %s: %v", table, err)
	}
	return n
}

func likeCount(t *testing.T, db *DB, playlistID string) int {
	t.Helper()
	playlist, err := db.GetByID(context.Background(), playlistID)
	if err != nil {
		t.Fatalf("failed to fetch playlist %s: %v", playlistID, err)
	}
	return playlist.LikeCount
}
