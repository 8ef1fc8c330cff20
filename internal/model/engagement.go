package model

import "time"

// Like records that a user liked a playlist.
//
// At most one like may exist per (UserID, PlaylistID) — the DB enforces
// this with a UNIQUE constraint, which is the sole mechanism preventing a
// double-like when the same user fires two requests at once. Every like
// insert/delete is paired with the matching likeCount adjustment in one
// transaction (see repository/sqlite).
type Like struct {
	ID         string    `json:"id"         db:"id"`
	UserID     string    `json:"userId"     db:"user_id"`
	PlaylistID string    `json:"playlistId" db:"playlist_id"`
	CreatedAt  time.Time `json:"createdAt"  db:"created_at"`
}

// Bookmark records that a user saved a playlist for later.
//
// Same (UserID, PlaylistID) uniqueness as Like but an independent
// lifecycle — bookmarking doesn't imply liking. Bookmarks keep no
// denormalized counter; they are a pure presence relation.
type Bookmark struct {
	ID         string    `json:"id"         db:"id"`
	UserID     string    `json:"userId"     db:"user_id"`
	PlaylistID string    `json:"playlistId" db:"playlist_id"`
	CreatedAt  time.Time `json:"createdAt"  db:"created_at"`

	// Playlist is embedded (with its owner) in the bookmark feed.
	Playlist *Playlist `json:"playlist,omitempty"`
}

// Comment is free-text attached to a playlist, deletable only by its author.
type Comment struct {
	ID         string    `json:"id"         db:"id"`
	UserID     string    `json:"userId"     db:"user_id"`
	PlaylistID string    `json:"playlistId" db:"playlist_id"`
	Content    string    `json:"content"    db:"content"`
	CreatedAt  time.Time `json:"createdAt"  db:"created_at"`

	Owner *UserSummary `json:"user,omitempty"`
}
