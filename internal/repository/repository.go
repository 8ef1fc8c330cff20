// Package repository defines the storage interfaces the service layer
// programs against. The sqlite subpackage is the concrete implementation;
// tests substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/moodtune/playlist-api/internal/model"
)

// PlaylistFilter narrows public playlist queries. Zero-value fields are
// ignored, so the empty filter matches every public playlist.
type PlaylistFilter struct {
	NameQuery string // case-insensitive substring on name (search only)
	Category  string // exact match
	Tag       string // tag-set containment
}

// Page is a resolved limit/offset pair. Clamping caller input to sane
// values is the service layer's job; the repository trusts what it gets.
type Page struct {
	Limit  int
	Offset int
}

type UserRepository interface {
	// Upsert creates the user on first login, keyed by the provider UID,
	// or refreshes the profile fields on later logins. Either way the
	// model is populated with the canonical ID and timestamps.
	Upsert(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUID(ctx context.Context, uid string) (*model.User, error)
}

type PlaylistRepository interface {
	Create(ctx context.Context, playlist *model.Playlist) error
	// GetByID returns the playlist with its owner summary embedded,
	// public or not — visibility policy belongs to the service.
	GetByID(ctx context.Context, id string) (*model.Playlist, error)
	Update(ctx context.Context, playlist *model.Playlist) error
	// Delete removes the playlist; likes, bookmarks, and comments cascade.
	Delete(ctx context.Context, id string) error

	// ListPublic returns a page of public playlists ordered by creation
	// time descending, plus the total count under the same filter.
	ListPublic(ctx context.Context, filter PlaylistFilter, page Page) ([]model.Playlist, int, error)
	// SearchPublic is ListPublic ordered by like count descending, ties
	// broken by creation time descending.
	SearchPublic(ctx context.Context, filter PlaylistFilter, page Page) ([]model.Playlist, int, error)
	// ListByOwner returns all of a user's playlists (private included),
	// newest first, unpaginated.
	ListByOwner(ctx context.Context, userID string) ([]model.Playlist, error)

	// IncrementPlayCount atomically bumps play_count by one.
	IncrementPlayCount(ctx context.Context, id string) error
}

type EngagementRepository interface {
	// CreateLike inserts the like row and increments the playlist's
	// like_count in one transaction. Returns apperror.ErrConflict if the
	// user already liked the playlist (counter untouched).
	CreateLike(ctx context.Context, userID, playlistID string) error
	// DeleteLike removes the like row and decrements like_count in one
	// transaction. Returns apperror.ErrNotFound if no like exists.
	DeleteLike(ctx context.Context, userID, playlistID string) error

	CreateBookmark(ctx context.Context, userID, playlistID string) error
	DeleteBookmark(ctx context.Context, userID, playlistID string) error
	// ListBookmarks returns the user's bookmarks newest-first, each with
	// the bookmarked playlist (and its owner) embedded.
	ListBookmarks(ctx context.Context, userID string) ([]model.Bookmark, error)

	CreateComment(ctx context.Context, comment *model.Comment) error
	GetCommentByID(ctx context.Context, id string) (*model.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	// ListComments returns a playlist's comments oldest-first with owner
	// summaries embedded.
	ListComments(ctx context.Context, playlistID string) ([]model.Comment, error)
}
