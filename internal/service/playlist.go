// Package service contains the business logic layer of the application.
//
// The layering follows the usual shape:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces ownership, orchestrates
//	Repository (data layer)  → reads/writes the database
//
// Services receive repository interfaces, not concrete types, so tests can
// inject in-memory mocks and the HTTP layer never touches SQL.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/moodtune/playlist-api/internal/apperror"
	"github.com/moodtune/playlist-api/internal/model"
	"github.com/moodtune/playlist-api/internal/repository"
)

// Validation and pagination constants. The limits are this service's
// explicit contract — the boundary where free-form client JSON becomes
// trusted data.
const (
	MaxNameLength        = 120
	MaxDescriptionLength = 2000
	MaxCategoryLength    = 50
	MaxTags              = 20
	MaxTagLength         = 40
	MaxPlaylistEntries   = 500 // tracks and videos, each

	DefaultPageSize = 20
	MaxPageSize     = 50
	SearchPageSize  = 20 // fixed, not caller-configurable
)

// PlaylistService handles playlist CRUD, visibility, and the listing and
// search queries.
type PlaylistService struct {
	playlists repository.PlaylistRepository
	logger    *slog.Logger
}

func NewPlaylistService(playlists repository.PlaylistRepository, logger *slog.Logger) *PlaylistService {
	return &PlaylistService{
		playlists: playlists,
		logger:    logger,
	}
}

// PlaylistInput carries the client-settable fields for creation.
// IsPublic defaults to true when omitted.
type PlaylistInput struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Tags        []string      `json:"tags"`
	Tracks      []model.Track `json:"tracks"`
	Videos      []model.Video `json:"videos"`
	IsPublic    *bool         `json:"isPublic"`
}

// PlaylistPatch carries a partial update: nil fields are left unchanged,
// so a client can clear the description (empty string) without touching
// anything else. Owner, counters, and timestamps are not client-writable.
type PlaylistPatch struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Category    *string        `json:"category"`
	Tags        *[]string      `json:"tags"`
	Tracks      *[]model.Track `json:"tracks"`
	Videos      *[]model.Video `json:"videos"`
	IsPublic    *bool          `json:"isPublic"`
}

// ListOptions are the public-feed query parameters before clamping.
type ListOptions struct {
	Category string
	Tag      string
	Page     int
	Limit    int
}

// SearchOptions are the search query parameters. Page size is fixed.
type SearchOptions struct {
	Query    string
	Category string
	Tag      string
	Page     int
}

// PageResult bundles a page slice with the envelope fields the API
// returns alongside it. Total is computed under the same filter as the
// slice, so it is correct even when the page itself is empty.
type PageResult struct {
	Playlists []model.Playlist
	Total     int
	Page      int
	Limit     int
}

// Create validates and saves a new playlist owned by ownerID.
func (s *PlaylistService) Create(ctx context.Context, ownerID string, input PlaylistInput) (*model.Playlist, error) {
	name := strings.TrimSpace(input.Name)
	if err := validateContent(name, input.Description, input.Category, input.Tags, input.Tracks, input.Videos); err != nil {
		return nil, err
	}

	isPublic := true
	if input.IsPublic != nil {
		isPublic = *input.IsPublic
	}

	playlist := &model.Playlist{
		UserID:      ownerID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		Tags:        input.Tags,
		Tracks:      input.Tracks,
		Videos:      input.Videos,
		IsPublic:    isPublic,
	}

	if err := s.playlists.Create(ctx, playlist); err != nil {
		s.logger.Error("failed to create playlist",
			slog.String("owner", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating playlist: %w", err)
	}

	s.logger.Info("playlist created",
		slog.String("id", playlist.ID),
		slog.String("owner", ownerID),
	)

	return playlist, nil
}

// Get fetches a playlist for public detail viewing.
//
// A missing playlist is NotFound; a private one is Forbidden — existence
// is checked first, matching the API contract of 404 before 403. Every
// successful fetch bumps play_count by one, unconditionally: repeated
// fetches inflate the count, which is accepted behavior, not a bug. The
// returned playlist carries the counts as read, before the bump.
func (s *PlaylistService) Get(ctx context.Context, id string) (*model.Playlist, error) {
	playlist, err := s.playlists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !playlist.IsPublic {
		return nil, apperror.Forbidden("playlist is private")
	}

	if err := s.playlists.IncrementPlayCount(ctx, id); err != nil {
		s.logger.Error("failed to increment play count",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("incrementing play count: %w", err)
	}

	return playlist, nil
}

// Update applies a partial update to a playlist owned by requesterID.
// The guard order is part of the contract: a missing playlist reports
// NotFound even to a stranger, and only an existing playlist owned by
// someone else reports Forbidden.
func (s *PlaylistService) Update(ctx context.Context, requesterID, id string, patch PlaylistPatch) (*model.Playlist, error) {
	playlist, err := s.playlists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if playlist.UserID != requesterID {
		return nil, apperror.Forbidden("only the owner may modify this playlist")
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperror.ValidationFailed("name", "playlist name is required")
		}
		playlist.Name = name
	}
	if patch.Description != nil {
		playlist.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Category != nil {
		playlist.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Tags != nil {
		playlist.Tags = *patch.Tags
	}
	if patch.Tracks != nil {
		playlist.Tracks = *patch.Tracks
	}
	if patch.Videos != nil {
		playlist.Videos = *patch.Videos
	}
	if patch.IsPublic != nil {
		playlist.IsPublic = *patch.IsPublic
	}

	if err := validateContent(playlist.Name, playlist.Description, playlist.Category,
		playlist.Tags, playlist.Tracks, playlist.Videos); err != nil {
		return nil, err
	}

	if err := s.playlists.Update(ctx, playlist); err != nil {
		s.logger.Error("failed to update playlist",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating playlist: %w", err)
	}

	s.logger.Info("playlist updated", slog.String("id", id))

	return playlist, nil
}

// Delete removes a playlist owned by requesterID, cascading to its likes,
// bookmarks, and comments. Same 404-before-403 guard order as Update.
func (s *PlaylistService) Delete(ctx context.Context, requesterID, id string) error {
	playlist, err := s.playlists.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if playlist.UserID != requesterID {
		return apperror.Forbidden("only the owner may delete this playlist")
	}

	if err := s.playlists.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("playlist deleted", slog.String("id", id))
	return nil
}

// ListPublic returns a page of the public feed, newest first. Page and
// limit are silently clamped, never rejected: page < 1 becomes 1, a
// missing limit becomes DefaultPageSize, an oversized one MaxPageSize.
func (s *PlaylistService) ListPublic(ctx context.Context, opts ListOptions) (*PageResult, error) {
	page := opts.Page
	if page < 1 {
		page = 1
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	filter := repository.PlaylistFilter{
		Category: opts.Category,
		Tag:      opts.Tag,
	}

	playlists, total, err := s.playlists.ListPublic(ctx, filter, repository.Page{
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		s.logger.Error("failed to list playlists", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing playlists: %w", err)
	}

	return &PageResult{Playlists: playlists, Total: total, Page: page, Limit: limit}, nil
}

// Search returns public playlists ordered by like count descending, ties
// broken by creation time descending. An empty query matches everything —
// search with no terms is just a popularity-ordered feed.
func (s *PlaylistService) Search(ctx context.Context, opts SearchOptions) (*PageResult, error) {
	page := opts.Page
	if page < 1 {
		page = 1
	}

	filter := repository.PlaylistFilter{
		NameQuery: strings.TrimSpace(opts.Query),
		Category:  opts.Category,
		Tag:       opts.Tag,
	}

	playlists, total, err := s.playlists.SearchPublic(ctx, filter, repository.Page{
		Limit:  SearchPageSize,
		Offset: (page - 1) * SearchPageSize,
	})
	if err != nil {
		s.logger.Error("failed to search playlists", slog.String("error", err.Error()))
		return nil, fmt.Errorf("searching playlists: %w", err)
	}

	return &PageResult{Playlists: playlists, Total: total, Page: page, Limit: SearchPageSize}, nil
}

// ListMine returns all of the requester's playlists, private ones
// included, newest first.
func (s *PlaylistService) ListMine(ctx context.Context, userID string) ([]model.Playlist, error) {
	playlists, err := s.playlists.ListByOwner(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list own playlists",
			slog.String("user", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing own playlists: %w", err)
	}
	return playlists, nil
}

// validateContent enforces the field limits shared by Create and Update.
func validateContent(name, description, category string, tags []string, tracks []model.Track, videos []model.Video) error {
	if strings.TrimSpace(name) == "" {
		return apperror.ValidationFailed("name", "playlist name is required")
	}
	if len(name) > MaxNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("playlist name must be %d characters or less", MaxNameLength))
	}
	if len(description) > MaxDescriptionLength {
		return apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
	}
	if len(category) > MaxCategoryLength {
		return apperror.ValidationFailed("category",
			fmt.Sprintf("category must be %d characters or less", MaxCategoryLength))
	}
	if len(tags) > MaxTags {
		return apperror.ValidationFailed("tags",
			fmt.Sprintf("at most %d tags are allowed", MaxTags))
	}
	for _, tag := range tags {
		if tag == "" {
			return apperror.ValidationFailed("tags", "tags must not be empty")
		}
		if len(tag) > MaxTagLength {
			return apperror.ValidationFailed("tags",
				fmt.Sprintf("each tag must be %d characters or less", MaxTagLength))
		}
	}
	if len(tracks) > MaxPlaylistEntries {
		return apperror.ValidationFailed("tracks",
			fmt.Sprintf("at most %d tracks are allowed", MaxPlaylistEntries))
	}
	if len(videos) > MaxPlaylistEntries {
		return apperror.ValidationFailed("videos",
			fmt.Sprintf("at most %d videos are allowed", MaxPlaylistEntries))
	}
	return nil
}
