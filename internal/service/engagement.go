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

// MaxCommentLength bounds comment content; presence plus this cap is the
// whole validation contract for comments.
const MaxCommentLength = 1000

// EngagementService handles likes, bookmarks, and comments.
//
// It is deliberately thin over the repository: the hard consistency work
// (paired counter transactions, uniqueness) lives in the store protocol,
// and this layer adds ownership guards and validation on top.
type EngagementService struct {
	engagements repository.EngagementRepository
	users       repository.UserRepository
	logger      *slog.Logger
}

func NewEngagementService(
	engagements repository.EngagementRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *EngagementService {
	return &EngagementService{
		engagements: engagements,
		users:       users,
		logger:      logger,
	}
}

// Like records userID liking playlistID. A duplicate like surfaces as a
// conflict — detected, not silently re-applied — with the counter left
// untouched by the rolled-back transaction.
func (s *EngagementService) Like(ctx context.Context, userID, playlistID string) error {
	if err := s.engagements.CreateLike(ctx, userID, playlistID); err != nil {
		return err
	}

	s.logger.Info("playlist liked",
		slog.String("playlist", playlistID),
		slog.String("user", userID),
	)
	return nil
}

// Unlike removes userID's like from playlistID; NotFound if no like exists.
func (s *EngagementService) Unlike(ctx context.Context, userID, playlistID string) error {
	if err := s.engagements.DeleteLike(ctx, userID, playlistID); err != nil {
		return err
	}

	s.logger.Info("playlist unliked",
		slog.String("playlist", playlistID),
		slog.String("user", userID),
	)
	return nil
}

// Bookmark saves playlistID to userID's bookmarks; Conflict on duplicate.
func (s *EngagementService) Bookmark(ctx context.Context, userID, playlistID string) error {
	return s.engagements.CreateBookmark(ctx, userID, playlistID)
}

// Unbookmark removes the bookmark; NotFound if it never existed.
func (s *EngagementService) Unbookmark(ctx context.Context, userID, playlistID string) error {
	return s.engagements.DeleteBookmark(ctx, userID, playlistID)
}

// Bookmarks returns the user's bookmark feed, newest first, each entry
// embedding the playlist and its owner.
func (s *EngagementService) Bookmarks(ctx context.Context, userID string) ([]model.Bookmark, error) {
	bookmarks, err := s.engagements.ListBookmarks(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list bookmarks",
			slog.String("user", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing bookmarks: %w", err)
	}
	return bookmarks, nil
}

// AddComment attaches a comment by userID to playlistID. The returned
// comment carries the author's public summary so handlers can respond
// without a second lookup.
func (s *EngagementService) AddComment(ctx context.Context, userID, playlistID, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "comment content is required")
	}
	if len(content) > MaxCommentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("comment must be %d characters or less", MaxCommentLength))
	}

	comment := &model.Comment{
		UserID:     userID,
		PlaylistID: playlistID,
		Content:    content,
	}
	if err := s.engagements.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	author, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading comment author: %w", err)
	}
	comment.Owner = author.Summary()

	s.logger.Info("comment created",
		slog.String("id", comment.ID),
		slog.String("playlist", playlistID),
	)

	return comment, nil
}

// Comments returns a playlist's comments oldest-first.
func (s *EngagementService) Comments(ctx context.Context, playlistID string) ([]model.Comment, error) {
	comments, err := s.engagements.ListComments(ctx, playlistID)
	if err != nil {
		s.logger.Error("failed to list comments",
			slog.String("playlist", playlistID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return comments, nil
}

// DeleteComment removes a comment owned by requesterID. Existence is
// checked before ownership: a missing comment is NotFound for everyone,
// Forbidden is reserved for existing comments owned by someone else.
func (s *EngagementService) DeleteComment(ctx context.Context, requesterID, commentID string) error {
	comment, err := s.engagements.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != requesterID {
		return apperror.Forbidden("only the author may delete this comment")
	}

	if err := s.engagements.DeleteComment(ctx, commentID); err != nil {
		return err
	}

	s.logger.Info("comment deleted", slog.String("id", commentID))
	return nil
}
