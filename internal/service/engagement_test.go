package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/moodtune/playlist-api/internal/apperror"
	"github.com/moodtune/playlist-api/internal/model"
	"github.com/moodtune/playlist-api/internal/repository"
)

// mockEngagementRepo keys likes and bookmarks by "userID|playlistID",
// mirroring the store's UNIQUE (user_id, playlist_id) behavior.
type mockEngagementRepo struct {
	likes     map[string]bool
	bookmarks map[string]bool
	comments  map[string]*model.Comment
	nextID    int
}

func newMockEngagementRepo() *mockEngagementRepo {
	return &mockEngagementRepo{
		likes:     make(map[string]bool),
		bookmarks: make(map[string]bool),
		comments:  make(map[string]*model.Comment),
	}
}

func engagementKey(userID, playlistID string) string {
	return userID + "|" + playlistID
}

func (m *mockEngagementRepo) CreateLike(_ context.Context, userID, playlistID string) error {
	key := engagementKey(userID, playlistID)
	if m.likes[key] {
		return apperror.Conflict("playlist already liked")
	}
	m.likes[key] = true
	return nil
}

func (m *mockEngagementRepo) DeleteLike(_ context.Context, userID, playlistID string) error {
	key := engagementKey(userID, playlistID)
	if !m.likes[key] {
		return apperror.NotFound("like", playlistID)
	}
	delete(m.likes, key)
	return nil
}

func (m *mockEngagementRepo) CreateBookmark(_ context.Context, userID, playlistID string) error {
	key := engagementKey(userID, playlistID)
	if m.bookmarks[key] {
		return apperror.Conflict("playlist already bookmarked")
	}
	m.bookmarks[key] = true
	return nil
}

func (m *mockEngagementRepo) DeleteBookmark(_ context.Context, userID, playlistID string) error {
	key := engagementKey(userID, playlistID)
	if !m.bookmarks[key] {
		return apperror.NotFound("bookmark", playlistID)
	}
	delete(m.bookmarks, key)
	return nil
}

func (m *mockEngagementRepo) ListBookmarks(_ context.Context, userID string) ([]model.Bookmark, error) {
	var result []model.Bookmark
	for key := range m.bookmarks {
		if strings.HasPrefix(key, userID+"|") {
			result = append(result, model.Bookmark{
				UserID:     userID,
				PlaylistID: strings.TrimPrefix(key, userID+"|"),
			})
		}
	}
	return result, nil
}

func (m *mockEngagementRepo) CreateComment(_ context.Context, comment *model.Comment) error {
	m.nextID++
	comment.ID = fmt.Sprintf("comment-%d", m.nextID)
	stored := *comment
	m.comments[comment.ID] = &stored
	return nil
}

func (m *mockEngagementRepo) GetCommentByID(_ context.Context, id string) (*model.Comment, error) {
	comment, ok := m.comments[id]
	if !ok {
		return nil, apperror.NotFound("comment", id)
	}
	result := *comment
	return &result, nil
}

func (m *mockEngagementRepo) DeleteComment(_ context.Context, id string) error {
	if _, ok := m.comments[id]; !ok {
		return apperror.NotFound("comment", id)
	}
	delete(m.comments, id)
	return nil
}

func (m *mockEngagementRepo) ListComments(_ context.Context, playlistID string) ([]model.Comment, error) {
	result := []model.Comment{}
	for _, c := range m.comments {
		if c.PlaylistID == playlistID {
			result = append(result, *c)
		}
	}
	return result, nil
}

var _ repository.EngagementRepository = (*mockEngagementRepo)(nil)

type mockUserRepo struct {
	users map[string]*model.User
}

func (m *mockUserRepo) Upsert(_ context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = user.UID
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return user, nil
}

func (m *mockUserRepo) GetUserByUID(_ context.Context, uid string) (*model.User, error) {
	for _, u := range m.users {
		if u.UID == uid {
			return u, nil
		}
	}
	return nil, apperror.NotFound("user", uid)
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

func newTestEngagementService(t *testing.T) (*EngagementService, *mockEngagementRepo) {
	t.Helper()
	repo := newMockEngagementRepo()
	users := &mockUserRepo{users: map[string]*model.User{
		"user-1": {ID: "user-1", UID: "uid-1", DisplayName: "Ana"},
	}}
	return NewEngagementService(repo, users, testLogger()), repo
}

func TestLike_DuplicateIsConflict(t *testing.T) {
	svc, _ := newTestEngagementService(t)
	ctx := context.Background()

	if err := svc.Like(ctx, "user-1", "pl-1"); err != nil {
		t.Fatalf("Like() error = %v", err)
	}
	if err := svc.Like(ctx, "user-1", "pl-1"); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("second Like() error = %v, want ErrConflict", err)
	}
}

func TestUnlike_AbsentIsNotFound(t *testing.T) {
	svc, _ := newTestEngagementService(t)

	err := svc.Unlike(context.Background(), "user-1", "pl-1")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Unlike() error = %v, want ErrNotFound", err)
	}
}

func TestLikeUnlikeRoundTrip(t *testing.T) {
	svc, repo := newTestEngagementService(t)
	ctx := context.Background()

	if err := svc.Like(ctx, "user-1", "pl-1"); err != nil {
		t.Fatalf("Like() error = %v", err)
	}
	if err := svc.Unlike(ctx, "user-1", "pl-1"); err != nil {
		t.Fatalf("Unlike() error = %v", err)
	}
	if len(repo.likes) != 0 {
		t.Errorf("likes remaining = %d, want 0", len(repo.likes))
	}
}

func TestBookmark_DuplicateIsConflict(t *testing.T) {
	svc, _ := newTestEngagementService(t)
	ctx := context.Background()

	if err := svc.Bookmark(ctx, "user-1", "pl-1"); err != nil {
		t.Fatalf("Bookmark() error = %v", err)
	}
	if err := svc.Bookmark(ctx, "user-1", "pl-1"); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("second Bookmark() error = %v, want ErrConflict", err)
	}
	if err := svc.Unbookmark(ctx, "user-1", "pl-1"); err != nil {
		t.Fatalf("Unbookmark() error = %v", err)
	}
	if err := svc.Unbookmark(ctx, "user-1", "pl-1"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Unbookmark() error = %v, want ErrNotFound", err)
	}
}

func TestAddComment(t *testing.T) {
	svc, _ := newTestEngagementService(t)

	comment, err := svc.AddComment(context.Background(), "user-1", "pl-1", "  great mix  ")
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}

	if comment.Content != "great mix" {
		t.Errorf("Content = %q, want trimmed %q", comment.Content, "great mix")
	}
	if comment.Owner == nil || comment.Owner.DisplayName != "Ana" {
		t.Errorf("Owner = %+v, want Ana's summary", comment.Owner)
	}
}

func TestAddComment_Validation(t *testing.T) {
	svc, _ := newTestEngagementService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"whitespace only", "   \n\t "},
		{"too long", strings.Repeat("a", MaxCommentLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddComment(ctx, "user-1", "pl-1", tt.content)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("AddComment() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestDeleteComment_GuardOrder(t *testing.T) {
	svc, _ := newTestEngagementService(t)
	ctx := context.Background()

	comment, err := svc.AddComment(ctx, "user-1", "pl-1", "mine")
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}

	if err := svc.DeleteComment(ctx, "stranger", "nonexistent"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteComment(missing) error = %v, want ErrNotFound", err)
	}
	if err := svc.DeleteComment(ctx, "stranger", comment.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("DeleteComment(not author) error = %v, want ErrForbidden", err)
	}
	if err := svc.DeleteComment(ctx, "user-1", comment.ID); err != nil {
		t.Errorf("DeleteComment(author) error = %v", err)
	}
}
