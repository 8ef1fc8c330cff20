package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/moodtune/playlist-api/internal/apperror"
	"github.com/moodtune/playlist-api/internal/model"
	"github.com/moodtune/playlist-api/internal/repository"
)

func TestCreatePlaylist(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "uid-1", "Ana")

	playlist := &model.Playlist{
		UserID:   owner.ID,
		Name:     "Morning Focus",
		Category: "focus",
		Tags:     []string{"instrumental", "lofi"},
		Tracks: []model.Track{
			{ID: "t1", Title: "Sunrise", Artist: "Kilo", Genre: "lofi"},
		},
		IsPublic: true,
	}

	if err := db.Create(context.Background(), playlist); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if playlist.ID == "" {
		t.Error("Create() did not set playlist.ID")
	}
	if playlist.CreatedAt.IsZero() {
		t.Error("Create() did not set playlist.CreatedAt")
	}

	stored, err := db.GetByID(context.Background(), playlist.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Name != "Morning Focus" {
		t.Errorf("Name = %q, want %q", stored.Name, "Morning Focus")
	}
	if len(stored.Tracks) != 1 || stored.Tracks[0].Title != "Sunrise" {
		t.Errorf("Tracks = %+v, want the one created track", stored.Tracks)
	}
	if stored.LikeCount != 0 || stored.PlayCount != 0 {
		t.Errorf("counters = (%d, %d), want (0, 0)", stored.LikeCount, stored.PlayCount)
	}
}

func TestCreatePlaylist_NilSlicesBecomeEmpty(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "uid-1", "Ana")

	playlist := &model.Playlist{UserID: owner.ID, Name: "Bare", IsPublic: true}
	if err := db.Create(context.Background(), playlist); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	stored, err := db.GetByID(context.Background(), playlist.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Tags == nil || stored.Tracks == nil || stored.Videos == nil {
		t.Error("payload slices should decode to empty, not nil")
	}
}

func TestGetByID_EmbedsOwner(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "uid-1", "Ana")
	playlist := createTestPlaylist(t, db, owner.ID, "Evening Jazz")

	stored, err := db.GetByID(context.Background(), playlist.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Owner == nil {
		t.Fatal("GetByID() did not embed the owner summary")
	}
	if stored.Owner.ID != owner.ID || stored.Owner.DisplayName != "Ana" {
		t.Errorf("Owner = %+v, want id=%s name=Ana", stored.Owner, owner.ID)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), "nonexistent")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestUpdatePlaylist(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "uid-1", "Ana")
	playlist := createTestPlaylist(t, db, owner.ID, "Old Name")

	playlist.Name = "New Name"
	playlist.IsPublic = false
	if err := db.Update(context.Background(), playlist); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	stored, err := db.GetByID(context.Background(), playlist.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Name != "New Name" {
		t.Errorf("Name = %q, want %q", stored.Name, "New Name")
	}
	if stored.IsPublic {
		t.Error("IsPublic = true, want false")
	}
}

func TestUpdatePlaylist_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Update(context.Background(), &model.Playlist{ID: "nonexistent", Name: "x"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestDeletePlaylist_CascadesEngagements(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "uid-1", "Ana")
	fan := createTestUser(t, db, "uid-2", "Ben")
	playlist := createTestPlaylist(t, db, owner.ID, "Doomed")

	ctx := context.Background()
	if err := db.CreateLike(ctx, fan.ID, playlist.ID); err != nil {
		t.Fatalf("CreateLike() error = %v", err)
	}
	if err := db.CreateBookmark(ctx, fan.ID, playlist.ID); err != nil {
		t.Fatalf("CreateBookmark() error = %v", err)
	}
	if err := db.CreateComment(ctx, &model.Comment{
		UserID: fan.ID, PlaylistID: playlist.ID, Content: "nice mix",
	}); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}

	if err := db.Delete(ctx, playlist.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	for _, table := range []string{"likes", "bookmarks", "comments"} {
		if n := countRows(t, db, table, "playlist_id", playlist.ID); n != 0 {
			t.Errorf("%s has %d orphaned rows after cascade delete, want 0", table, n)
		}
	}
}

func TestDeletePlaylist_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Delete(context.Background(), "nonexistent")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestListPublic_Pagination(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "uid-1", "Ana")

	for i := 0; i < 25; i++ {
		createTestPlaylist(t, db, owner.ID, fmt.Sprintf("Playlist %02d", i))
	}

	// Third page of 10 holds the remaining 5.
	playlists, total, err := db.ListPublic(context.Background(),
		repository.PlaylistFilter{}, repository.Page{Limit: 10, Offset: 20})
	if err != nil {
		t.Fatalf("ListPublic() error = %v", err)
	}
	if total != 25 {
		t.Errorf("total = %d, want 25", total)
	}
	if len(playlists) != 5 {
		t.Errorf("len(playlists) = %d, want 5", len(playlists))
	}

	// A page past the end is empty but still reports the full total.
	playlists, total, err = db.ListPublic(context.Background(),
		repository.PlaylistFilter{}, repository.Page{Limit: 20, Offset: 40})
	if err != nil {
		t.Fatalf("ListPublic() error = %v", err)
	}
	if total != 25 {
		t.Errorf("total = %d for past-the-end page, want 25", total)
	}
	if playlists == nil {
		t.Fatal("past-the-end page returned nil, want empty slice")
	}
	if len(playlists) != 0 {
		t.Errorf("len(playlists) = %d for past-the-end page, want 0", len(playlists))
	}
}

func TestListPublic_ExcludesPrivate(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "uid-1", "Ana")

	createTestPlaylist(t, db, owner.ID, "Public")

	private := &model.Playlist{UserID: owner.ID, Name: "Private", IsPublic: false}
	if err := db.Create(context.Background(), private); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	playlists, total, err := db.ListPublic(context.Background(),
		repository.PlaylistFilter{}, repository.Page{Limit: 20})
	if err != nil {
		t.Fatalf("ListPublic() error = %v", err)
	}
	if total != 1 || len(playlists) != 1 {
		t.Fatalf("got %d playlists (total %d), want 1", len(playlists), total)
	}
	if playlists[0].Name != "Public" {
		t.Errorf("Name = %q, want %q", playlists[0].Name, "Public")
	}
}

func TestListPublic_FilterByCategoryAndTag(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "uid-1", "Ana")
	ctx := context.Background()

	chill := &model.Playlist{
		UserID: owner.ID, Name: "Chill Vibes", Category: "chill",
		Tags: []string{"lofi", "rain"}, IsPublic: true,
	}
	workout := &model.Playlist{
		UserID: owner.ID, Name: "Gym Pump", Category: "workout",
		Tags: []string{"rock"}, IsPublic: true,
	}
	french := &model.Playlist{
		UserID: owner.ID, Name: "Déjà Vu", Category: "study",
		Tags: []string{"french"}, IsPublic: true,
	}
	for _, p := range []*model.Playlist{chill, workout, french} {
		if err := db.Create(ctx, p); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	tests := []struct {
		name      string
		filter    repository.PlaylistFilter
		wantNames []string
	}{
		{"by category", repository.PlaylistFilter{Category: "chill"}, []string{"Chill Vibes"}},
		{"by tag", repository.PlaylistFilter{Tag: "rock"}, []string{"Gym Pump"}},
		{"by name substring, case-insensitive", repository.PlaylistFilter{NameQuery: "gym"}, []string{"Gym Pump"}},
		{"non-ASCII letters match as typed", repository.PlaylistFilter{NameQuery: "Déjà"}, []string{"Déjà Vu"}},
		{"non-ASCII letters are not case-folded", repository.PlaylistFilter{NameQuery: "DÉJÀ"}, nil},
		{"unknown category", repository.PlaylistFilter{Category: "opera"}, nil},
		{"unknown tag", repository.PlaylistFilter{Tag: "metal"}, nil},
		{"tag must match whole value", repository.PlaylistFilter{Tag: "lo"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			playlists, total, err := db.ListPublic(ctx, tt.filter, repository.Page{Limit: 20})
			if err != nil {
				t.Fatalf("ListPublic() error = %v", err)
			}
			if total != len(tt.wantNames) {
				t.Errorf("total = %d, want %d", total, len(tt.wantNames))
			}
			if len(playlists) != len(tt.wantNames) {
				t.Fatalf("len(playlists) = %d, want %d", len(playlists), len(tt.wantNames))
			}
			for i, want := range tt.wantNames {
				if playlists[i].Name != want {
					t.Errorf("playlists[%d].Name = %q, want %q", i, playlists[i].Name, want)
				}
			}
		})
	}
}

func TestSearchPublic_OrdersByLikesThenRecency(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "uid-1", "Ana")
	ctx := context.Background()

	older := createTestPlaylist(t, db, owner.ID, "Older Zero Likes")
	newer := createTestPlaylist(t, db, owner.ID, "Newer Zero Likes")
	popular := createTestPlaylist(t, db, owner.ID, "Popular")

	for i := 0; i < 2; i++ {
		fan := createTestUser(t, db, fmt.Sprintf("fan-%d", i), "Fan")
		if err := db.CreateLike(ctx, fan.ID, popular.ID); err != nil {
			t.Fatalf("CreateLike() error = %v", err)
		}
	}

	playlists, total, err := db.SearchPublic(ctx,
		repository.PlaylistFilter{}, repository.Page{Limit: 20})
	if err != nil {
		t.Fatalf("SearchPublic() error = %v", err)
	}
	if total != 3 || len(playlists) != 3 {
		t.Fatalf("got %d playlists (total %d), want 3", len(playlists), total)
	}

	wantOrder := []string{popular.Name, newer.Name, older.Name}
	for i, want := range wantOrder {
		if playlists[i].Name != want {
			t.Errorf("playlists[%d].Name = %q, want %q", i, playlists[i].Name, want)
		}
	}
}

func TestListByOwner_IncludesPrivate(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "uid-1", "Ana")
	other := createTestUser(t, db, "uid-2", "Ben")
	ctx := context.Background()

	createTestPlaylist(t, db, owner.ID, "Mine Public")
	private := &model.Playlist{UserID: owner.ID, Name: "Mine Private", IsPublic: false}
	if err := db.Create(ctx, private); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	createTestPlaylist(t, db, other.ID, "Not Mine")

	playlists, err := db.ListByOwner(ctx, owner.ID)
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(playlists) != 2 {
		t.Fatalf("len(playlists) = %d, want 2", len(playlists))
	}
	for _, p := range playlists {
		if p.UserID != owner.ID {
			t.Errorf("playlist %q belongs to %s, want %s", p.Name, p.UserID, owner.ID)
		}
	}
}

func TestIncrementPlayCount(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "uid-1", "Ana")
	playlist := createTestPlaylist(t, db, owner.ID, "Played")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := db.IncrementPlayCount(ctx, playlist.ID); err != nil {
			t.Fatalf("IncrementPlayCount() error = %v", err)
		}
	}

	stored, err := db.GetByID(ctx, playlist.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.PlayCount != 2 {
		t.Errorf("PlayCount = %d, want 2", stored.PlayCount)
	}
}

func TestIncrementPlayCount_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.IncrementPlayCount(context.Background(), "nonexistent")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("IncrementPlayCount() error = %v, want ErrNotFound", err)
	}
}
