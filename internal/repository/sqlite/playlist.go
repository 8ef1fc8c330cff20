package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/moodtune/playlist-api/internal/apperror"
	"github.com/moodtune/playlist-api/internal/model"
	"github.com/moodtune/playlist-api/internal/repository"
)

// compile-time check that *DB implements repository.PlaylistRepository
var _ repository.PlaylistRepository = (*DB)(nil)

// playlistColumns is the SELECT list shared by every playlist query that
// embeds the owner. Order must match scanPlaylistWithOwner.
const playlistColumns = `p.id, p.user_id, p.name, p.description, p.category,
	p.tags, p.tracks, p.videos, p.is_public, p.like_count, p.play_count,
	p.created_at, p.updated_at, u.id, u.display_name, u.photo_url`

// Create inserts a new playlist owned by playlist.UserID.
//
// The repository owns ID generation (xid: 20 chars, URL-safe, sortable by
// creation time) and timestamps; the caller's struct is populated in place.
// like_count and play_count start at zero and are never written here —
// only the engagement transactions and IncrementPlayCount touch them.
func (db *DB) Create(ctx context.Context, playlist *model.Playlist) error {
	playlist.ID = xid.New().String()

	now := time.Now()
	playlist.CreatedAt = now
	playlist.UpdatedAt = now

	tags, tracks, videos, err := encodePayloads(playlist)
	if err != nil {
		return err
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO playlists (id, user_id, name, description, category,
		   tags, tracks, videos, is_public, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		playlist.ID,
		playlist.UserID,
		playlist.Name,
		playlist.Description,
		playlist.Category,
		tags,
		tracks,
		videos,
		playlist.IsPublic,
		playlist.CreatedAt,
		playlist.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating playlist: %w", err)
	}

	return nil
}

// GetByID retrieves a single playlist with its owner summary embedded.
// Visibility is not checked here — a private playlist is returned too, and
// the service decides who may see it.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Playlist, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+playlistColumns+`
		 FROM playlists p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.id = ?`,
		id,
	)

	playlist, err := scanPlaylistWithOwner(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("playlist", id)
		}
		return nil, fmt.Errorf("sqlite: getting playlist %s: %w", id, err)
	}

	return playlist, nil
}

// Update rewrites the mutable columns of an existing playlist.
// Owner, counters, and created_at are deliberately absent from the SET
// list — they are immutable from the caller's point of view.
func (db *DB) Update(ctx context.Context, playlist *model.Playlist) error {
	playlist.UpdatedAt = time.Now()

	tags, tracks, videos, err := encodePayloads(playlist)
	if err != nil {
		return err
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE playlists
		 SET name = ?, description = ?, category = ?, tags = ?, tracks = ?,
		     videos = ?, is_public = ?, updated_at = ?
		 WHERE id = ?`,
		playlist.Name,
		playlist.Description,
		playlist.Category,
		tags,
		tracks,
		videos,
		playlist.IsPublic,
		playlist.UpdatedAt,
		playlist.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating playlist %s: %w", playlist.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("playlist", playlist.ID)
	}

	return nil
}

// Delete removes a playlist. The ON DELETE CASCADE constraints take its
// likes, bookmarks, and comments with it — no orphaned engagement rows.
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM playlists WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting playlist %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("playlist", id)
	}

	return nil
}

// ListPublic returns a page of the public feed, newest first, plus the
// total count of playlists matching the same filter.
func (db *DB) ListPublic(ctx context.Context, filter repository.PlaylistFilter, page repository.Page) ([]model.Playlist, int, error) {
	return db.queryPublic(ctx, filter, page, `p.created_at DESC`)
}

// SearchPublic returns a page ordered by like count descending, ties
// broken by creation time descending.
func (db *DB) SearchPublic(ctx context.Context, filter repository.PlaylistFilter, page repository.Page) ([]model.Playlist, int, error) {
	return db.queryPublic(ctx, filter, page, `p.like_count DESC, p.created_at DESC`)
}

// queryPublic runs the shared filter + pagination query under the given
// ordering. The slice and the total are computed against the identical
// WHERE clause, so `total` is always consistent with the page contents.
func (db *DB) queryPublic(ctx context.Context, filter repository.PlaylistFilter, page repository.Page, orderBy string) ([]model.Playlist, int, error) {
	where, args := publicWhere(filter)

	var total int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM playlists p WHERE `+where,
		args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting playlists: %w", err)
	}

	queryArgs := append(args, page.Limit, page.Offset)
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+playlistColumns+`
		 FROM playlists p
		 JOIN users u ON u.id = p.user_id
		 WHERE `+where+`
		 ORDER BY `+orderBy+`
		 LIMIT ? OFFSET ?`,
		queryArgs...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing playlists: %w", err)
	}
	defer rows.Close()

	playlists := make([]model.Playlist, 0, page.Limit)
	for rows.Next() {
		p, err := scanPlaylistWithOwner(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning playlist row: %w", err)
		}
		playlists = append(playlists, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating playlists: %w", err)
	}

	return playlists, total, nil
}

// ListByOwner returns every playlist owned by userID, private ones
// included, newest first. No owner summary — the caller is the owner.
func (db *DB) ListByOwner(ctx context.Context, userID string) ([]model.Playlist, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, name, description, category, tags, tracks,
		        videos, is_public, like_count, play_count, created_at, updated_at
		 FROM playlists
		 WHERE user_id = ?
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing playlists for user %s: %w", userID, err)
	}
	defer rows.Close()

	var playlists []model.Playlist
	for rows.Next() {
		var p model.Playlist
		var tags, tracks, videos string
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Name, &p.Description, &p.Category,
			&tags, &tracks, &videos, &p.IsPublic, &p.LikeCount, &p.PlayCount,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning playlist row: %w", err)
		}
		if err := decodePayloads(&p, tags, tracks, videos); err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating playlists: %w", err)
	}

	return playlists, nil
}

// IncrementPlayCount bumps play_count by one as a store-side delta, so
// concurrent fetches from multiple server instances never lose an update.
func (db *DB) IncrementPlayCount(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE playlists SET play_count = play_count + 1 WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: incrementing play count for %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("playlist", id)
	}

	return nil
}

// publicWhere builds the WHERE clause shared by list, search, and their
// count queries. Always parameterized — filter values never reach the SQL
// text itself.
func publicWhere(filter repository.PlaylistFilter) (string, []any) {
	where := []string{`p.is_public = 1`}
	var args []any

	if filter.NameQuery != "" {
		// instr on lowered strings gives case-insensitive substring match
		// without LIKE's wildcard-escaping pitfalls. SQLite's lower()
		// folds ASCII only (no ICU build), so non-ASCII letters compare
		// case-sensitively: "déjà" matches "Déjà Vu" but "DÉJÀ" does not.
		where = append(where, `instr(lower(p.name), lower(?)) > 0`)
		args = append(args, filter.NameQuery)
	}
	if filter.Category != "" {
		where = append(where, `p.category = ?`)
		args = append(args, filter.Category)
	}
	if filter.Tag != "" {
		// json_each expands the JSON tag array into rows; exact value
		// comparison gives tag-set containment.
		where = append(where, `EXISTS (SELECT 1 FROM json_each(p.tags) WHERE json_each.value = ?)`)
		args = append(args, filter.Tag)
	}

	return strings.Join(where, " AND "), args
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlaylistWithOwner(row rowScanner) (*model.Playlist, error) {
	var p model.Playlist
	var owner model.UserSummary
	var tags, tracks, videos string

	if err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Description, &p.Category,
		&tags, &tracks, &videos, &p.IsPublic, &p.LikeCount, &p.PlayCount,
		&p.CreatedAt, &p.UpdatedAt,
		&owner.ID, &owner.DisplayName, &owner.PhotoURL,
	); err != nil {
		return nil, err
	}

	if err := decodePayloads(&p, tags, tracks, videos); err != nil {
		return nil, err
	}
	p.Owner = &owner

	return &p, nil
}

// encodePayloads marshals the structured JSON columns. Nil slices are
// normalized to empty ones first so the columns always hold valid JSON
// arrays ("[]", never "null") — json_each depends on it.
func encodePayloads(p *model.Playlist) (tags, tracks, videos string, err error) {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Tracks == nil {
		p.Tracks = []model.Track{}
	}
	if p.Videos == nil {
		p.Videos = []model.Video{}
	}

	tagsB, err := json.Marshal(p.Tags)
	if err != nil {
		return "", "", "", fmt.Errorf("sqlite: encoding tags: %w", err)
	}
	tracksB, err := json.Marshal(p.Tracks)
	if err != nil {
		return "", "", "", fmt.Errorf("sqlite: encoding tracks: %w", err)
	}
	videosB, err := json.Marshal(p.Videos)
	if err != nil {
		return "", "", "", fmt.Errorf("sqlite: encoding videos: %w", err)
	}

	return string(tagsB), string(tracksB), string(videosB), nil
}

func decodePayloads(p *model.Playlist, tags, tracks, videos string) error {
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return fmt.Errorf("sqlite: decoding tags for playlist %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(tracks), &p.Tracks); err != nil {
		return fmt.Errorf("sqlite: decoding tracks for playlist %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(videos), &p.Videos); err != nil {
		return fmt.Errorf("sqlite: decoding videos for playlist %s: %w", p.ID, err)
	}
	return nil
}
