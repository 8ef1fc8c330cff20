package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/moodtune/playlist-api/internal/apperror"
	"github.com/moodtune/playlist-api/internal/model"
	"github.com/moodtune/playlist-api/internal/repository"
)

// compile-time check that *DB implements repository.EngagementRepository
var _ repository.EngagementRepository = (*DB)(nil)

// CreateLike atomically inserts the like row and increments the playlist's
// like_count.
//
// THE PAIRED-TRANSACTION PROTOCOL:
// The row insert and the counter bump commit together or not at all. If
// the insert hits the UNIQUE (user_id, playlist_id) constraint — the user
// already liked this playlist, possibly via a racing duplicate request —
// the transaction rolls back with Conflict and the counter is untouched.
// If the playlist vanished between the FK check and the UPDATE (deleted
// concurrently), zero rows are affected, we report NotFound, and the
// rollback discards the already-inserted like row. At no committed point
// can the row set and the counter disagree.
func (db *DB) CreateLike(ctx context.Context, userID, playlistID string) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO likes (id, user_id, playlist_id, created_at)
			 VALUES (?, ?, ?, ?)`,
			xid.New().String(), userID, playlistID, time.Now(),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperror.Conflict("playlist already liked")
			}
			if isForeignKeyViolation(err) {
				return resolveMissingReference(ctx, tx, userID, playlistID)
			}
			return fmt.Errorf("sqlite: inserting like: %w", err)
		}

		return bumpLikeCount(ctx, tx, playlistID, `+`)
	})
}

// DeleteLike atomically removes the like row and decrements like_count.
// Un-liking a playlist the user never liked reports NotFound — the
// counter stays where it is.
func (db *DB) DeleteLike(ctx context.Context, userID, playlistID string) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`DELETE FROM likes WHERE user_id = ? AND playlist_id = ?`,
			userID, playlistID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: deleting like: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return apperror.NotFound("like", playlistID)
		}

		return bumpLikeCount(ctx, tx, playlistID, `-`)
	})
}

// bumpLikeCount applies a store-side ±1 delta to the playlist's counter
// inside the caller's transaction.
func bumpLikeCount(ctx context.Context, tx *sql.Tx, playlistID, op string) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE playlists SET like_count = like_count `+op+` 1 WHERE id = ?`,
		playlistID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: adjusting like count: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("playlist", playlistID)
	}

	return nil
}

// queryRower is satisfied by both *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// resolveMissingReference names the dangling side of a foreign-key failure
// on an engagement insert. The playlist is the common case (deleted between
// lookup and insert); a dangling user reference can only happen when the
// row was removed out-of-band, and misreporting it as a missing playlist
// would send callers chasing the wrong record. A constraint failure aborts
// only the statement, so the transaction is still usable for the lookup.
func resolveMissingReference(ctx context.Context, q queryRower, userID, playlistID string) error {
	var exists bool
	if err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM playlists WHERE id = ?)`, playlistID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("sqlite: resolving constraint failure: %w", err)
	}
	if !exists {
		return apperror.NotFound("playlist", playlistID)
	}
	return apperror.NotFound("user", userID)
}

// CreateBookmark inserts a bookmark row. Bookmarks carry no denormalized
// counter, so a single statement suffices — uniqueness is still enforced
// by the store, and a duplicate reports Conflict just like a double-like.
func (db *DB) CreateBookmark(ctx context.Context, userID, playlistID string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO bookmarks (id, user_id, playlist_id, created_at)
		 VALUES (?, ?, ?, ?)`,
		xid.New().String(), userID, playlistID, time.Now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("playlist already bookmarked")
		}
		if isForeignKeyViolation(err) {
			return resolveMissingReference(ctx, db.conn, userID, playlistID)
		}
		return fmt.Errorf("sqlite: inserting bookmark: %w", err)
	}

	return nil
}

// DeleteBookmark removes a bookmark row; NotFound if the user never
// bookmarked the playlist.
func (db *DB) DeleteBookmark(ctx context.Context, userID, playlistID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM bookmarks WHERE user_id = ? AND playlist_id = ?`,
		userID, playlistID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting bookmark: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("bookmark", playlistID)
	}

	return nil
}

// ListBookmarks returns the user's bookmarks newest-first, each embedding
// the bookmarked playlist with that playlist's owner summary.
func (db *DB) ListBookmarks(ctx context.Context, userID string) ([]model.Bookmark, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT b.id, b.user_id, b.playlist_id, b.created_at, `+playlistColumns+`
		 FROM bookmarks b
		 JOIN playlists p ON p.id = b.playlist_id
		 JOIN users u ON u.id = p.user_id
		 WHERE b.user_id = ?
		 ORDER BY b.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing bookmarks for user %s: %w", userID, err)
	}
	defer rows.Close()

	var bookmarks []model.Bookmark
	for rows.Next() {
		var b model.Bookmark
		var p model.Playlist
		var owner model.UserSummary
		var tags, tracks, videos string

		if err := rows.Scan(
			&b.ID, &b.UserID, &b.PlaylistID, &b.CreatedAt,
			&p.ID, &p.UserID, &p.Name, &p.Description, &p.Category,
			&tags, &tracks, &videos, &p.IsPublic, &p.LikeCount, &p.PlayCount,
			&p.CreatedAt, &p.UpdatedAt,
			&owner.ID, &owner.DisplayName, &owner.PhotoURL,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning bookmark row: %w", err)
		}

		if err := decodePayloads(&p, tags, tracks, videos); err != nil {
			return nil, err
		}
		p.Owner = &owner
		b.Playlist = &p
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating bookmarks: %w", err)
	}

	return bookmarks, nil
}
