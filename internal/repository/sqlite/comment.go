package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/moodtune/playlist-api/internal/apperror"
	"github.com/moodtune/playlist-api/internal/model"
)

// CreateComment inserts a comment. A foreign-key violation means the
// playlist doesn't exist and is reported as NotFound.
func (db *DB) CreateComment(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()
	comment.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, user_id, playlist_id, content, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		comment.ID,
		comment.UserID,
		comment.PlaylistID,
		comment.Content,
		comment.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("playlist", comment.PlaylistID)
		}
		return fmt.Errorf("sqlite: inserting comment: %w", err)
	}

	return nil
}

// GetCommentByID retrieves a comment without its owner summary. Used by
// the deletion path, which only needs the owning user ID.
func (db *DB) GetCommentByID(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, playlist_id, content, created_at
		 FROM comments WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.UserID, &c.PlaylistID, &c.Content, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}

	return &c, nil
}

// DeleteComment removes a comment by ID. Ownership is the service's
// concern; by the time this runs the guard has already passed.
func (db *DB) DeleteComment(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM comments WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("comment", id)
	}

	return nil
}

// ListComments returns a playlist's comments oldest-first with each
// author's public summary embedded.
func (db *DB) ListComments(ctx context.Context, playlistID string) ([]model.Comment, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT c.id, c.user_id, c.playlist_id, c.content, c.created_at,
		        u.id, u.display_name, u.photo_url
		 FROM comments c
		 JOIN users u ON u.id = c.user_id
		 WHERE c.playlist_id = ?
		 ORDER BY c.created_at ASC`,
		playlistID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for playlist %s: %w", playlistID, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		var owner model.UserSummary
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.PlaylistID, &c.Content, &c.CreatedAt,
			&owner.ID, &owner.DisplayName, &owner.PhotoURL,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		c.Owner = &owner
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}

	return comments, nil
}
