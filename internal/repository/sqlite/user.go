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

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// Upsert inserts or updates a user keyed by the identity provider's UID.
//
// The provider guarantees the UID is stable and unique, so first login →
// INSERT, later logins → refresh of the profile fields in case the user
// changed them at the provider. One statement handles both, so two
// concurrent first logins for the same uid cannot race: the loser's
// INSERT becomes the UPDATE, and RETURNING hands back the canonical
// internal ID and created_at either way.
func (db *DB) Upsert(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.UpdatedAt = now

	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO users (id, uid, email, display_name, photo_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (uid) DO UPDATE SET
		   email = excluded.email,
		   display_name = excluded.display_name,
		   photo_url = excluded.photo_url,
		   updated_at = excluded.updated_at
		 RETURNING id, created_at`,
		xid.New().String(),
		user.UID,
		user.Email,
		user.DisplayName,
		user.PhotoURL,
		now,
		now,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("sqlite: upserting user (uid=%s): %w", user.UID, err)
	}

	return nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `id`, id)
}

// GetUserByUID retrieves a user by their provider UID. Used by the auth
// middleware to resolve a verified token to a registered account.
func (db *DB) GetUserByUID(ctx context.Context, uid string) (*model.User, error) {
	return db.getUser(ctx, `uid`, uid)
}

func (db *DB) getUser(ctx context.Context, column, value string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, uid, email, display_name, photo_url, created_at, updated_at
		 FROM users WHERE `+column+` = ?`,
		value,
	).Scan(
		&u.ID,
		&u.UID,
		&u.Email,
		&u.DisplayName,
		&u.PhotoURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", value)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", value, err)
	}

	return &u, nil
}
