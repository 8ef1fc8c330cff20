// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Identity lives with an external provider — users sign in there and present
// a bearer token to this API. The provider's stable UID is the external key
// (UNIQUE in the DB), while we generate our own internal string ID (xid) so
// our primary keys aren't tied to a third party's numbering scheme.
//
// A row is created on first successful login and its profile fields are
// refreshed on later logins. Users are never deleted by this service.
type User struct {
	ID          string    `json:"id"          db:"id"`
	UID         string    `json:"uid"         db:"uid"` // identity provider's stable user ID
	Email       string    `json:"email"       db:"email"`
	DisplayName string    `json:"displayName" db:"display_name"` // may be empty if the provider has none
	PhotoURL    string    `json:"photoUrl"    db:"photo_url"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`
}

// UserSummary is the public slice of a user embedded in playlist, comment,
// and bookmark payloads. Email and UID stay private.
type UserSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl"`
}

// Summary projects a User down to its embeddable public fields.
func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
	}
}
