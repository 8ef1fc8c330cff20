package model

import "time"

// Track is one entry in a playlist's track list.
//
// Tracks and videos are stored as opaque JSON payloads on the playlist row —
// they are curated references to external media, not rows we join against,
// so normalizing them into their own tables would buy nothing.
type Track struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Genre  string `json:"genre"`
}

// Video is one entry in a playlist's video list.
type Video struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Channel      string `json:"channel"`
	VideoID      string `json:"videoId"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// Playlist is a curated, tagged collection of tracks and videos.
//
// LikeCount and PlayCount are denormalized counters: LikeCount caches the
// number of like rows pointing at this playlist, PlayCount counts public
// detail fetches. Both are maintained exclusively by the repository layer —
// LikeCount changes only inside the same transaction that inserts or
// deletes the like row, so the counter and the rows can never drift apart.
//
// UserID (the owner) is immutable after creation. Only the owner may update
// or delete a playlist; deletion cascades to likes, bookmarks, and comments.
type Playlist struct {
	ID          string    `json:"id"          db:"id"`
	UserID      string    `json:"userId"      db:"user_id"`
	Name        string    `json:"name"        db:"name"`
	Description string    `json:"description" db:"description"`
	Category    string    `json:"category"    db:"category"` // free-form tag, e.g. "chill", "focus"
	Tags        []string  `json:"tags"        db:"tags"`
	Tracks      []Track   `json:"tracks"      db:"tracks"`
	Videos      []Video   `json:"videos"      db:"videos"`
	IsPublic    bool      `json:"isPublic"    db:"is_public"`
	LikeCount   int       `json:"likeCount"   db:"like_count"`
	PlayCount   int       `json:"playCount"   db:"play_count"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`

	// Owner is the embedded public profile of the playlist's creator.
	// Populated by list/detail/search queries; nil elsewhere.
	Owner *UserSummary `json:"user,omitempty"`
}
