package model

import "time"

// MediaAsset is an uploaded image or video. ObjectKey is the storage
// reference; playable URLs are minted per-request by the storage backend.
// Assets are immutable once created except for deletion.
type MediaAsset struct {
	ID        int       `db:"id"         json:"id"`
	ClientID  int       `db:"client_id"  json:"client_id"`
	StoreID   *int      `db:"store_id"   json:"store_id,omitempty"`
	Name      string    `db:"name"       json:"name"`
	ObjectKey string    `db:"object_key" json:"object_key"`
	MimeType  string    `db:"mime_type"  json:"mime_type"`
	CreatedBy int       `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ScreenContent is the default/active binding: the fallback media a screen
// shows when no schedule window is in effect. At most one row per screen is
// active at a time; the swap runs as a single transaction.
type ScreenContent struct {
	ID         int       `db:"id"          json:"id"`
	ScreenID   int       `db:"screen_id"   json:"screen_id"`
	MediaID    int       `db:"media_id"    json:"media_id"`
	Active     bool      `db:"active"      json:"active"`
	AssignedAt time.Time `db:"assigned_at" json:"assigned_at"`
}
