package model

import "time"

// Screen represents a display device in the system. Token is the opaque
// pairing token the player presents on every request. RefreshVersion is a
// monotonic counter bumped on every manual content reassignment; players
// compare it during refresh checks.
type Screen struct {
	ID                int        `db:"id"                 json:"id"`
	Token             string     `db:"token"              json:"token"`
	DeviceID          *string    `db:"device_id"          json:"device_id"`
	StoreID           int        `db:"store_id"           json:"store_id"`
	Name              string     `db:"name"               json:"name"`
	Orientation       string     `db:"orientation"        json:"orientation"`
	RefreshVersion    int64      `db:"refresh_version"    json:"refresh_version"`
	Paired            bool       `db:"paired"             json:"paired"`
	ClientInformation *string    `db:"client_information" json:"client_information"`
	ClientWidth       *int       `db:"client_width"       json:"client_width"`
	ClientHeight      *int       `db:"client_height"      json:"client_height"`
	LastSeenAt        *time.Time `db:"last_seen_at"       json:"last_seen_at"`
	CreatedBy         int        `db:"created_by"         json:"created_by"`
	CreatedAt         time.Time  `db:"created_at"         json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"         json:"updated_at"`
}

// ScreenSet is a named group of screens within a store. Assigning content
// to a set fans the assignment out to every member screen.
type ScreenSet struct {
	ID          int       `db:"id"          json:"id"`
	StoreID     int       `db:"store_id"    json:"store_id"`
	Name        string    `db:"name"        json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedBy   int       `db:"created_by"  json:"created_by"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"  json:"updated_at"`
}
