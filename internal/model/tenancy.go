package model

import "time"

// Client is the top-level tenant. Stores, media and users hang off a client.
type Client struct {
	ID        int       `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Store is a physical location belonging to a client. Schedules are scoped
// to a store; screens resolve schedule times in the store's timezone.
type Store struct {
	ID        int       `db:"id"         json:"id"`
	ClientID  int       `db:"client_id"  json:"client_id"`
	Name      string    `db:"name"       json:"name"`
	Timezone  *string   `db:"timezone"   json:"timezone"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
