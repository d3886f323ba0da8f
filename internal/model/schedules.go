package model

import (
	"time"

	"github.com/lib/pq"
)

// Schedule is a recurring daily window scoped to a store. StartSec/EndSec
// are seconds since midnight in the store's local time; EndSec < StartSec
// means the window wraps past midnight into the next day. DaysOfWeek uses
// 0=Sunday .. 6=Saturday.
type Schedule struct {
	ID         int           `db:"id"           json:"id"`
	StoreID    int           `db:"store_id"     json:"store_id"`
	Name       string        `db:"name"         json:"name"`
	StartSec   int           `db:"start_sec"    json:"start_sec"`
	EndSec     int           `db:"end_sec"      json:"end_sec"`
	DaysOfWeek pq.Int64Array `db:"days_of_week" json:"days_of_week"`
	Priority   int           `db:"priority"     json:"priority"`
	CreatedBy  int           `db:"created_by"   json:"created_by"`
	CreatedAt  time.Time     `db:"created_at"   json:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at"   json:"updated_at"`
}

// ScheduledScreenContent binds a (schedule, screen) pair to a media asset.
// A screen has at most one binding per schedule; absence means the screen
// falls back to its default content during that schedule's window.
type ScheduledScreenContent struct {
	ID         int       `db:"id"          json:"id"`
	ScheduleID int       `db:"schedule_id" json:"schedule_id"`
	ScreenID   int       `db:"screen_id"   json:"screen_id"`
	MediaID    int       `db:"media_id"    json:"media_id"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
}
