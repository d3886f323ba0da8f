// Package resolver decides which media asset a screen should be showing at
// a given instant, and when that decision could next change. Everything in
// here is a pure function of its inputs: callers fetch the screen's schedule
// bindings and default content from the database and inject the clock.
package resolver

import (
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Source tags where a resolution came from, so callers can tell "no content
// assigned" apart from "default content" and "schedule override" when
// diagnosing a screen.
type Source string

const (
	SourceScheduled Source = "scheduled"
	SourceDefault   Source = "default"
	SourceNone      Source = "none"
)

// ScheduleEntry is one (schedule, screen) -> media binding joined to its
// schedule window. StartSec/EndSec are seconds since midnight in the
// store's local time; EndSec < StartSec wraps past midnight.
type ScheduleEntry struct {
	ScheduleID int
	MediaID    int
	StartSec   int
	EndSec     int
	DaysOfWeek []int
	Priority   int
	CreatedAt  time.Time
}

// DefaultEntry is the screen's active fallback binding.
type DefaultEntry struct {
	MediaID    int
	AssignedAt time.Time
}

// Resolution is the single outcome for a (screen, instant) pair.
type Resolution struct {
	Source     Source
	MediaID    int
	ScheduleID int
}

const secondsPerDay = 24 * 60 * 60

// MediaKey renders a resolution's media identity for wire comparison.
// "No content" is the empty string, matching what players send back as
// knownMediaId before they have seen anything.
func (r Resolution) MediaKey() string {
	if r.Source == SourceNone {
		return ""
	}
	return strconv.Itoa(r.MediaID)
}

func hasDay(days []int, weekday int) bool {
	for _, d := range days {
		if d == weekday {
			return true
		}
	}
	return false
}

func previousDay(weekday int) int {
	return (weekday + 6) % 7
}

// covers reports whether the entry's window contains the given weekday and
// second-of-day. Windows are half-open [start, end). A window whose end
// precedes its start wraps midnight and is treated as two virtual windows:
// [start, 24h) on a listed weekday and [0, end) on the following day.
func covers(e ScheduleEntry, weekday, sec int) bool {
	if e.StartSec == e.EndSec {
		return false
	}
	if e.EndSec > e.StartSec {
		return hasDay(e.DaysOfWeek, weekday) && sec >= e.StartSec && sec < e.EndSec
	}
	if hasDay(e.DaysOfWeek, weekday) && sec >= e.StartSec {
		return true
	}
	return hasDay(e.DaysOfWeek, previousDay(weekday)) && sec < e.EndSec
}

// Resolve picks the single media asset active for a screen at now.
// Schedule bindings whose window covers now win over the default binding;
// among overlapping windows the highest priority wins, and equal priorities
// fall back to the most recently created binding so the outcome stays
// deterministic.
func Resolve(entries []ScheduleEntry, def *DefaultEntry, now time.Time) Resolution {
	weekday := int(now.Weekday())
	sec := now.Hour()*3600 + now.Minute()*60 + now.Second()

	var active []ScheduleEntry
	for _, e := range entries {
		if covers(e, weekday, sec) {
			active = append(active, e)
		}
	}

	if len(active) > 0 {
		sort.SliceStable(active, func(i, j int) bool {
			if active[i].Priority != active[j].Priority {
				return active[i].Priority > active[j].Priority
			}
			if !active[i].CreatedAt.Equal(active[j].CreatedAt) {
				return active[i].CreatedAt.After(active[j].CreatedAt)
			}
			return active[i].ScheduleID > active[j].ScheduleID
		})
		if len(active) > 1 && active[0].Priority == active[1].Priority {
			log.Warn().
				Int("schedule_id", active[0].ScheduleID).
				Int("contender_id", active[1].ScheduleID).
				Int("priority", active[0].Priority).
				Msg("overlapping schedules with equal priority, picked most recent")
		}
		winner := active[0]
		return Resolution{Source: SourceScheduled, MediaID: winner.MediaID, ScheduleID: winner.ScheduleID}
	}

	if def != nil {
		return Resolution{Source: SourceDefault, MediaID: def.MediaID}
	}
	return Resolution{Source: SourceNone}
}

// NextChangeAfter returns the earliest future instant at which Resolve's
// output could change: the soonest start or end boundary of any window
// relevant today (including the tail of a wrapped window that started
// yesterday). It is a conservative estimate; a boundary of a losing
// low-priority window may not actually change the winner, so players must
// re-verify after waking. ok is false when no boundary lies ahead.
func NextChangeAfter(entries []ScheduleEntry, now time.Time) (next time.Time, ok bool) {
	weekday := int(now.Weekday())
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	consider := func(boundarySec int) {
		at := midnight.Add(time.Duration(boundarySec) * time.Second)
		if !at.After(now) {
			return
		}
		if !ok || at.Before(next) {
			next, ok = at, true
		}
	}

	for _, e := range entries {
		if e.StartSec == e.EndSec {
			continue
		}
		if hasDay(e.DaysOfWeek, weekday) {
			consider(e.StartSec)
			if e.EndSec > e.StartSec {
				consider(e.EndSec)
			}
		}
		// tail of a midnight-wrapping window that began yesterday
		if e.EndSec < e.StartSec && hasDay(e.DaysOfWeek, previousDay(weekday)) {
			consider(e.EndSec)
		}
	}
	return next, ok
}

// ShouldRefresh is the two-tier change check behind the cheap polling
// endpoint. A bumped version counter catches manual reassignments; the
// media-key comparison catches schedule boundaries that changed the
// resolved content without anyone touching the counter.
func ShouldRefresh(currentVersion, knownVersion int64, currentKey, knownKey string) bool {
	if currentVersion > knownVersion {
		return true
	}
	return currentKey != knownKey
}

// Location maps a store's configured IANA timezone to a *time.Location,
// falling back to the server's local zone when unset or unparseable.
// Schedule times are wall-clock values in the store's zone, so now must be
// converted with this before resolving.
func Location(timezone *string) *time.Location {
	if timezone == nil || *timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(*timezone)
	if err != nil {
		log.Warn().Str("timezone", *timezone).Err(err).Msg("unknown store timezone, using server local")
		return time.Local
	}
	return loc
}
