package resolver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allDays = []int{0, 1, 2, 3, 4, 5, 6}

// Wednesday 2025-06-11, a fixed reference day so weekday math is stable.
func at(hour, min, sec int) time.Time {
	return time.Date(2025, 6, 11, hour, min, sec, 0, time.UTC)
}

func window(id, media, startSec, endSec, priority int, days []int, created time.Time) ScheduleEntry {
	return ScheduleEntry{
		ScheduleID: id,
		MediaID:    media,
		StartSec:   startSec,
		EndSec:     endSec,
		DaysOfWeek: days,
		Priority:   priority,
		CreatedAt:  created,
	}
}

func TestResolveNothingAssigned(t *testing.T) {
	res := Resolve(nil, nil, at(10, 0, 0))
	assert.Equal(t, SourceNone, res.Source)
	assert.Equal(t, "", res.MediaKey())
}

func TestResolveDefaultOnly(t *testing.T) {
	def := &DefaultEntry{MediaID: 7}
	for _, now := range []time.Time{at(0, 0, 0), at(12, 30, 0), at(23, 59, 59)} {
		res := Resolve(nil, def, now)
		assert.Equal(t, SourceDefault, res.Source)
		assert.Equal(t, 7, res.MediaID)
	}
}

func TestResolveScheduleOverridesDefault(t *testing.T) {
	def := &DefaultEntry{MediaID: 7}
	lunch := window(1, 42, 12*3600, 14*3600, 10, allDays, at(9, 0, 0))

	res := Resolve([]ScheduleEntry{lunch}, def, at(12, 30, 0))
	assert.Equal(t, SourceScheduled, res.Source)
	assert.Equal(t, 42, res.MediaID)
	assert.Equal(t, 1, res.ScheduleID)

	// outside the window the default wins again
	res = Resolve([]ScheduleEntry{lunch}, def, at(14, 0, 0))
	assert.Equal(t, SourceDefault, res.Source)
	assert.Equal(t, 7, res.MediaID)
}

func TestResolveWindowIsHalfOpen(t *testing.T) {
	e := window(1, 42, 12*3600, 14*3600, 0, allDays, at(9, 0, 0))

	assert.Equal(t, SourceNone, Resolve([]ScheduleEntry{e}, nil, at(11, 59, 59)).Source)
	assert.Equal(t, SourceScheduled, Resolve([]ScheduleEntry{e}, nil, at(12, 0, 0)).Source)
	assert.Equal(t, SourceScheduled, Resolve([]ScheduleEntry{e}, nil, at(13, 59, 59)).Source)
	assert.Equal(t, SourceNone, Resolve([]ScheduleEntry{e}, nil, at(14, 0, 0)).Source)
}

func TestResolveWrongWeekday(t *testing.T) {
	// reference day is a Wednesday (weekday 3); window only on Mondays
	e := window(1, 42, 0, secondsPerDay, 0, []int{1}, at(9, 0, 0))
	assert.Equal(t, SourceNone, Resolve([]ScheduleEntry{e}, nil, at(12, 0, 0)).Source)
}

func TestResolvePriorityWins(t *testing.T) {
	low := window(1, 100, 10*3600, 16*3600, 5, allDays, at(9, 0, 0))
	high := window(2, 200, 12*3600, 14*3600, 10, allDays, at(8, 0, 0))

	res := Resolve([]ScheduleEntry{low, high}, nil, at(13, 0, 0))
	assert.Equal(t, 200, res.MediaID)

	// high-priority window over, low priority takes back over
	res = Resolve([]ScheduleEntry{low, high}, nil, at(15, 0, 0))
	assert.Equal(t, 100, res.MediaID)
}

func TestResolveEqualPriorityPicksMostRecent(t *testing.T) {
	older := window(1, 100, 10*3600, 16*3600, 5, allDays, at(8, 0, 0))
	newer := window(2, 200, 10*3600, 16*3600, 5, allDays, at(9, 0, 0))

	res := Resolve([]ScheduleEntry{older, newer}, nil, at(12, 0, 0))
	assert.Equal(t, 200, res.MediaID)

	// order of the input slice must not matter
	res = Resolve([]ScheduleEntry{newer, older}, nil, at(12, 0, 0))
	assert.Equal(t, 200, res.MediaID)
}

func TestResolveMidnightWrap(t *testing.T) {
	// 22:00 -> 02:00, Wednesdays only
	e := window(1, 42, 22*3600, 2*3600, 0, []int{3}, at(9, 0, 0))

	// Wednesday 23:00: inside the evening half
	assert.Equal(t, SourceScheduled, Resolve([]ScheduleEntry{e}, nil, at(23, 0, 0)).Source)
	// Thursday 01:00: inside the morning tail carried over from Wednesday
	thu := at(1, 0, 0).AddDate(0, 0, 1)
	assert.Equal(t, SourceScheduled, Resolve([]ScheduleEntry{e}, nil, thu).Source)
	// Thursday 03:00: past the tail
	thu = at(3, 0, 0).AddDate(0, 0, 1)
	assert.Equal(t, SourceNone, Resolve([]ScheduleEntry{e}, nil, thu).Source)
	// Wednesday 21:00: before the window opens
	assert.Equal(t, SourceNone, Resolve([]ScheduleEntry{e}, nil, at(21, 0, 0)).Source)
}

func TestResolveIdempotent(t *testing.T) {
	def := &DefaultEntry{MediaID: 7}
	entries := []ScheduleEntry{
		window(1, 100, 10*3600, 16*3600, 5, allDays, at(8, 0, 0)),
		window(2, 200, 12*3600, 14*3600, 10, allDays, at(9, 0, 0)),
	}
	now := at(13, 0, 0)
	first := Resolve(entries, def, now)
	second := Resolve(entries, def, now)
	assert.Equal(t, first, second)
}

func TestNextChangeAfter(t *testing.T) {
	now := at(11, 58, 0)
	// starts in 120s, ends in 7320s
	e := window(1, 42, 12*3600, 14*3600, 0, allDays, at(9, 0, 0))

	next, ok := NextChangeAfter([]ScheduleEntry{e}, now)
	require.True(t, ok)
	assert.Equal(t, now.Add(120*time.Second), next)

	// inside the window, the next boundary is the end
	now = at(12, 30, 0)
	next, ok = NextChangeAfter([]ScheduleEntry{e}, now)
	require.True(t, ok)
	assert.Equal(t, at(14, 0, 0), next)

	// past the end, no boundary remains today
	now = at(15, 0, 0)
	_, ok = NextChangeAfter([]ScheduleEntry{e}, now)
	assert.False(t, ok)
}

func TestNextChangeAfterNoSchedules(t *testing.T) {
	_, ok := NextChangeAfter(nil, at(12, 0, 0))
	assert.False(t, ok)
}

func TestNextChangeAfterSkipsOtherWeekdays(t *testing.T) {
	// Monday-only window must not produce a boundary on Wednesday
	e := window(1, 42, 12*3600, 14*3600, 0, []int{1}, at(9, 0, 0))
	_, ok := NextChangeAfter([]ScheduleEntry{e}, at(10, 0, 0))
	assert.False(t, ok)
}

func TestNextChangeAfterWrapTail(t *testing.T) {
	// Tuesday 22:00 -> Wednesday 02:00; at Wednesday 01:00 the tail's end
	// at 02:00 is the next boundary.
	e := window(1, 42, 22*3600, 2*3600, 0, []int{2}, at(9, 0, 0))
	next, ok := NextChangeAfter([]ScheduleEntry{e}, at(1, 0, 0))
	require.True(t, ok)
	assert.Equal(t, at(2, 0, 0), next)
}

func TestShouldRefresh(t *testing.T) {
	// nothing changed
	assert.False(t, ShouldRefresh(3, 3, "42", "42"))
	// manual bump, same content
	assert.True(t, ShouldRefresh(4, 3, "42", "42"))
	// schedule boundary changed the content, version untouched
	assert.True(t, ShouldRefresh(3, 3, "43", "42"))
	// content disappeared entirely
	assert.True(t, ShouldRefresh(3, 3, "", "42"))
	// both empty counts as unchanged
	assert.False(t, ShouldRefresh(3, 3, "", ""))
}

// The end-to-end lunch scenario: default media A, a "Lunch" schedule
// (12:00-14:00, all days, priority 10) bound to media B. Both transitions
// happen without any version bump.
func TestLunchScenario(t *testing.T) {
	def := &DefaultEntry{MediaID: 1}
	lunch := window(9, 2, 12*3600, 14*3600, 10, allDays, at(8, 0, 0))
	entries := []ScheduleEntry{lunch}

	before := Resolve(entries, def, at(11, 59, 0))
	assert.Equal(t, 1, before.MediaID)
	next, ok := NextChangeAfter(entries, at(11, 59, 0))
	require.True(t, ok)
	assert.Equal(t, at(12, 0, 0), next)

	during := Resolve(entries, def, at(12, 0, 1))
	assert.Equal(t, 2, during.MediaID)

	after := Resolve(entries, def, at(14, 0, 1))
	assert.Equal(t, 1, after.MediaID)

	// the version counter never moved; only the media key changed
	assert.True(t, ShouldRefresh(1, 1, during.MediaKey(), before.MediaKey()))
	assert.True(t, ShouldRefresh(1, 1, after.MediaKey(), during.MediaKey()))
	assert.False(t, ShouldRefresh(1, 1, after.MediaKey(), before.MediaKey()))
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.Local, Location(nil))
	empty := ""
	assert.Equal(t, time.Local, Location(&empty))
	bogus := "Not/AZone"
	assert.Equal(t, time.Local, Location(&bogus))
	chicago := "America/Chicago"
	loc := Location(&chicago)
	require.NotNil(t, loc)
	assert.Equal(t, "America/Chicago", loc.String())
}
