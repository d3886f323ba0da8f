package db

import (
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/vistasign/vistasign/internal/model"
	"github.com/vistasign/vistasign/internal/resolver"
)

func (s *pgStore) CreateSchedule(storeID int, name string, startSec, endSec int, days []int64, priority, createdBy int) (model.Schedule, error) {
	var sc model.Schedule
	const q = `
	INSERT INTO schedules
	(store_id, name, start_sec, end_sec, days_of_week, priority, created_by, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
	RETURNING id, store_id, name, start_sec, end_sec, days_of_week, priority, created_by, created_at, updated_at;`
	if err := s.db.Get(&sc, q, storeID, name, startSec, endSec, pq.Int64Array(days), priority, createdBy); err != nil {
		log.Error().Err(err).Int("store_id", storeID).Msg("CreateSchedule failed")
		return model.Schedule{}, err
	}
	return sc, nil
}

func (s *pgStore) GetScheduleByID(id int) (model.Schedule, error) {
	var sc model.Schedule
	err := s.db.Get(&sc, `
		SELECT id, store_id, name, start_sec, end_sec, days_of_week, priority, created_by, created_at, updated_at
		FROM schedules
		WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("schedule_id", id).Msg("GetScheduleByID failed")
	}
	return sc, err
}

func (s *pgStore) ListSchedules(storeID int) ([]model.Schedule, error) {
	var out []model.Schedule
	const q = `
	SELECT id, store_id, name, start_sec, end_sec, days_of_week, priority, created_by, created_at, updated_at
	  FROM schedules
	 WHERE store_id = $1
	 ORDER BY priority DESC, id;`
	if err := s.db.Select(&out, q, storeID); err != nil {
		log.Error().Err(err).Int("store_id", storeID).Msg("ListSchedules failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) DeleteSchedule(id int) error {
	_, err := s.db.Exec(`DELETE FROM schedules WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("schedule_id", id).Msg("DeleteSchedule failed")
	}
	return err
}

// BindScheduleContent upserts the (schedule, screen) -> media binding and
// bumps the screen's refresh version in the same transaction, since this is
// a manual reassignment players must notice.
func (s *pgStore) BindScheduleContent(scheduleID, screenID, mediaID int) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin schedule binding: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO scheduled_screen_content (schedule_id, screen_id, media_id, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (schedule_id, screen_id)
		DO UPDATE SET media_id = EXCLUDED.media_id, created_at = now();`,
		scheduleID, screenID, mediaID); err != nil {
		log.Error().Err(err).Int("schedule_id", scheduleID).Int("screen_id", screenID).Msg("BindScheduleContent failed")
		return err
	}

	if _, err := tx.Exec(`
		UPDATE screens
		SET refresh_version = refresh_version + 1,
		updated_at = now()
		WHERE id = $1;`, screenID); err != nil {
		log.Error().Err(err).Int("screen_id", screenID).Msg("version bump failed")
		return err
	}

	return tx.Commit()
}

func (s *pgStore) UnbindScheduleContent(scheduleID, screenID int) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin schedule unbinding: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		DELETE FROM scheduled_screen_content
		WHERE schedule_id = $1 AND screen_id = $2;`, scheduleID, screenID); err != nil {
		log.Error().Err(err).Int("schedule_id", scheduleID).Int("screen_id", screenID).Msg("UnbindScheduleContent failed")
		return err
	}

	if _, err := tx.Exec(`
		UPDATE screens
		SET refresh_version = refresh_version + 1,
		updated_at = now()
		WHERE id = $1;`, screenID); err != nil {
		log.Error().Err(err).Int("screen_id", screenID).Msg("version bump failed")
		return err
	}

	return tx.Commit()
}

// ScheduleEntriesForScreen loads everything the resolver needs for one
// screen: each schedule binding joined to its window definition.
func (s *pgStore) ScheduleEntriesForScreen(screenID int) ([]resolver.ScheduleEntry, error) {
	type row struct {
		ScheduleID int           `db:"schedule_id"`
		MediaID    int           `db:"media_id"`
		StartSec   int           `db:"start_sec"`
		EndSec     int           `db:"end_sec"`
		DaysOfWeek pq.Int64Array `db:"days_of_week"`
		Priority   int           `db:"priority"`
		CreatedAt  time.Time     `db:"created_at"`
	}
	var rows []row
	const q = `
	SELECT sc.id AS schedule_id, ssc.media_id, sc.start_sec, sc.end_sec,
	       sc.days_of_week, sc.priority, ssc.created_at
	  FROM scheduled_screen_content ssc
	  JOIN schedules sc ON sc.id = ssc.schedule_id
	 WHERE ssc.screen_id = $1;`
	if err := s.db.Select(&rows, q, screenID); err != nil {
		log.Error().Err(err).Int("screen_id", screenID).Msg("ScheduleEntriesForScreen failed")
		return nil, err
	}

	out := make([]resolver.ScheduleEntry, 0, len(rows))
	for _, r := range rows {
		days := make([]int, 0, len(r.DaysOfWeek))
		for _, d := range r.DaysOfWeek {
			days = append(days, int(d))
		}
		out = append(out, resolver.ScheduleEntry{
			ScheduleID: r.ScheduleID,
			MediaID:    r.MediaID,
			StartSec:   r.StartSec,
			EndSec:     r.EndSec,
			DaysOfWeek: days,
			Priority:   r.Priority,
			CreatedAt:  r.CreatedAt,
		})
	}
	return out, nil
}
