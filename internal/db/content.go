package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/vistasign/vistasign/internal/resolver"
)

// AssignDefaultContent swaps the screen's fallback binding. The deactivate,
// insert and version bump run in one transaction so readers never observe
// zero or two active rows.
func (s *pgStore) AssignDefaultContent(screenID, mediaID int) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin default content swap: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		UPDATE screen_content
		SET active = FALSE
		WHERE screen_id = $1 AND active = TRUE;`, screenID); err != nil {
		log.Error().Err(err).Int("screen_id", screenID).Msg("deactivate default content failed")
		return err
	}

	if _, err := tx.Exec(`
		INSERT INTO screen_content (screen_id, media_id, active, assigned_at)
		VALUES ($1, $2, TRUE, now());`, screenID, mediaID); err != nil {
		log.Error().Err(err).Int("screen_id", screenID).Int("media_id", mediaID).Msg("insert default content failed")
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

// DefaultContentForScreen returns the screen's active fallback binding, or
// nil when none is assigned. The most recent assignment wins if a partial
// legacy swap ever left more than one active row behind.
func (s *pgStore) DefaultContentForScreen(screenID int) (*resolver.DefaultEntry, error) {
	var row struct {
		MediaID    int          `db:"media_id"`
		AssignedAt sql.NullTime `db:"assigned_at"`
	}
	err := s.db.Get(&row, `
		SELECT media_id, assigned_at
		FROM screen_content
		WHERE screen_id = $1 AND active = TRUE
		ORDER BY assigned_at DESC, id DESC
		LIMIT 1;`, screenID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error().Err(err).Int("screen_id", screenID).Msg("DefaultContentForScreen failed")
		return nil, err
	}
	entry := &resolver.DefaultEntry{MediaID: row.MediaID}
	if row.AssignedAt.Valid {
		entry.AssignedAt = row.AssignedAt.Time
	}
	return entry, nil
}
