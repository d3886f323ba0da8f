package db

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/vistasign/vistasign/internal/model"
)

const screenColumns = `
	id, token, device_id, store_id, name, orientation, refresh_version,
	paired, client_information, client_width, client_height, last_seen_at,
	created_by, created_at, updated_at`

// newScreenToken mints the opaque pairing token players present on every
// manifest/refresh/heartbeat request.
func newScreenToken() string {
	buf := make([]byte, 16)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}

func (s *pgStore) CreateScreen(storeID int, name, orientation string, createdBy int) (model.Screen, error) {
	var sc model.Screen
	err := s.db.Get(&sc, `
		INSERT INTO screens
		(token, store_id, name, orientation, refresh_version, paired, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, false, $5, now(), now())
		RETURNING `+screenColumns+`;`,
		newScreenToken(), storeID, name, orientation, createdBy)
	if err != nil {
		log.Error().Err(err).Int("store_id", storeID).Msg("CreateScreen failed")
		return model.Screen{}, err
	}
	return sc, nil
}

func (s *pgStore) GetScreenByID(id int) (model.Screen, error) {
	var sc model.Screen
	err := s.db.Get(&sc, `
		SELECT `+screenColumns+`
		FROM screens
		WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("screen_id", id).Msg("GetScreenByID failed")
	}
	return sc, err
}

func (s *pgStore) GetScreenByToken(token string) (model.Screen, error) {
	var sc model.Screen
	err := s.db.Get(&sc, `
		SELECT `+screenColumns+`
		FROM screens
		WHERE token = $1;`, token)
	return sc, err
}

func (s *pgStore) ListScreens(storeID int) ([]model.Screen, error) {
	var screens []model.Screen
	err := s.db.Select(&screens, `
		SELECT `+screenColumns+`
		FROM screens
		WHERE store_id = $1
		ORDER BY id;`, storeID)
	if err != nil {
		log.Error().Err(err).Int("store_id", storeID).Msg("ListScreens failed")
		return nil, err
	}
	return screens, nil
}

func (s *pgStore) UpdateScreen(id int, name, orientation *string) error {
	_, err := s.db.Exec(`
		UPDATE screens
		SET name = COALESCE($2, name),
		orientation = COALESCE($3, orientation),
		updated_at = now()
		WHERE id = $1;`, id, name, orientation)
	if err != nil {
		log.Error().Err(err).Int("screen_id", id).Msg("UpdateScreen failed")
	}
	return err
}

func (s *pgStore) DeleteScreen(id int) error {
	_, err := s.db.Exec(`DELETE FROM screens WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("screen_id", id).Msg("DeleteScreen failed")
	}
	return err
}

func (s *pgStore) PairScreen(id int, deviceID string) error {
	_, err := s.db.Exec(`
		UPDATE screens
		SET device_id = $2,
		paired = TRUE,
		updated_at = now()
		WHERE id = $1;`, id, deviceID)
	if err != nil {
		log.Error().Err(err).Int("screen_id", id).Msg("PairScreen failed")
	}
	return err
}

func (s *pgStore) IsDevicePaired(deviceID string) (bool, error) {
	var isPaired bool
	err := s.db.Get(&isPaired, `
		SELECT paired
		FROM screens
		WHERE device_id = $1;`, deviceID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return isPaired, err
}

// RecordHeartbeat updates operator-facing liveness only; it has no effect
// on the refresh protocol.
func (s *pgStore) RecordHeartbeat(screenID int, info *string, width, height *int) error {
	_, err := s.db.Exec(`
		UPDATE screens
		SET client_information = COALESCE($2, client_information),
		client_width = COALESCE($3, client_width),
		client_height = COALESCE($4, client_height),
		last_seen_at = now()
		WHERE id = $1;`, screenID, info, width, height)
	if err != nil {
		log.Error().Err(err).Int("screen_id", screenID).Msg("RecordHeartbeat failed")
	}
	return err
}

// BumpRefreshVersion increments the screen's monotonic counter and returns
// the new value. Every manual content reassignment routes through this.
func (s *pgStore) BumpRefreshVersion(screenID int) (int64, error) {
	var v int64
	err := s.db.Get(&v, `
		UPDATE screens
		SET refresh_version = refresh_version + 1,
		updated_at = now()
		WHERE id = $1
		RETURNING refresh_version;`, screenID)
	if err != nil {
		log.Error().Err(err).Int("screen_id", screenID).Msg("BumpRefreshVersion failed")
		return 0, err
	}
	return v, nil
}

// BumpStoreRefreshVersions is the mass-refresh path: every screen in the
// store gets its counter bumped so all players re-fetch on their next poll.
func (s *pgStore) BumpStoreRefreshVersions(storeID int) (int, error) {
	res, err := s.db.Exec(`
		UPDATE screens
		SET refresh_version = refresh_version + 1,
		updated_at = now()
		WHERE store_id = $1;`, storeID)
	if err != nil {
		log.Error().Err(err).Int("store_id", storeID).Msg("BumpStoreRefreshVersions failed")
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
