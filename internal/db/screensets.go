package db

import (
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/vistasign/vistasign/internal/model"
)

func (s *pgStore) CreateScreenSet(storeID int, name string, description *string, createdBy int) (model.ScreenSet, error) {
	var g model.ScreenSet
	err := s.db.Get(&g, `
		INSERT INTO screen_sets (store_id, name, description, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING id, store_id, name, description, created_by, created_at, updated_at;`,
		storeID, name, description, createdBy)
	if err != nil {
		log.Error().Err(err).Int("store_id", storeID).Msg("CreateScreenSet failed")
	}
	return g, err
}

func (s *pgStore) GetScreenSetByID(id int) (model.ScreenSet, error) {
	var g model.ScreenSet
	err := s.db.Get(&g, `
		SELECT id, store_id, name, description, created_by, created_at, updated_at
		  FROM screen_sets
		 WHERE id = $1;`, id)
	return g, err
}

func (s *pgStore) ListScreenSets(storeID int) ([]model.ScreenSet, error) {
	var sets []model.ScreenSet
	err := s.db.Select(&sets, `
		SELECT id, store_id, name, description, created_by, created_at, updated_at
		  FROM screen_sets
		 WHERE store_id = $1
		 ORDER BY name ASC, id ASC;`, storeID)
	if err != nil {
		log.Error().Err(err).Int("store_id", storeID).Msg("ListScreenSets failed")
		return nil, err
	}
	return sets, nil
}

func (s *pgStore) DeleteScreenSet(id int) error {
	res, err := s.db.Exec(`DELETE FROM screen_sets WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("set_id", id).Msg("DeleteScreenSet failed")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *pgStore) AddScreenToSet(setID, screenID int) error {
	// membership insert is idempotent
	_, err := s.db.Exec(`
		INSERT INTO screen_set_members (set_id, screen_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING;`, setID, screenID)
	if err != nil {
		log.Error().Err(err).Int("set_id", setID).Int("screen_id", screenID).Msg("AddScreenToSet failed")
	}
	return err
}

func (s *pgStore) RemoveScreenFromSet(setID, screenID int) error {
	res, err := s.db.Exec(`
		DELETE FROM screen_set_members
		 WHERE set_id = $1 AND screen_id = $2;`, setID, screenID)
	if err != nil {
		log.Error().Err(err).Int("set_id", setID).Int("screen_id", screenID).Msg("RemoveScreenFromSet failed")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *pgStore) ListScreensInSet(setID int) ([]model.Screen, error) {
	var screens []model.Screen
	err := s.db.Select(&screens, `
		SELECT s.id, s.token, s.device_id, s.store_id, s.name, s.orientation,
		       s.refresh_version, s.paired, s.client_information, s.client_width,
		       s.client_height, s.last_seen_at, s.created_by, s.created_at, s.updated_at
		  FROM screen_set_members m
		  JOIN screens s ON s.id = m.screen_id
		 WHERE m.set_id = $1
		 ORDER BY s.name ASC, s.id ASC;`, setID)
	if err != nil {
		log.Error().Err(err).Int("set_id", setID).Msg("ListScreensInSet failed")
		return nil, err
	}
	return screens, nil
}
