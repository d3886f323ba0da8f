package db

import (
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/vistasign/vistasign/internal/model"
)

func (s *pgStore) CreateMediaAsset(clientID int, storeID *int, name, objectKey, mimeType string, createdBy int) (model.MediaAsset, error) {
	var m model.MediaAsset
	err := s.db.Get(&m, `
		INSERT INTO media_assets
		(client_id, store_id, name, object_key, mime_type, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		RETURNING id, client_id, store_id, name, object_key, mime_type, created_by, created_at;`,
		clientID, storeID, name, objectKey, mimeType, createdBy)
	if err != nil {
		log.Error().Err(err).Int("client_id", clientID).Msg("CreateMediaAsset failed")
		return model.MediaAsset{}, err
	}
	return m, nil
}

func (s *pgStore) GetMediaByID(id int) (model.MediaAsset, error) {
	var m model.MediaAsset
	err := s.db.Get(&m, `
		SELECT id, client_id, store_id, name, object_key, mime_type, created_by, created_at
		FROM media_assets
		WHERE id = $1;`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MediaAsset{}, err
	}
	if err != nil {
		log.Error().Err(err).Int("media_id", id).Msg("GetMediaByID failed")
	}
	return m, err
}

func (s *pgStore) ListMedia(clientID int) ([]model.MediaAsset, error) {
	var all []model.MediaAsset
	err := s.db.Select(&all, `
		SELECT id, client_id, store_id, name, object_key, mime_type, created_by, created_at
		FROM media_assets
		WHERE client_id = $1
		ORDER BY id;`, clientID)
	if err != nil {
		log.Error().Err(err).Int("client_id", clientID).Msg("ListMedia failed")
		return nil, err
	}
	return all, nil
}

func (s *pgStore) DeleteMedia(id int) error {
	_, err := s.db.Exec(`DELETE FROM media_assets WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("media_id", id).Msg("DeleteMedia failed")
	}
	return err
}
