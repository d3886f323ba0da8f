package db

import (
	"github.com/rs/zerolog/log"

	"github.com/vistasign/vistasign/internal/model"
)

func (s *pgStore) CreateClient(name string) (model.Client, error) {
	var c model.Client
	err := s.db.Get(&c, `
		INSERT INTO clients (name, created_at, updated_at)
		VALUES ($1, now(), now())
		RETURNING id, name, created_at, updated_at;`, name)
	if err != nil {
		log.Error().Err(err).Msg("CreateClient failed")
		return model.Client{}, err
	}
	return c, nil
}

func (s *pgStore) GetClientByID(id int) (model.Client, error) {
	var c model.Client
	err := s.db.Get(&c, `
		SELECT id, name, created_at, updated_at
		FROM clients
		WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("client_id", id).Msg("GetClientByID failed")
	}
	return c, err
}

func (s *pgStore) ListClients() ([]model.Client, error) {
	var out []model.Client
	err := s.db.Select(&out, `
		SELECT id, name, created_at, updated_at
		FROM clients
		ORDER BY id;`)
	if err != nil {
		log.Error().Err(err).Msg("ListClients failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) CreateStore(clientID int, name string, timezone *string) (model.Store, error) {
	var st model.Store
	err := s.db.Get(&st, `
		INSERT INTO stores (client_id, name, timezone, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		RETURNING id, client_id, name, timezone, created_at, updated_at;`,
		clientID, name, timezone)
	if err != nil {
		log.Error().Err(err).Int("client_id", clientID).Msg("CreateStore failed")
		return model.Store{}, err
	}
	return st, nil
}

func (s *pgStore) GetStoreByID(id int) (model.Store, error) {
	var st model.Store
	err := s.db.Get(&st, `
		SELECT id, client_id, name, timezone, created_at, updated_at
		FROM stores
		WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("store_id", id).Msg("GetStoreByID failed")
	}
	return st, err
}

func (s *pgStore) ListStores(clientID int) ([]model.Store, error) {
	var out []model.Store
	err := s.db.Select(&out, `
		SELECT id, client_id, name, timezone, created_at, updated_at
		FROM stores
		WHERE client_id = $1
		ORDER BY id;`, clientID)
	if err != nil {
		log.Error().Err(err).Int("client_id", clientID).Msg("ListStores failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) UpdateStore(id int, name, timezone *string) error {
	_, err := s.db.Exec(`
		UPDATE stores
		SET name = COALESCE($2, name),
		timezone = COALESCE($3, timezone),
		updated_at = now()
		WHERE id = $1;`, id, name, timezone)
	if err != nil {
		log.Error().Err(err).Int("store_id", id).Msg("UpdateStore failed")
	}
	return err
}
