package db

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/tashware/muazzin/internal/model"
)

func (s *pgStore) SaveUser(chatID int64, username string) error {
	_, err := s.db.Exec(`
		INSERT INTO users (chat_id, username, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (chat_id) DO UPDATE SET username = $2
		`, chatID, username)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("SaveUser failed")
	}
	return err
}

func (s *pgStore) GetUser(chatID int64) (*model.User, error) {
	var u model.User
	err := s.db.Get(&u, `
		SELECT chat_id, username, region, reminders_json, created_at
		FROM users
		WHERE chat_id = $1
		`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("GetUser failed")
		return nil, err
	}
	return &u, nil
}

func (s *pgStore) SetUserRegion(chatID int64, region string) error {
	_, err := s.db.Exec(`
		UPDATE users
		SET region = $2
		WHERE chat_id = $1
		`, chatID, region)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("SetUserRegion failed")
	}
	return err
}

func (s *pgStore) SetUserReminders(chatID int64, prefs map[string]bool) error {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		UPDATE users
		SET reminders_json = $2
		WHERE chat_id = $1
		`, chatID, raw)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("SetUserReminders failed")
	}
	return err
}

func (s *pgStore) DeleteUser(chatID int64) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE chat_id = $1`, chatID)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("DeleteUser failed")
	}
	return err
}

func (s *pgStore) ListUsersWithRegion() ([]model.User, error) {
	var users []model.User
	err := s.db.Select(&users, `
		SELECT chat_id, username, region, reminders_json, created_at
		FROM users
		WHERE region IS NOT NULL
		ORDER BY chat_id
		`)
	if err != nil {
		log.Error().Err(err).Msg("ListUsersWithRegion failed")
		return nil, err
	}
	return users, nil
}
