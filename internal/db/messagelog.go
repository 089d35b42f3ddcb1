package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tashware/muazzin/internal/model"
)

func (s *pgStore) LogMessage(chatID int64, messageID int, msgType, contentHash string) error {
	_, err := s.db.Exec(`
		INSERT INTO message_log (chat_id, message_id, type, content_hash, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (chat_id, message_id) DO UPDATE
		SET type = $3, content_hash = $4
		`, chatID, messageID, msgType, contentHash)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Int("message_id", messageID).Msg("LogMessage failed")
	}
	return err
}

// GetMessageHash returns the last stored content hash for a message, or ""
// when the message was never logged.
func (s *pgStore) GetMessageHash(chatID int64, messageID int) (string, error) {
	var hash sql.NullString
	err := s.db.Get(&hash, `
		SELECT content_hash
		FROM message_log
		WHERE chat_id = $1 AND message_id = $2
		`, chatID, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Int("message_id", messageID).Msg("GetMessageHash failed")
		return "", err
	}
	return hash.String, nil
}

func (s *pgStore) SetMessageHash(chatID int64, messageID int, contentHash string) error {
	_, err := s.db.Exec(`
		UPDATE message_log
		SET content_hash = $3
		WHERE chat_id = $1 AND message_id = $2
		`, chatID, messageID, contentHash)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Int("message_id", messageID).Msg("SetMessageHash failed")
	}
	return err
}

func (s *pgStore) DeleteMessageLog(chatID int64, messageID int) error {
	_, err := s.db.Exec(`
		DELETE FROM message_log
		WHERE chat_id = $1 AND message_id = $2
		`, chatID, messageID)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Int("message_id", messageID).Msg("DeleteMessageLog failed")
	}
	return err
}

// StaleMessages lists day-view messages older than the retention cutoff so
// the sweep job can delete them remotely and locally.
func (s *pgStore) StaleMessages(olderThan time.Time) ([]model.MessageLogEntry, error) {
	var entries []model.MessageLogEntry
	err := s.db.Select(&entries, `
		SELECT chat_id, message_id, type, content_hash, created_at
		FROM message_log
		WHERE created_at < $1 AND type IN ($2, $3)
		ORDER BY created_at
		`, olderThan, model.MessageTypeBugun, model.MessageTypeErtaga)
	if err != nil {
		log.Error().Err(err).Msg("StaleMessages failed")
		return nil, err
	}
	return entries, nil
}
