package model

import "time"

// Message log row types.
const (
	MessageTypeLive     = "live"
	MessageTypeReminder = "reminder"
	MessageTypeBugun    = "bugun"
	MessageTypeErtaga   = "ertaga"
)

type MessageLogEntry struct {
	ChatID      int64     `db:"chat_id" json:"chat_id"`
	MessageID   int       `db:"message_id" json:"message_id"`
	Type        string    `db:"type" json:"type"`
	ContentHash *string   `db:"content_hash" json:"content_hash"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
