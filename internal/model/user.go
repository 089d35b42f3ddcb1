package model

import (
	"encoding/json"
	"time"
)

type User struct {
	ChatID        int64     `db:"chat_id" json:"chat_id"`
	Username      string    `db:"username" json:"username"`
	Region        *string   `db:"region" json:"region"`
	RemindersJSON []byte    `db:"reminders_json" json:"-"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// ReminderPrefs decodes the per-prayer reminder toggles. A missing or
// malformed column means every reminder is off.
func (u *User) ReminderPrefs() map[string]bool {
	prefs := map[string]bool{}
	if u == nil || len(u.RemindersJSON) == 0 {
		return prefs
	}
	_ = json.Unmarshal(u.RemindersJSON, &prefs)
	return prefs
}
