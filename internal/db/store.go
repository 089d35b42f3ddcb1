package db

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tashware/muazzin/internal/model"
)

// Store exposes the persistence operations the bot, loop and jobs depend on.
type Store interface {
	// user functions
	SaveUser(chatID int64, username string) error
	GetUser(chatID int64) (*model.User, error)
	SetUserRegion(chatID int64, region string) error
	SetUserReminders(chatID int64, prefs map[string]bool) error
	DeleteUser(chatID int64) error
	ListUsersWithRegion() ([]model.User, error)

	// prayer time cache functions
	UpsertPrayerTimes(region, date string, sched *model.PrayerSchedule) error
	GetPrayerTimes(region, date string) (*model.PrayerSchedule, error)
	SaveMonthly(region string, days []model.PrayerSchedule) error

	// message log functions
	LogMessage(chatID int64, messageID int, msgType, contentHash string) error
	GetMessageHash(chatID int64, messageID int) (string, error)
	SetMessageHash(chatID int64, messageID int, contentHash string) error
	DeleteMessageLog(chatID int64, messageID int) error
	StaleMessages(olderThan time.Time) ([]model.MessageLogEntry, error)
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore() Store {
	return &pgStore{db: DB}
}
