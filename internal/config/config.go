package config

import (
	"fmt"
	"time"
)

// LocationMap maps city names shown on the location keyboard to the region
// codes used by the islom.uz schedule pages.
var LocationMap = map[string]string{
	"Andijon":   "1",
	"Buxoro":    "4",
	"Guliston":  "5",
	"Jizzax":    "9",
	"Marg'ilon": "13",
	"Namangan":  "15",
	"Navoiy":    "14",
	"Nukus":     "16",
	"Qarshi":    "25",
	"Qo'qon":    "26",
	"Samarqand": "18",
	"Toshkent":  "27",
	"Xiva":      "21",
}

// RegionNames is the reverse of LocationMap.
var RegionNames = func() map[string]string {
	m := make(map[string]string, len(LocationMap))
	for name, code := range LocationMap {
		m[code] = name
	}
	return m
}()

// RegionName returns the display name for a region code.
func RegionName(code string) string {
	if name, ok := RegionNames[code]; ok {
		return name
	}
	return code
}

// RegionCodes returns every known region code, for batch jobs.
func RegionCodes() []string {
	codes := make([]string, 0, len(LocationMap))
	for _, code := range LocationMap {
		codes = append(codes, code)
	}
	return codes
}

// Ramadan window for the dual (Saharlik/Iftorlik) countdown. Updated yearly.
var (
	RamadanStart = time.Date(2025, time.March, 1, 0, 0, 0, 0, time.Local)
	RamadanEnd   = time.Date(2025, time.March, 30, 23, 59, 59, 0, time.Local)
)

// InRamadan reports whether now falls inside the configured fasting window.
func InRamadan(now time.Time) bool {
	return !now.Before(RamadanStart) && !now.After(RamadanEnd)
}

// Loop and job tunables.
const (
	DefaultTickInterval = 5 * time.Minute

	// Reminder fires when the next prayer is this close. The window is wider
	// than one minute because ticks only land every TickInterval.
	ReminderWindowMin = 240 * time.Second
	ReminderWindowMax = 305 * time.Second

	// message_log rows older than this are swept together with their
	// remote messages.
	MessageRetention = 24 * time.Hour

	SourceBaseURL = "https://islom.uz"
)

// Config holds the runtime settings assembled in cmd/bot from the
// environment.
type Config struct {
	BotToken       string
	DatabaseURL    string
	MigrationsPath string
	ServerAddress  string
	JWTSecret      string
	AdminEmail     string
	AdminPassHash  string
	RedisAddress   string
	RedisUsername  string
	RedisPassword  string
	MQTTBrokerURL  string
	TickInterval   time.Duration
	SourceBaseURL  string
}

// Validate checks the settings the bot cannot run without.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.ServerAddress != "" && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when the admin API is enabled")
	}
	return nil
}
