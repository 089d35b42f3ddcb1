package model

// Canonical prayer names, in the order they occur within a day.
const (
	Bomdod = "Bomdod"
	Quyosh = "Quyosh"
	Peshin = "Peshin"
	Asr    = "Asr"
	Shom   = "Shom"
	Xufton = "Xufton"
)

// TimeUnknown marks a prayer time the source page did not publish.
// Times are zero-padded "HH:MM" strings, so every comparison in the
// codebase is a plain string comparison; the sentinel never matches one.
const TimeUnknown = "N/A"

// PrayerOrder is the canonical iteration order for a day's prayers.
var PrayerOrder = []string{Bomdod, Quyosh, Peshin, Asr, Shom, Xufton}

// PrayerSchedule is one region-day of prayer times as cached in the
// database and passed between the scraper, resolver and renderer.
type PrayerSchedule struct {
	Region       string            `json:"region"`
	Date         string            `json:"date"` // yyyy-mm-dd
	LocationName string            `json:"location_name"`
	WeekdayName  string            `json:"weekday_name"`
	HijriDate    string            `json:"hijri_date,omitempty"`
	Times        map[string]string `json:"times"`
}

// Time returns the schedule's time for a prayer, or TimeUnknown when the
// schedule or the entry is missing.
func (s *PrayerSchedule) Time(name string) string {
	if s == nil || s.Times == nil {
		return TimeUnknown
	}
	t, ok := s.Times[name]
	if !ok || t == "" {
		return TimeUnknown
	}
	return t
}

// AllUnknown reports whether no prayer in the schedule has a usable time.
func (s *PrayerSchedule) AllUnknown() bool {
	for _, name := range PrayerOrder {
		if s.Time(name) != TimeUnknown {
			return false
		}
	}
	return true
}
