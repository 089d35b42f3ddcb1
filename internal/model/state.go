package model

// Day selectors matching the source page's row classes.
const (
	DayYesterday = "kecha"
	DayToday     = "bugun"
	DayTomorrow  = "erta"
)

// LiveMessageState tracks the single live message a chat's freshness loop
// keeps editing. MessageID always points at the most recently sent or edited
// message for the chat; when a reminder replaces the message the new id
// supersedes the old one atomically within the loop's tick.
type LiveMessageState struct {
	ChatID           int64
	MessageID        int
	Region           string
	DayType          string
	NextPrayer       string
	NextPrayerTime   string
	NextIsTomorrow   bool
	HijriDate        string
	LastRenderedDate string // yyyy-mm-dd, compared directly on rollover
}
