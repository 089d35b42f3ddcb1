package render

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/tashware/muazzin/internal/model"
	"github.com/tashware/muazzin/internal/prayer"
)

const divider = "------------------------"

// Unavailable is the user-facing text when no schedule could be served.
const Unavailable = "Namoz vaqtlarini olishda xatolik yuz berdi. Keyinroq urinib ko'ring."

// Live is one composed render of the live message plus the resolver state
// it was derived from, so callers can track what the message promises.
type Live struct {
	Text           string
	NextPrayer     string
	NextPrayerTime string
	NextIsTomorrow bool
}

// ComposeLive resolves the next prayer and renders the live message body.
// tomorrow may be nil when not yet cached.
func ComposeLive(now time.Time, sched, tomorrow *model.PrayerSchedule) Live {
	next, nextTime, isTomorrow := prayer.ResolveWithTomorrow(sched, tomorrow, now.Format("15:04"))
	return Live{
		Text:           LiveText(now, sched, tomorrow, next, nextTime, isTomorrow),
		NextPrayer:     next,
		NextPrayerTime: nextTime,
		NextIsTomorrow: isTomorrow,
	}
}

// LiveText renders the live message for an already-resolved next prayer.
func LiveText(now time.Time, sched, tomorrow *model.PrayerSchedule, next, nextTime string, nextIsTomorrow bool) string {
	countdown := model.TimeUnknown
	if nextTime != model.TimeUnknown {
		countdown = prayer.Countdown(now, nextTime)
	}
	header := prayer.HeaderCountdown(now, sched, tomorrow, countdown)

	hijri := sched.HijriDate
	if hijri == "" {
		hijri = prayer.HijriDate(now)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📍 %s\n", sched.LocationName)
	fmt.Fprintf(&b, "🗓 %s, %s\n", sched.WeekdayName, sched.Date)
	fmt.Fprintf(&b, "☪️ %s\n", hijri)
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "%s ⏰\n", header)
	b.WriteString(divider + "\n")

	if nextTime == model.TimeUnknown {
		b.WriteString("Keyingi namoz vaqti hozircha mavjud emas\n")
	} else {
		name := next
		if nextIsTomorrow {
			name = "Ertangi " + next
		}
		fmt.Fprintf(&b, "%s vaqti\n", name)
		fmt.Fprintf(&b, "**%s да**\n", nextTime)
		fmt.Fprintf(&b, "- %s qoldi ⏰\n", countdown)
	}
	b.WriteString(divider)
	return b.String()
}

// FullTimes renders the complete day listing with per-prayer reminder bells
// and a marker on the prayer closest to now.
func FullTimes(now time.Time, sched *model.PrayerSchedule, reminders map[string]bool) string {
	closest := prayer.Closest(sched, now.Format("15:04"))

	var b strings.Builder
	b.WriteString("🕌 *Namoz vaqtlari*\n")
	fmt.Fprintf(&b, "📍 %s, %s\n", sched.LocationName, sched.Date)
	for _, name := range model.PrayerOrder {
		bell := "🔕"
		if reminders[name] {
			bell = "🔔"
		}
		marker := ""
		if name == closest {
			marker = " ◀️"
		}
		fmt.Fprintf(&b, "%s: %s %s%s\n", name, sched.Time(name), bell, marker)
	}
	return b.String()
}

// ReminderText is the one-time pre-prayer notice.
func ReminderText(next string) string {
	return fmt.Sprintf("%s kirishiga 5 daqiqa qoldi", next)
}

// ContentHash digests the rendered text and any attached markup so the
// freshness loop can skip edits that would not change the message.
func ContentHash(text, markup string) string {
	sum := md5.Sum([]byte(text + markup))
	return hex.EncodeToString(sum[:])
}
