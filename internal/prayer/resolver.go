package prayer

import (
	"strconv"
	"strings"

	"github.com/tashware/muazzin/internal/model"
)

// Resolve returns the next unstarted prayer of the day. now is a zero-padded
// "HH:MM" clock string; because prayer times are zero-padded too, lexical
// comparison is a valid time ordering. Returns (N/A, N/A) when every known
// prayer has already started.
func Resolve(sched *model.PrayerSchedule, now string) (string, string) {
	bestName, bestTime := model.TimeUnknown, model.TimeUnknown
	for _, name := range model.PrayerOrder {
		t := sched.Time(name)
		if t == model.TimeUnknown || t <= now {
			continue
		}
		if bestTime == model.TimeUnknown || t < bestTime {
			bestName, bestTime = name, t
		}
	}
	return bestName, bestTime
}

// ResolveWithTomorrow resolves against today's schedule and falls back to
// tomorrow's earliest known prayer once today is exhausted. The boolean
// reports whether the returned prayer belongs to tomorrow. tomorrow may be
// nil (not yet cached), which yields (N/A, N/A, false): a "retry later"
// signal, not an error.
func ResolveWithTomorrow(today, tomorrow *model.PrayerSchedule, now string) (string, string, bool) {
	if name, t := Resolve(today, now); t != model.TimeUnknown {
		return name, t, false
	}
	if tomorrow == nil {
		return model.TimeUnknown, model.TimeUnknown, false
	}
	for _, name := range model.PrayerOrder {
		if t := tomorrow.Time(name); t != model.TimeUnknown {
			return name, t, true
		}
	}
	return model.TimeUnknown, model.TimeUnknown, false
}

// Closest returns the prayer nearest to now in either direction, used only
// to highlight a row in the full-times view. On equal distance the prayer
// that has already started wins.
func Closest(sched *model.PrayerSchedule, now string) string {
	nowMin, ok := clockMinutes(now)
	if !ok {
		return ""
	}
	best := ""
	bestAbs := 0
	bestPassed := false
	for _, name := range model.PrayerOrder {
		t := sched.Time(name)
		min, ok := clockMinutes(t)
		if !ok {
			continue
		}
		diff := min - nowMin
		abs := diff
		if abs < 0 {
			abs = -abs
		}
		passed := diff <= 0
		if best == "" || abs < bestAbs || (abs == bestAbs && passed && !bestPassed) {
			best, bestAbs, bestPassed = name, abs, passed
		}
	}
	return best
}

// clockMinutes parses "HH:MM" into minutes since midnight.
func clockMinutes(t string) (int, bool) {
	parts := strings.SplitN(t, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
