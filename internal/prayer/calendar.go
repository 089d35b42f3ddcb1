package prayer

import (
	"fmt"
	"time"

	"github.com/tashware/muazzin/internal/config"
	"github.com/tashware/muazzin/internal/model"
)

// Hijri month names as rendered to users.
var hijriMonths = [12]string{
	"Muharram", "Safar", "Rabi ul-avval", "Rabi ul-oxir",
	"Jumad ul-avval", "Jumad ul-oxir", "Rajab", "Sha'bon",
	"Ramazon", "Shavvol", "Zulqa'da", "Zulhijja",
}

// HijriDate converts a Gregorian date to its Hijri equivalent using the
// tabular (Kuwaiti) algorithm. Deterministic, no network; any out-of-range
// input yields "N/A" instead of an error.
func HijriDate(t time.Time) string {
	day, month, year := hijriFromJD(julianDay(t.Year(), int(t.Month()), t.Day()))
	if month < 1 || month > 12 || day < 1 || day > 30 {
		return model.TimeUnknown
	}
	return fmt.Sprintf("%d %s, %d", day, hijriMonths[month-1], year)
}

// julianDay computes the Julian day number for a Gregorian calendar date.
func julianDay(year, month, day int) int {
	if month < 3 {
		year--
		month += 12
	}
	a := year / 100
	b := 2 - a + a/4
	return int(365.25*float64(year+4716)) + int(30.6001*float64(month+1)) + day + b - 1524
}

// hijriFromJD is the integer tabular conversion (30-year cycle, 10631 days).
func hijriFromJD(jd int) (day, month, year int) {
	l := jd - 1948440 + 10632
	n := (l - 1) / 10631
	l = l - 10631*n + 354
	j := ((10985-l)/5316)*((50*l)/17719) + (l/5670)*((43*l)/15238)
	l = l - ((30-j)/15)*((17719*j)/50) - (j/16)*((15238*j)/43) + 29
	month = (24 * l) / 709
	day = l - (709*month)/24
	year = 30*n + j - 30
	return day, month, year
}

// Countdown formats the time left from now until the target clock time as
// "H:MM", floor-truncated to minutes. A target at or before now's clock
// time is interpreted as tomorrow.
func Countdown(now time.Time, target string) string {
	targetMin, ok := clockMinutes(target)
	if !ok {
		return model.TimeUnknown
	}
	nowMin := now.Hour()*60 + now.Minute()
	diff := targetMin - nowMin
	if diff <= 0 {
		diff += 24 * 60
	}
	return fmt.Sprintf("%d:%02d", diff/60, diff%60)
}

// Dual-countdown strings for the fasting window.
const (
	ramadanUnavailable = "Saharlik yoki Iftorlik vaqti mavjud emas"
	timesUnavailable   = "Namoz vaqtlari mavjud emas"
	saharlikFormat     = "Saharlikgacha - %s qoldi"
	iftorlikFormat     = "Iftorlikgacha - %s qoldi"
	genericFormat      = "Keyingi namozgacha - %s qoldi"
)

// HeaderCountdown builds the countdown line above the prayer block. Outside
// the fasting window it is the generic next-prayer countdown; inside it the
// dual Saharlik/Iftorlik countdown replaces it entirely. tomorrow may be nil.
func HeaderCountdown(now time.Time, sched, tomorrow *model.PrayerSchedule, genericCountdown string) string {
	if !config.InRamadan(now) {
		if genericCountdown == model.TimeUnknown {
			return timesUnavailable
		}
		return fmt.Sprintf(genericFormat, genericCountdown)
	}

	bomdod := sched.Time(model.Bomdod)
	shom := sched.Time(model.Shom)
	if bomdod == model.TimeUnknown || shom == model.TimeUnknown {
		return ramadanUnavailable
	}

	nowHHMM := now.Format("15:04")
	switch {
	case nowHHMM < bomdod:
		// Pre-dawn: counting to today's Saharlik.
		return fmt.Sprintf(saharlikFormat, Countdown(now, bomdod))
	case nowHHMM < shom:
		return fmt.Sprintf(iftorlikFormat, Countdown(now, shom))
	default:
		// After Shom the relevant Bomdod is tomorrow's when cached.
		next := bomdod
		if t := tomorrow.Time(model.Bomdod); t != model.TimeUnknown {
			next = t
		}
		return fmt.Sprintf(saharlikFormat, Countdown(now, next))
	}
}
