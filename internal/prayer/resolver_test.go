package prayer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tashware/muazzin/internal/model"
)

func toshkentSchedule() *model.PrayerSchedule {
	return &model.PrayerSchedule{
		Region:       "27",
		Date:         "2025-03-15",
		LocationName: "Toshkent",
		WeekdayName:  "Shanba",
		Times: map[string]string{
			model.Bomdod: "05:24",
			model.Quyosh: "06:42",
			model.Peshin: "12:23",
			model.Asr:    "16:20",
			model.Shom:   "18:07",
			model.Xufton: "19:22",
		},
	}
}

func TestResolveReturnsNextUnstartedPrayer(t *testing.T) {
	sched := toshkentSchedule()

	name, at := Resolve(sched, "17:00")
	assert.Equal(t, model.Shom, name)
	assert.Equal(t, "18:07", at)
}

func TestResolveWalksEveryPrayerInOrder(t *testing.T) {
	sched := toshkentSchedule()

	// As the clock advances through the day each prayer becomes "next"
	// exactly once, in canonical order.
	probes := []struct {
		now  string
		want string
	}{
		{"00:00", model.Bomdod},
		{"05:24", model.Quyosh},
		{"06:42", model.Peshin},
		{"12:23", model.Asr},
		{"16:20", model.Shom},
		{"18:07", model.Xufton},
	}
	var seen []string
	for _, p := range probes {
		name, _ := Resolve(sched, p.now)
		assert.Equal(t, p.want, name, "now=%s", p.now)
		seen = append(seen, name)
	}
	assert.Equal(t, model.PrayerOrder, seen)

	// After the last prayer today is exhausted.
	name, at := Resolve(sched, "19:22")
	assert.Equal(t, model.TimeUnknown, name)
	assert.Equal(t, model.TimeUnknown, at)
}

func TestResolveWithTomorrowRollsToBomdod(t *testing.T) {
	today := toshkentSchedule()
	tomorrow := toshkentSchedule()
	tomorrow.Date = "2025-03-16"
	tomorrow.Times[model.Bomdod] = "05:22"

	name, at, isTomorrow := ResolveWithTomorrow(today, tomorrow, "20:00")
	assert.Equal(t, model.Bomdod, name)
	assert.Equal(t, "05:22", at)
	assert.True(t, isTomorrow)
}

func TestResolveWithTomorrowMissingCacheIsRetryLater(t *testing.T) {
	today := toshkentSchedule()

	name, at, isTomorrow := ResolveWithTomorrow(today, nil, "20:00")
	assert.Equal(t, model.TimeUnknown, name)
	assert.Equal(t, model.TimeUnknown, at)
	assert.False(t, isTomorrow)
}

func TestResolveSkipsUnknownCells(t *testing.T) {
	sched := toshkentSchedule()
	sched.Times[model.Shom] = model.TimeUnknown

	name, at := Resolve(sched, "17:00")
	assert.Equal(t, model.Xufton, name)
	assert.Equal(t, "19:22", at)
}

func TestResolveAllUnknownSchedule(t *testing.T) {
	sched := &model.PrayerSchedule{Times: map[string]string{}}

	name, at := Resolve(sched, "12:00")
	assert.Equal(t, model.TimeUnknown, name)
	assert.Equal(t, model.TimeUnknown, at)
}

func TestClosestPrefersPassedPrayerOnTie(t *testing.T) {
	sched := &model.PrayerSchedule{
		Times: map[string]string{
			model.Peshin: "12:00",
			model.Asr:    "14:00",
		},
	}
	// 13:00 is exactly one hour from both; the passed prayer wins.
	assert.Equal(t, model.Peshin, Closest(sched, "13:00"))
}

func TestClosestSkipsUnknown(t *testing.T) {
	sched := toshkentSchedule()
	sched.Times[model.Asr] = model.TimeUnknown

	assert.Equal(t, model.Shom, Closest(sched, "17:30"))
}
