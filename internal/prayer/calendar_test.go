package prayer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tashware/muazzin/internal/model"
)

func TestCountdownSameDay(t *testing.T) {
	now := time.Date(2025, 3, 15, 17, 0, 0, 0, time.Local)
	assert.Equal(t, "1:07", Countdown(now, "18:07"))
}

func TestCountdownWrapsToTomorrow(t *testing.T) {
	// 05:30 already passed at 20:00, so the target is tomorrow morning.
	now := time.Date(2025, 5, 10, 20, 0, 0, 0, time.Local)
	assert.Equal(t, "9:30", Countdown(now, "05:30"))
}

func TestCountdownUnderOneHour(t *testing.T) {
	now := time.Date(2025, 5, 10, 11, 55, 0, 0, time.Local)
	assert.Equal(t, "0:28", Countdown(now, "12:23"))
}

func TestCountdownUnknownTarget(t *testing.T) {
	now := time.Date(2025, 5, 10, 11, 55, 0, 0, time.Local)
	assert.Equal(t, model.TimeUnknown, Countdown(now, model.TimeUnknown))
}

func TestHijriDateKnownValues(t *testing.T) {
	assert.Equal(t, "15 Ramazon, 1446",
		HijriDate(time.Date(2025, 3, 15, 12, 0, 0, 0, time.Local)))
	assert.Equal(t, "22 Sha'bon, 1446",
		HijriDate(time.Date(2025, 2, 21, 12, 0, 0, 0, time.Local)))
}

func TestHeaderCountdownGenericOutsideRamadan(t *testing.T) {
	now := time.Date(2025, 5, 10, 17, 0, 0, 0, time.Local)
	sched := toshkentSchedule()

	got := HeaderCountdown(now, sched, nil, "1:07")
	assert.Equal(t, "Keyingi namozgacha - 1:07 qoldi", got)
}

func TestHeaderCountdownIftorlikBeforeShom(t *testing.T) {
	now := time.Date(2025, 3, 15, 17, 0, 0, 0, time.Local)
	sched := toshkentSchedule()

	got := HeaderCountdown(now, sched, nil, "1:07")
	assert.Equal(t, "Iftorlikgacha - 1:07 qoldi", got)
}

func TestHeaderCountdownSaharlikAfterShom(t *testing.T) {
	now := time.Date(2025, 3, 15, 20, 0, 0, 0, time.Local)
	sched := toshkentSchedule()
	tomorrow := toshkentSchedule()
	tomorrow.Times = map[string]string{model.Bomdod: "05:22"}

	got := HeaderCountdown(now, sched, tomorrow, "0:00")
	// 20:00 to tomorrow 05:22.
	assert.Equal(t, "Saharlikgacha - 9:22 qoldi", got)
}

func TestHeaderCountdownSaharlikPreDawn(t *testing.T) {
	now := time.Date(2025, 3, 15, 3, 0, 0, 0, time.Local)
	sched := toshkentSchedule()

	got := HeaderCountdown(now, sched, nil, "2:24")
	assert.Equal(t, "Saharlikgacha - 2:24 qoldi", got)
}

func TestHeaderCountdownUnknownBoundary(t *testing.T) {
	now := time.Date(2025, 3, 15, 17, 0, 0, 0, time.Local)
	sched := toshkentSchedule()
	sched.Times[model.Shom] = model.TimeUnknown

	got := HeaderCountdown(now, sched, nil, "2:22")
	assert.Equal(t, "Saharlik yoki Iftorlik vaqti mavjud emas", got)
}
