package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tashware/muazzin/internal/model"
)

func sampleSchedule() *model.PrayerSchedule {
	return &model.PrayerSchedule{
		Region:       "27",
		Date:         "2025-03-15",
		LocationName: "Toshkent",
		WeekdayName:  "Shanba",
		HijriDate:    "15 Ramazon, 1446",
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

func TestComposeLiveEndToEnd(t *testing.T) {
	now := time.Date(2025, 3, 15, 17, 0, 0, 0, time.Local)

	live := ComposeLive(now, sampleSchedule(), nil)
	assert.Equal(t, model.Shom, live.NextPrayer)
	assert.Equal(t, "18:07", live.NextPrayerTime)
	assert.False(t, live.NextIsTomorrow)
	assert.Contains(t, live.Text, "📍 Toshkent")
	assert.Contains(t, live.Text, "Shom vaqti")
	assert.Contains(t, live.Text, "**18:07 да**")
	assert.Contains(t, live.Text, "- 1:07 qoldi")
}

func TestLiveTextUnknownNextPrayer(t *testing.T) {
	now := time.Date(2025, 5, 10, 20, 0, 0, 0, time.Local)
	sched := sampleSchedule()

	text := LiveText(now, sched, nil, model.TimeUnknown, model.TimeUnknown, false)
	assert.Contains(t, text, "hozircha mavjud emas")
	assert.NotContains(t, text, "**")
}

func TestLiveTextMarksTomorrowPrayer(t *testing.T) {
	now := time.Date(2025, 5, 10, 20, 0, 0, 0, time.Local)

	text := LiveText(now, sampleSchedule(), nil, model.Bomdod, "05:22", true)
	assert.Contains(t, text, "Ertangi Bomdod vaqti")
}

func TestContentHashStable(t *testing.T) {
	now := time.Date(2025, 5, 10, 17, 0, 0, 0, time.Local)
	sched := sampleSchedule()

	a := ContentHash(LiveText(now, sched, nil, model.Shom, "18:07", false), "")
	b := ContentHash(LiveText(now, sched, nil, model.Shom, "18:07", false), "")
	assert.Equal(t, a, b)
}

func TestContentHashChangesWithContent(t *testing.T) {
	assert.NotEqual(t, ContentHash("a", ""), ContentHash("b", ""))
	assert.NotEqual(t, ContentHash("a", "x"), ContentHash("a", "y"))
}

func TestFullTimesShowsBellsAndClosest(t *testing.T) {
	now := time.Date(2025, 3, 15, 17, 30, 0, 0, time.Local)

	text := FullTimes(now, sampleSchedule(), map[string]bool{model.Bomdod: true})
	assert.Contains(t, text, "Bomdod: 05:24 🔔")
	assert.Contains(t, text, "Peshin: 12:23 🔕")
	// 17:30 is closest to Shom at 18:07.
	assert.Contains(t, text, "Shom: 18:07 🔕 ◀️")
	assert.Equal(t, 1, strings.Count(text, "◀️"))
}
