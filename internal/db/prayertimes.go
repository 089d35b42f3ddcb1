package db

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/tashware/muazzin/internal/model"
)

// UpsertPrayerTimes writes one day's schedule for a region. Re-ingesting the
// same (region, date) overwrites the previous row, never duplicates it.
func (s *pgStore) UpsertPrayerTimes(region, date string, sched *model.PrayerSchedule) error {
	raw, err := json.Marshal(sched)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO prayer_times (region, date, times_json, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (region, date) DO UPDATE
		SET times_json = $3, created_at = now()
		`, region, date, raw)
	if err != nil {
		log.Error().Err(err).Str("region", region).Str("date", date).Msg("UpsertPrayerTimes failed")
	}
	return err
}

// GetPrayerTimes reads one cached day. A missing row is a normal
// "not yet cached" result and comes back as (nil, nil).
func (s *pgStore) GetPrayerTimes(region, date string) (*model.PrayerSchedule, error) {
	var raw []byte
	err := s.db.Get(&raw, `
		SELECT times_json
		FROM prayer_times
		WHERE region = $1 AND date = $2
		`, region, date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error().Err(err).Str("region", region).Str("date", date).Msg("GetPrayerTimes failed")
		return nil, err
	}
	var sched model.PrayerSchedule
	if err := json.Unmarshal(raw, &sched); err != nil {
		log.Error().Err(err).Str("region", region).Str("date", date).Msg("GetPrayerTimes decode failed")
		return nil, err
	}
	return &sched, nil
}

// SaveMonthly upserts a month of days best-effort: a failed day is logged
// and skipped so one bad row cannot abort the whole batch. The first error
// is returned after every day has been attempted.
func (s *pgStore) SaveMonthly(region string, days []model.PrayerSchedule) error {
	var firstErr error
	for i := range days {
		day := &days[i]
		if err := s.UpsertPrayerTimes(region, day.Date, day); err != nil {
			log.Error().Err(err).Str("region", region).Str("date", day.Date).Msg("SaveMonthly: day skipped")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
