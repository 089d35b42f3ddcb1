package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/tashware/muazzin/internal/config"
	"github.com/tashware/muazzin/internal/model"
	"github.com/tashware/muazzin/internal/telegram"
)

// Store is the persistence slice the calendar jobs need.
type Store interface {
	SaveMonthly(region string, days []model.PrayerSchedule) error
	StaleMessages(olderThan time.Time) ([]model.MessageLogEntry, error)
	DeleteMessageLog(chatID int64, messageID int) error
}

// Fetcher is the source adapter surface. Satisfied by scrape.Adapter.
type Fetcher interface {
	FetchMonth(ctx context.Context, region string, year, month int) ([]model.PrayerSchedule, error)
}

// Jobs runs the calendar-driven background work: the monthly cache refresh
// and the daily stale-message sweep.
type Jobs struct {
	store   Store
	fetcher Fetcher
	sender  telegram.Sender
	regions []string
	cron    *cron.Cron
	now     func() time.Time
}

func New(store Store, fetcher Fetcher, sender telegram.Sender, regions []string) *Jobs {
	return &Jobs{
		store:   store,
		fetcher: fetcher,
		sender:  sender,
		regions: regions,
		cron:    cron.New(),
		now:     time.Now,
	}
}

// Start registers the cron entries and begins the scheduler. The monthly
// refresh runs on the 1st at 02:00; the sweep runs hourly.
func (j *Jobs) Start(ctx context.Context) error {
	if _, err := j.cron.AddFunc("0 2 1 * *", func() { j.RefreshAll(ctx) }); err != nil {
		return err
	}
	if _, err := j.cron.AddFunc("0 * * * *", func() { j.SweepStale(ctx) }); err != nil {
		return err
	}
	j.cron.Start()
	log.Info().Msg("calendar jobs scheduled")
	return nil
}

func (j *Jobs) Stop() {
	j.cron.Stop()
}

// RefreshAll re-scrapes the current and next month for every region. A
// failed region is logged and skipped; the run always covers the rest.
func (j *Jobs) RefreshAll(ctx context.Context) {
	now := j.now()
	months := []time.Time{now, now.AddDate(0, 1, 0)}
	for _, region := range j.regions {
		for _, m := range months {
			days, err := j.fetcher.FetchMonth(ctx, region, m.Year(), int(m.Month()))
			if err != nil {
				log.Error().Err(err).Str("region", region).Int("month", int(m.Month())).
					Msg("monthly refresh: region skipped")
				continue
			}
			if err := j.store.SaveMonthly(region, days); err != nil {
				log.Error().Err(err).Str("region", region).Msg("monthly refresh: save incomplete")
			}
		}
	}
	log.Info().Int("regions", len(j.regions)).Msg("monthly prayer time refresh finished")
}

// SweepStale deletes day-view messages older than the retention window,
// remotely first (best-effort) and then from the log.
func (j *Jobs) SweepStale(ctx context.Context) {
	cutoff := j.now().Add(-config.MessageRetention)
	entries, err := j.store.StaleMessages(cutoff)
	if err != nil {
		log.Error().Err(err).Msg("stale sweep: listing failed")
		return
	}
	for _, e := range entries {
		if err := j.sender.DeleteMessage(e.ChatID, e.MessageID); err != nil {
			log.Warn().Err(err).Int64("chat_id", e.ChatID).Int("message_id", e.MessageID).
				Msg("stale sweep: remote delete failed")
		}
		if err := j.store.DeleteMessageLog(e.ChatID, e.MessageID); err != nil {
			log.Warn().Err(err).Int64("chat_id", e.ChatID).Int("message_id", e.MessageID).
				Msg("stale sweep: log delete failed")
		}
	}
	if len(entries) > 0 {
		log.Info().Int("messages", len(entries)).Msg("stale messages swept")
	}
}
