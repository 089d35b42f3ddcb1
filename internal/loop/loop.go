package loop

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tashware/muazzin/internal/config"
	"github.com/tashware/muazzin/internal/model"
	"github.com/tashware/muazzin/internal/prayer"
	"github.com/tashware/muazzin/internal/render"
	"github.com/tashware/muazzin/internal/telegram"
)

// Store is the slice of persistence the loop reads and writes each tick.
// Satisfied by db.Store.
type Store interface {
	GetPrayerTimes(region, date string) (*model.PrayerSchedule, error)
	GetUser(chatID int64) (*model.User, error)
	LogMessage(chatID int64, messageID int, msgType, contentHash string) error
	GetMessageHash(chatID int64, messageID int) (string, error)
	SetMessageHash(chatID int64, messageID int, contentHash string) error
	DeleteMessageLog(chatID int64, messageID int) error
}

// Marks claims one-shot reminder marks. Satisfied by redis.MarkStore.
type Marks interface {
	TryMark(ctx context.Context, chatID int64, prayer, date string) (bool, error)
}

// Events receives next-prayer transitions. Optional.
type Events interface {
	PublishNextPrayer(region, prayer, timeHHMM, date string)
}

// Per-chat loop states.
const (
	StateIdle       = "idle"
	StateScheduled  = "scheduled"
	StateFiring     = "firing"
	StateTerminated = "terminated"
)

// Status is a snapshot of one chat's loop for the admin API.
type Status struct {
	ChatID         int64     `json:"chat_id"`
	State          string    `json:"state"`
	Region         string    `json:"region"`
	NextPrayer     string    `json:"next_prayer"`
	NextPrayerTime string    `json:"next_prayer_time"`
	LastTick       time.Time `json:"last_tick"`
}

// Options tune the manager; zero values fall back to config defaults.
type Options struct {
	Interval    time.Duration
	ReminderMin time.Duration
	ReminderMax time.Duration
	Now         func() time.Time
	Events      Events
}

// Manager owns one freshness loop per chat. Loops are independent
// goroutines: ticks within a chat are strictly sequential, chats never block
// each other, and a failing tick only logs and waits for the next interval.
type Manager struct {
	store  Store
	marks  Marks
	sender telegram.Sender
	events Events

	interval time.Duration
	remMin   time.Duration
	remMax   time.Duration
	now      func() time.Time

	mu    sync.Mutex
	loops map[int64]*chatLoop
}

type chatLoop struct {
	cancel context.CancelFunc

	// tickMu serializes ticks: a forced Tick and the scheduled goroutine
	// must never interleave edits to the same message.
	tickMu sync.Mutex

	mu       sync.Mutex
	state    model.LiveMessageState
	status   string
	lastTick time.Time
}

func NewManager(store Store, marks Marks, sender telegram.Sender, opts Options) *Manager {
	if opts.Interval <= 0 {
		opts.Interval = config.DefaultTickInterval
	}
	if opts.ReminderMin <= 0 {
		opts.ReminderMin = config.ReminderWindowMin
	}
	if opts.ReminderMax <= 0 {
		opts.ReminderMax = config.ReminderWindowMax
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		store:    store,
		marks:    marks,
		sender:   sender,
		events:   opts.Events,
		interval: opts.Interval,
		remMin:   opts.ReminderMin,
		remMax:   opts.ReminderMax,
		now:      opts.Now,
		loops:    make(map[int64]*chatLoop),
	}
}

// Start registers a freshly rendered live message and begins its loop.
// Starting a chat that already has a loop cancels and replaces it, so a chat
// never has two loops editing the same message.
func (m *Manager) Start(ctx context.Context, st model.LiveMessageState) {
	loopCtx, cancel := context.WithCancel(ctx)
	cl := &chatLoop{cancel: cancel, state: st, status: StateIdle}

	m.mu.Lock()
	if prev, ok := m.loops[st.ChatID]; ok {
		prev.cancel()
	}
	m.loops[st.ChatID] = cl
	m.mu.Unlock()

	log.Info().Int64("chat_id", st.ChatID).Str("region", st.Region).Msg("freshness loop started")
	go m.run(loopCtx, cl)
}

// Stop cancels a chat's loop, e.g. when the user deletes their data or
// blocks the bot.
func (m *Manager) Stop(chatID int64) {
	m.mu.Lock()
	cl, ok := m.loops[chatID]
	if ok {
		delete(m.loops, chatID)
	}
	m.mu.Unlock()
	if ok {
		cl.cancel()
		log.Info().Int64("chat_id", chatID).Msg("freshness loop stopped")
	}
}

// Active lists every registered loop ordered by chat id.
func (m *Manager) Active() []Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Status, 0, len(m.loops))
	for chatID, cl := range m.loops {
		cl.mu.Lock()
		out = append(out, Status{
			ChatID:         chatID,
			State:          cl.status,
			Region:         cl.state.Region,
			NextPrayer:     cl.state.NextPrayer,
			NextPrayerTime: cl.state.NextPrayerTime,
			LastTick:       cl.lastTick,
		})
		cl.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChatID < out[j].ChatID })
	return out
}

// Tick forces one refresh cycle for a chat outside its timer, used by the
// admin API and by tests. It serializes with the scheduled tick, so ticks
// within one chat stay strictly sequential.
func (m *Manager) Tick(ctx context.Context, chatID int64) error {
	m.mu.Lock()
	cl, ok := m.loops[chatID]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return m.tick(ctx, cl)
}

// run is an explicit loop, never recursion: tick N+1 cannot start before
// tick N and its sleep complete, so edits to one message never overlap.
func (m *Manager) run(ctx context.Context, cl *chatLoop) {
	timer := time.NewTimer(m.interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			cl.setStatus(StateTerminated)
			return
		case <-timer.C:
		}
		m.safeTick(ctx, cl)
		timer.Reset(m.interval)
	}
}

// safeTick absorbs every failure mode of a tick. The loop must outlive any
// single bad cycle: it logs and waits for the next interval instead of
// terminating.
func (m *Manager) safeTick(ctx context.Context, cl *chatLoop) {
	chatID := cl.chatID()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Int64("chat_id", chatID).Msg("freshness tick panicked")
		}
	}()
	if err := m.tick(ctx, cl); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("freshness tick failed, will retry next interval")
	}
}

func (m *Manager) tick(ctx context.Context, cl *chatLoop) error {
	cl.tickMu.Lock()
	defer cl.tickMu.Unlock()

	now := m.now()
	today := now.Format("2006-01-02")
	tomorrowDate := now.AddDate(0, 0, 1).Format("2006-01-02")

	cl.mu.Lock()
	st := cl.state
	cl.lastTick = now
	cl.mu.Unlock()
	cl.setStatus(StateScheduled)

	// Date rollover: compare real dates, never rendered text. Everything
	// derived from "today" is recomputed from the cache below.
	if st.LastRenderedDate != today {
		st.HijriDate = prayer.HijriDate(now)
		st.NextPrayer = model.TimeUnknown
		st.NextPrayerTime = model.TimeUnknown
		st.NextIsTomorrow = false
		st.LastRenderedDate = today
	}

	sched, err := m.store.GetPrayerTimes(st.Region, today)
	if err != nil {
		return err
	}
	if sched == nil {
		// Not cached yet (e.g. the monthly job has not run for the new
		// month). Back off one full interval; the loop self-heals.
		log.Warn().Int64("chat_id", st.ChatID).Str("region", st.Region).Str("date", today).
			Msg("today's schedule not cached, backing off")
		return nil
	}
	if sched.HijriDate == "" {
		sched.HijriDate = st.HijriDate
	}
	tomorrow, err := m.store.GetPrayerTimes(st.Region, tomorrowDate)
	if err != nil {
		return err
	}

	nowHHMM := now.Format("15:04")
	expired := st.NextPrayerTime == "" || st.NextPrayerTime == model.TimeUnknown ||
		(!st.NextIsTomorrow && st.NextPrayerTime <= nowHHMM)
	if expired {
		name, t, isTomorrow := prayer.ResolveWithTomorrow(sched, tomorrow, nowHHMM)
		if t != model.TimeUnknown && (name != st.NextPrayer || t != st.NextPrayerTime) && m.events != nil {
			m.events.PublishNextPrayer(st.Region, name, t, today)
		}
		st.NextPrayer, st.NextPrayerTime, st.NextIsTomorrow = name, t, isTomorrow
	}

	if st.NextPrayerTime != model.TimeUnknown {
		until := untilClock(now, st.NextPrayerTime)
		if until >= m.remMin && until <= m.remMax {
			fired, err := m.fire(ctx, cl, &st, now, sched, tomorrow, today)
			if err != nil {
				return err
			}
			if fired {
				cl.replace(st)
				return nil
			}
		}
	}

	text := render.LiveText(now, sched, tomorrow, st.NextPrayer, st.NextPrayerTime, st.NextIsTomorrow)
	hash := render.ContentHash(text, "")
	prev, err := m.store.GetMessageHash(st.ChatID, st.MessageID)
	if err != nil {
		return err
	}
	if prev != hash {
		if err := m.sender.EditMessageText(st.ChatID, st.MessageID, text); err != nil {
			return err
		}
		if err := m.store.SetMessageHash(st.ChatID, st.MessageID, hash); err != nil {
			return err
		}
	}
	cl.replace(st)
	return nil
}

// fire sends the one-time pre-prayer reminder as a brand-new message and
// retires the old live message. The returned bool reports whether the
// reminder actually fired; suppression (toggle off, already marked) is not
// an error.
func (m *Manager) fire(ctx context.Context, cl *chatLoop, st *model.LiveMessageState, now time.Time, sched, tomorrow *model.PrayerSchedule, today string) (bool, error) {
	user, err := m.store.GetUser(st.ChatID)
	if err != nil {
		return false, err
	}
	if user == nil || !user.ReminderPrefs()[st.NextPrayer] {
		return false, nil
	}

	ok, err := m.marks.TryMark(ctx, st.ChatID, st.NextPrayer, today)
	if err != nil || !ok {
		return false, err
	}

	cl.setStatus(StateFiring)
	defer cl.setStatus(StateScheduled)

	text := render.LiveText(now, sched, tomorrow, st.NextPrayer, st.NextPrayerTime, st.NextIsTomorrow) +
		"\n" + render.ReminderText(st.NextPrayer)
	newID, err := m.sender.SendMessage(st.ChatID, text)
	if err != nil {
		// The mark stays claimed: at most one reminder per prayer per day,
		// even when the send itself fails.
		return false, err
	}

	if err := m.sender.DeleteMessage(st.ChatID, st.MessageID); err != nil {
		log.Warn().Err(err).Int64("chat_id", st.ChatID).Int("message_id", st.MessageID).
			Msg("old live message delete failed")
	}
	if err := m.store.DeleteMessageLog(st.ChatID, st.MessageID); err != nil {
		log.Warn().Err(err).Int64("chat_id", st.ChatID).Msg("old message log cleanup failed")
	}
	if err := m.store.LogMessage(st.ChatID, newID, model.MessageTypeReminder, render.ContentHash(text, "")); err != nil {
		log.Warn().Err(err).Int64("chat_id", st.ChatID).Msg("reminder message log failed")
	}

	st.MessageID = newID
	log.Info().Int64("chat_id", st.ChatID).Str("prayer", st.NextPrayer).Msg("pre-prayer reminder fired")
	return true, nil
}

func (cl *chatLoop) chatID() int64 {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return cl.state.ChatID
}

func (cl *chatLoop) replace(st model.LiveMessageState) {
	cl.mu.Lock()
	cl.state = st
	cl.mu.Unlock()
}

func (cl *chatLoop) setStatus(s string) {
	cl.mu.Lock()
	cl.status = s
	cl.mu.Unlock()
}

// untilClock is the duration from now until the next occurrence of the
// "HH:MM" clock time, rolling to tomorrow when it already passed.
func untilClock(now time.Time, target string) time.Duration {
	parts := strings.SplitN(target, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	h, err1 := strconv.Atoi(parts[0])
	mi, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0
	}
	t := time.Date(now.Year(), now.Month(), now.Day(), h, mi, 0, 0, now.Location())
	if !t.After(now) {
		t = t.Add(24 * time.Hour)
	}
	return t.Sub(now)
}
