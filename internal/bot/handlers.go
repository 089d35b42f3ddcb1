package bot

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/tashware/muazzin/internal/db"
	"github.com/tashware/muazzin/internal/loop"
	"github.com/tashware/muazzin/internal/model"
	"github.com/tashware/muazzin/internal/prayer"
	"github.com/tashware/muazzin/internal/render"
	"github.com/tashware/muazzin/internal/telegram"
)

const (
	welcomeText = "Assalomu alaykum! Namoz vaqtlari botiga xush kelibsiz. Shahringizni tanlang:"
	privacyText = "Biz sizning chat ID va username'ingizni saqlaymiz. /delete_data bilan o'chirishingiz mumkin."
)

// Fetcher is the on-demand slice of the source adapter used when a viewed
// day is not cached yet. Satisfied by scrape.Adapter.
type Fetcher interface {
	FetchDay(ctx context.Context, region string, month int, daySelector string) (*model.PrayerSchedule, error)
}

// Messenger is the outbound surface the handlers depend on. Satisfied by
// telegram.Bot.
type Messenger interface {
	SendMessage(chatID int64, text string) (int, error)
	SendWithMarkup(chatID int64, text string, markup interface{}) (int, error)
	AnswerCallback(id string) error
}

// Handler owns the Telegram update loop and the thin command/callback
// surface in front of the core.
type Handler struct {
	bot     Messenger
	api     *tgbotapi.BotAPI
	store   db.Store
	fetcher Fetcher
	loops   *loop.Manager
	now     func() time.Time
}

func New(bot *telegram.Bot, store db.Store, fetcher Fetcher, loops *loop.Manager) *Handler {
	return &Handler{
		bot:     bot,
		api:     bot.API(),
		store:   store,
		fetcher: fetcher,
		loops:   loops,
		now:     time.Now,
	}
}

// Run consumes updates until the context is cancelled.
func (h *Handler) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := h.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			h.api.StopReceivingUpdates()
			return
		case update := <-updates:
			h.handle(ctx, update)
		}
	}
}

// handle runs on the single update goroutine; a panicking handler must not
// take down the process and every chat's freshness loop with it.
func (h *Handler) handle(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("update handler panicked")
		}
	}()
	switch {
	case update.Message != nil:
		h.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			h.handleStart(ctx, msg)
		case "toggle_reminder":
			h.toggleReminder(chatID, strings.TrimSpace(msg.CommandArguments()))
		case "delete_data":
			h.deleteData(chatID)
		}
		return
	}

	switch msg.Text {
	case buttonToday:
		h.showDay(ctx, chatID, model.DayToday)
	case buttonTomorrow:
		h.showDay(ctx, chatID, model.DayTomorrow)
	case buttonSettings:
		h.reply(chatID, "Sozlamalar:", settingsKeyboard())
	}
}

func (h *Handler) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	username := msg.From.UserName
	if username == "" {
		username = msg.From.FirstName
	}
	if err := h.store.SaveUser(chatID, username); err != nil {
		h.replyPlain(chatID, render.Unavailable)
		return
	}

	h.reply(chatID, welcomeText, locationKeyboard())
	h.reply(chatID, privacyText, mainKeyboard())

	user, err := h.store.GetUser(chatID)
	if err == nil && user != nil && user.Region != nil {
		h.showDay(ctx, chatID, model.DayToday)
	}
}

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// Callbacks from messages too old for the Bot API to retain arrive
	// without a message; ack them so the button stops spinning.
	if cb.Message == nil {
		h.ack(cb.ID)
		return
	}
	chatID := cb.Message.Chat.ID
	data := cb.Data

	switch {
	case strings.HasPrefix(data, "location_"):
		h.setLocation(ctx, chatID, strings.TrimPrefix(data, "location_"))
	case strings.HasPrefix(data, "toggle_"):
		h.toggleReminder(chatID, strings.TrimPrefix(data, "toggle_"))
	case data == "reminders":
		h.showReminderSettings(chatID)
	case data == "change_location":
		h.reply(chatID, "Iltimos, shahringizni tanlang:", locationKeyboard())
	case data == "back":
		h.reply(chatID, "Asosiy menyu", mainKeyboard())
	case data == "full_times" || data == "today":
		h.showFullTimes(ctx, chatID, model.DayToday)
	case data == "tomorrow":
		h.showFullTimes(ctx, chatID, model.DayTomorrow)
	case data == "yesterday":
		h.showFullTimes(ctx, chatID, model.DayYesterday)
	}

	h.ack(cb.ID)
}

func (h *Handler) ack(callbackID string) {
	if err := h.bot.AnswerCallback(callbackID); err != nil {
		log.Debug().Err(err).Msg("callback ack failed")
	}
}

func (h *Handler) setLocation(ctx context.Context, chatID int64, region string) {
	if err := h.store.SetUserRegion(chatID, region); err != nil {
		h.replyPlain(chatID, render.Unavailable)
		return
	}
	h.reply(chatID, "Joylashuv o'rnatildi!", mainKeyboard())
	h.showDay(ctx, chatID, model.DayToday)
}

func (h *Handler) toggleReminder(chatID int64, prayerName string) {
	valid := false
	for _, name := range model.PrayerOrder {
		if name == prayerName {
			valid = true
			break
		}
	}
	if !valid {
		h.replyPlain(chatID, "Noma'lum namoz nomi. Masalan: /toggle_reminder Bomdod")
		return
	}
	user, err := h.store.GetUser(chatID)
	if err != nil || user == nil {
		h.replyPlain(chatID, render.Unavailable)
		return
	}
	prefs := user.ReminderPrefs()
	prefs[prayerName] = !prefs[prayerName]
	if err := h.store.SetUserReminders(chatID, prefs); err != nil {
		h.replyPlain(chatID, render.Unavailable)
		return
	}
	h.reply(chatID, "Eslatmalar yangilandi", reminderKeyboard(prefs))
}

func (h *Handler) showReminderSettings(chatID int64) {
	user, err := h.store.GetUser(chatID)
	if err != nil || user == nil {
		h.replyPlain(chatID, render.Unavailable)
		return
	}
	h.reply(chatID, "Qaysi namozlar uchun eslatma kerak?", reminderKeyboard(user.ReminderPrefs()))
}

func (h *Handler) deleteData(chatID int64) {
	h.loops.Stop(chatID)
	if err := h.store.DeleteUser(chatID); err != nil {
		h.replyPlain(chatID, render.Unavailable)
		return
	}
	h.replyPlain(chatID, "Ma'lumotlaringiz o'chirildi. /start bilan qayta boshlang.")
}

// showDay renders the live message for today (starting its freshness loop)
// or a static listing for other days.
func (h *Handler) showDay(ctx context.Context, chatID int64, dayType string) {
	user, err := h.store.GetUser(chatID)
	if err != nil || user == nil || user.Region == nil {
		h.reply(chatID, "Avval shahringizni tanlang:", locationKeyboard())
		return
	}
	region := *user.Region

	if dayType != model.DayToday {
		h.showFullTimes(ctx, chatID, dayType)
		return
	}

	now := h.now()
	today := now.Format("2006-01-02")
	sched := h.loadDay(ctx, region, dayType, today)
	if sched == nil || sched.AllUnknown() {
		h.replyPlain(chatID, render.Unavailable)
		return
	}
	sched.HijriDate = prayer.HijriDate(now)
	tomorrow, _ := h.store.GetPrayerTimes(region, now.AddDate(0, 0, 1).Format("2006-01-02"))

	live := render.ComposeLive(now, sched, tomorrow)
	messageID, err := h.bot.SendMessage(chatID, live.Text)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("live message send failed")
		return
	}
	hash := render.ContentHash(live.Text, "")
	if err := h.store.LogMessage(chatID, messageID, model.MessageTypeLive, hash); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("live message log failed")
	}

	h.loops.Start(ctx, model.LiveMessageState{
		ChatID:           chatID,
		MessageID:        messageID,
		Region:           region,
		DayType:          dayType,
		NextPrayer:       live.NextPrayer,
		NextPrayerTime:   live.NextPrayerTime,
		NextIsTomorrow:   live.NextIsTomorrow,
		HijriDate:        sched.HijriDate,
		LastRenderedDate: today,
	})
}

// showFullTimes sends the static six-prayer listing for any day selector.
func (h *Handler) showFullTimes(ctx context.Context, chatID int64, dayType string) {
	user, err := h.store.GetUser(chatID)
	if err != nil || user == nil || user.Region == nil {
		h.reply(chatID, "Avval shahringizni tanlang:", locationKeyboard())
		return
	}
	region := *user.Region

	now := h.now()
	date := now
	msgType := model.MessageTypeBugun
	switch dayType {
	case model.DayTomorrow:
		date = now.AddDate(0, 0, 1)
		msgType = model.MessageTypeErtaga
	case model.DayYesterday:
		date = now.AddDate(0, 0, -1)
	}

	sched := h.loadDay(ctx, region, dayType, date.Format("2006-01-02"))
	if sched == nil || sched.AllUnknown() {
		h.replyPlain(chatID, render.Unavailable)
		return
	}

	text := render.FullTimes(now, sched, user.ReminderPrefs())
	messageID, err := h.bot.SendMessage(chatID, text)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("full times send failed")
		return
	}
	if err := h.store.LogMessage(chatID, messageID, msgType, render.ContentHash(text, "")); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("full times log failed")
	}
}

// loadDay reads the cache first and only falls back to an on-demand fetch
// (plus upsert) when the day is missing entirely.
func (h *Handler) loadDay(ctx context.Context, region, dayType, date string) *model.PrayerSchedule {
	sched, err := h.store.GetPrayerTimes(region, date)
	if err == nil && sched != nil {
		return sched
	}
	if err != nil {
		log.Error().Err(err).Str("region", region).Str("date", date).Msg("cache read failed")
	}

	fetched, err := h.fetcher.FetchDay(ctx, region, int(h.now().Month()), dayType)
	if err != nil {
		log.Error().Err(err).Str("region", region).Str("day_type", dayType).Msg("on-demand fetch failed")
		return nil
	}
	if err := h.store.UpsertPrayerTimes(region, fetched.Date, fetched); err != nil {
		log.Warn().Err(err).Str("region", region).Msg("on-demand cache write failed")
	}
	return fetched
}

func (h *Handler) reply(chatID int64, text string, markup interface{}) {
	if _, err := h.bot.SendWithMarkup(chatID, text, markup); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("reply send failed")
	}
}

func (h *Handler) replyPlain(chatID int64, text string) {
	if _, err := h.bot.SendMessage(chatID, text); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("reply send failed")
	}
}
