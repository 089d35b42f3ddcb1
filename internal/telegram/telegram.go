package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// Sender is the outbound messaging surface the core depends on. Editing or
// deleting a message that no longer exists is a non-fatal no-op.
type Sender interface {
	SendMessage(chatID int64, text string) (int, error)
	EditMessageText(chatID int64, messageID int, text string) error
	DeleteMessage(chatID int64, messageID int) error
}

// Bot wraps the Telegram Bot API client.
type Bot struct {
	api *tgbotapi.BotAPI
}

var _ Sender = (*Bot)(nil)

func New(token string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Info().Str("username", api.Self.UserName).Msg("authorized on telegram")
	return &Bot{api: api}, nil
}

// API exposes the underlying client for the update loop and keyboards.
func (b *Bot) API() *tgbotapi.BotAPI {
	return b.api
}

func (b *Bot) SendMessage(chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// SendWithMarkup sends a message carrying a reply or inline keyboard.
func (b *Bot) SendWithMarkup(chatID int64, text string, markup interface{}) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// AnswerCallback acknowledges a callback query so the client stops its
// loading spinner.
func (b *Bot) AnswerCallback(id string) error {
	_, err := b.api.Request(tgbotapi.NewCallback(id, ""))
	return err
}

func (b *Bot) EditMessageText(chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(edit); err != nil {
		if ignorableEditError(err) {
			log.Debug().Int64("chat_id", chatID).Int("message_id", messageID).Msg("edit skipped: message unchanged or gone")
			return nil
		}
		return err
	}
	return nil
}

func (b *Bot) DeleteMessage(chatID int64, messageID int) error {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		if ignorableEditError(err) {
			log.Debug().Int64("chat_id", chatID).Int("message_id", messageID).Msg("delete skipped: message already gone")
			return nil
		}
		return err
	}
	return nil
}

// ignorableEditError matches the Bot API errors that mean the remote message
// is already in the state we wanted.
func ignorableEditError(err error) bool {
	s := err.Error()
	return strings.Contains(s, "message is not modified") ||
		strings.Contains(s, "message to delete not found") ||
		strings.Contains(s, "message to edit not found") ||
		strings.Contains(s, "message can't be deleted")
}
