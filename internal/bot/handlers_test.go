package bot

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

type fakeMessenger struct {
	sent    []string
	markups []string
	acks    []string
	nextID  int
}

func (f *fakeMessenger) SendMessage(chatID int64, text string) (int, error) {
	f.sent = append(f.sent, text)
	f.nextID++
	return f.nextID, nil
}

func (f *fakeMessenger) SendWithMarkup(chatID int64, text string, markup interface{}) (int, error) {
	f.markups = append(f.markups, text)
	f.nextID++
	return f.nextID, nil
}

func (f *fakeMessenger) AnswerCallback(id string) error {
	f.acks = append(f.acks, id)
	return nil
}

func TestCallbackWithoutMessageIsAcked(t *testing.T) {
	// The Bot API omits the message on callbacks from old inline buttons;
	// such a callback must be acked and ignored, never dereferenced.
	fake := &fakeMessenger{}
	h := &Handler{bot: fake}

	assert.NotPanics(t, func() {
		h.handleCallback(context.Background(), &tgbotapi.CallbackQuery{ID: "42", Data: "back"})
	})
	assert.Equal(t, []string{"42"}, fake.acks)
	assert.Empty(t, fake.markups)
	assert.Empty(t, fake.sent)
}

func TestCallbackBackShowsMainMenu(t *testing.T) {
	fake := &fakeMessenger{}
	h := &Handler{bot: fake}

	cb := &tgbotapi.CallbackQuery{
		ID:      "7",
		Data:    "back",
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}},
	}
	h.handleCallback(context.Background(), cb)

	assert.Equal(t, []string{"Asosiy menyu"}, fake.markups)
	assert.Equal(t, []string{"7"}, fake.acks)
}

func TestHandleRecoversFromPanickingHandler(t *testing.T) {
	// A single bad update must not kill the update goroutine: the store is
	// nil here, so the reminders callback would dereference it.
	h := &Handler{bot: &fakeMessenger{}}
	update := tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "1",
		Data:    "reminders",
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}},
	}}

	assert.NotPanics(t, func() { h.handle(context.Background(), update) })
}
