package bot

import (
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tashware/muazzin/internal/config"
	"github.com/tashware/muazzin/internal/model"
)

// Reply keyboard button labels.
const (
	buttonToday    = "Bugun"
	buttonTomorrow = "Ertaga"
	buttonSettings = "Sozlamalar"
)

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonToday),
			tgbotapi.NewKeyboardButton(buttonTomorrow),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonSettings),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func settingsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Eslatish", "reminders"),
			tgbotapi.NewInlineKeyboardButtonData("Joylashuv", "change_location"),
			tgbotapi.NewInlineKeyboardButtonData("Orqaga", "back"),
		),
	)
}

// locationKeyboard lists cities three per row, alphabetically.
func locationKeyboard() tgbotapi.InlineKeyboardMarkup {
	cities := make([]string, 0, len(config.LocationMap))
	for city := range config.LocationMap {
		cities = append(cities, city)
	}
	sort.Slice(cities, func(i, j int) bool {
		return strings.ToLower(cities[i]) < strings.ToLower(cities[j])
	})

	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(cities); i += 3 {
		var row []tgbotapi.InlineKeyboardButton
		for _, city := range cities[i:min(i+3, len(cities))] {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(city, "location_"+config.LocationMap[city]))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// reminderKeyboard shows one toggle per prayer with its current state.
func reminderKeyboard(prefs map[string]bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, name := range model.PrayerOrder {
		bell := "🔕"
		if prefs[name] {
			bell = "🔔"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(bell+" "+name, "toggle_"+name),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Orqaga", "back"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
