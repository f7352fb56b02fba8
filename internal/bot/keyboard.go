package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/quantumhabit/habit_bot/internal/service"
)

// workModeKeyboard — постоянная клавиатура рабочего режима; метки кнопок
// объявлены в service и распознаются диспетчером по тексту
func workModeKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(service.ButtonDone),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(service.ButtonProgress),
			tgbotapi.NewKeyboardButton(service.ButtonLeaderboard),
		),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}
