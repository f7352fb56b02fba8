package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/quantumhabit/habit_bot/internal/charts"
	"github.com/quantumhabit/habit_bot/internal/service"
)

// Bot — транспортный слой: принимает обновления Telegram, передает текст
// в HabitFlow и доставляет ответы. Ошибки доставки логируются и не
// возвращаются в ядро: мутации хранилища к этому моменту уже применены.
type Bot struct {
	api     *tgbotapi.BotAPI
	service *service.HabitFlow
	charts  *charts.Generator
}

func NewBot(token string, service *service.HabitFlow) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	return &Bot{
		api:     api,
		service: service,
		charts:  charts.NewGenerator(),
	}, nil
}

// Start запускает бота в режиме long polling
func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if err := b.handleUpdate(update); err != nil {
			// Логируем ошибку, но продолжаем работу
			fmt.Printf("Error handling update: %v\n", err)
		}
	}

	return nil
}

// HandleWebhook - точка входа для обработки входящих webhook-обновлений
func (b *Bot) HandleWebhook(body []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return err
	}

	return b.handleUpdate(update)
}

func (b *Bot) handleUpdate(update tgbotapi.Update) error {
	message := update.Message
	if message == nil || message.Text == "" || message.From == nil {
		return nil
	}

	chatID := message.Chat.ID
	isStart := message.IsCommand() && message.Command() == "start"

	// индикатор набора текста, best-effort
	b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))

	ctx := context.Background()
	messages, err := b.service.HandleMessage(ctx, message.From.ID, message.Text, isStart, message.From.FirstName)
	if err != nil {
		// ядро уже подготовило общий текст ошибки; доставляем его как обычно
		log.Printf("habit flow error for user %d: %v", message.From.ID, err)
	}

	for _, m := range messages {
		out := tgbotapi.NewMessage(chatID, m.Text)
		switch m.Keyboard {
		case service.KeyboardWorkMode:
			out.ReplyMarkup = workModeKeyboard()
		case service.KeyboardRemove:
			out.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
		}

		if _, err := b.api.Send(out); err != nil {
			log.Printf("failed to send message to chat %d: %v", chatID, err)
			continue
		}

		if m.Kind == service.KindProgress {
			b.sendProgressChart(ctx, chatID, message.From.ID)
		}
	}

	return nil
}

// sendProgressChart прикладывает к отчету график голосов за последние две недели
func (b *Bot) sendProgressChart(ctx context.Context, chatID, telegramID int64) {
	history, err := b.service.VoteHistory(ctx, telegramID, 14)
	if err != nil {
		log.Printf("failed to get vote history for user %d: %v", telegramID, err)
		return
	}

	png, err := b.charts.VotesChart(history)
	if err != nil {
		log.Printf("failed to render votes chart for user %d: %v", telegramID, err)
		return
	}
	if png == nil {
		// отметок еще нет, график не к чему строить
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{
		Name:  "progress.png",
		Bytes: png,
	})
	photo.Caption = "Голоса за последние 14 дней"
	if _, err := b.api.Send(photo); err != nil {
		log.Printf("failed to send chart to chat %d: %v", chatID, err)
	}
}

// RunReminderScan отправляет напоминания, собранные ядром для момента now.
// Возвращает количество доставленных напоминаний.
func (b *Bot) RunReminderScan(ctx context.Context, now time.Time) (int, error) {
	reminders, err := b.service.DueReminders(ctx, now)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, reminder := range reminders {
		msg := tgbotapi.NewMessage(reminder.TelegramID, reminder.Text)
		msg.ReplyMarkup = workModeKeyboard()
		if _, err := b.api.Send(msg); err != nil {
			log.Printf("failed to send reminder to user %d: %v", reminder.TelegramID, err)
			continue
		}
		sent++
	}

	return sent, nil
}
