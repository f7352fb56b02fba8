package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/quantumhabit/habit_bot/internal/bot"
	"github.com/quantumhabit/habit_bot/internal/config"
	"github.com/quantumhabit/habit_bot/internal/repository"
	"github.com/quantumhabit/habit_bot/internal/service"
)

// Request структура входящего запроса от cron-триггера
type Request struct {
	Headers map[string]string `json:"headers,omitempty"`
}

// Response структура ответа для cron-триггера
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Handler запускает проверку напоминаний: пользователи с совпавшим временем
// и без отметки за сегодня получают напоминание о микро-шаге
func Handler(ctx context.Context, request Request) (*Response, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return errorResponse(err)
	}

	// Защита от постороннего вызова, если задан CRON_SECRET
	if cfg.CronSecret != "" && request.Headers["authorization"] != "Bearer "+cfg.CronSecret {
		return &Response{StatusCode: 401, Body: "unauthorized"}, nil
	}

	repo, err := repository.NewSupabaseRepository(cfg.SupabaseURL, cfg.SupabaseKey)
	if err != nil {
		return errorResponse(err)
	}

	service := service.NewHabitFlow(repo)

	bot, err := bot.NewBot(cfg.TelegramToken, service)
	if err != nil {
		return errorResponse(err)
	}

	sent, err := bot.RunReminderScan(ctx, time.Now())
	if err != nil {
		return errorResponse(err)
	}

	body, _ := json.Marshal(map[string]interface{}{
		"success":        true,
		"message":        "Reminder check completed",
		"users_notified": sent,
	})
	return &Response{StatusCode: 200, Body: string(body)}, nil
}

func errorResponse(err error) (*Response, error) {
	return &Response{StatusCode: 500, Body: err.Error()}, nil
}

func main() {
	// Точка входа для локального тестирования
}
