package service

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Расписание вводится пользователем без часового пояса; как и раньше,
// считаем, что время указано по Москве
var mskZone = time.FixedZone("MSK", 3*60*60)

// Reminder — одно напоминание, готовое к доставке
type Reminder struct {
	TelegramID int64
	Text       string
}

// DueReminders находит завершивших онбординг пользователей, у которых время
// напоминания совпадает с текущим (ЧЧ:ММ) и привычка сегодня еще не отмечена.
// Вызывается внешним cron-триггером, внутри ядра расписания нет.
func (s *HabitFlow) DueReminders(ctx context.Context, now time.Time) ([]Reminder, error) {
	local := now.In(mskZone)
	currentTime := local.Format("15:04")
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, mskZone)

	users, err := s.repo.GetUsersBySchedule(ctx, currentTime)
	if err != nil {
		return nil, fmt.Errorf("failed to get users for reminder: %w", err)
	}

	var reminders []Reminder
	for _, user := range users {
		count, err := s.repo.CountHabitLogsSince(ctx, user.TelegramID, dayStart)
		if err != nil {
			// одного пользователя пропускаем, остальных проверяем дальше
			log.Printf("log check failed for user %d: %v", user.TelegramID, err)
			continue
		}
		if count > 0 {
			continue
		}

		reminders = append(reminders, Reminder{
			TelegramID: user.TelegramID,
			Text: fmt.Sprintf(
				"🔔 КВАНТУМНОЕ НАПОМИНАНИЕ! 🔔\n\n"+
					"Пришло время выполнить твой микро-шаг: %s.\n\n"+
					"Помни: каждый раз, когда ты делаешь это, ты голосуешь за свою Идентичность: стать %s.\n\n"+
					"Нажми «%s», как только выполнишь.",
				orPlaceholder(user.HabitMicroStep),
				orPlaceholder(user.DesiredIdentity),
				ButtonDone),
		})
	}

	return reminders, nil
}

// DayVotes — количество голосов за один день, для графика прогресса
type DayVotes struct {
	Date  time.Time
	Votes int
}

// VoteHistory агрегирует журнал привычки по дням за последние days дней,
// включая сегодняшний. Дни без отметок присутствуют с нулем.
func (s *HabitFlow) VoteHistory(ctx context.Context, telegramID int64, days int) ([]DayVotes, error) {
	local := time.Now().In(mskZone)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, mskZone).
		AddDate(0, 0, -(days - 1))

	logs, err := s.repo.GetHabitLogs(ctx, telegramID, start)
	if err != nil {
		return nil, fmt.Errorf("failed to get habit logs: %w", err)
	}

	history := make([]DayVotes, days)
	for i := range history {
		history[i].Date = start.AddDate(0, 0, i)
	}
	for _, entry := range logs {
		idx := int(entry.CompletedAt.In(mskZone).Sub(start).Hours() / 24)
		if idx >= 0 && idx < days {
			// голос — одна отметка, независимо от actual_count
			history[idx].Votes++
		}
	}

	return history, nil
}
