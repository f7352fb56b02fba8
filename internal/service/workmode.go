package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/quantumhabit/habit_bot/internal/model"
)

// Метки кнопок рабочего режима; совпадают с клавиатурой в internal/bot
const (
	ButtonDone        = "✅ Готово"
	ButtonProgress    = "📊 Мой Прогресс"
	ButtonLeaderboard = "🏆 Лидерборд"
)

const countPromptText = "Сколько повторений получилось? Напиши целое положительное число, например 12."

// dispatchWorkMode разбирает входящий текст завершившего онбординг
// пользователя на одно из действий рабочего режима.
func (s *HabitFlow) dispatchWorkMode(ctx context.Context, user *model.User, text string) ([]Message, error) {
	switch {
	case matchesToken(text, ButtonProgress, "/progress"):
		return s.progressReport(user), nil
	case matchesToken(text, ButtonLeaderboard, "/leaderboard"):
		return s.leaderboard(), nil
	case matchesToken(text, ButtonDone, "/done", "готово"):
		return s.markDone(ctx, user)
	}

	// Fallback: напоминаем про привычку и доступные команды, ничего не меняем
	return []Message{{
		Text: fmt.Sprintf(
			"Твоя привычка: «%s».\n\nНажми «%s», когда выполнишь микро-шаг. «%s» — статистика, «%s» — рейтинг.",
			orPlaceholder(user.HabitName), ButtonDone, ButtonProgress, ButtonLeaderboard),
		Keyboard: KeyboardWorkMode,
	}}, nil
}

func matchesToken(text string, tokens ...string) bool {
	for _, token := range tokens {
		if strings.EqualFold(text, token) {
			return true
		}
	}
	return false
}

// progressReport — отчет без мутаций; бот приложит к нему график голосов
func (s *HabitFlow) progressReport(user *model.User) []Message {
	return []Message{{
		Kind: KindProgress,
		Text: fmt.Sprintf(
			"📊 Твой Прогресс\n\n"+
				"👤 Идентичность: %s\n"+
				"🔸 Микро-шаг: %s\n"+
				"🗳 Голосов за Идентичность: %d",
			orPlaceholder(user.DesiredIdentity),
			orPlaceholder(user.HabitMicroStep),
			user.VoteCount),
		Keyboard: KeyboardWorkMode,
	}}
}

func (s *HabitFlow) leaderboard() []Message {
	return []Message{{
		Text:     "🏆 Лидерборд пока в разработке. Сравнивай себя с собой вчерашним — это главный соперник.",
		Keyboard: KeyboardWorkMode,
	}}
}

// markDone обрабатывает отметку о выполнении. Для счетных привычек инкремент
// откладывается до ввода количества; для остальных выполняется сразу.
func (s *HabitFlow) markDone(ctx context.Context, user *model.User) ([]Message, error) {
	if user.IsCountable {
		fields := map[string]interface{}{
			"onboarding_state": string(model.StateAwaitingCount),
		}
		if err := s.repo.UpdateUser(ctx, user.TelegramID, fields); err != nil {
			return []Message{{Text: dbErrorText}}, err
		}
		user.OnboardingState = model.StateAwaitingCount
		return []Message{{Text: countPromptText}}, nil
	}

	// В сообщении используется значение, возвращенное атомарным инкрементом:
	// локальный счетчик может быть уже устаревшим при конкурентной доставке
	newCount, err := s.repo.IncrementVotes(ctx, user.TelegramID, 1)
	if err != nil {
		return []Message{{Text: dbErrorText}}, err
	}

	entry := &model.HabitLog{
		TelegramID:  user.TelegramID,
		HabitName:   user.HabitName,
		CompletedAt: time.Now(),
		ActualCount: 1,
	}
	entry.GenerateID()
	if err := s.repo.CreateHabitLog(ctx, entry); err != nil {
		return []Message{{Text: dbErrorText}}, err
	}

	return []Message{{
		Text:     fmt.Sprintf("💪 Засчитано! Это уже %d-й голос за твою Идентичность.", newCount),
		Keyboard: KeyboardWorkMode,
	}}, nil
}

// resolveCount завершает отложенную отметку счетной привычки:
// голос один, фактическое количество — из ответа пользователя.
func (s *HabitFlow) resolveCount(ctx context.Context, user *model.User, text string) ([]Message, error) {
	parsed, err := strconv.Atoi(text)
	if err != nil || parsed <= 0 {
		return []Message{{Text: "Нужно целое положительное число 🙂 " + countPromptText}}, nil
	}

	newCount, err := s.repo.IncrementVotes(ctx, user.TelegramID, 1)
	if err != nil {
		return []Message{{Text: dbErrorText}}, err
	}

	entry := &model.HabitLog{
		TelegramID:  user.TelegramID,
		HabitName:   user.HabitName,
		CompletedAt: time.Now(),
		ActualCount: parsed,
	}
	entry.GenerateID()
	if err := s.repo.CreateHabitLog(ctx, entry); err != nil {
		return []Message{{Text: dbErrorText}}, err
	}

	fields := map[string]interface{}{
		"onboarding_state": string(model.StateCompleted),
	}
	if err := s.repo.UpdateUser(ctx, user.TelegramID, fields); err != nil {
		return []Message{{Text: dbErrorText}}, err
	}
	user.OnboardingState = model.StateCompleted

	return []Message{{
		Text:     fmt.Sprintf("💪 Засчитано: %d повторений. Всего голосов за Идентичность: %d.", parsed, newCount),
		Keyboard: KeyboardWorkMode,
	}}, nil
}
