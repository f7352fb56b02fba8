package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quantumhabit/habit_bot/internal/model"
)

// Repository определяет интерфейс для работы с хранилищем данных
type Repository interface {
	GetUser(ctx context.Context, telegramID int64) (*model.User, error)
	// CreateUser должен обрабатывать гонку двух первых сообщений:
	// нарушение уникальности telegram_id — не ошибка
	CreateUser(ctx context.Context, user *model.User) error
	UpdateUser(ctx context.Context, telegramID int64, fields map[string]interface{}) error
	// IncrementVotes — атомарный инкремент на стороне БД, возвращает новое значение
	IncrementVotes(ctx context.Context, telegramID int64, delta int) (int, error)
	CreateHabitLog(ctx context.Context, entry *model.HabitLog) error
	GetHabitLogs(ctx context.Context, telegramID int64, since time.Time) ([]model.HabitLog, error)
	CountHabitLogsSince(ctx context.Context, telegramID int64, since time.Time) (int, error)
	GetUsersBySchedule(ctx context.Context, schedule string) ([]model.User, error)
}

// MessageKind помечает сообщения, к которым транспортный слой добавляет вложения
type MessageKind int

const (
	KindText MessageKind = iota
	// KindProgress — отчет о прогрессе, бот прикладывает к нему график голосов
	KindProgress
)

// Keyboard указывает транспортному слою, какую клавиатуру отправить вместе с текстом
type Keyboard int

const (
	KeyboardNone Keyboard = iota
	KeyboardWorkMode
	KeyboardRemove
)

// Message — одно исходящее сообщение; доставляется в порядке, в котором возвращено
type Message struct {
	Kind     MessageKind
	Text     string
	Keyboard Keyboard
}

// HabitFlow принимает входящие сообщения и решает, как меняется состояние
// пользователя и что ему ответить. Все мутации хранилища выполняются до
// возврата сообщений: сначала запись, потом уведомление.
type HabitFlow struct {
	repo Repository
}

// NewHabitFlow создает новый экземпляр HabitFlow
func NewHabitFlow(repo Repository) *HabitFlow {
	return &HabitFlow{
		repo: repo,
	}
}

const (
	maxFieldLen = 100
	totalSteps  = 9
)

const (
	dbErrorText      = "❌ Ошибка базы данных. Попробуй еще раз позже."
	unknownStateText = "❌ Не узнаю текущее состояние диалога. Отправь /start, чтобы начать заново."
	notSpecified     = "Не указано"
)

// HandleMessage — единственная точка входа ядра. Обрабатывает одно входящее
// сообщение и возвращает список исходящих сообщений для доставки по порядку.
func (s *HabitFlow) HandleMessage(ctx context.Context, telegramID int64, text string, isStart bool, displayName string) ([]Message, error) {
	text = strings.TrimSpace(text)

	user, err := s.repo.GetUser(ctx, telegramID)
	if err != nil && !errors.Is(err, model.ErrUserNotFound) {
		return []Message{{Text: dbErrorText}}, err
	}

	if user == nil {
		return s.bootstrap(ctx, telegramID, displayName)
	}

	if isStart {
		return s.handleReset(ctx, user, displayName)
	}

	switch user.OnboardingState {
	case model.StateCompleted:
		return s.dispatchWorkMode(ctx, user, text)
	case model.StateAwaitingCount:
		return s.resolveCount(ctx, user, text)
	}

	if t, ok := onboardingSteps[user.OnboardingState]; ok {
		return s.advanceStep(ctx, user, t, text)
	}

	// Неизвестное состояние: запись не трогаем, пользователь выходит через /start
	return []Message{{Text: unknownStateText}}, nil
}

func (s *HabitFlow) bootstrap(ctx context.Context, telegramID int64, displayName string) ([]Message, error) {
	user := &model.User{
		TelegramID:      telegramID,
		OnboardingState: model.StateStep1,
		CreatedAt:       time.Now(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return []Message{{Text: dbErrorText}}, err
	}

	return []Message{
		{Text: greetingText(displayName)},
		{Text: stepPrompt(model.StateStep1)},
	}, nil
}

// handleReset обрабатывает /start для уже известного пользователя.
// Сбрасывается только onboarding_state: ранее данные ответы остаются в записи
// и перезаписываются по мере повторного прохождения шагов.
func (s *HabitFlow) handleReset(ctx context.Context, user *model.User, displayName string) ([]Message, error) {
	if user.OnboardingState == model.StateStep1 {
		return []Message{
			{Text: greetingText(displayName)},
			{Text: stepPrompt(model.StateStep1)},
		}, nil
	}

	fields := map[string]interface{}{
		"onboarding_state": string(model.StateStep1),
	}
	if err := s.repo.UpdateUser(ctx, user.TelegramID, fields); err != nil {
		return []Message{{Text: dbErrorText}}, err
	}
	user.OnboardingState = model.StateStep1

	return []Message{
		{Text: "Начинаем сначала 🔄", Keyboard: KeyboardRemove},
		{Text: greetingText(displayName)},
		{Text: stepPrompt(model.StateStep1)},
	}, nil
}

func greetingText(displayName string) string {
	if displayName == "" {
		return "👋 Привет! Я помогу построить привычку через микро-шаги: каждое выполнение — голос за твою новую Идентичность."
	}
	return fmt.Sprintf("👋 Привет, %s! Я помогу построить привычку через микро-шаги: каждое выполнение — голос за твою новую Идентичность.", displayName)
}

// truncateRunes обрезает строку до limit символов; ответы кириллицей,
// поэтому резать по байтам нельзя
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func orPlaceholder(s string) string {
	if s == "" {
		return notSpecified
	}
	return s
}
