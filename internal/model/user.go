package model

import (
	"errors"
	"time"
)

// ErrUserNotFound возвращается репозиторием, если записи пользователя еще нет
var ErrUserNotFound = errors.New("user not found")

// OnboardingState — состояние диалога онбординга, хранится как текст в колонке onboarding_state
type OnboardingState string

const (
	StateStep1 OnboardingState = "STEP_1"
	StateStep2 OnboardingState = "STEP_2"
	StateStep3 OnboardingState = "STEP_3"
	StateStep4 OnboardingState = "STEP_4"
	StateStep5 OnboardingState = "STEP_5"
	StateStep6 OnboardingState = "STEP_6"
	StateStep7 OnboardingState = "STEP_7"
	StateStep8 OnboardingState = "STEP_8"
	StateStep9 OnboardingState = "STEP_9"

	// StateAwaitingCount — временное подсостояние: ждем количество повторений
	StateAwaitingCount OnboardingState = "AWAITING_COUNT"
	StateCompleted     OnboardingState = "COMPLETED"
)

// User представляет одну запись на пользователя Telegram.
// Поля-ответы заполняются по мере прохождения шагов онбординга.
type User struct {
	TelegramID         int64           `json:"telegram_id"`
	OnboardingState    OnboardingState `json:"onboarding_state"`
	DesiredIdentity    string          `json:"desired_identity,omitempty"`
	HabitMicroStep     string          `json:"habit_micro_step,omitempty"`
	LinkAction         string          `json:"link_action,omitempty"`
	Reward             string          `json:"reward,omitempty"`
	HabitName          string          `json:"habit_name,omitempty"`
	ObstaclePlan       string          `json:"obstacle_plan,omitempty"`
	FailurePlan        string          `json:"failure_plan,omitempty"`
	RepetitionSchedule string          `json:"repetition_schedule,omitempty"`
	IsCountable        bool            `json:"is_countable"`
	VoteCount          int             `json:"vote_count"`
	CreatedAt          time.Time       `json:"created_at,omitempty"`
}
