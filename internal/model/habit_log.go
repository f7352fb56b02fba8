package model

import (
	"time"

	"github.com/google/uuid"
)

// HabitLog — append-only запись об одном выполнении привычки
type HabitLog struct {
	ID          string    `json:"id,omitempty"`
	TelegramID  int64     `json:"telegram_id"`
	HabitName   string    `json:"habit_name"`
	CompletedAt time.Time `json:"completed_at"`
	ActualCount int       `json:"actual_count"`
}

// GenerateID генерирует новый UUID для записи, если он еще не установлен
func (l *HabitLog) GenerateID() {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
}
