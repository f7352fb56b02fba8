package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/supabase-community/supabase-go"

	"github.com/quantumhabit/habit_bot/internal/model"
)

type SupabaseRepository struct {
	client *supabase.Client
}

func NewSupabaseRepository(url, key string) (*SupabaseRepository, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, err
	}

	return &SupabaseRepository{
		client: client,
	}, nil
}

func (r *SupabaseRepository) GetUser(ctx context.Context, telegramID int64) (*model.User, error) {
	data, count, err := r.client.From("users").
		Select("*", "", false).
		Eq("telegram_id", strconv.FormatInt(telegramID, 10)).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	_ = count

	var users []model.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	if len(users) == 0 {
		return nil, model.ErrUserNotFound
	}
	return &users[0], nil
}

func (r *SupabaseRepository) CreateUser(ctx context.Context, user *model.User) error {
	_, count, err := r.client.From("users").Insert(user, false, "", "", "").Execute()
	if err != nil {
		// гонка двух первых сообщений: запись уже есть, это не ошибка
		if isDuplicateKey(err) {
			return nil
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	_ = count
	return nil
}

func (r *SupabaseRepository) UpdateUser(ctx context.Context, telegramID int64, fields map[string]interface{}) error {
	_, count, err := r.client.From("users").
		Update(fields, "", "").
		Eq("telegram_id", strconv.FormatInt(telegramID, 10)).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	_ = count
	return nil
}

// IncrementVotes вызывает функцию Postgres increment_vote_count: инкремент
// выполняется на стороне БД и возвращает новое значение. Чтение-сложение-запись
// на клиенте теряло бы обновления при конкурентной доставке.
func (r *SupabaseRepository) IncrementVotes(ctx context.Context, telegramID int64, delta int) (int, error) {
	raw := r.client.Rpc("increment_vote_count", "", map[string]interface{}{
		"p_telegram_id": telegramID,
		"p_delta":       delta,
	})

	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("unexpected increment_vote_count response %q", raw)
	}
	return value, nil
}

func (r *SupabaseRepository) CreateHabitLog(ctx context.Context, entry *model.HabitLog) error {
	_, count, err := r.client.From("habit_logs").Insert(entry, false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to create habit log: %w", err)
	}
	_ = count
	return nil
}

func (r *SupabaseRepository) GetHabitLogs(ctx context.Context, telegramID int64, since time.Time) ([]model.HabitLog, error) {
	data, count, err := r.client.From("habit_logs").
		Select("*", "", false).
		Eq("telegram_id", strconv.FormatInt(telegramID, 10)).
		Gte("completed_at", since.Format(time.RFC3339)).
		Order("completed_at.asc", nil).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get habit logs: %w", err)
	}
	_ = count

	var logs []model.HabitLog
	if err := json.Unmarshal(data, &logs); err != nil {
		return nil, fmt.Errorf("failed to parse habit logs: %w", err)
	}
	return logs, nil
}

func (r *SupabaseRepository) CountHabitLogsSince(ctx context.Context, telegramID int64, since time.Time) (int, error) {
	_, count, err := r.client.From("habit_logs").
		Select("id", "exact", false).
		Eq("telegram_id", strconv.FormatInt(telegramID, 10)).
		Gte("completed_at", since.Format(time.RFC3339)).
		Execute()
	if err != nil {
		return 0, fmt.Errorf("failed to count habit logs: %w", err)
	}
	return int(count), nil
}

func (r *SupabaseRepository) GetUsersBySchedule(ctx context.Context, schedule string) ([]model.User, error) {
	data, count, err := r.client.From("users").
		Select("*", "", false).
		Eq("onboarding_state", string(model.StateCompleted)).
		Eq("repetition_schedule", schedule).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get users by schedule: %w", err)
	}
	_ = count

	var users []model.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to parse users: %w", err)
	}
	return users, nil
}

// isDuplicateKey распознает нарушение уникальности (Postgres 23505)
func isDuplicateKey(err error) bool {
	text := strings.ToLower(err.Error())
	return strings.Contains(text, "23505") || strings.Contains(text, "duplicate key")
}
