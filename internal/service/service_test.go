package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quantumhabit/habit_bot/internal/model"
)

var errStore = errors.New("store unavailable")

// fakeRepo — потокобезопасное хранилище в памяти для тестов ядра.
// Инкремент атомарен под мьютексом, как и контракт настоящего репозитория.
type fakeRepo struct {
	mu    sync.Mutex
	users map[int64]*model.User
	logs  []model.HabitLog

	failIncrement bool
	failUpdate    bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[int64]*model.User)}
}

func (f *fakeRepo) GetUser(ctx context.Context, telegramID int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[telegramID]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeRepo) CreateUser(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.TelegramID]; ok {
		// нарушение уникальности — не ошибка, как в контракте репозитория
		return nil
	}
	clone := *user
	f.users[user.TelegramID] = &clone
	return nil
}

func (f *fakeRepo) UpdateUser(ctx context.Context, telegramID int64, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate {
		return errStore
	}
	user, ok := f.users[telegramID]
	if !ok {
		return model.ErrUserNotFound
	}
	for column, raw := range fields {
		value, _ := raw.(string)
		switch column {
		case "onboarding_state":
			user.OnboardingState = model.OnboardingState(value)
		case "desired_identity":
			user.DesiredIdentity = value
		case "habit_micro_step":
			user.HabitMicroStep = value
		case "link_action":
			user.LinkAction = value
		case "reward":
			user.Reward = value
		case "habit_name":
			user.HabitName = value
		case "obstacle_plan":
			user.ObstaclePlan = value
		case "failure_plan":
			user.FailurePlan = value
		case "repetition_schedule":
			user.RepetitionSchedule = value
		}
	}
	return nil
}

func (f *fakeRepo) IncrementVotes(ctx context.Context, telegramID int64, delta int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIncrement {
		return 0, errStore
	}
	user, ok := f.users[telegramID]
	if !ok {
		return 0, model.ErrUserNotFound
	}
	user.VoteCount += delta
	return user.VoteCount, nil
}

func (f *fakeRepo) CreateHabitLog(ctx context.Context, entry *model.HabitLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, *entry)
	return nil
}

func (f *fakeRepo) GetHabitLogs(ctx context.Context, telegramID int64, since time.Time) ([]model.HabitLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.HabitLog
	for _, entry := range f.logs {
		if entry.TelegramID == telegramID && !entry.CompletedAt.Before(since) {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (f *fakeRepo) CountHabitLogsSince(ctx context.Context, telegramID int64, since time.Time) (int, error) {
	logs, err := f.GetHabitLogs(ctx, telegramID, since)
	if err != nil {
		return 0, err
	}
	return len(logs), nil
}

func (f *fakeRepo) GetUsersBySchedule(ctx context.Context, schedule string) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.User
	for _, user := range f.users {
		if user.OnboardingState == model.StateCompleted && user.RepetitionSchedule == schedule {
			result = append(result, *user)
		}
	}
	return result, nil
}

func (f *fakeRepo) user(t *testing.T, telegramID int64) model.User {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[telegramID]
	require.True(t, ok, "user %d not found in fake repo", telegramID)
	return *user
}

func handle(t *testing.T, flow *HabitFlow, telegramID int64, text string) []Message {
	t.Helper()
	messages, err := flow.HandleMessage(context.Background(), telegramID, text, false, "Иван")
	require.NoError(t, err)
	require.NotEmpty(t, messages)
	return messages
}
