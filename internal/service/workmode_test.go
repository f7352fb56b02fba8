package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumhabit/habit_bot/internal/model"
)

func seedCompletedUser(repo *fakeRepo, telegramID int64, countable bool) {
	repo.users[telegramID] = &model.User{
		TelegramID:         telegramID,
		OnboardingState:    model.StateCompleted,
		DesiredIdentity:    "спортсменом",
		HabitMicroStep:     "1 отжимание",
		HabitName:          "Отжимания",
		RepetitionSchedule: "09:00",
		IsCountable:        countable,
	}
}

func TestMarkDoneNonCountable(t *testing.T) {
	repo := newFakeRepo()
	flow := NewHabitFlow(repo)
	seedCompletedUser(repo, 1, false)

	for i := 1; i <= 3; i++ {
		messages := handle(t, flow, 1, ButtonDone)
		require.Len(t, messages, 1)
		// в сообщении значение, возвращенное атомарным инкрементом
		assert.Contains(t, messages[0].Text, fmt.Sprintf("%d", i))
	}

	user := repo.user(t, 1)
	assert.Equal(t, 3, user.VoteCount)
	assert.Equal(t, model.StateCompleted, user.OnboardingState)
	require.Len(t, repo.logs, 3)
	for _, entry := range repo.logs {
		assert.Equal(t, 1, entry.ActualCount)
		assert.Equal(t, "Отжимания", entry.HabitName)
		assert.NotEmpty(t, entry.ID)
	}
}

func TestMarkDoneCountableDefersIncrement(t *testing.T) {
	repo := newFakeRepo()
	flow := NewHabitFlow(repo)
	seedCompletedUser(repo, 2, true)

	messages := handle(t, flow, 2, "/done")
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0].Text, "число")

	user := repo.user(t, 2)
	assert.Equal(t, model.StateAwaitingCount, user.OnboardingState)
	assert.Equal(t, 0, user.VoteCount)
	assert.Empty(t, repo.logs)

	// нечисловые и неположительные ответы не меняют состояние
	for _, bad := range []string{"abc", "-3", "0", "12.5"} {
		messages = handle(t, flow, 2, bad)
		require.Len(t, messages, 1)
		user = repo.user(t, 2)
		assert.Equal(t, model.StateAwaitingCount, user.OnboardingState)
		assert.Equal(t, 0, user.VoteCount)
	}

	messages = handle(t, flow, 2, "12")
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0].Text, "12")

	user = repo.user(t, 2)
	assert.Equal(t, model.StateCompleted, user.OnboardingState)
	assert.Equal(t, 1, user.VoteCount, "голос один, сколько бы повторений ни было")
	require.Len(t, repo.logs, 1)
	assert.Equal(t, 12, repo.logs[0].ActualCount)
}

func TestConcurrentMarkDoneLosesNoVotes(t *testing.T) {
	repo := newFakeRepo()
	flow := NewHabitFlow(repo)
	seedCompletedUser(repo, 3, false)

	const calls = 8
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := flow.HandleMessage(context.Background(), 3, ButtonDone, false, "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	user := repo.user(t, 3)
	assert.Equal(t, calls, user.VoteCount)
	assert.Len(t, repo.logs, calls)
}

func TestProgressQueryIsReadOnly(t *testing.T) {
	repo := newFakeRepo()
	flow := NewHabitFlow(repo)
	seedCompletedUser(repo, 4, false)
	repo.users[4].VoteCount = 17

	messages := handle(t, flow, 4, ButtonProgress)

	require.Len(t, messages, 1)
	assert.Equal(t, KindProgress, messages[0].Kind)
	assert.Contains(t, messages[0].Text, "17")
	assert.Contains(t, messages[0].Text, "спортсменом")

	user := repo.user(t, 4)
	assert.Equal(t, 17, user.VoteCount)
	assert.Equal(t, model.StateCompleted, user.OnboardingState)
	assert.Empty(t, repo.logs)
}

func TestLeaderboardIsStatic(t *testing.T) {
	repo := newFakeRepo()
	flow := NewHabitFlow(repo)
	seedCompletedUser(repo, 5, false)

	messages := handle(t, flow, 5, "/leaderboard")

	require.Len(t, messages, 1)
	assert.Contains(t, messages[0].Text, "Лидерборд")
	assert.Empty(t, repo.logs)
}

func TestFallbackEchoesHabitAndCommands(t *testing.T) {
	repo := newFakeRepo()
	flow := NewHabitFlow(repo)
	seedCompletedUser(repo, 6, false)

	messages := handle(t, flow, 6, "как дела?")

	require.Len(t, messages, 1)
	assert.Contains(t, messages[0].Text, "Отжимания")
	assert.Contains(t, messages[0].Text, ButtonDone)

	user := repo.user(t, 6)
	assert.Equal(t, 0, user.VoteCount)
	assert.Equal(t, model.StateCompleted, user.OnboardingState)
}

func TestMarkDoneIncrementFailure(t *testing.T) {
	repo := newFakeRepo()
	flow := NewHabitFlow(repo)
	seedCompletedUser(repo, 7, false)
	repo.failIncrement = true

	messages, err := flow.HandleMessage(context.Background(), 7, ButtonDone, false, "")
	require.Error(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, dbErrorText, messages[0].Text)
	assert.Empty(t, repo.logs, "запись в журнал не выполняется после сбоя инкремента")
}

func TestStartResetsCompletedUser(t *testing.T) {
	repo := newFakeRepo()
	flow := NewHabitFlow(repo)
	seedCompletedUser(repo, 8, false)
	repo.users[8].VoteCount = 9

	messages, err := flow.HandleMessage(context.Background(), 8, "/start", true, "")
	require.NoError(t, err)
	require.Len(t, messages, 3)

	user := repo.user(t, 8)
	assert.Equal(t, model.StateStep1, user.OnboardingState)
	assert.Equal(t, 9, user.VoteCount, "счетчик голосов сброс не трогает")
}
