package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/quantumhabit/habit_bot/internal/model"
)

const confirmWord = "прогресс"

// stepTransition описывает один шаг онбординга: куда записывается ответ,
// как он проверяется и какое состояние следует за шагом. Общая процедура
// advanceStep обходится этой таблицей вместо длинной цепочки if-ов.
type stepTransition struct {
	// column — колонка таблицы users; пустая для шага-подтверждения,
	// который ничего не сохраняет
	column string
	assign func(u *model.User, v string)
	// validate — блокирующая проверка ответа; nil означает
	// «достаточно непустого текста»
	validate func(input string) bool
	// invalid — текст повторного вопроса при неудачной проверке
	invalid string
	next    model.OnboardingState
	// confirm строит подтверждение; nil — стандартное «Записал: …»
	confirm func(u *model.User, v string) string
}

var onboardingSteps = map[model.OnboardingState]stepTransition{
	model.StateStep1: {
		column: "desired_identity",
		assign: func(u *model.User, v string) { u.DesiredIdentity = v },
		next:   model.StateStep2,
	},
	model.StateStep2: {
		column: "habit_micro_step",
		assign: func(u *model.User, v string) { u.HabitMicroStep = v },
		next:   model.StateStep3,
	},
	model.StateStep3: {
		column: "link_action",
		assign: func(u *model.User, v string) { u.LinkAction = v },
		next:   model.StateStep4,
	},
	model.StateStep4: {
		column: "reward",
		assign: func(u *model.User, v string) { u.Reward = v },
		next:   model.StateStep5,
	},
	model.StateStep5: {
		// единственный шаг с блокирующей проверкой: нужно буквально
		// написать слово «прогресс», без учета регистра
		validate: func(input string) bool {
			return strings.EqualFold(strings.TrimSpace(input), confirmWord)
		},
		invalid: "Чтобы продолжить, напиши одно слово: «прогресс» 🙂",
		next:    model.StateStep6,
		confirm: func(*model.User, string) string {
			return "Отлично! Запомни главное правило: значение имеет не результат, а количество голосов за Идентичность. Бот считает голоса, а не идеальность выполнения."
		},
	},
	model.StateStep6: {
		column: "habit_name",
		assign: func(u *model.User, v string) { u.HabitName = v },
		next:   model.StateStep7,
	},
	model.StateStep7: {
		column: "obstacle_plan",
		assign: func(u *model.User, v string) { u.ObstaclePlan = v },
		next:   model.StateStep8,
	},
	model.StateStep8: {
		column: "failure_plan",
		assign: func(u *model.User, v string) { u.FailurePlan = v },
		next:   model.StateStep9,
	},
	model.StateStep9: {
		column: "repetition_schedule",
		assign: func(u *model.User, v string) { u.RepetitionSchedule = v },
		next:   model.StateCompleted,
	},
}

var stepNumber = map[model.OnboardingState]int{
	model.StateStep1: 1,
	model.StateStep2: 2,
	model.StateStep3: 3,
	model.StateStep4: 4,
	model.StateStep5: 5,
	model.StateStep6: 6,
	model.StateStep7: 7,
	model.StateStep8: 8,
	model.StateStep9: 9,
}

var stepQuestions = map[model.OnboardingState]string{
	model.StateStep1: "Кем ты хочешь стать? Опиши Идентичность, к которой идешь. Например: «энергичным человеком».",
	model.StateStep2: "Какой микро-шаг (меньше двух минут) будет голосом за эту Идентичность? Например: «1 отжимание».",
	model.StateStep3: "К какому существующему действию привяжем микро-шаг? Формула: «После того как я …, я сделаю …».",
	model.StateStep4: "Какой будет мгновенная награда сразу после выполнения? Например: «глоток любимого чая».",
	model.StateStep5: "Важно понять: значение имеет не результат, а количество голосов за Идентичность. Если согласен(на), напиши слово «прогресс».",
	model.StateStep6: "Дай привычке короткое название — так она будет записываться в журнал.",
	model.StateStep7: "Что скорее всего помешает? Опиши план: «Если …, то я …».",
	model.StateStep8: "Что сделаешь, если пропустишь день? Правило: не пропускать дважды подряд. Опиши план восстановления.",
	model.StateStep9: "Во сколько напоминать о микро-шаге? Напиши время в формате ЧЧ:ММ, например 09:30.",
}

func stepPrompt(state model.OnboardingState) string {
	n := stepNumber[state]
	return fmt.Sprintf("Шаг %d из %d\n%s\n\n%s",
		n, totalSteps, ProgressIndicator(totalSteps, n), stepQuestions[state])
}

// advanceStep — общая процедура шага: проверка ответа, запись поля и перевод
// состояния одной мутацией, затем подтверждение и следующий вопрос.
// Порядок строгий: сначала commit в хранилище, потом сообщения.
func (s *HabitFlow) advanceStep(ctx context.Context, user *model.User, t stepTransition, text string) ([]Message, error) {
	if t.validate != nil {
		if !t.validate(text) {
			return []Message{{Text: t.invalid}}, nil
		}
	} else if text == "" {
		// ответ должен быть непустым текстом; состояние не меняем
		return []Message{{Text: stepPrompt(user.OnboardingState)}}, nil
	}

	current := user.OnboardingState
	value := truncateRunes(text, maxFieldLen)

	fields := map[string]interface{}{
		"onboarding_state": string(t.next),
	}
	if t.column != "" {
		fields[t.column] = value
	}
	if err := s.repo.UpdateUser(ctx, user.TelegramID, fields); err != nil {
		return []Message{{Text: dbErrorText}}, err
	}

	if t.assign != nil {
		t.assign(user, value)
	}
	user.OnboardingState = t.next

	if t.next == model.StateCompleted {
		// последний шаг: вместо подтверждения и вопроса — единая сводка
		return []Message{{Text: s.summaryText(user), Keyboard: KeyboardWorkMode}}, nil
	}

	confirmText := fmt.Sprintf("Записал: «%s» ✅\n%s", value, ProgressIndicator(totalSteps, stepNumber[current]))
	if t.confirm != nil {
		confirmText = t.confirm(user, value)
	}

	return []Message{
		{Text: confirmText},
		{Text: stepPrompt(t.next)},
	}, nil
}

func (s *HabitFlow) summaryText(user *model.User) string {
	return fmt.Sprintf(
		"🎉 Онбординг завершен! Твоя система привычки:\n\n"+
			"👤 Идентичность: %s\n"+
			"🔸 Микро-шаг: %s\n"+
			"🔗 Связка: %s\n"+
			"🎁 Награда: %s\n"+
			"🏷 Название привычки: %s\n"+
			"🧗 План на препятствие: %s\n"+
			"🛟 План на срыв: %s\n"+
			"⏰ Напоминание: %s\n\n"+
			"Каждое «✅ Готово» — голос за твою новую Идентичность. Вперед!",
		orPlaceholder(user.DesiredIdentity),
		orPlaceholder(user.HabitMicroStep),
		orPlaceholder(user.LinkAction),
		orPlaceholder(user.Reward),
		orPlaceholder(user.HabitName),
		orPlaceholder(user.ObstaclePlan),
		orPlaceholder(user.FailurePlan),
		orPlaceholder(user.RepetitionSchedule),
	)
}
