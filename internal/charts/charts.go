package charts

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/quantumhabit/habit_bot/internal/service"
)

// Generator генерирует графики для отчетов бота
type Generator struct{}

// NewGenerator создает новый генератор графиков
func NewGenerator() *Generator {
	return &Generator{}
}

// VotesChart строит столбчатую диаграмму голосов по дням.
// Возвращает nil без ошибки, если голосов за период нет.
func (g *Generator) VotesChart(history []service.DayVotes) ([]byte, error) {
	total := 0
	maxVotes := 0.0
	for _, day := range history {
		total += day.Votes
		if float64(day.Votes) > maxVotes {
			maxVotes = float64(day.Votes)
		}
	}
	if total == 0 {
		return nil, nil // нет данных для графика
	}

	bars := make([]chart.Value, 0, len(history))
	for _, day := range history {
		bars = append(bars, chart.Value{
			Label: day.Date.Format("02.01"),
			Value: float64(day.Votes),
		})
	}

	graph := chart.BarChart{
		Title:  "Голоса за Идентичность",
		Width:  1200,
		Height: 450,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   30,
				Right:  30,
				Bottom: 30,
			},
			FillColor: chart.ColorWhite,
		},
		BarWidth:   30,
		BarSpacing: 15,
		YAxis: chart.YAxis{
			// фиксируем диапазон: при одинаковых значениях авторасчет
			// вырождается
			Range: &chart.ContinuousRange{Min: 0, Max: maxVotes + 1},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", v.(float64))
			},
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render votes chart: %w", err)
	}
	return buffer.Bytes(), nil
}
