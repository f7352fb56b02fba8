package service

import "strings"

const (
	filledMark = "🟩"
	emptyMark  = "⬜"
)

// ProgressIndicator возвращает строку из total символов, где первые current
// заполнены. Используется в вопросах шагов онбординга.
func ProgressIndicator(total, current int) string {
	var b strings.Builder
	for i := 1; i <= total; i++ {
		if i <= current {
			b.WriteString(filledMark)
		} else {
			b.WriteString(emptyMark)
		}
	}
	return b.String()
}
