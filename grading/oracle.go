package grading

import "context"

// Oracle оценивает свободный ответ на вопрос числом в [0, 1].
// Реализация считается недоверенной: вызывающий код обязан обработать
// ошибку и деградировать к нулевой оценке, а не падать.
type Oracle interface {
	Score(ctx context.Context, question, answer string) (float64, error)
}

// StaticOracle всегда возвращает фиксированную оценку.
// Используется в тестах и как заглушка при выключенном оракуле.
type StaticOracle struct {
	Value float64
}

func (o StaticOracle) Score(_ context.Context, _, _ string) (float64, error) {
	return o.Value, nil
}
