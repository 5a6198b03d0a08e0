package schedule

import "time"

// Remaining — остаток времени окна, разложенный по единицам.
type Remaining struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// Window — прогресс турнирного окна на момент now.
// Функция чистая: одинаковые входы всегда дают одинаковый результат,
// пересчитывать её по тику — забота вызывающего кода.
type Window struct {
	ProgressPercent float64   `json:"progress_percent"`
	Remaining       Remaining `json:"remaining"`
	WithinWindow    bool      `json:"within_window"`
}

// Compute вычисляет прогресс окна [start, end] на момент now.
// Вырожденное окно (start == end) считается уже завершённым,
// чтобы не делить на ноль.
func Compute(start, end, now time.Time) Window {
	if !start.Before(end) {
		return Window{ProgressPercent: 100, WithinWindow: false}
	}

	if now.Before(start) {
		return Window{
			ProgressPercent: 0,
			Remaining:       decompose(end.Sub(start)),
			WithinWindow:    false,
		}
	}

	if now.After(end) {
		return Window{ProgressPercent: 100, WithinWindow: false}
	}

	elapsed := now.Sub(start)
	total := end.Sub(start)
	progress := clampPercent(float64(elapsed) / float64(total) * 100)

	return Window{
		ProgressPercent: progress,
		Remaining:       decompose(end.Sub(now)),
		WithinWindow:    true,
	}
}

func decompose(d time.Duration) Remaining {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return Remaining{
		Days:    total / 86400,
		Hours:   total % 86400 / 3600,
		Minutes: total % 3600 / 60,
		Seconds: total % 60,
	}
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
