package entities

import "time"

// RunPhase фаза запуска сжатия
type RunPhase int

const (
	PhaseIdle RunPhase = iota
	PhaseRunning
	PhaseCompleted
	PhaseFailed
)

// String возвращает название фазы
func (phase RunPhase) String() string {
	switch phase {
	case PhaseIdle:
		return "Ожидание"
	case PhaseRunning:
		return "Сжатие файлов"
	case PhaseCompleted:
		return "Завершено"
	case PhaseFailed:
		return "Ошибка"
	default:
		return "Неизвестно"
	}
}

// RunMode режим запуска
type RunMode int

const (
	ModeSingle RunMode = iota
	ModeBatch
)

func (m RunMode) String() string {
	if m == ModeBatch {
		return "batch"
	}
	return "single"
}

// Run состояние одного запуска сжатия
type Run struct {
	ID         int
	Phase      RunPhase
	Mode       RunMode
	Level      CompressionLevel
	Scope      []string
	Results    []*CompressionResult
	Failed     int
	Simulated  bool
	StartTime  time.Time
	FinishTime time.Time
	Error      error
}

// IsActive сообщает, выполняется ли запуск
func (r *Run) IsActive() bool {
	return r != nil && r.Phase == PhaseRunning
}

// Elapsed время выполнения запуска
func (r *Run) Elapsed() time.Duration {
	if r == nil || r.StartTime.IsZero() {
		return 0
	}
	if r.FinishTime.IsZero() {
		return time.Since(r.StartTime)
	}
	return r.FinishTime.Sub(r.StartTime)
}

// FormatElapsedTime форматирует время выполнения
func (r *Run) FormatElapsedTime() string {
	duration := r.Elapsed()
	if duration < time.Second {
		return "< 1 сек"
	}
	return duration.Round(time.Second).String()
}
