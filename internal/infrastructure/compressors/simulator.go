package compressors

import (
	"context"
	"encoding/base64"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"papertube-compress/internal/domain/entities"
	"papertube-compress/internal/domain/repositories"
)

const (
	simulationVariance = 0.05
	minSimulatedDelay  = 500 * time.Millisecond
	maxSimulatedDelay  = 2 * time.Second
	delayPerMiB        = 200 * time.Millisecond
)

// Sleeper ожидает d или отмену контекста
type Sleeper func(ctx context.Context, d time.Duration) error

// SimulatedCompressor имитирует сжатие, когда сервис недоступен:
// размер = исходный × коэффициент уровня ± 5%, задержка пропорциональна размеру.
type SimulatedCompressor struct {
	mu    sync.Mutex
	rnd   *rand.Rand
	sleep Sleeper
}

// SimulatorOption настройка имитатора
type SimulatorOption func(*SimulatedCompressor)

// WithRand задает источник случайных чисел
func WithRand(rnd *rand.Rand) SimulatorOption {
	return func(s *SimulatedCompressor) { s.rnd = rnd }
}

// WithSleeper подменяет ожидание (в тестах - без задержки)
func WithSleeper(sleep Sleeper) SimulatorOption {
	return func(s *SimulatedCompressor) { s.sleep = sleep }
}

// NewSimulatedCompressor создает имитатор сжатия
func NewSimulatedCompressor(opts ...SimulatorOption) *SimulatedCompressor {
	s := &SimulatedCompressor{
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep: sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name имя движка
func (s *SimulatedCompressor) Name() string {
	return "simulate"
}

// Compress возвращает имитированный результат; данные файла передаются без изменений
func (s *SimulatedCompressor) Compress(ctx context.Context, file repositories.UploadFile, config *entities.CompressionConfig) (*entities.CompressionResult, error) {
	if err := s.sleep(ctx, SimulatedDelay(file.Size)); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", file.Name, err)
	}

	result := &entities.CompressionResult{
		FileID:         file.FileID,
		OriginalName:   file.Name,
		CompressedName: entities.CompressedName(file.Name),
		OriginalSize:   file.Size,
		CompressedSize: entities.ClampSize(int64(float64(file.Size)*s.factor(config.Level)), file.Size),
		Level:          config.Level,
		FileData:       base64.StdEncoding.EncodeToString(data),
		Simulated:      true,
		Success:        true,
	}
	result.CalculateCompressionRatio()

	return result, nil
}

// factor коэффициент уровня со случайным отклонением до ±5%
func (s *SimulatedCompressor) factor(level entities.CompressionLevel) float64 {
	s.mu.Lock()
	variance := (s.rnd.Float64()*2 - 1) * simulationVariance
	s.mu.Unlock()

	f := level.Preset().Factor + variance
	if f > 1 {
		f = 1
	}
	return f
}

// SimulatedDelay задержка имитации: 200мс на MiB в пределах [0.5с, 2с]
func SimulatedDelay(size int64) time.Duration {
	d := time.Duration(float64(size) / (1024 * 1024) * float64(delayPerMiB))
	if d < minSimulatedDelay {
		return minSimulatedDelay
	}
	if d > maxSimulatedDelay {
		return maxSimulatedDelay
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
