package entities

import (
	"fmt"
	"strings"
)

// CompressionLevel уровень сжатия
type CompressionLevel string

const (
	LevelLow     CompressionLevel = "low"
	LevelMedium  CompressionLevel = "medium"
	LevelHigh    CompressionLevel = "high"
	LevelExtreme CompressionLevel = "extreme"
)

// DefaultLevel уровень для новых файлов по умолчанию
const DefaultLevel = LevelMedium

// LevelPreset описание пресета сжатия
type LevelPreset struct {
	Name              string
	Description       string
	Tag               string
	Quality           int
	Color             string
	ExpectedReduction string
	// Factor ожидаемая доля исходного размера после сжатия
	Factor float64
}

var presets = map[CompressionLevel]LevelPreset{
	LevelLow: {
		Name:              "Низкое",
		Description:       "Лучшее качество, минимальное сжатие",
		Tag:               "quality",
		Quality:           90,
		Color:             "green",
		ExpectedReduction: "20-30%",
		Factor:            0.75,
	},
	LevelMedium: {
		Name:              "Среднее",
		Description:       "Баланс качества и размера",
		Tag:               "balanced",
		Quality:           75,
		Color:             "blue",
		ExpectedReduction: "40-50%",
		Factor:            0.55,
	},
	LevelHigh: {
		Name:              "Высокое",
		Description:       "Заметное уменьшение размера",
		Tag:               "compact",
		Quality:           60,
		Color:             "yellow",
		ExpectedReduction: "60-70%",
		Factor:            0.35,
	},
	LevelExtreme: {
		Name:              "Максимальное",
		Description:       "Минимальный размер, качество ниже",
		Tag:               "smallest",
		Quality:           40,
		Color:             "red",
		ExpectedReduction: "70-80%",
		Factor:            0.25,
	},
}

// AllLevels возвращает уровни в порядке возрастания сжатия
func AllLevels() []CompressionLevel {
	return []CompressionLevel{LevelLow, LevelMedium, LevelHigh, LevelExtreme}
}

// ParseLevel разбирает уровень из строки
func ParseLevel(s string) (CompressionLevel, error) {
	level := CompressionLevel(strings.ToLower(strings.TrimSpace(s)))
	if !level.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCompressionLevel, s)
	}
	return level, nil
}

// Valid проверяет, что уровень входит в набор пресетов
func (l CompressionLevel) Valid() bool {
	_, ok := presets[l]
	return ok
}

// Preset возвращает пресет уровня; для неизвестного уровня - пресет по умолчанию
func (l CompressionLevel) Preset() LevelPreset {
	if p, ok := presets[l]; ok {
		return p
	}
	return presets[DefaultLevel]
}

// Next возвращает следующий уровень по кругу
func (l CompressionLevel) Next() CompressionLevel {
	levels := AllLevels()
	for i, lv := range levels {
		if lv == l {
			return levels[(i+1)%len(levels)]
		}
	}
	return DefaultLevel
}

func (l CompressionLevel) String() string {
	return string(l)
}
