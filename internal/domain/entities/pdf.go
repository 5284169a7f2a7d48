package entities

import (
	"fmt"
	"strings"
)

// MaxFileSize предельный размер одного PDF по умолчанию (100 MiB)
const MaxFileSize int64 = 100 * 1024 * 1024

// PDFMimeType единственный принимаемый тип файла
const PDFMimeType = "application/pdf"

// PDFDocument представляет файл-кандидат на диске
type PDFDocument struct {
	Path     string
	Size     int64
	MimeType string
	Pages    int
}

// ManagedFile PDF файл, добавленный пользователем в рабочую область
type ManagedFile struct {
	ID          string
	Name        string
	Path        string
	Size        int64
	DisplaySize string
	Order       int
	Level       CompressionLevel
	Pages       int
	Handle      string

	CompressedSize   *int64
	CompressionRatio *float64

	IsCompressing bool
	Progress      int
}

// HasResult сообщает, есть ли у файла результат сжатия
func (f *ManagedFile) HasResult() bool {
	return f.CompressedSize != nil && f.CompressionRatio != nil
}

// ClearResult сбрасывает результат сжатия
func (f *ManagedFile) ClearResult() {
	f.CompressedSize = nil
	f.CompressionRatio = nil
	f.Progress = 0
}

// ApplyResult переносит результат сжатия на файл
func (f *ManagedFile) ApplyResult(r *CompressionResult) {
	size := ClampSize(r.CompressedSize, f.Size)
	ratio := ClampPercent(r.CompressionRatio)
	f.CompressedSize = &size
	f.CompressionRatio = &ratio
	f.IsCompressing = false
	f.Progress = 100
}

// CompressionResult результат сжатия одного файла (сервер или локально)
type CompressionResult struct {
	FileID           string
	OriginalName     string
	CompressedName   string
	OriginalSize     int64
	CompressedSize   int64
	CompressionRatio float64
	SavedSpace       int64
	Level            CompressionLevel
	FileData         string // base64
	Simulated        bool
	Success          bool
	Error            error
}

// CalculateCompressionRatio вычисляет коэффициент сжатия
func (cr *CompressionResult) CalculateCompressionRatio() {
	if cr.OriginalSize > 0 {
		cr.CompressionRatio = ((float64(cr.OriginalSize) - float64(cr.CompressedSize)) / float64(cr.OriginalSize)) * 100
		cr.SavedSpace = cr.OriginalSize - cr.CompressedSize
	}
}

// DownloadName имя файла для сохранения
func (cr *CompressionResult) DownloadName() string {
	if cr.CompressedName != "" {
		return cr.CompressedName
	}
	return CompressedName(cr.OriginalName)
}

// CompressedName строит имя сжатого файла по исходному
func CompressedName(original string) string {
	return "compressed-" + original
}

// FormatSize форматирует размер в человекочитаемую строку
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	value := strings.TrimSuffix(strings.TrimSuffix(fmt.Sprintf("%.2f", float64(size)/float64(div)), "0"), ".0")
	return fmt.Sprintf("%s %cB", value, "KMGTPE"[exp])
}

// ClampSize ограничивает сжатый размер диапазоном [0, original]
func ClampSize(compressed, original int64) int64 {
	if compressed < 0 {
		return 0
	}
	if compressed > original {
		return original
	}
	return compressed
}

// ClampPercent ограничивает процент диапазоном [0, 100]
func ClampPercent(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
