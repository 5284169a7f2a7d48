package compressors

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"papertube-compress/internal/domain/entities"
	"papertube-compress/internal/domain/repositories"
)

// PDFCPUCompressor локальное сжатие с использованием PDFCPU
type PDFCPUCompressor struct {
	logger repositories.Logger
}

// NewPDFCPUCompressor создает новый PDFCPU компрессор
func NewPDFCPUCompressor(logger repositories.Logger) *PDFCPUCompressor {
	return &PDFCPUCompressor{logger: logger}
}

// Name имя движка
func (p *PDFCPUCompressor) Name() string {
	return "pdfcpu"
}

// Compress оптимизирует PDF в памяти
func (p *PDFCPUCompressor) Compress(ctx context.Context, file repositories.UploadFile, config *entities.CompressionConfig) (*entities.CompressionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", file.Name, err)
	}

	if p.logger != nil {
		p.logger.Debug("PDFCPU: оптимизация %s (уровень %s)", file.Name, config.Level)
	}

	var out bytes.Buffer
	if err := api.Optimize(bytes.NewReader(data), &out, nil); err != nil {
		return &entities.CompressionResult{
			FileID:       file.FileID,
			OriginalName: file.Name,
			OriginalSize: int64(len(data)),
			Level:        config.Level,
			Success:      false,
			Error:        err,
		}, fmt.Errorf("ошибка оптимизации PDFCPU: %w", err)
	}

	// Оптимизация не всегда уменьшает файл; в этом случае отдаем оригинал
	compressed := out.Bytes()
	if len(compressed) >= len(data) {
		compressed = data
	}

	result := &entities.CompressionResult{
		FileID:         file.FileID,
		OriginalName:   file.Name,
		CompressedName: entities.CompressedName(file.Name),
		OriginalSize:   int64(len(data)),
		CompressedSize: int64(len(compressed)),
		Level:          config.Level,
		FileData:       base64.StdEncoding.EncodeToString(compressed),
		Success:        true,
	}
	result.CalculateCompressionRatio()

	return result, nil
}
