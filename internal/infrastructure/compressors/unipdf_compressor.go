package compressors

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"sync"

	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/model"
	"github.com/unidoc/unipdf/v3/model/optimize"

	"papertube-compress/internal/domain/entities"
	"papertube-compress/internal/domain/repositories"
)

// UniPDFCompressor локальное сжатие с использованием UniPDF (требует лицензию)
type UniPDFCompressor struct {
	logger      repositories.Logger
	licenseOnce sync.Once
	licenseErr  error
}

// NewUniPDFCompressor создает новый UniPDF компрессор
func NewUniPDFCompressor(logger repositories.Logger) *UniPDFCompressor {
	return &UniPDFCompressor{logger: logger}
}

// Name имя движка
func (u *UniPDFCompressor) Name() string {
	return "unipdf"
}

// Compress оптимизирует PDF с качеством изображений из уровня сжатия
func (u *UniPDFCompressor) Compress(ctx context.Context, file repositories.UploadFile, config *entities.CompressionConfig) (*entities.CompressionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := u.setupLicense(config.UniPDFLicenseKey); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", file.Name, err)
	}

	failed := func(err error) *entities.CompressionResult {
		return &entities.CompressionResult{
			FileID:       file.FileID,
			OriginalName: file.Name,
			OriginalSize: int64(len(data)),
			Level:        config.Level,
			Success:      false,
			Error:        err,
		}
	}

	pdfReader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return failed(err), fmt.Errorf("ошибка открытия файла: %w", err)
	}

	pdfWriter := model.NewPdfWriter()
	pdfWriter.SetOptimizer(optimize.New(optimize.Options{
		CombineDuplicateDirectObjects:   config.RemoveDuplicates,
		CombineIdenticalIndirectObjects: config.RemoveDuplicates,
		CombineDuplicateStreams:         config.RemoveDuplicates,
		CompressStreams:                 config.CompressStreams,
		UseObjectStreams:                true,
		ImageUpperPPI:                   config.ImageUpperPPI,
		ImageQuality:                    config.ImageQuality,
	}))

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return failed(err), fmt.Errorf("ошибка получения количества страниц: %w", err)
	}

	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return failed(err), fmt.Errorf("ошибка получения страницы %d: %w", i, err)
		}
		if err := pdfWriter.AddPage(page); err != nil {
			return failed(err), fmt.Errorf("ошибка добавления страницы %d: %w", i, err)
		}
	}

	var out bytes.Buffer
	if err := pdfWriter.Write(&out); err != nil {
		return failed(err), fmt.Errorf("ошибка записи файла: %w", err)
	}

	result := &entities.CompressionResult{
		FileID:         file.FileID,
		OriginalName:   file.Name,
		CompressedName: entities.CompressedName(file.Name),
		OriginalSize:   int64(len(data)),
		CompressedSize: int64(out.Len()),
		Level:          config.Level,
		FileData:       base64.StdEncoding.EncodeToString(out.Bytes()),
		Success:        true,
	}
	result.CalculateCompressionRatio()

	return result, nil
}

func (u *UniPDFCompressor) setupLicense(key string) error {
	u.licenseOnce.Do(func() {
		if key == "" {
			key = os.Getenv("UNIDOC_LICENSE_API_KEY")
		}
		if key == "" {
			u.licenseErr = fmt.Errorf("UniPDF требует лицензионный ключ: задайте unipdf_license_key или UNIDOC_LICENSE_API_KEY, либо используйте движок 'pdfcpu'")
			return
		}
		if u.logger != nil {
			u.logger.Info("Устанавливаем лицензионный ключ UniPDF")
		}
		u.licenseErr = license.SetMeteredKey(key)
	})
	return u.licenseErr
}
