package repositories

import (
	"context"

	"papertube-compress/internal/domain/entities"
)

// UploadFile файл, передаваемый на сжатие
type UploadFile struct {
	FileID string
	Name   string
	Path   string
	Size   int64
}

// RemoteCompressor клиент удаленного сервиса сжатия.
// Ошибки связи возвращаются как *entities.NetworkFailure.
type RemoteCompressor interface {
	Health(ctx context.Context) error
	Compress(ctx context.Context, file UploadFile, level entities.CompressionLevel) (*entities.CompressionResult, error)
	CompressBatch(ctx context.Context, files []UploadFile, level entities.CompressionLevel) ([]*entities.CompressionResult, error)
}

// LocalCompressor локальное сжатие, используемое при недоступности сервиса
type LocalCompressor interface {
	Name() string
	Compress(ctx context.Context, file UploadFile, config *entities.CompressionConfig) (*entities.CompressionResult, error)
}

// FileRepository интерфейс для работы с файловой системой
type FileRepository interface {
	GetFileInfo(path string) (*entities.PDFDocument, error)
	FileExists(path string) bool
	CreateDirectory(path string) error
	ListPDFFiles(directory string) ([]string, error)
	SaveFile(directory, name string, data []byte) (string, error)
}

// BlobStore выдает дескрипторы на исходные файлы и освобождает их ровно один раз
type BlobStore interface {
	Create(path string) (string, error)
	Resolve(handle string) (string, error)
	Revoke(handle string) error
}

// Notifier доставляет уведомления пользователю
type Notifier interface {
	Notify(notice entities.Notice)
}

// ConfigRepository интерфейс для работы с конфигурацией
type ConfigRepository interface {
	GetCompressionConfig(level entities.CompressionLevel) (*entities.CompressionConfig, error)
	ValidateConfig(config *entities.CompressionConfig) error
}
