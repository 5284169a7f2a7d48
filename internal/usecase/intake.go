package usecases

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"papertube-compress/internal/domain/entities"
	"papertube-compress/internal/domain/repositories"
)

// IntakeUseCase прием и проверка файлов-кандидатов
type IntakeUseCase struct {
	workspace   *Workspace
	fileRepo    repositories.FileRepository
	notifier    repositories.Notifier
	logger      repositories.Logger
	maxFileSize int64
}

// NewIntakeUseCase создает сценарий приема файлов
func NewIntakeUseCase(
	workspace *Workspace,
	fileRepo repositories.FileRepository,
	notifier repositories.Notifier,
	logger repositories.Logger,
	maxFileSize int64,
) *IntakeUseCase {
	if maxFileSize <= 0 || maxFileSize > entities.MaxFileSize {
		maxFileSize = entities.MaxFileSize
	}
	return &IntakeUseCase{
		workspace:   workspace,
		fileRepo:    fileRepo,
		notifier:    notifier,
		logger:      logger,
		maxFileSize: maxFileSize,
	}
}

// AddFiles проверяет и добавляет явно выбранные файлы.
// Отклоненные файлы не прерывают прием остальных.
func (uc *IntakeUseCase) AddFiles(paths []string) ([]entities.ManagedFile, error) {
	added := make([]entities.ManagedFile, 0, len(paths))
	rejected := 0

	for _, path := range paths {
		file, err := uc.accept(path)
		if err != nil {
			rejected++
			uc.reject(path, err)
			continue
		}
		added = append(added, file)
	}

	if len(added) == 0 {
		if rejected == 0 {
			uc.notify(entities.NoticeError, "Не выбрано ни одного PDF файла")
		}
		return nil, entities.ErrNoFilesAccepted
	}

	uc.logSuccess("Добавлено файлов: %d, отклонено: %d", len(added), rejected)
	uc.notify(entities.NoticeSuccess, fmt.Sprintf("Добавлено PDF файлов: %d", len(added)))
	return added, nil
}

// AddDirectory добавляет PDF файлы из директории; кандидаты проходят ту же проверку
func (uc *IntakeUseCase) AddDirectory(directory string) ([]entities.ManagedFile, error) {
	if !uc.fileRepo.FileExists(directory) {
		uc.notify(entities.NoticeError, fmt.Sprintf("Директория не найдена: %s", directory))
		return nil, fmt.Errorf("%s: %w", directory, entities.ErrFileNotFound)
	}

	paths, err := uc.fileRepo.ListPDFFiles(directory)
	if err != nil {
		uc.notify(entities.NoticeError, fmt.Sprintf("Ошибка чтения директории: %v", err))
		return nil, fmt.Errorf("ошибка получения списка файлов: %w", err)
	}

	if len(paths) == 0 {
		uc.notify(entities.NoticeWarning, fmt.Sprintf("PDF файлы не найдены: %s", directory))
		return nil, entities.ErrNoFilesAccepted
	}

	uc.logInfo("🔍 Найдено PDF файлов в %s: %d", directory, len(paths))
	return uc.AddFiles(paths)
}

// accept проверяет кандидата: тип application/pdf и размер не больше лимита
func (uc *IntakeUseCase) accept(path string) (entities.ManagedFile, error) {
	doc, err := uc.fileRepo.GetFileInfo(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return entities.ManagedFile{}, entities.ErrFileNotFound
		}
		return entities.ManagedFile{}, err
	}
	if doc.MimeType != entities.PDFMimeType {
		return entities.ManagedFile{}, entities.ErrInvalidFileType
	}
	if doc.Size > uc.maxFileSize {
		return entities.ManagedFile{}, entities.ErrFileTooLarge
	}

	return uc.workspace.addFile(doc, filepath.Base(path))
}

func (uc *IntakeUseCase) reject(path string, err error) {
	name := filepath.Base(path)
	uc.logWarning("Файл отклонен: %s: %v", path, err)

	switch {
	case errors.Is(err, entities.ErrFileTooLarge):
		uc.notify(entities.NoticeError, fmt.Sprintf("%s: размер превышает %s", name, entities.FormatSize(uc.maxFileSize)))
	case errors.Is(err, entities.ErrInvalidFileType):
		uc.notify(entities.NoticeError, fmt.Sprintf("%s: поддерживаются только PDF файлы", name))
	case errors.Is(err, entities.ErrFileNotFound):
		uc.notify(entities.NoticeError, fmt.Sprintf("%s: файл не найден", name))
	default:
		uc.notify(entities.NoticeError, fmt.Sprintf("%s: %v", name, err))
	}
}

func (uc *IntakeUseCase) notify(kind entities.NoticeKind, message string) {
	if uc.notifier != nil {
		uc.notifier.Notify(entities.Notice{Kind: kind, Message: message})
	}
}

func (uc *IntakeUseCase) logInfo(format string, args ...interface{}) {
	if uc.logger != nil {
		uc.logger.Info(format, args...)
	}
}

func (uc *IntakeUseCase) logWarning(format string, args ...interface{}) {
	if uc.logger != nil {
		uc.logger.Warning(format, args...)
	}
}

func (uc *IntakeUseCase) logSuccess(format string, args ...interface{}) {
	if uc.logger != nil {
		uc.logger.Success(format, args...)
	}
}
