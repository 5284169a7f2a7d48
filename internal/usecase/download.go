package usecases

import (
	"encoding/base64"
	"errors"
	"fmt"

	"papertube-compress/internal/domain/entities"
	"papertube-compress/internal/domain/repositories"
)

// DownloadUseCase сохраняет сжатые файлы в целевую директорию
type DownloadUseCase struct {
	workspace *Workspace
	fileRepo  repositories.FileRepository
	notifier  repositories.Notifier
	logger    repositories.Logger
	targetDir string
}

// NewDownloadUseCase создает сценарий сохранения результатов
func NewDownloadUseCase(
	workspace *Workspace,
	fileRepo repositories.FileRepository,
	notifier repositories.Notifier,
	logger repositories.Logger,
	targetDir string,
) *DownloadUseCase {
	return &DownloadUseCase{
		workspace: workspace,
		fileRepo:  fileRepo,
		notifier:  notifier,
		logger:    logger,
		targetDir: targetDir,
	}
}

// DownloadOne декодирует данные результата и записывает файл.
// Ошибка декодирования не затрагивает другие результаты.
func (uc *DownloadUseCase) DownloadOne(result *entities.CompressionResult) (string, error) {
	if result == nil || !result.Success {
		return "", entities.ErrNoResults
	}

	name := result.DownloadName()
	data, err := base64.StdEncoding.DecodeString(result.FileData)
	if err != nil || len(data) == 0 {
		if err == nil {
			err = errors.New("пустые данные")
		}
		uc.notify(entities.NoticeError, fmt.Sprintf("Не удалось сохранить %s: поврежденные данные", name))
		return "", fmt.Errorf("%s: %w: %v", name, entities.ErrInvalidPayload, err)
	}

	path, err := uc.fileRepo.SaveFile(uc.targetDir, name, data)
	if err != nil {
		uc.notify(entities.NoticeError, fmt.Sprintf("Не удалось сохранить %s: %v", name, err))
		return "", fmt.Errorf("ошибка сохранения файла: %w", err)
	}

	if uc.logger != nil {
		uc.logger.Info("💾 Сохранен %s (%s)", path, entities.FormatSize(int64(len(data))))
	}
	return path, nil
}

// DownloadAll сохраняет все результаты последовательно в порядке сохранения
func (uc *DownloadUseCase) DownloadAll() ([]string, error) {
	results := uc.workspace.Results()
	if len(results) == 0 {
		uc.notify(entities.NoticeWarning, "Нет сжатых файлов для сохранения")
		return nil, entities.ErrNoResults
	}

	saved := make([]string, 0, len(results))
	for _, result := range results {
		path, err := uc.DownloadOne(result)
		if err != nil {
			continue
		}
		saved = append(saved, path)
	}

	uc.notify(entities.NoticeSuccess, fmt.Sprintf("Сохранено файлов: %d из %d в %s", len(saved), len(results), uc.targetDir))
	return saved, nil
}

func (uc *DownloadUseCase) notify(kind entities.NoticeKind, message string) {
	if uc.notifier != nil {
		uc.notifier.Notify(entities.Notice{Kind: kind, Message: message})
	}
}
