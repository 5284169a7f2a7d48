package entities

import "errors"

// Доменные ошибки
var (
	ErrInvalidCompressionLevel = errors.New("неизвестный уровень сжатия")
	ErrInvalidImageQuality     = errors.New("качество изображения должно быть от 10 до 100")
	ErrInvalidFileType         = errors.New("файл не является PDF")
	ErrFileTooLarge            = errors.New("файл превышает допустимый размер")
	ErrFileNotFound            = errors.New("файл не найден")
	ErrNoFiles                 = errors.New("нет файлов для сжатия")
	ErrNoFilesAccepted         = errors.New("ни один файл не прошел проверку")
	ErrBatchModeNeedsFiles     = errors.New("пакетный режим требует минимум два файла")
	ErrLevelLocked             = errors.New("уровень отдельного файла нельзя менять в пакетном режиме")
	ErrRunInProgress           = errors.New("сжатие уже выполняется")
	ErrRunCancelled            = errors.New("сжатие отменено")
	ErrHandleRevoked           = errors.New("дескриптор файла уже освобожден")
	ErrHandleNotFound          = errors.New("дескриптор файла не найден")
	ErrNoResults               = errors.New("нет результатов для сохранения")
	ErrInvalidPayload          = errors.New("некорректные данные сжатого файла")
)
