package logging

import (
	"papertube-compress/internal/domain/entities"
	"papertube-compress/internal/domain/repositories"
)

// LogNotifier выводит уведомления пользователю через логгер
type LogNotifier struct {
	logger repositories.Logger
}

// NewLogNotifier создает уведомитель поверх логгера
func NewLogNotifier(logger repositories.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify записывает уведомление с уровнем, соответствующим его типу
func (n *LogNotifier) Notify(notice entities.Notice) {
	if n.logger == nil {
		return
	}
	switch notice.Kind {
	case entities.NoticeSuccess:
		n.logger.Success("%s", notice.Message)
	case entities.NoticeWarning:
		n.logger.Warning("%s", notice.Message)
	case entities.NoticeError:
		n.logger.Error("%s", notice.Message)
	default:
		n.logger.Info("%s", notice.Message)
	}
}
