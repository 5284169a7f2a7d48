package usecases

import (
	"context"
	"time"

	"papertube-compress/internal/domain/entities"
	"papertube-compress/internal/domain/repositories"
)

// ProbeBackendUseCase проверка доступности сервиса сжатия
type ProbeBackendUseCase struct {
	workspace *Workspace
	remote    repositories.RemoteCompressor
	notifier  repositories.Notifier
	logger    repositories.Logger
	interval  time.Duration
}

// NewProbeBackendUseCase создает сценарий проверки сервиса.
// interval > 0 включает периодическую повторную проверку в Watch.
func NewProbeBackendUseCase(
	workspace *Workspace,
	remote repositories.RemoteCompressor,
	notifier repositories.Notifier,
	logger repositories.Logger,
	interval time.Duration,
) *ProbeBackendUseCase {
	return &ProbeBackendUseCase{
		workspace: workspace,
		remote:    remote,
		notifier:  notifier,
		logger:    logger,
		interval:  interval,
	}
}

// Execute выполняет одну проверку и сообщает результат пользователю
func (uc *ProbeBackendUseCase) Execute(ctx context.Context) entities.BackendStatus {
	uc.workspace.SetBackend(entities.BackendChecking)

	status := uc.check(ctx)
	uc.workspace.SetBackend(status)
	uc.announce(status)
	return status
}

// Watch повторяет проверку с заданным интервалом до отмены контекста.
// Уведомление отправляется только при смене статуса.
func (uc *ProbeBackendUseCase) Watch(ctx context.Context) {
	if uc.interval <= 0 {
		return
	}

	ticker := time.NewTicker(uc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			previous := uc.workspace.Backend()
			status := uc.check(ctx)
			if ctx.Err() != nil {
				return
			}
			uc.workspace.SetBackend(status)
			if status != previous {
				uc.announce(status)
			}
		}
	}
}

func (uc *ProbeBackendUseCase) check(ctx context.Context) entities.BackendStatus {
	if uc.remote == nil {
		return entities.BackendOffline
	}
	if err := uc.remote.Health(ctx); err != nil {
		if uc.logger != nil {
			uc.logger.Debug("Проверка сервиса: %v", err)
		}
		return entities.BackendOffline
	}
	return entities.BackendOnline
}

func (uc *ProbeBackendUseCase) announce(status entities.BackendStatus) {
	message := "Сервис сжатия доступен"
	if status != entities.BackendOnline {
		message = "Сервис сжатия недоступен, будет использовано локальное сжатие"
	}
	if uc.logger != nil {
		uc.logger.Info("%s", message)
	}
	if uc.notifier != nil {
		uc.notifier.Notify(entities.Notice{Kind: entities.NoticeInfo, Message: message})
	}
}
