package main

import (
	"context"
	"errors"
	"sync"

	"papertube-compress/internal/domain/entities"
	"papertube-compress/internal/domain/repositories"
	"papertube-compress/internal/infrastructure/compressors"
	"papertube-compress/internal/infrastructure/remote"
	infraRepos "papertube-compress/internal/infrastructure/repositories"
	usecases "papertube-compress/internal/usecase"
)

// ApplicationProcessor связывает сценарии приложения и обрабатывает команды пользователя
type ApplicationProcessor struct {
	config    *entities.Config
	logger    repositories.Logger
	workspace *usecases.Workspace

	intake   *usecases.IntakeUseCase
	probe    *usecases.ProbeBackendUseCase
	compress *usecases.CompressUseCase
	download *usecases.DownloadUseCase

	// Graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewApplicationProcessor создает процессор поверх готовой рабочей области
func NewApplicationProcessor(
	config *entities.Config,
	workspace *usecases.Workspace,
	logger repositories.Logger,
	notifier repositories.Notifier,
) *ApplicationProcessor {
	ctx, cancel := context.WithCancel(context.Background())

	fileRepo := infraRepos.NewFileSystemRepository()
	client := remote.NewClient(nil, config.Service)

	return &ApplicationProcessor{
		config:    config,
		logger:    logger,
		workspace: workspace,
		intake: usecases.NewIntakeUseCase(
			workspace, fileRepo, notifier, logger, config.Compression.MaxFileSize(),
		),
		probe: usecases.NewProbeBackendUseCase(
			workspace, client, notifier, logger, config.Service.ReprobeInterval(),
		),
		compress: usecases.NewCompressUseCase(
			workspace,
			client,
			newLocalCompressor(config.Compression.FallbackEngine, logger),
			infraRepos.NewConfigRepository(config.Compression.UniPDFLicenseKey),
			notifier,
			logger,
			config.Processing,
		),
		download: usecases.NewDownloadUseCase(
			workspace, fileRepo, notifier, logger, config.Output.TargetDirectory,
		),
		ctx:    ctx,
		cancel: cancel,
	}
}

// newLocalCompressor выбирает движок локального сжатия
func newLocalCompressor(engine string, logger repositories.Logger) repositories.LocalCompressor {
	switch engine {
	case "pdfcpu":
		return compressors.NewPDFCPUCompressor(logger)
	case "unipdf":
		return compressors.NewUniPDFCompressor(logger)
	default:
		return compressors.NewSimulatedCompressor()
	}
}

// StartBackground выполняет начальную проверку сервиса и запускает повторные проверки
func (p *ApplicationProcessor) StartBackground(onProbed func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.probe.Execute(p.ctx)
		if onProbed != nil {
			onProbed()
		}
		p.probe.Watch(p.ctx)
	}()
}

// Probe повторно проверяет сервис по запросу пользователя
func (p *ApplicationProcessor) Probe() {
	p.wg.Add(1)
	defer p.wg.Done()
	p.probe.Execute(p.ctx)
}

// AddPaths добавляет явно указанные файлы
func (p *ApplicationProcessor) AddPaths(paths []string) {
	if _, err := p.intake.AddFiles(paths); err != nil && p.logger != nil {
		p.logger.Debug("Прием файлов: %v", err)
	}
	p.applyBatchPreference()
}

// AddDirectory добавляет PDF файлы из директории
func (p *ApplicationProcessor) AddDirectory(dir string) {
	if _, err := p.intake.AddDirectory(dir); err != nil && p.logger != nil {
		p.logger.Debug("Прием директории: %v", err)
	}
	p.applyBatchPreference()
}

// applyBatchPreference включает пакетный режим из конфигурации, когда файлов достаточно
func (p *ApplicationProcessor) applyBatchPreference() {
	if p.config.Compression.BatchMode && !p.workspace.BatchMode() && len(p.workspace.Files()) >= 2 {
		_ = p.workspace.SetBatchMode(true)
	}
}

// StartCompression запускает сжатие
func (p *ApplicationProcessor) StartCompression(ids ...string) {
	p.wg.Add(1)
	defer p.wg.Done()

	if _, err := p.compress.Execute(p.ctx, ids...); err != nil && p.logger != nil {
		p.logger.Debug("Запуск сжатия: %v", err)
	}
}

// ToggleBatch переключает пакетный режим
func (p *ApplicationProcessor) ToggleBatch() {
	if err := p.workspace.SetBatchMode(!p.workspace.BatchMode()); err != nil {
		p.warn(err)
	}
}

// SetGlobalLevel меняет уровень по умолчанию
func (p *ApplicationProcessor) SetGlobalLevel(level entities.CompressionLevel) {
	if err := p.workspace.SetGlobalLevel(level); err != nil {
		p.warn(err)
		return
	}
	if p.logger != nil {
		p.logger.Info("Уровень сжатия: %s", level.Preset().Name)
	}
}

// SetFileLevel меняет уровень одного файла
func (p *ApplicationProcessor) SetFileLevel(id string, level entities.CompressionLevel) {
	if err := p.workspace.SetFileLevel(id, level); err != nil {
		p.warn(err)
	}
}

// Remove удаляет файл из списка
func (p *ApplicationProcessor) Remove(id string) {
	if err := p.workspace.Remove(id); err != nil {
		p.warn(err)
	}
}

// Clear очищает список файлов
func (p *ApplicationProcessor) Clear() {
	if err := p.workspace.Clear(); err != nil {
		p.warn(err)
	}
}

// Cancel отменяет активное сжатие
func (p *ApplicationProcessor) Cancel() {
	if p.workspace.CancelRun() && p.logger != nil {
		p.logger.Warning("Сжатие отменено")
	}
}

// DownloadAll сохраняет все результаты
func (p *ApplicationProcessor) DownloadAll() {
	if _, err := p.download.DownloadAll(); err != nil && p.logger != nil {
		p.logger.Debug("Сохранение: %v", err)
	}
}

func (p *ApplicationProcessor) warn(err error) {
	if p.logger == nil {
		return
	}
	if errors.Is(err, entities.ErrRunInProgress) {
		p.logger.Warning("Дождитесь завершения сжатия")
		return
	}
	p.logger.Warning("%v", err)
}

// Shutdown корректно завершает работу процессора
func (p *ApplicationProcessor) Shutdown() {
	p.cancel()
	p.wg.Wait()
	if err := p.workspace.Close(); err != nil && p.logger != nil {
		p.logger.Error("Ошибка освобождения ресурсов: %v", err)
	}
}
