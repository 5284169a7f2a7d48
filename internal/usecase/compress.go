package usecases

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"papertube-compress/internal/domain/entities"
	"papertube-compress/internal/domain/repositories"
)

// CompressUseCase оркестратор сжатия: удаленный сервис, при сбое связи - локальное сжатие
type CompressUseCase struct {
	workspace        *Workspace
	remote           repositories.RemoteCompressor
	local            repositories.LocalCompressor
	configRepo       repositories.ConfigRepository
	notifier         repositories.Notifier
	logger           repositories.Logger
	workers          int
	tick             time.Duration
	progressReporter func(entities.Run)
}

// NewCompressUseCase создает оркестратор сжатия
func NewCompressUseCase(
	workspace *Workspace,
	remote repositories.RemoteCompressor,
	local repositories.LocalCompressor,
	configRepo repositories.ConfigRepository,
	notifier repositories.Notifier,
	logger repositories.Logger,
	processing entities.ProcessingConfig,
) *CompressUseCase {
	workers := processing.ParallelWorkers
	if workers <= 0 {
		workers = 1
	}
	return &CompressUseCase{
		workspace:  workspace,
		remote:     remote,
		local:      local,
		configRepo: configRepo,
		notifier:   notifier,
		logger:     logger,
		workers:    workers,
		tick:       processing.ProgressTick(),
	}
}

// SetProgressReporter устанавливает функцию для отчета о фазах запуска
func (uc *CompressUseCase) SetProgressReporter(reporter func(entities.Run)) {
	uc.progressReporter = reporter
}

func (uc *CompressUseCase) reportProgress() {
	if uc.progressReporter != nil {
		uc.progressReporter(uc.workspace.Run())
	}
}

// Execute выполняет один запуск сжатия. В пакетном режиме сжимаются все файлы,
// в одиночном - перечисленные ids (без ids - все файлы по очереди).
func (uc *CompressUseCase) Execute(ctx context.Context, ids ...string) (*entities.Run, error) {
	job, err := uc.workspace.beginRun(ctx, ids)
	if err != nil {
		switch {
		case errors.Is(err, entities.ErrNoFiles):
			uc.notify(entities.NoticeError, "Добавьте PDF файлы для сжатия")
		case errors.Is(err, entities.ErrRunInProgress):
			uc.notify(entities.NoticeWarning, "Сжатие уже выполняется")
		default:
			uc.notify(entities.NoticeError, fmt.Sprintf("Не удалось начать сжатие: %v", err))
		}
		return nil, err
	}
	uc.reportProgress()

	uc.logInfo("▶ Запуск сжатия: файлов %d, режим %s, уровень %s", len(job.items), job.mode, job.level)

	scope := make([]string, len(job.items))
	for i, item := range job.items {
		scope[i] = item.upload.FileID
	}
	tickers := startProgressTickers(uc.tick, scope, func(id string) {
		uc.workspace.advanceProgress(job.generation, id)
	})

	results, simulated, err := uc.dispatch(job)
	tickers.Stop()

	if err != nil {
		run, ok := uc.workspace.failRun(job.generation, results, err)
		if !ok {
			uc.logWarning("Запуск отменен, результаты отброшены")
			return nil, entities.ErrRunCancelled
		}
		uc.logError("✗ Сжатие прервано: %v", err)
		uc.notify(entities.NoticeError, "Не удалось выполнить сжатие. Попробуйте еще раз")
		uc.reportProgress()
		return &run, err
	}

	run, ok := uc.workspace.completeRun(job.generation, results, simulated)
	if !ok {
		uc.logWarning("Запуск отменен, результаты отброшены")
		return nil, entities.ErrRunCancelled
	}
	uc.reportProgress()
	uc.announce(&run, job)

	return &run, nil
}

// dispatch выбирает путь сжатия по статусу сервиса
func (uc *CompressUseCase) dispatch(job *runJob) ([]*entities.CompressionResult, bool, error) {
	if uc.remote == nil || uc.workspace.Backend() != entities.BackendOnline {
		results, err := uc.compressLocally(job.ctx, job.items)
		return results, true, err
	}

	if job.mode == entities.ModeBatch {
		uploads := make([]repositories.UploadFile, len(job.items))
		for i, item := range job.items {
			uploads[i] = item.upload
		}

		results, err := uc.remote.CompressBatch(job.ctx, uploads, job.level)
		if err == nil {
			return results, false, nil
		}
		if !uc.fallbackAllowed(err) {
			return nil, false, err
		}
		results, err = uc.compressLocally(job.ctx, job.items)
		return results, true, err
	}

	results := make([]*entities.CompressionResult, 0, len(job.items))
	for i, item := range job.items {
		result, err := uc.remote.Compress(job.ctx, item.upload, item.level)
		if err == nil {
			results = append(results, result)
			continue
		}
		if !uc.fallbackAllowed(err) {
			return results, false, err
		}

		// сервис не ответил: оставшиеся файлы сжимаются локально
		local, err := uc.compressLocally(job.ctx, job.items[i:])
		return append(results, local...), true, err
	}
	return results, false, nil
}

// fallbackAllowed сообщает о переходе на локальное сжатие для сетевых ошибок
func (uc *CompressUseCase) fallbackAllowed(err error) bool {
	var nf *entities.NetworkFailure
	if !errors.As(err, &nf) {
		return false
	}
	uc.logWarning("⚠️  Сервис сжатия: %v", nf)
	uc.notify(entities.NoticeWarning, fmt.Sprintf("Сервис сжатия недоступен, используется локальное сжатие (%s)", uc.local.Name()))
	return true
}

// compressLocally сжимает файлы пулом воркеров; порядок результатов совпадает с порядком файлов.
// Ошибка движка делает неуспешным только свой файл, запуск прерывает лишь отмена контекста.
func (uc *CompressUseCase) compressLocally(ctx context.Context, items []runItem) ([]*entities.CompressionResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type indexed struct {
		idx    int
		result *entities.CompressionResult
		err    error
	}

	workers := uc.workers
	if workers > len(items) {
		workers = len(items)
	}

	jobs := make(chan int, len(items))
	out := make(chan indexed, len(items))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					out <- indexed{idx: idx, err: ctx.Err()}
					continue
				}
				result, err := uc.compressOne(ctx, items[idx])
				out <- indexed{idx: idx, result: result, err: err}
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(out)
	}()

	results := make([]*entities.CompressionResult, len(items))
	var abortErr error
	for r := range out {
		if r.err == nil {
			results[r.idx] = r.result
			continue
		}
		if isCancellation(r.err) {
			if abortErr == nil {
				abortErr = r.err
				cancel()
			}
			continue
		}
		item := items[r.idx]
		uc.logError("✗ Ошибка сжатия %s: %v", item.upload.Name, r.err)
		results[r.idx] = failedResult(item, r.err)
	}

	compacted := results[:0]
	for _, r := range results {
		if r != nil {
			compacted = append(compacted, r)
		}
	}
	return compacted, abortErr
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func failedResult(item runItem, err error) *entities.CompressionResult {
	return &entities.CompressionResult{
		FileID:       item.upload.FileID,
		OriginalName: item.upload.Name,
		OriginalSize: item.upload.Size,
		Level:        item.level,
		Success:      false,
		Error:        err,
	}
}

func (uc *CompressUseCase) compressOne(ctx context.Context, item runItem) (*entities.CompressionResult, error) {
	config, err := uc.configRepo.GetCompressionConfig(item.level)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания конфигурации: %w", err)
	}
	if err := uc.configRepo.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("ошибка валидации конфигурации: %w", err)
	}

	result, err := uc.local.Compress(ctx, item.upload, config)
	if err != nil {
		return nil, err
	}
	result.FileID = item.upload.FileID
	return result, nil
}

// announce итоговое уведомление запуска
func (uc *CompressUseCase) announce(run *entities.Run, job *runJob) {
	summary := entities.SummarizeResults(run.Results, len(run.Scope))
	marker := ""
	if run.Simulated {
		marker = " (локально)"
	}

	uc.logInfo("■ Запуск %d завершен за %s: успешно %d, ошибок %d",
		run.ID, run.FormatElapsedTime(), summary.SuccessfulFiles, summary.FailedFiles)

	if job.mode == entities.ModeBatch {
		kind := entities.NoticeSuccess
		if summary.SuccessfulFiles == 0 {
			kind = entities.NoticeError
		} else if summary.FailedFiles > 0 {
			kind = entities.NoticeWarning
		}
		uc.notify(kind, fmt.Sprintf("Пакетное сжатие завершено%s: успешно %d, ошибок %d, среднее сжатие %.1f%%",
			marker, summary.SuccessfulFiles, summary.FailedFiles, summary.AverageRatio))
		return
	}

	succeeded := make(map[string]*entities.CompressionResult, len(run.Results))
	for _, r := range run.Results {
		if r != nil && r.Success {
			succeeded[r.FileID] = r
		}
	}

	var failed []string
	for _, item := range job.items {
		r, ok := succeeded[item.upload.FileID]
		if !ok {
			failed = append(failed, item.upload.Name)
			continue
		}
		uc.notify(entities.NoticeSuccess, fmt.Sprintf("%s сжат на %.1f%%%s",
			item.upload.Name, entities.ClampPercent(r.CompressionRatio), marker))
	}
	if len(failed) > 0 {
		sort.Strings(failed)
		uc.notify(entities.NoticeError, fmt.Sprintf("Не удалось сжать: %s", strings.Join(failed, ", ")))
	}
}

func (uc *CompressUseCase) notify(kind entities.NoticeKind, message string) {
	if uc.notifier != nil {
		uc.notifier.Notify(entities.Notice{Kind: kind, Message: message})
	}
}

func (uc *CompressUseCase) logInfo(format string, args ...interface{}) {
	if uc.logger != nil {
		uc.logger.Info(format, args...)
	}
}

func (uc *CompressUseCase) logWarning(format string, args ...interface{}) {
	if uc.logger != nil {
		uc.logger.Warning(format, args...)
	}
}

func (uc *CompressUseCase) logError(format string, args ...interface{}) {
	if uc.logger != nil {
		uc.logger.Error(format, args...)
	}
}
