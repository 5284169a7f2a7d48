package usecases

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"papertube-compress/internal/domain/entities"
	"papertube-compress/internal/domain/repositories"
)

// Workspace владеет списком файлов, результатами и состоянием запуска.
// Все изменения проходят через методы под мьютексом, наружу отдаются копии.
type Workspace struct {
	mu sync.Mutex

	blobs repositories.BlobStore

	files       []*entities.ManagedFile
	results     []*entities.CompressionResult
	globalLevel entities.CompressionLevel
	batchMode   bool
	backend     entities.BackendStatus

	run        *entities.Run
	runSeq     int
	generation int
	cancelRun  context.CancelFunc
	prior      map[string]int

	onChange func()
}

// runJob снимок запуска, который передается оркестратору
type runJob struct {
	ctx        context.Context
	generation int
	mode       entities.RunMode
	level      entities.CompressionLevel
	items      []runItem
}

// runItem файл в области запуска
type runItem struct {
	upload repositories.UploadFile
	level  entities.CompressionLevel
}

// NewWorkspace создает пустую рабочую область
func NewWorkspace(blobs repositories.BlobStore, level entities.CompressionLevel) *Workspace {
	if !level.Valid() {
		level = entities.DefaultLevel
	}
	return &Workspace{
		blobs:       blobs,
		globalLevel: level,
		backend:     entities.BackendChecking,
	}
}

// SetChangeListener задает функцию, вызываемую после каждого изменения состояния
func (w *Workspace) SetChangeListener(fn func()) {
	w.mu.Lock()
	w.onChange = fn
	w.mu.Unlock()
}

func (w *Workspace) changed() {
	w.mu.Lock()
	fn := w.onChange
	w.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Files возвращает копию списка файлов в порядке добавления
func (w *Workspace) Files() []entities.ManagedFile {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]entities.ManagedFile, len(w.files))
	for i, f := range w.files {
		out[i] = cloneFile(f)
	}
	return out
}

// File возвращает копию файла по идентификатору
func (w *Workspace) File(id string) (entities.ManagedFile, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if f := w.find(id); f != nil {
		return cloneFile(f), true
	}
	return entities.ManagedFile{}, false
}

// Results возвращает сохраненные результаты в порядке сохранения
func (w *Workspace) Results() []*entities.CompressionResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]*entities.CompressionResult, len(w.results))
	copy(out, w.results)
	return out
}

// Summary агрегированная статистика по текущему списку файлов
func (w *Workspace) Summary() entities.RunSummary {
	return entities.Summarize(w.Files())
}

// GlobalLevel уровень сжатия по умолчанию
func (w *Workspace) GlobalLevel() entities.CompressionLevel {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.globalLevel
}

// BatchMode включен ли пакетный режим
func (w *Workspace) BatchMode() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.batchMode
}

// Backend последний известный статус сервиса
func (w *Workspace) Backend() entities.BackendStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.backend
}

// SetBackend обновляет статус сервиса
func (w *Workspace) SetBackend(status entities.BackendStatus) {
	w.mu.Lock()
	w.backend = status
	w.mu.Unlock()
	w.changed()
}

// Run возвращает копию текущего (или последнего) запуска
func (w *Workspace) Run() entities.Run {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.run == nil {
		return entities.Run{Phase: entities.PhaseIdle}
	}
	run := *w.run
	run.Scope = append([]string(nil), w.run.Scope...)
	run.Results = append([]*entities.CompressionResult(nil), w.run.Results...)
	return run
}

// addFile регистрирует принятый файл
func (w *Workspace) addFile(doc *entities.PDFDocument, name string) (entities.ManagedFile, error) {
	handle, err := w.blobs.Create(doc.Path)
	if err != nil {
		return entities.ManagedFile{}, fmt.Errorf("ошибка создания дескриптора: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		_ = w.blobs.Revoke(handle)
		return entities.ManagedFile{}, fmt.Errorf("ошибка генерации идентификатора: %w", err)
	}

	w.mu.Lock()
	file := &entities.ManagedFile{
		ID:          id.String(),
		Name:        name,
		Path:        doc.Path,
		Size:        doc.Size,
		DisplaySize: entities.FormatSize(doc.Size),
		Order:       len(w.files),
		Level:       w.globalLevel,
		Pages:       doc.Pages,
		Handle:      handle,
	}
	w.files = append(w.files, file)
	snapshot := cloneFile(file)
	w.mu.Unlock()

	w.changed()
	return snapshot, nil
}

// Remove удаляет файл и освобождает его дескриптор
func (w *Workspace) Remove(id string) error {
	w.mu.Lock()
	idx := -1
	for i, f := range w.files {
		if f.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		w.mu.Unlock()
		return fmt.Errorf("%s: %w", id, entities.ErrFileNotFound)
	}

	w.cancelLocked()
	file := w.files[idx]
	w.files = append(w.files[:idx], w.files[idx+1:]...)
	w.dropResultsLocked(func(r *entities.CompressionResult) bool { return r.FileID == id })
	if w.batchMode && len(w.files) < 2 {
		w.batchMode = false
	}
	w.mu.Unlock()

	err := w.blobs.Revoke(file.Handle)
	w.changed()
	return err
}

// Clear удаляет все файлы и результаты
func (w *Workspace) Clear() error {
	w.mu.Lock()
	w.cancelLocked()
	files := w.files
	w.files = nil
	w.results = nil
	w.batchMode = false
	w.mu.Unlock()

	var errs []error
	for _, f := range files {
		if err := w.blobs.Revoke(f.Handle); err != nil {
			errs = append(errs, err)
		}
	}
	w.changed()
	return errors.Join(errs...)
}

// Close освобождает все ресурсы рабочей области
func (w *Workspace) Close() error {
	return w.Clear()
}

// SetGlobalLevel меняет уровень по умолчанию; в пакетном режиме
// уровень применяется ко всем файлам и их результаты сбрасываются
func (w *Workspace) SetGlobalLevel(level entities.CompressionLevel) error {
	if !level.Valid() {
		return fmt.Errorf("%q: %w", level, entities.ErrInvalidCompressionLevel)
	}

	w.mu.Lock()
	if w.run.IsActive() {
		w.mu.Unlock()
		return entities.ErrRunInProgress
	}
	w.globalLevel = level
	if w.batchMode {
		w.restampLocked()
	}
	w.mu.Unlock()

	w.changed()
	return nil
}

// SetFileLevel меняет уровень одного файла (только в одиночном режиме)
// и сбрасывает его результат
func (w *Workspace) SetFileLevel(id string, level entities.CompressionLevel) error {
	if !level.Valid() {
		return fmt.Errorf("%q: %w", level, entities.ErrInvalidCompressionLevel)
	}

	w.mu.Lock()
	if w.batchMode {
		w.mu.Unlock()
		return entities.ErrLevelLocked
	}
	if w.run.IsActive() {
		w.mu.Unlock()
		return entities.ErrRunInProgress
	}
	file := w.find(id)
	if file == nil {
		w.mu.Unlock()
		return fmt.Errorf("%s: %w", id, entities.ErrFileNotFound)
	}
	file.Level = level
	file.ClearResult()
	w.dropResultsLocked(func(r *entities.CompressionResult) bool { return r.FileID == id })
	w.mu.Unlock()

	w.changed()
	return nil
}

// SetBatchMode переключает пакетный режим; для включения нужно минимум два файла
func (w *Workspace) SetBatchMode(enabled bool) error {
	w.mu.Lock()
	if w.run.IsActive() {
		w.mu.Unlock()
		return entities.ErrRunInProgress
	}
	if enabled && len(w.files) < 2 {
		w.mu.Unlock()
		return entities.ErrBatchModeNeedsFiles
	}
	if w.batchMode == enabled {
		w.mu.Unlock()
		return nil
	}
	w.batchMode = enabled
	if enabled {
		w.restampLocked()
	}
	w.mu.Unlock()

	w.changed()
	return nil
}

// CancelRun отменяет активный запуск; поздние результаты отбрасываются
func (w *Workspace) CancelRun() bool {
	w.mu.Lock()
	active := w.cancelLocked()
	w.mu.Unlock()

	if active {
		w.changed()
	}
	return active
}

// beginRun переводит запуск в фазу running и помечает файлы области
func (w *Workspace) beginRun(ctx context.Context, ids []string) (*runJob, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.files) == 0 {
		return nil, entities.ErrNoFiles
	}
	if w.run.IsActive() {
		return nil, entities.ErrRunInProgress
	}

	scope, err := w.scopeLocked(ids)
	if err != nil {
		return nil, err
	}

	items := make([]runItem, 0, len(scope))
	for _, f := range scope {
		path, err := w.blobs.Resolve(f.Handle)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		items = append(items, runItem{
			upload: repositories.UploadFile{FileID: f.ID, Name: f.Name, Path: path, Size: f.Size},
			level:  f.Level,
		})
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.generation++
	w.runSeq++
	w.cancelRun = cancel
	w.prior = make(map[string]int, len(scope))

	mode := entities.ModeSingle
	if w.batchMode {
		mode = entities.ModeBatch
	}
	run := &entities.Run{
		ID:        w.runSeq,
		Phase:     entities.PhaseRunning,
		Mode:      mode,
		Level:     w.globalLevel,
		StartTime: time.Now(),
	}
	for _, f := range scope {
		w.prior[f.ID] = f.Progress
		f.IsCompressing = true
		f.Progress = 0
		run.Scope = append(run.Scope, f.ID)
	}
	w.run = run

	return &runJob{
		ctx:        runCtx,
		generation: w.generation,
		mode:       mode,
		level:      w.globalLevel,
		items:      items,
	}, nil
}

// scopeLocked файлы запуска: в пакетном режиме все, иначе перечисленные (или все по очереди)
func (w *Workspace) scopeLocked(ids []string) ([]*entities.ManagedFile, error) {
	if w.batchMode || len(ids) == 0 {
		scope := make([]*entities.ManagedFile, len(w.files))
		copy(scope, w.files)
		return scope, nil
	}

	scope := make([]*entities.ManagedFile, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		f := w.find(id)
		if f == nil {
			return nil, fmt.Errorf("%s: %w", id, entities.ErrFileNotFound)
		}
		seen[id] = true
		scope = append(scope, f)
	}
	return scope, nil
}

// advanceProgress шаг индикатора: +10, не выше 90
func (w *Workspace) advanceProgress(generation int, id string) {
	w.mu.Lock()
	if generation != w.generation {
		w.mu.Unlock()
		return
	}
	f := w.find(id)
	if f == nil || !f.IsCompressing {
		w.mu.Unlock()
		return
	}
	f.Progress += 10
	if f.Progress > 90 {
		f.Progress = 90
	}
	w.mu.Unlock()

	w.changed()
}

// completeRun переносит результаты на файлы и завершает запуск.
// Возвращает false, если запуск уже отменен.
func (w *Workspace) completeRun(generation int, results []*entities.CompressionResult, simulated bool) (entities.Run, bool) {
	w.mu.Lock()
	if generation != w.generation || !w.run.IsActive() {
		w.mu.Unlock()
		return entities.Run{}, false
	}

	succeeded := w.applyResultsLocked(results)
	w.resetScopeLocked()

	w.storeResultsLocked(results)

	w.run.Phase = entities.PhaseCompleted
	w.run.FinishTime = time.Now()
	w.run.Results = results
	w.run.Simulated = simulated
	w.run.Failed = len(w.run.Scope) - succeeded
	w.releaseRunLocked()

	run := *w.run
	w.mu.Unlock()

	w.changed()
	return run, true
}

// failRun прерывает запуск: успешные до сбоя результаты сохраняются,
// остальные файлы возвращаются в состояние до запуска
func (w *Workspace) failRun(generation int, results []*entities.CompressionResult, err error) (entities.Run, bool) {
	w.mu.Lock()
	if generation != w.generation || !w.run.IsActive() {
		w.mu.Unlock()
		return entities.Run{}, false
	}

	succeeded := w.applyResultsLocked(results)
	w.resetScopeLocked()
	w.storeResultsLocked(results)

	w.run.Phase = entities.PhaseFailed
	w.run.FinishTime = time.Now()
	w.run.Results = results
	w.run.Failed = len(w.run.Scope) - succeeded
	w.run.Error = err
	w.releaseRunLocked()

	run := *w.run
	w.mu.Unlock()

	w.changed()
	return run, true
}

// cancelLocked отменяет активный запуск и делает его результаты устаревшими
func (w *Workspace) cancelLocked() bool {
	if !w.run.IsActive() {
		return false
	}
	w.generation++
	if w.cancelRun != nil {
		w.cancelRun()
	}
	w.resetScopeLocked()
	w.run.Phase = entities.PhaseFailed
	w.run.FinishTime = time.Now()
	w.run.Error = entities.ErrRunCancelled
	w.releaseRunLocked()
	return true
}

// applyResultsLocked переносит успешные результаты на файлы запуска
func (w *Workspace) applyResultsLocked(results []*entities.CompressionResult) int {
	applied := 0
	for _, r := range results {
		if r == nil || !r.Success {
			continue
		}
		if f := w.find(r.FileID); f != nil && f.IsCompressing {
			f.ApplyResult(r)
			applied++
		}
	}
	return applied
}

func (w *Workspace) resetScopeLocked() {
	for _, id := range w.run.Scope {
		if f := w.find(id); f != nil && f.IsCompressing {
			f.IsCompressing = false
			f.Progress = w.prior[id]
		}
	}
}

func (w *Workspace) releaseRunLocked() {
	if w.cancelRun != nil {
		w.cancelRun()
		w.cancelRun = nil
	}
	w.prior = nil
}

// storeResultsLocked заменяет результаты файлов запуска, сохраняя порядок остальных
func (w *Workspace) storeResultsLocked(results []*entities.CompressionResult) {
	fresh := make(map[string]bool, len(results))
	for _, r := range results {
		if r != nil && r.Success {
			fresh[r.FileID] = true
		}
	}
	w.dropResultsLocked(func(r *entities.CompressionResult) bool { return fresh[r.FileID] })
	for _, r := range results {
		if r != nil && r.Success {
			w.results = append(w.results, r)
		}
	}
}

func (w *Workspace) dropResultsLocked(drop func(*entities.CompressionResult) bool) {
	kept := w.results[:0]
	for _, r := range w.results {
		if !drop(r) {
			kept = append(kept, r)
		}
	}
	for i := len(kept); i < len(w.results); i++ {
		w.results[i] = nil
	}
	w.results = kept
}

// restampLocked применяет глобальный уровень ко всем файлам и сбрасывает результаты
func (w *Workspace) restampLocked() {
	for _, f := range w.files {
		f.Level = w.globalLevel
		f.ClearResult()
	}
	w.results = nil
}

func (w *Workspace) find(id string) *entities.ManagedFile {
	for _, f := range w.files {
		if f.ID == id {
			return f
		}
	}
	return nil
}

func cloneFile(f *entities.ManagedFile) entities.ManagedFile {
	c := *f
	if f.CompressedSize != nil {
		size := *f.CompressedSize
		c.CompressedSize = &size
	}
	if f.CompressionRatio != nil {
		ratio := *f.CompressionRatio
		c.CompressionRatio = &ratio
	}
	return c
}
