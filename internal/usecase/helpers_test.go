package usecases_test

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"papertube-compress/internal/domain/entities"
	"papertube-compress/internal/domain/repositories"
	"papertube-compress/internal/infrastructure/compressors"
	infra "papertube-compress/internal/infrastructure/repositories"
	usecases "papertube-compress/internal/usecase"
)

const mib = 1024 * 1024

type noticeRecorder struct {
	mu      sync.Mutex
	notices []entities.Notice
}

func (r *noticeRecorder) Notify(n entities.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *noticeRecorder) all() []entities.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entities.Notice(nil), r.notices...)
}

func (r *noticeRecorder) count(kind entities.NoticeKind) int {
	n := 0
	for _, notice := range r.all() {
		if notice.Kind == kind {
			n++
		}
	}
	return n
}

func (r *noticeRecorder) contains(substr string) bool {
	for _, notice := range r.all() {
		if strings.Contains(notice.Message, substr) {
			return true
		}
	}
	return false
}

func (r *noticeRecorder) reset() {
	r.mu.Lock()
	r.notices = nil
	r.mu.Unlock()
}

type fakeRemote struct {
	mu          sync.Mutex
	healthErr   error
	single      func(ctx context.Context, f repositories.UploadFile, level entities.CompressionLevel) (*entities.CompressionResult, error)
	batch       func(ctx context.Context, files []repositories.UploadFile, level entities.CompressionLevel) ([]*entities.CompressionResult, error)
	singleCalls int
	batchCalls  int
}

func (f *fakeRemote) Health(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.healthErr
}

func (f *fakeRemote) Compress(ctx context.Context, file repositories.UploadFile, level entities.CompressionLevel) (*entities.CompressionResult, error) {
	f.mu.Lock()
	f.singleCalls++
	fn := f.single
	f.mu.Unlock()
	if fn == nil {
		return remoteResult(file, level, 0.5), nil
	}
	return fn(ctx, file, level)
}

func (f *fakeRemote) CompressBatch(ctx context.Context, files []repositories.UploadFile, level entities.CompressionLevel) ([]*entities.CompressionResult, error) {
	f.mu.Lock()
	f.batchCalls++
	fn := f.batch
	f.mu.Unlock()
	if fn == nil {
		results := make([]*entities.CompressionResult, len(files))
		for i, file := range files {
			results[i] = remoteResult(file, level, 0.5)
		}
		return results, nil
	}
	return fn(ctx, files, level)
}

func remoteResult(file repositories.UploadFile, level entities.CompressionLevel, factor float64) *entities.CompressionResult {
	r := &entities.CompressionResult{
		FileID:         file.FileID,
		OriginalName:   file.Name,
		CompressedName: entities.CompressedName(file.Name),
		OriginalSize:   file.Size,
		CompressedSize: int64(float64(file.Size) * factor),
		Level:          level,
		FileData:       "JVBERi0xLjQK",
		Success:        true,
	}
	r.CalculateCompressionRatio()
	return r
}

// fakeLocal локальный движок с управляемым результатом для каждого файла
type fakeLocal struct {
	compress func(ctx context.Context, file repositories.UploadFile, config *entities.CompressionConfig) (*entities.CompressionResult, error)
}

func (l *fakeLocal) Name() string {
	return "fake"
}

func (l *fakeLocal) Compress(ctx context.Context, file repositories.UploadFile, config *entities.CompressionConfig) (*entities.CompressionResult, error) {
	return l.compress(ctx, file, config)
}

// failingOn движок, который не справляется только с указанными файлами
func failingOn(names ...string) *fakeLocal {
	bad := make(map[string]bool, len(names))
	for _, n := range names {
		bad[n] = true
	}
	return &fakeLocal{compress: func(ctx context.Context, file repositories.UploadFile, config *entities.CompressionConfig) (*entities.CompressionResult, error) {
		if bad[file.Name] {
			return nil, errors.New("malformed pdf: xref table not found")
		}
		r := remoteResult(file, config.Level, 0.6)
		r.Simulated = true
		return r, nil
	}}
}

type testEnv struct {
	dir      string
	out      string
	ws       *usecases.Workspace
	blobs    *infra.MemoryBlobStore
	notices  *noticeRecorder
	remote   *fakeRemote
	intake   *usecases.IntakeUseCase
	compress *usecases.CompressUseCase
	download *usecases.DownloadUseCase
	probe    *usecases.ProbeBackendUseCase
}

func noSleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	env := &testEnv{
		dir:     dir,
		out:     filepath.Join(dir, "out"),
		blobs:   infra.NewMemoryBlobStore(),
		notices: &noticeRecorder{},
		remote:  &fakeRemote{},
	}

	fileRepo := infra.NewFileSystemRepository()
	simulator := compressors.NewSimulatedCompressor(
		compressors.WithRand(rand.New(rand.NewSource(7))),
		compressors.WithSleeper(noSleep),
	)
	processing := entities.ProcessingConfig{ParallelWorkers: 2, ProgressTickMS: 10}

	env.ws = usecases.NewWorkspace(env.blobs, entities.LevelMedium)
	env.intake = usecases.NewIntakeUseCase(env.ws, fileRepo, env.notices, nil, entities.MaxFileSize)
	env.compress = usecases.NewCompressUseCase(env.ws, env.remote, simulator,
		infra.NewConfigRepository(""), env.notices, nil, processing)
	env.download = usecases.NewDownloadUseCase(env.ws, fileRepo, env.notices, nil, env.out)
	env.probe = usecases.NewProbeBackendUseCase(env.ws, env.remote, env.notices, nil, 0)
	return env
}

// useLocal подменяет локальный движок оркестратора
func (e *testEnv) useLocal(local repositories.LocalCompressor) {
	e.compress = usecases.NewCompressUseCase(e.ws, e.remote, local,
		infra.NewConfigRepository(""), e.notices, nil,
		entities.ProcessingConfig{ParallelWorkers: 2, ProgressTickMS: 10})
}

// writePDF создает PDF заданного размера (хвост файла разреженный)
func (e *testEnv) writePDF(t *testing.T, name string, size int64) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	header := []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
	if err := os.WriteFile(path, header, 0644); err != nil {
		t.Fatal(err)
	}
	if size > int64(len(header)) {
		if err := os.Truncate(path, size); err != nil {
			t.Fatal(err)
		}
	}
	return path
}

func (e *testEnv) addPDFs(t *testing.T, sizes ...int64) []entities.ManagedFile {
	t.Helper()
	paths := make([]string, len(sizes))
	for i, size := range sizes {
		paths[i] = e.writePDF(t, string(rune('a'+i))+".pdf", size)
	}
	files, err := e.intake.AddFiles(paths)
	if err != nil {
		t.Fatalf("AddFiles failed: %v", err)
	}
	e.notices.reset()
	return files
}

func assertNoneCompressing(t *testing.T, ws *usecases.Workspace) {
	t.Helper()
	for _, f := range ws.Files() {
		if f.IsCompressing {
			t.Errorf("file %s left compressing", f.Name)
		}
	}
}
