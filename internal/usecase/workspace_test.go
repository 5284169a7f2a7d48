package usecases_test

import (
	"context"
	"errors"
	"testing"

	"papertube-compress/internal/domain/entities"
)

func TestSetBatchModeRequiresTwoFiles(t *testing.T) {
	env := newTestEnv(t)

	if err := env.ws.SetBatchMode(true); !errors.Is(err, entities.ErrBatchModeNeedsFiles) {
		t.Errorf("Expected ErrBatchModeNeedsFiles with no files, got %v", err)
	}

	env.addPDFs(t, 100)
	if err := env.ws.SetBatchMode(true); !errors.Is(err, entities.ErrBatchModeNeedsFiles) {
		t.Errorf("Expected ErrBatchModeNeedsFiles with one file, got %v", err)
	}

	env.addPDFs(t, 200)
	if err := env.ws.SetBatchMode(true); err != nil {
		t.Errorf("Expected batch mode with two files, got %v", err)
	}
	if !env.ws.BatchMode() {
		t.Error("Expected batch mode enabled")
	}
}

func TestLevelInvalidation(t *testing.T) {
	tests := []struct {
		name  string
		batch bool
		apply func(env *testEnv, files []entities.ManagedFile) error
		// cleared[i] сбрасывается ли результат i-го файла
		cleared []bool
	}{
		{
			name: "single mode file level",
			apply: func(env *testEnv, files []entities.ManagedFile) error {
				return env.ws.SetFileLevel(files[0].ID, entities.LevelLow)
			},
			cleared: []bool{true, false},
		},
		{
			name: "single mode global level",
			apply: func(env *testEnv, files []entities.ManagedFile) error {
				return env.ws.SetGlobalLevel(entities.LevelExtreme)
			},
			cleared: []bool{false, false},
		},
		{
			name:  "batch mode global level",
			batch: true,
			apply: func(env *testEnv, files []entities.ManagedFile) error {
				return env.ws.SetGlobalLevel(entities.LevelHigh)
			},
			cleared: []bool{true, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.ws.SetBackend(entities.BackendOffline)
			files := env.addPDFs(t, 1000, 2000)
			if tt.batch {
				if err := env.ws.SetBatchMode(true); err != nil {
					t.Fatal(err)
				}
			}
			if _, err := env.compress.Execute(context.Background()); err != nil {
				t.Fatal(err)
			}

			if err := tt.apply(env, files); err != nil {
				t.Fatalf("level change failed: %v", err)
			}

			for i, f := range env.ws.Files() {
				if f.HasResult() == tt.cleared[i] {
					t.Errorf("file %d: cleared=%v, has result=%v", i, tt.cleared[i], f.HasResult())
				}
			}
		})
	}
}

func TestGlobalLevelAppliesToNewFiles(t *testing.T) {
	env := newTestEnv(t)
	env.addPDFs(t, 100)

	if err := env.ws.SetGlobalLevel(entities.LevelLow); err != nil {
		t.Fatal(err)
	}
	added, err := env.intake.AddFiles([]string{env.writePDF(t, "new.pdf", 100)})
	if err != nil {
		t.Fatal(err)
	}
	if added[0].Level != entities.LevelLow {
		t.Errorf("Expected new file at low, got %s", added[0].Level)
	}
	if f := env.ws.Files()[0]; f.Level != entities.LevelMedium {
		t.Errorf("Expected existing file unchanged in single mode, got %s", f.Level)
	}
}

func TestBatchModeRestampsLevels(t *testing.T) {
	env := newTestEnv(t)
	files := env.addPDFs(t, 100, 200)
	if err := env.ws.SetFileLevel(files[0].ID, entities.LevelExtreme); err != nil {
		t.Fatal(err)
	}
	if err := env.ws.SetGlobalLevel(entities.LevelLow); err != nil {
		t.Fatal(err)
	}
	if err := env.ws.SetBatchMode(true); err != nil {
		t.Fatal(err)
	}

	for _, f := range env.ws.Files() {
		if f.Level != entities.LevelLow {
			t.Errorf("Expected %s at low, got %s", f.Name, f.Level)
		}
	}
	if err := env.ws.SetFileLevel(files[0].ID, entities.LevelHigh); !errors.Is(err, entities.ErrLevelLocked) {
		t.Errorf("Expected ErrLevelLocked, got %v", err)
	}
}

func TestInvalidLevelRejected(t *testing.T) {
	env := newTestEnv(t)
	files := env.addPDFs(t, 100)

	if err := env.ws.SetGlobalLevel("ultra"); !errors.Is(err, entities.ErrInvalidCompressionLevel) {
		t.Errorf("Expected ErrInvalidCompressionLevel, got %v", err)
	}
	if err := env.ws.SetFileLevel(files[0].ID, "ultra"); !errors.Is(err, entities.ErrInvalidCompressionLevel) {
		t.Errorf("Expected ErrInvalidCompressionLevel, got %v", err)
	}
	if err := env.ws.SetFileLevel("missing", entities.LevelLow); !errors.Is(err, entities.ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound, got %v", err)
	}
}

func TestHandlesRevokedExactlyOnce(t *testing.T) {
	env := newTestEnv(t)
	files := env.addPDFs(t, 100, 200, 300)

	if env.blobs.Live() != 3 {
		t.Fatalf("Expected 3 live handles, got %d", env.blobs.Live())
	}

	if err := env.ws.Remove(files[0].ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := env.ws.Remove(files[0].ID); !errors.Is(err, entities.ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound on second remove, got %v", err)
	}

	if err := env.ws.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if err := env.ws.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	for _, f := range files {
		if got := env.blobs.RevokeCount(f.Handle); got != 1 {
			t.Errorf("Expected %s revoked once, got %d", f.Name, got)
		}
		if _, err := env.blobs.Resolve(f.Handle); !errors.Is(err, entities.ErrHandleRevoked) {
			t.Errorf("Expected revoked handle for %s, got %v", f.Name, err)
		}
	}
	if env.blobs.Live() != 0 {
		t.Errorf("Expected no live handles, got %d", env.blobs.Live())
	}

	added := env.addPDFs(t, 100)
	for _, f := range files {
		if added[0].Handle == f.Handle {
			t.Error("Expected fresh handle, got reused one")
		}
	}
}

func TestRemoveLeavesBatchModeBelowTwoFiles(t *testing.T) {
	env := newTestEnv(t)
	files := env.addPDFs(t, 100, 200)
	if err := env.ws.SetBatchMode(true); err != nil {
		t.Fatal(err)
	}
	if err := env.ws.Remove(files[1].ID); err != nil {
		t.Fatal(err)
	}
	if env.ws.BatchMode() {
		t.Error("Expected batch mode off with one file")
	}
}

func TestFilesReturnsCopies(t *testing.T) {
	env := newTestEnv(t)
	env.ws.SetBackend(entities.BackendOffline)
	env.addPDFs(t, 1000)
	if _, err := env.compress.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	snapshot := env.ws.Files()
	*snapshot[0].CompressedSize = 1
	snapshot[0].Name = "changed"

	f := env.ws.Files()[0]
	if f.Name == "changed" || *f.CompressedSize == 1 {
		t.Error("Expected snapshot changes not to leak into workspace")
	}
}
