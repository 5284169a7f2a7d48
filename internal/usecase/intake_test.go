package usecases_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"papertube-compress/internal/domain/entities"
	infra "papertube-compress/internal/infrastructure/repositories"
	usecases "papertube-compress/internal/usecase"
)

func TestAddFilesValidation(t *testing.T) {
	env := newTestEnv(t)

	textPath := filepath.Join(env.dir, "notes.pdf")
	if err := os.WriteFile(textPath, []byte("plain text pretending to be pdf"), 0644); err != nil {
		t.Fatal(err)
	}

	candidates := []string{
		env.writePDF(t, "small.pdf", 1024),
		textPath,
		env.writePDF(t, "huge.pdf", 150*mib),
		env.writePDF(t, "second.pdf", 4096),
		filepath.Join(env.dir, "missing.pdf"),
	}

	added, err := env.intake.AddFiles(candidates)
	if err != nil {
		t.Fatalf("AddFiles failed: %v", err)
	}

	if len(added) != 2 {
		t.Fatalf("Expected 2 accepted files, got %d", len(added))
	}
	if added[0].Name != "small.pdf" || added[1].Name != "second.pdf" {
		t.Errorf("Unexpected accepted files: %s, %s", added[0].Name, added[1].Name)
	}

	files := env.ws.Files()
	if len(files) != 2 {
		t.Fatalf("Expected 2 managed files, got %d", len(files))
	}
	for i, f := range files {
		if f.Order != i {
			t.Errorf("Expected order %d, got %d", i, f.Order)
		}
		if f.Level != entities.LevelMedium {
			t.Errorf("Expected default level medium, got %s", f.Level)
		}
		if f.Handle == "" || f.ID == "" {
			t.Errorf("Expected id and handle for %s", f.Name)
		}
	}
	if files[0].ID == files[1].ID {
		t.Error("Expected unique ids within a batch")
	}

	if got := env.notices.count(entities.NoticeError); got != 3 {
		t.Errorf("Expected 3 rejection notices, got %d", got)
	}
	if got := env.notices.count(entities.NoticeSuccess); got != 1 {
		t.Errorf("Expected 1 success notice, got %d", got)
	}
}

func TestAddFilesIsAdditive(t *testing.T) {
	env := newTestEnv(t)
	env.addPDFs(t, 100, 200)

	added, err := env.intake.AddFiles([]string{env.writePDF(t, "late.pdf", 300)})
	if err != nil {
		t.Fatalf("AddFiles failed: %v", err)
	}
	if added[0].Order != 2 {
		t.Errorf("Expected order 2, got %d", added[0].Order)
	}
	if len(env.ws.Files()) != 3 {
		t.Errorf("Expected 3 files, got %d", len(env.ws.Files()))
	}
}

func TestOversizedFileRejected(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.intake.AddFiles([]string{env.writePDF(t, "big.pdf", 150*mib)})
	if !errors.Is(err, entities.ErrNoFilesAccepted) {
		t.Fatalf("Expected ErrNoFilesAccepted, got %v", err)
	}
	if len(env.ws.Files()) != 0 {
		t.Error("Expected empty file list")
	}

	notices := env.notices.all()
	if len(notices) != 1 || notices[0].Kind != entities.NoticeError {
		t.Errorf("Expected exactly one error notice, got %+v", notices)
	}
}

func TestAddFilesSizeBoundary(t *testing.T) {
	env := newTestEnv(t)
	intake := usecases.NewIntakeUseCase(env.ws, infra.NewFileSystemRepository(), env.notices, nil, 2048)

	added, err := intake.AddFiles([]string{
		env.writePDF(t, "exact.pdf", 2048),
		env.writePDF(t, "over.pdf", 2049),
	})
	if err != nil {
		t.Fatalf("AddFiles failed: %v", err)
	}
	if len(added) != 1 || added[0].Name != "exact.pdf" {
		t.Errorf("Expected only exact.pdf to be accepted, got %+v", added)
	}
}

func TestAddDirectory(t *testing.T) {
	env := newTestEnv(t)

	sub := filepath.Join(env.dir, "drop")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"one.pdf", "two.pdf"} {
		if err := os.WriteFile(filepath.Join(sub, name), []byte("%PDF-1.4\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(sub, "readme.txt"), []byte("skip"), 0644); err != nil {
		t.Fatal(err)
	}

	added, err := env.intake.AddDirectory(sub)
	if err != nil {
		t.Fatalf("AddDirectory failed: %v", err)
	}
	if len(added) != 2 {
		t.Errorf("Expected 2 files, got %d", len(added))
	}

	if _, err := env.intake.AddDirectory(filepath.Join(env.dir, "nope")); !errors.Is(err, entities.ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound, got %v", err)
	}
}
