package repositories_test

import (
	"os"
	"path/filepath"
	"testing"

	"papertube-compress/internal/domain/entities"
	"papertube-compress/internal/infrastructure/repositories"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestGetFileInfoSniffsMimeType(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "doc.pdf")
	txtPath := filepath.Join(dir, "fake.pdf")
	writeFile(t, pdfPath, []byte("%PDF-1.4\n%broken body"))
	writeFile(t, txtPath, []byte("just some text"))

	repo := repositories.NewFileSystemRepository()

	doc, err := repo.GetFileInfo(pdfPath)
	if err != nil {
		t.Fatalf("GetFileInfo failed: %v", err)
	}
	if doc.MimeType != entities.PDFMimeType {
		t.Errorf("Expected %s, got %s", entities.PDFMimeType, doc.MimeType)
	}
	if doc.Pages != 0 {
		t.Errorf("Expected unreadable page count to stay 0, got %d", doc.Pages)
	}

	doc, err = repo.GetFileInfo(txtPath)
	if err != nil {
		t.Fatalf("GetFileInfo failed: %v", err)
	}
	if doc.MimeType == entities.PDFMimeType {
		t.Error("Expected text file not to be detected as PDF")
	}
}

func TestListPDFFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.pdf"), []byte("%PDF-1.4"))
	writeFile(t, filepath.Join(dir, "sub", "a.PDF"), []byte("%PDF-1.4"))
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("text"))

	files, err := repositories.NewFileSystemRepository().ListPDFFiles(dir)
	if err != nil {
		t.Fatalf("ListPDFFiles failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("Expected 2 files, got %v", files)
	}
	if files[0] != filepath.Join(dir, "b.pdf") {
		t.Errorf("Expected sorted output, got %v", files)
	}
}

func TestSaveFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	repo := repositories.NewFileSystemRepository()

	path, err := repo.SaveFile(dir, "../escape.pdf", []byte("data"))
	if err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}
	if path != filepath.Join(dir, "escape.pdf") {
		t.Errorf("Expected file inside target dir, got %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil || string(data) != "data" {
		t.Errorf("Unexpected content %q, err %v", data, err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("Expected no temp files left, got %d entries", len(entries))
	}
}
