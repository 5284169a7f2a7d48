package usecases_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"papertube-compress/internal/domain/entities"
)

func TestDownloadAllInStoredOrder(t *testing.T) {
	env := newTestEnv(t)
	env.ws.SetBackend(entities.BackendOnline)
	env.addPDFs(t, 1000, 2000)
	if err := env.ws.SetBatchMode(true); err != nil {
		t.Fatal(err)
	}
	if _, err := env.compress.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	results := env.ws.Results()
	paths, err := env.download.DownloadAll()
	if err != nil {
		t.Fatalf("DownloadAll failed: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("Expected 2 downloads, got %d", len(paths))
	}
	for i, r := range results {
		want := filepath.Join(env.out, r.DownloadName())
		if paths[i] != want {
			t.Errorf("download %d: expected %s, got %s", i, want, paths[i])
		}
		data, err := os.ReadFile(paths[i])
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "%PDF-1.4\n" {
			t.Errorf("Unexpected content %q", data)
		}
	}
	if !env.notices.contains("Сохранено файлов: 2 из 2") {
		t.Errorf("Expected one summary notice, got %+v", env.notices.all())
	}
}

func TestDownloadOneMalformedPayload(t *testing.T) {
	env := newTestEnv(t)

	bad := &entities.CompressionResult{OriginalName: "x.pdf", FileData: "!!not base64!!", Success: true}
	if _, err := env.download.DownloadOne(bad); !errors.Is(err, entities.ErrInvalidPayload) {
		t.Fatalf("Expected ErrInvalidPayload, got %v", err)
	}
	if env.notices.count(entities.NoticeError) != 1 {
		t.Errorf("Expected one error notice, got %+v", env.notices.all())
	}

	good := &entities.CompressionResult{OriginalName: "y.pdf", FileData: "JVBERi0xLjQK", Success: true}
	path, err := env.download.DownloadOne(good)
	if err != nil {
		t.Fatalf("DownloadOne failed: %v", err)
	}
	if filepath.Base(path) != "compressed-y.pdf" {
		t.Errorf("Expected fallback name, got %s", path)
	}
}

func TestDownloadAllWithoutResults(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.download.DownloadAll(); !errors.Is(err, entities.ErrNoResults) {
		t.Errorf("Expected ErrNoResults, got %v", err)
	}
}
