package compressors_test

import (
	"context"
	"encoding/base64"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"papertube-compress/internal/domain/entities"
	"papertube-compress/internal/domain/repositories"
	"papertube-compress/internal/infrastructure/compressors"
)

func noSleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

func tempPDF(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("%PDF-1.4 test"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSimulatedCompressorFactors(t *testing.T) {
	path := tempPDF(t, "a.pdf")
	const size = 2 * 1024 * 1024

	sim := compressors.NewSimulatedCompressor(
		compressors.WithRand(rand.New(rand.NewSource(42))),
		compressors.WithSleeper(noSleep),
	)

	for _, level := range entities.AllLevels() {
		t.Run(level.String(), func(t *testing.T) {
			factor := level.Preset().Factor
			for i := 0; i < 50; i++ {
				r, err := sim.Compress(context.Background(),
					repositories.UploadFile{FileID: "id", Name: "a.pdf", Path: path, Size: size},
					entities.NewCompressionConfig(level))
				if err != nil {
					t.Fatalf("Compress failed: %v", err)
				}

				got := float64(r.CompressedSize) / size
				if got < factor-0.05-1e-6 || got > factor+0.05+1e-6 {
					t.Fatalf("factor %f outside %f±0.05", got, factor)
				}
				if r.CompressionRatio < 0 || r.CompressionRatio > 100 {
					t.Fatalf("ratio %f out of range", r.CompressionRatio)
				}
				if !r.Simulated || !r.Success || r.Level != level {
					t.Fatalf("unexpected result flags: %+v", r)
				}
			}
		})
	}
}

func TestSimulatedCompressorPayloadAndName(t *testing.T) {
	path := tempPDF(t, "notes.pdf")
	sim := compressors.NewSimulatedCompressor(compressors.WithSleeper(noSleep))

	r, err := sim.Compress(context.Background(),
		repositories.UploadFile{FileID: "x", Name: "notes.pdf", Path: path, Size: 13},
		entities.NewCompressionConfig(entities.LevelLow))
	if err != nil {
		t.Fatal(err)
	}

	if r.CompressedName != "compressed-notes.pdf" {
		t.Errorf("Unexpected name %s", r.CompressedName)
	}
	data, err := base64.StdEncoding.DecodeString(r.FileData)
	if err != nil || string(data) != "%PDF-1.4 test" {
		t.Errorf("Unexpected payload %q, err %v", data, err)
	}
	if r.FileID != "x" {
		t.Errorf("Expected file id to be carried, got %s", r.FileID)
	}
}

func TestSimulatedCompressorCancelled(t *testing.T) {
	path := tempPDF(t, "a.pdf")
	sim := compressors.NewSimulatedCompressor()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.Compress(ctx, repositories.UploadFile{Name: "a.pdf", Path: path, Size: 10},
		entities.NewCompressionConfig(entities.LevelMedium))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestSimulatedDelay(t *testing.T) {
	tests := []struct {
		size int64
		want time.Duration
	}{
		{0, 500 * time.Millisecond},
		{1024 * 1024, 500 * time.Millisecond},
		{5 * 1024 * 1024, time.Second},
		{50 * 1024 * 1024, 2 * time.Second},
	}

	for _, tt := range tests {
		if got := compressors.SimulatedDelay(tt.size); got != tt.want {
			t.Errorf("SimulatedDelay(%d) = %v, want %v", tt.size, got, tt.want)
		}
	}
}
