package entities_test

import (
	"math"
	"testing"

	"papertube-compress/internal/domain/entities"
)

func withResult(f entities.ManagedFile, size int64, ratio float64) entities.ManagedFile {
	f.CompressedSize = &size
	f.CompressionRatio = &ratio
	return f
}

func TestSummarize(t *testing.T) {
	files := []entities.ManagedFile{
		withResult(entities.ManagedFile{ID: "a", Size: 1000}, 500, 50),
		withResult(entities.ManagedFile{ID: "b", Size: 2000}, 1500, 25),
		{ID: "c", Size: 4000},
	}

	s := entities.Summarize(files)

	if s.TotalOriginalSize != 7000 {
		t.Errorf("Expected total original 7000, got %d", s.TotalOriginalSize)
	}
	if s.TotalCompressedSize != 2000 {
		t.Errorf("Expected total compressed 2000, got %d", s.TotalCompressedSize)
	}
	if s.TotalSavedSpace != s.TotalOriginalSize-s.TotalCompressedSize {
		t.Errorf("Savings %d do not match original - compressed", s.TotalSavedSpace)
	}
	if math.Abs(s.AverageRatio-37.5) > 1e-9 {
		t.Errorf("Expected average ratio 37.5, got %f", s.AverageRatio)
	}
	if s.SuccessfulFiles != 2 || s.TotalFiles != 3 {
		t.Errorf("Unexpected counts: %+v", s)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := entities.Summarize(nil)
	if s.AverageRatio != 0 || s.TotalSavedSpace != 0 {
		t.Errorf("Expected zero summary, got %+v", s)
	}
}

func TestSummarizeResults(t *testing.T) {
	results := []*entities.CompressionResult{
		{Success: true, OriginalSize: 100, CompressedSize: 40, CompressionRatio: 60},
		{Success: true, OriginalSize: 100, CompressedSize: 80, CompressionRatio: 20},
		{Success: false, OriginalSize: 100},
	}

	s := entities.SummarizeResults(results, 4)

	if s.SuccessfulFiles != 2 || s.FailedFiles != 2 {
		t.Errorf("Expected 2 succeeded / 2 failed, got %d / %d", s.SuccessfulFiles, s.FailedFiles)
	}
	if s.AverageRatio != 40 {
		t.Errorf("Expected average ratio 40, got %f", s.AverageRatio)
	}
	if s.TotalSavedSpace != 80 {
		t.Errorf("Expected savings 80, got %d", s.TotalSavedSpace)
	}
}
