package entities

// RunSummary агрегированная статистика по файлам рабочей области
type RunSummary struct {
	TotalFiles          int
	SuccessfulFiles     int
	FailedFiles         int
	TotalOriginalSize   int64
	TotalCompressedSize int64
	TotalSavedSpace     int64
	AverageRatio        float64
}

// Summarize вычисляет статистику по списку файлов
func Summarize(files []ManagedFile) RunSummary {
	var s RunSummary
	var ratioSum float64

	s.TotalFiles = len(files)
	for i := range files {
		f := &files[i]
		s.TotalOriginalSize += f.Size
		if !f.HasResult() {
			continue
		}
		s.SuccessfulFiles++
		s.TotalCompressedSize += *f.CompressedSize
		ratioSum += *f.CompressionRatio
	}

	s.TotalSavedSpace = s.TotalOriginalSize - s.TotalCompressedSize
	if s.SuccessfulFiles > 0 {
		s.AverageRatio = ClampPercent(ratioSum / float64(s.SuccessfulFiles))
	}
	return s
}

// SummarizeResults вычисляет статистику по результатам одного запуска
func SummarizeResults(results []*CompressionResult, attempted int) RunSummary {
	s := RunSummary{TotalFiles: attempted}
	var ratioSum float64

	for _, r := range results {
		if r == nil || !r.Success {
			continue
		}
		s.SuccessfulFiles++
		s.TotalOriginalSize += r.OriginalSize
		s.TotalCompressedSize += ClampSize(r.CompressedSize, r.OriginalSize)
		ratioSum += ClampPercent(r.CompressionRatio)
	}

	s.FailedFiles = attempted - s.SuccessfulFiles
	if s.FailedFiles < 0 {
		s.FailedFiles = 0
	}
	s.TotalSavedSpace = s.TotalOriginalSize - s.TotalCompressedSize
	if s.SuccessfulFiles > 0 {
		s.AverageRatio = ratioSum / float64(s.SuccessfulFiles)
	}
	return s
}
