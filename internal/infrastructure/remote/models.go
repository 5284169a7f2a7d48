package remote

// fileData файл в ответе сервиса сжатия
type fileData struct {
	OriginalName     string   `json:"originalName"`
	CompressedName   string   `json:"compressedName,omitempty"`
	OriginalSize     int64    `json:"originalSize"`
	CompressedSize   *int64   `json:"compressedSize,omitempty"`
	CompressionRatio *float64 `json:"compressionRatio,omitempty"`
	CompressionLevel string   `json:"compressionLevel,omitempty"`
	FileData         string   `json:"fileData,omitempty"`
	Error            string   `json:"error,omitempty"`
	Details          string   `json:"details,omitempty"`
}

// compressResponse ответ POST /pdf/compress
type compressResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Data    fileData `json:"data"`
}

// batchSummary сводка пакетного ответа
type batchSummary struct {
	TotalFiles          int     `json:"totalFiles"`
	SuccessfulFiles     int     `json:"successfulFiles"`
	FailedFiles         int     `json:"failedFiles"`
	TotalOriginalSize   int64   `json:"totalOriginalSize"`
	TotalCompressedSize int64   `json:"totalCompressedSize"`
	AverageRatio        float64 `json:"averageCompressionRatio"`
}

// batchResponse ответ POST /pdf/compress/batch
type batchResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    struct {
		Files   []fileData   `json:"files"`
		Summary batchSummary `json:"summary"`
	} `json:"data"`
}
