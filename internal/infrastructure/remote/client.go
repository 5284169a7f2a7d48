package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"papertube-compress/internal/domain/entities"
	"papertube-compress/internal/domain/repositories"
)

const maxResponseBytes = 512 * 1024 * 1024

// Client HTTP клиент удаленного сервиса сжатия PDF
type Client struct {
	httpClient    *http.Client
	baseURL       string
	healthTimeout time.Duration
	singleTimeout time.Duration
	batchTimeout  time.Duration
}

// NewClient создает клиент по настройкам сервиса
func NewClient(httpClient *http.Client, cfg entities.ServiceConfig) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        16,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return &Client{
		httpClient:    httpClient,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		healthTimeout: cfg.HealthTimeout(),
		singleTimeout: cfg.SingleTimeout(),
		batchTimeout:  cfg.BatchTimeout(),
	}
}

// Health проверяет доступность сервиса: GET /pdf/health
func (c *Client) Health(ctx context.Context) error {
	const op = "health"

	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/pdf/health", nil)
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classify(op, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return entities.NewNetworkFailure(op, entities.FailureStatus, resp.StatusCode,
			fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}
	return nil
}

// Compress отправляет один файл: POST /pdf/compress
func (c *Client) Compress(ctx context.Context, file repositories.UploadFile, level entities.CompressionLevel) (*entities.CompressionResult, error) {
	const op = "compress"

	ctx, cancel := context.WithTimeout(ctx, c.singleTimeout)
	defer cancel()

	src, err := os.Open(file.Path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла %s: %w", file.Name, err)
	}
	defer src.Close()

	body, contentType := multipartBody(func(mw *multipart.Writer) error {
		if err := copyFilePart(mw, "pdf", file.Name, src); err != nil {
			return err
		}
		if err := mw.WriteField("compressionLevel", string(level)); err != nil {
			return err
		}
		return mw.WriteField("fileName", file.Name)
	})

	var payload compressResponse
	if err := c.post(ctx, op, "/pdf/compress", body, contentType, &payload); err != nil {
		return nil, err
	}
	if !payload.Success {
		return nil, entities.NewNetworkFailure(op, entities.FailureService, 0, errors.New(serviceMessage(payload.Message)))
	}

	result := toResult(payload.Data, file, level)
	if !result.Success {
		return nil, entities.NewNetworkFailure(op, entities.FailureService, 0, result.Error)
	}
	return result, nil
}

// CompressBatch отправляет все файлы одним запросом: POST /pdf/compress/batch.
// Записи с полем error возвращаются как неуспешные результаты.
func (c *Client) CompressBatch(ctx context.Context, files []repositories.UploadFile, level entities.CompressionLevel) ([]*entities.CompressionResult, error) {
	const op = "compress batch"

	ctx, cancel := context.WithTimeout(ctx, c.batchTimeout)
	defer cancel()

	sources := make([]*os.File, 0, len(files))
	defer func() {
		for _, f := range sources {
			f.Close()
		}
	}()
	for _, file := range files {
		src, err := os.Open(file.Path)
		if err != nil {
			return nil, fmt.Errorf("ошибка открытия файла %s: %w", file.Name, err)
		}
		sources = append(sources, src)
	}

	body, contentType := multipartBody(func(mw *multipart.Writer) error {
		for i, file := range files {
			if err := copyFilePart(mw, "pdfs", file.Name, sources[i]); err != nil {
				return err
			}
		}
		return mw.WriteField("compressionLevel", string(level))
	})

	var payload batchResponse
	if err := c.post(ctx, op, "/pdf/compress/batch", body, contentType, &payload); err != nil {
		return nil, err
	}
	if !payload.Success {
		return nil, entities.NewNetworkFailure(op, entities.FailureService, 0, errors.New(serviceMessage(payload.Message)))
	}

	return matchBatch(payload.Data.Files, files, level), nil
}

// post выполняет запрос и декодирует JSON ответ
func (c *Client) post(ctx context.Context, op, path string, body io.ReadCloser, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		body.Close()
		return fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classify(op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return classify(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return entities.NewNetworkFailure(op, entities.FailureStatus, resp.StatusCode,
			fmt.Errorf("service returned: %s", truncate(string(respBody), 200)))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return entities.NewNetworkFailure(op, entities.FailureDecode, resp.StatusCode, err)
	}
	return nil
}

// multipartBody потоково формирует multipart тело через pipe
func multipartBody(write func(*multipart.Writer) error) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := write(mw)
		if err == nil {
			err = mw.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	return pr, mw.FormDataContentType()
}

func copyFilePart(mw *multipart.Writer, field, name string, src io.Reader) error {
	part, err := mw.CreateFormFile(field, name)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, src)
	return err
}

// matchBatch сопоставляет записи ответа с отправленными файлами:
// сначала по позиции, при несовпадении имени - по первому свободному совпадению имени.
func matchBatch(entries []fileData, files []repositories.UploadFile, level entities.CompressionLevel) []*entities.CompressionResult {
	used := make([]bool, len(files))
	results := make([]*entities.CompressionResult, 0, len(entries))

	for i, entry := range entries {
		idx := -1
		if i < len(files) && !used[i] && files[i].Name == entry.OriginalName {
			idx = i
		} else {
			for j := range files {
				if !used[j] && files[j].Name == entry.OriginalName {
					idx = j
					break
				}
			}
		}
		if idx < 0 {
			continue
		}
		used[idx] = true
		results = append(results, toResult(entry, files[idx], level))
	}
	return results
}

func toResult(d fileData, file repositories.UploadFile, level entities.CompressionLevel) *entities.CompressionResult {
	result := &entities.CompressionResult{
		FileID:         file.FileID,
		OriginalName:   file.Name,
		CompressedName: d.CompressedName,
		OriginalSize:   d.OriginalSize,
		Level:          level,
		FileData:       d.FileData,
	}
	if result.OriginalSize == 0 {
		result.OriginalSize = file.Size
	}
	if d.CompressionLevel != "" {
		if parsed, err := entities.ParseLevel(d.CompressionLevel); err == nil {
			result.Level = parsed
		}
	}

	if d.Error != "" || d.CompressedSize == nil {
		msg := d.Error
		if msg == "" {
			msg = "в ответе нет размера сжатого файла"
		}
		if d.Details != "" {
			msg += ": " + d.Details
		}
		result.Error = errors.New(msg)
		return result
	}

	result.Success = true
	result.CompressedSize = *d.CompressedSize
	if d.CompressionRatio != nil {
		result.CompressionRatio = *d.CompressionRatio
		result.SavedSpace = result.OriginalSize - result.CompressedSize
	} else {
		result.CalculateCompressionRatio()
	}
	return result
}

// classify раскладывает ошибки транспорта на таймауты и прочие сбои
func classify(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return entities.NewNetworkFailure(op, entities.FailureTimeout, 0, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return entities.NewNetworkFailure(op, entities.FailureTimeout, 0, err)
	}
	return entities.NewNetworkFailure(op, entities.FailureTransport, 0, err)
}

func serviceMessage(msg string) string {
	if msg == "" {
		return "service reported failure"
	}
	return msg
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
