package repositories

import (
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"papertube-compress/internal/domain/entities"
)

// FileSystemRepository реализация репозитория для работы с файловой системой
type FileSystemRepository struct{}

// NewFileSystemRepository создает новый репозиторий файловой системы
func NewFileSystemRepository() *FileSystemRepository {
	return &FileSystemRepository{}
}

// GetFileInfo получает информацию о файле: размер, MIME тип по содержимому и число страниц
func (r *FileSystemRepository) GetFileInfo(path string) (*entities.PDFDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s: %w", path, entities.ErrInvalidFileType)
	}

	mimeType, err := sniffMimeType(path)
	if err != nil {
		return nil, err
	}

	doc := &entities.PDFDocument{
		Path:     path,
		Size:     info.Size(),
		MimeType: mimeType,
	}

	// Число страниц не обязательно: битый PDF все равно можно отправить на сервер
	if mimeType == entities.PDFMimeType && doc.Size <= entities.MaxFileSize {
		if pages, err := api.PageCountFile(path); err == nil {
			doc.Pages = pages
		}
	}

	return doc, nil
}

// FileExists проверяет существование файла
func (r *FileSystemRepository) FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// CreateDirectory создает директорию
func (r *FileSystemRepository) CreateDirectory(path string) error {
	return os.MkdirAll(path, 0755)
}

// ListPDFFiles возвращает список PDF файлов в директории и всех подпапках
func (r *FileSystemRepository) ListPDFFiles(directory string) ([]string, error) {
	var pdfFiles []string

	err := filepath.WalkDir(directory, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ".pdf") {
			pdfFiles = append(pdfFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(pdfFiles)
	return pdfFiles, nil
}

// SaveFile атомарно записывает данные в directory/name через временный файл
func (r *FileSystemRepository) SaveFile(directory, name string, data []byte) (string, error) {
	if err := r.CreateDirectory(directory); err != nil {
		return "", fmt.Errorf("ошибка создания директории %s: %w", directory, err)
	}

	target := filepath.Join(directory, filepath.Base(name))

	tmp, err := os.CreateTemp(directory, ".download-*.tmp")
	if err != nil {
		return "", fmt.Errorf("не удалось создать временный файл: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("ошибка записи файла: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("ошибка записи файла: %w", err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("не удалось переименовать временный файл: %w", err)
	}

	return target, nil
}

// sniffMimeType определяет тип по первым 512 байтам
func sniffMimeType(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}

	mimeType := http.DetectContentType(buf[:n])
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return mimeType, nil
}
