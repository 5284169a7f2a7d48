package repositories

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"papertube-compress/internal/domain/entities"
)

// MemoryBlobStore выдает дескрипторы вида blob:<uuid> на исходные файлы.
// Каждый дескриптор освобождается ровно один раз.
type MemoryBlobStore struct {
	mu      sync.Mutex
	live    map[string]string
	revoked map[string]int
}

// NewMemoryBlobStore создает хранилище дескрипторов
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{
		live:    make(map[string]string),
		revoked: make(map[string]int),
	}
}

// Create регистрирует путь и возвращает новый дескриптор
func (s *MemoryBlobStore) Create(path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	handle := "blob:" + uuid.NewString()
	s.live[handle] = path
	return handle, nil
}

// Resolve возвращает путь по живому дескриптору
func (s *MemoryBlobStore) Resolve(handle string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if path, ok := s.live[handle]; ok {
		return path, nil
	}
	if _, ok := s.revoked[handle]; ok {
		return "", fmt.Errorf("%s: %w", handle, entities.ErrHandleRevoked)
	}
	return "", fmt.Errorf("%s: %w", handle, entities.ErrHandleNotFound)
}

// Revoke освобождает дескриптор; повторное освобождение - ошибка
func (s *MemoryBlobStore) Revoke(handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.live[handle]; !ok {
		if _, done := s.revoked[handle]; done {
			s.revoked[handle]++
			return fmt.Errorf("%s: %w", handle, entities.ErrHandleRevoked)
		}
		return fmt.Errorf("%s: %w", handle, entities.ErrHandleNotFound)
	}

	delete(s.live, handle)
	s.revoked[handle] = 1
	return nil
}

// RevokeCount сколько раз запрашивалось освобождение дескриптора
func (s *MemoryBlobStore) RevokeCount(handle string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revoked[handle]
}

// Live число неосвобожденных дескрипторов
func (s *MemoryBlobStore) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}
