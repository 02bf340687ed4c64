package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const memoryURLPrefix = "memory://"

// MemoryStorage keeps uploads in process. It is used when no bucket is
// configured.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string][]byte)}
}

func (m *MemoryStorage) UploadImage(ctx context.Context, file io.Reader, contentType, folder string) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %v", err)
	}

	name := ObjectName(folder, contentType, time.Now())
	m.mu.Lock()
	m.objects[name] = data
	m.mu.Unlock()

	return memoryURLPrefix + name, nil
}

func (m *MemoryStorage) DeleteFile(ctx context.Context, fileURL string) error {
	name := strings.TrimPrefix(fileURL, memoryURLPrefix)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[name]; !ok {
		return fmt.Errorf("file %s not found", fileURL)
	}
	delete(m.objects, name)
	return nil
}

// Object returns the stored bytes for a URL returned by UploadImage.
func (m *MemoryStorage) Object(fileURL string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[strings.TrimPrefix(fileURL, memoryURLPrefix)]
	return data, ok
}

func (m *MemoryStorage) Close() error {
	return nil
}
