package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"sync"
)

// MockMediaHost is a mock implementation of MediaHost for testing
type MockMediaHost struct {
	uploaded  map[string][]byte // map of public URL to file content
	deleted   []string
	uploadErr error
	seq       int
	mu        sync.RWMutex
}

// NewMockMediaHost creates a new mock media host
func NewMockMediaHost() *MockMediaHost {
	return &MockMediaHost{
		uploaded: make(map[string][]byte),
	}
}

// FailUploads makes every following Upload return err; nil restores success
func (m *MockMediaHost) FailUploads(err error) {
	m.mu.Lock()
	m.uploadErr = err
	m.mu.Unlock()
}

// Upload simulates uploading a photo
func (m *MockMediaHost) Upload(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	m.mu.RLock()
	uploadErr := m.uploadErr
	m.mu.RUnlock()
	if uploadErr != nil {
		return "", uploadErr
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	url := fmt.Sprintf("https://media.test/%d_%s", m.seq, fileHeader.Filename)
	m.uploaded[url] = content
	return url, nil
}

// Delete simulates deleting a photo
func (m *MockMediaHost) Delete(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}

	m.mu.Lock()
	delete(m.uploaded, url)
	m.deleted = append(m.deleted, url)
	m.mu.Unlock()
	return nil
}

// Exists checks if a photo is currently stored
func (m *MockMediaHost) Exists(url string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.uploaded[url]
	return ok
}

// Deleted returns the URLs passed to Delete, in order
func (m *MockMediaHost) Deleted() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.deleted...)
}

// Count returns how many photos are stored
func (m *MockMediaHost) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.uploaded)
}
