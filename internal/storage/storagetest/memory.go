// Package storagetest cung cấp ObjectStore trong bộ nhớ cho unit test.
package storagetest

import (
	"bytes"
	"context"
	"io"
	"sync"

	"film_camp/internal/storage"
)

// MemoryStore ghi object vào map
type MemoryStore struct {
	mu        sync.Mutex
	Objects   map[string][]byte
	Deleted   []string
	Uploads   int
	UploadErr error
	DeleteErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Objects: map[string][]byte{}}
}

func (m *MemoryStore) Upload(_ context.Context, objectPath, contentType string, r io.Reader, size int64, progress storage.ProgressFunc) (*storage.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Uploads++
	if m.UploadErr != nil {
		return nil, m.UploadErr
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, r)
	if err != nil {
		return nil, err
	}
	if progress != nil {
		progress(n, size)
	}
	m.Objects[objectPath] = buf.Bytes()
	return &storage.Object{
		Path:        objectPath,
		URL:         storage.DownloadURL("http://storage.test", "bucket", objectPath, "tok"),
		ContentType: contentType,
		Size:        n,
	}, nil
}

func (m *MemoryStore) Delete(_ context.Context, objectPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, objectPath)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.Objects, objectPath)
	return nil
}
