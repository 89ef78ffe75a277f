package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"
)

var ErrBlobNotFound = errors.New("blob not found")

// MemoryStore is an in-process image store used when mongo is not configured and in tests.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (v *MemoryStore) Put(ctx context.Context, filename, contentType string, r io.Reader) (string, int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	id := uuid.NewString()
	v.mu.Lock()
	v.blobs[id] = data
	v.mu.Unlock()
	return id, int64(len(data)), nil
}

func (v *MemoryStore) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	v.mu.RLock()
	data, ok := v.blobs[id]
	v.mu.RUnlock()
	if !ok {
		return nil, ErrBlobNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (v *MemoryStore) Delete(ctx context.Context, id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.blobs[id]; !ok {
		return ErrBlobNotFound
	}
	delete(v.blobs, id)
	return nil
}

func (v *MemoryStore) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.blobs)
}
