package ownership

import (
	"context"
	"errors"
	"sync"

	"github.com/ramonehamilton/card-binder/internal/storage/repository"
)

// KeyValueBackend stores the map as one value in a key/value repository.
type KeyValueBackend struct {
	repo repository.KeyValueRepository
	key  string
}

// NewKeyValueBackend stores the map under StorageKey.
func NewKeyValueBackend(repo repository.KeyValueRepository) *KeyValueBackend {
	return &KeyValueBackend{repo: repo, key: StorageKey}
}

func (b *KeyValueBackend) Read(ctx context.Context) ([]byte, error) {
	value, err := b.repo.Get(ctx, b.key)
	if errors.Is(err, repository.ErrKeyNotFound) {
		return nil, ErrNotStored
	}
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

func (b *KeyValueBackend) Write(ctx context.Context, data []byte) error {
	return b.repo.Set(ctx, b.key, string(data))
}

// MemoryBackend keeps the document in memory. Useful for tests and for
// running without a database.
type MemoryBackend struct {
	mu       sync.Mutex
	data     []byte
	stored   bool
	ReadErr  error
	WriteErr error
}

// NewMemoryBackend returns a backend with nothing stored.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// NewMemoryBackendWith returns a backend that already holds data.
func NewMemoryBackendWith(data string) *MemoryBackend {
	return &MemoryBackend{data: []byte(data), stored: true}
}

func (b *MemoryBackend) Read(_ context.Context) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ReadErr != nil {
		return nil, b.ReadErr
	}
	if !b.stored {
		return nil, ErrNotStored
	}
	return append([]byte(nil), b.data...), nil
}

func (b *MemoryBackend) Write(_ context.Context, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.WriteErr != nil {
		return b.WriteErr
	}
	b.data = append([]byte(nil), data...)
	b.stored = true
	return nil
}

// Contents returns the last written document.
func (b *MemoryBackend) Contents() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.data)
}
