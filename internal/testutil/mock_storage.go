// mock_storage.go - In-memory record stores for testing
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/photo-diary/backend/internal/models"
	"github.com/photo-diary/backend/internal/storage"
)

// MockRecordStore implements storage.RecordStore in memory.
type MockRecordStore struct {
	mu     sync.RWMutex
	photos []models.Photo

	// SaveErr, when set, is returned (wrapped in storage.ErrStoreUnwritable) by Save and Append.
	SaveErr error
}

var _ storage.RecordStore = (*MockRecordStore)(nil)

// NewMockRecordStore creates a store seeded with photos.
func NewMockRecordStore(photos ...models.Photo) *MockRecordStore {
	return &MockRecordStore{photos: append([]models.Photo(nil), photos...)}
}

func (m *MockRecordStore) Load(ctx context.Context) []models.Photo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Photo, len(m.photos))
	copy(out, m.photos)
	return out
}

func (m *MockRecordStore) Save(ctx context.Context, photos []models.Photo) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil {
		return fmt.Errorf("%w: %v", storage.ErrStoreUnwritable, m.SaveErr)
	}
	m.photos = append([]models.Photo(nil), photos...)
	return nil
}

func (m *MockRecordStore) Append(ctx context.Context, photo models.Photo) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil {
		return fmt.Errorf("%w: %v", storage.ErrStoreUnwritable, m.SaveErr)
	}
	m.photos = append(m.photos, photo)
	return nil
}

// Len returns the number of stored records.
func (m *MockRecordStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.photos)
}

// FixedRand always returns Index, clamped into [0, n).
type FixedRand struct {
	Index int
}

func (r FixedRand) IntN(n int) int {
	if r.Index >= n {
		return n - 1
	}
	return r.Index
}
