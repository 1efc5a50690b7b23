package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/photo-diary/backend/internal/logging"
	"github.com/photo-diary/backend/internal/models"
)

// ErrStoreUnwritable wraps every failure to persist the record list.
var ErrStoreUnwritable = errors.New("photo store unwritable")

// RecordStore persists the ordered list of photo records.
type RecordStore interface {
	// Load returns the persisted records. Missing or corrupt state reads as empty.
	Load(ctx context.Context) []models.Photo
	// Save replaces the persisted records.
	Save(ctx context.Context, photos []models.Photo) error
	// Append adds one record at the end of the list.
	Append(ctx context.Context, photo models.Photo) error
}

// JSONRecordStore keeps the records as a single JSON array file.
// Writers are serialised in-process by mu and across processes by an
// advisory lock on <path>.lock.
type JSONRecordStore struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
	lock   *flock.Flock
}

// NewJSONRecordStore creates a store backed by path, creating its directory.
func NewJSONRecordStore(path string, logger *slog.Logger) (*JSONRecordStore, error) {
	if path == "" {
		return nil, errors.New("records path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating records directory: %w", err)
	}

	return &JSONRecordStore{
		path:   path,
		logger: logging.WithComponent(logger, "records"),
		lock:   flock.New(path + ".lock"),
	}, nil
}

// Path returns the records file location.
func (s *JSONRecordStore) Path() string {
	return s.path
}

// Load reads the records file.
func (s *JSONRecordStore) Load(ctx context.Context) []models.Photo {
	photos, err := s.read()
	if err != nil {
		s.logger.WarnContext(ctx, "photo store unreadable, treating as empty",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return []models.Photo{}
	}
	return photos
}

// Save overwrites the records file atomically.
func (s *JSONRecordStore) Save(ctx context.Context, photos []models.Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("%w: acquire lock: %v", ErrStoreUnwritable, err)
	}
	defer s.unlock(ctx)

	return s.write(photos)
}

// Append loads, extends and saves the list while holding the write lock, so
// concurrent uploads never overwrite each other.
func (s *JSONRecordStore) Append(ctx context.Context, photo models.Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("%w: acquire lock: %v", ErrStoreUnwritable, err)
	}
	defer s.unlock(ctx)

	photos := append(s.Load(ctx), photo)
	if err := s.write(photos); err != nil {
		return err
	}

	s.logger.DebugContext(ctx, "appended photo record",
		slog.String("filename", photo.Filename),
		slog.Int("record_count", len(photos)))
	return nil
}

func (s *JSONRecordStore) unlock(ctx context.Context) {
	if err := s.lock.Unlock(); err != nil {
		s.logger.WarnContext(ctx, "failed to release records lock", slog.String("error", err.Error()))
	}
}

func (s *JSONRecordStore) read() ([]models.Photo, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []models.Photo{}, nil
		}
		return nil, fmt.Errorf("read records file: %w", err)
	}

	if len(data) == 0 {
		return []models.Photo{}, nil
	}

	var photos []models.Photo
	if err := json.Unmarshal(data, &photos); err != nil {
		return nil, fmt.Errorf("parse records file: %w", err)
	}
	if photos == nil {
		photos = []models.Photo{}
	}
	return photos, nil
}

// write replaces the file via a synced temp file and rename.
func (s *JSONRecordStore) write(photos []models.Photo) error {
	if photos == nil {
		photos = []models.Photo{}
	}

	data, err := json.MarshalIndent(photos, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal records: %v", ErrStoreUnwritable, err)
	}

	tmpPath := s.path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrStoreUnwritable, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: write temp file: %v", ErrStoreUnwritable, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: sync temp file: %v", ErrStoreUnwritable, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: close temp file: %v", ErrStoreUnwritable, err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: rename temp file: %v", ErrStoreUnwritable, err)
	}
	return nil
}
