package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// imageExtensions lists the extensions accepted for stored photos.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".avif": true,
}

// DefaultImageExt replaces any extension that is not a recognised image type.
const DefaultImageExt = ".jpg"

// NormalizeExt returns the lower-cased extension of name when it is a
// recognised image type, and ".jpg" otherwise.
func NormalizeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if imageExtensions[ext] {
		return ext
	}
	return DefaultImageExt
}

// IsImageFile reports whether name carries a recognised image extension (case-insensitive).
func IsImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// ImageStore keeps uploaded photo files in a single directory.
type ImageStore struct {
	uploadDir string
}

// NewImageStore creates an ImageStore rooted at uploadDir.
func NewImageStore(uploadDir string) (*ImageStore, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	return &ImageStore{uploadDir: uploadDir}, nil
}

// Dir returns the upload directory.
func (s *ImageStore) Dir() string {
	return s.uploadDir
}

// Save writes r under a generated name that keeps the normalised extension of
// originalName, and returns that name.
func (s *ImageStore) Save(originalName string, r io.Reader) (string, error) {
	name := uuid.New().String() + NormalizeExt(originalName)
	path := filepath.Join(s.uploadDir, name)
	tmpPath := path + ".part"

	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("finalising file: %w", err)
	}

	return name, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *ImageStore) Remove(name string) error {
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("invalid file name: %q", name)
	}

	if err := os.Remove(filepath.Join(s.uploadDir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}

// ListImages returns the names of the image files in the upload directory, sorted.
func (s *ImageStore) ListImages() ([]string, error) {
	entries, err := os.ReadDir(s.uploadDir)
	if err != nil {
		return nil, fmt.Errorf("reading upload directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !IsImageFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}

	sort.Strings(names)
	return names, nil
}
