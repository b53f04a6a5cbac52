package card

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/zombor/card-reader/internal/imaging"
)

// ImageStorage keeps the cleaned card images of each read
type ImageStorage interface {
	// SaveImage stores img as a PNG under name and returns the stored path
	SaveImage(name string, img image.Image) (string, error)

	// Get retrieves a stored image's PNG bytes
	Get(path string) ([]byte, error)

	// Delete removes a stored image
	Delete(path string) error
}

// LocalStorage implements ImageStorage on the local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new LocalStorage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
	}, nil
}

// SaveImage encodes img as PNG and writes it under the storage directory
func (l *LocalStorage) SaveImage(name string, img image.Image) (string, error) {
	path, err := l.resolve(name)
	if err != nil {
		return "", err
	}
	data, err := imaging.EncodePNG(img)
	if err != nil {
		return "", fmt.Errorf("encoding image: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	return name, nil
}

// Get retrieves an image from local storage
func (l *LocalStorage) Get(name string) ([]byte, error) {
	path, err := l.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

// Delete removes an image from local storage
func (l *LocalStorage) Delete(name string) error {
	path, err := l.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}

// resolve keeps every stored name inside the storage directory
func (l *LocalStorage) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid image name %q", name)
	}
	return filepath.Join(l.basePath, name), nil
}
