package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"shelftrack/pkg/logger"
)

// Store persists uploaded assets and addresses them by an opaque reference.
type Store interface {
	Save(filename string, content io.Reader) (string, error)
	Remove(ref string) error
}

// DiskStore keeps assets under root, mirroring a public uploads disk.
type DiskStore struct {
	root   string
	logger logger.Logger
}

func NewDiskStore(root string, log logger.Logger) (*DiskStore, error) {
	if err := os.MkdirAll(filepath.Join(root, "covers"), 0o755); err != nil {
		return nil, fmt.Errorf("could not create storage directory: %w", err)
	}

	return &DiskStore{root: root, logger: log}, nil
}

// Save writes the content under a fresh name, keeping only the original
// extension, and returns the reference to store on the record.
func (s *DiskStore) Save(filename string, content io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	ref := filepath.ToSlash(filepath.Join("covers", uuid.NewString()+ext))

	f, err := os.Create(filepath.Join(s.root, filepath.FromSlash(ref)))
	if err != nil {
		return "", fmt.Errorf("could not create asset file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("could not write asset file: %w", err)
	}

	return ref, nil
}

// Remove deletes the asset behind ref. Missing files are not an error; the
// record already forgot them.
func (s *DiskStore) Remove(ref string) error {
	if ref == "" {
		return nil
	}

	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(ref)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not remove asset file: %w", err)
	}

	return nil
}
