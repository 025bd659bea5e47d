package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"coursehub/config"
)

// ScreenshotStore persists proof-of-transfer images. It is a black box to
// the engine: one upload call that must complete or the whole submission
// fails.
type ScreenshotStore interface {
	// Save stores the image and returns an opaque reference to it.
	Save(paymentID, filename string, r io.Reader) (string, error)
}

// DiskScreenshotStore writes screenshots under a local directory.
type DiskScreenshotStore struct {
	dir string
}

// NewDiskScreenshotStore returns a store rooted at dir (falls back to the
// configured screenshot directory when empty).
func NewDiskScreenshotStore(dir string) *DiskScreenshotStore {
	if dir == "" {
		dir = config.AppConfig.ScreenshotDir
	}
	return &DiskScreenshotStore{dir: dir}
}

func (s *DiskScreenshotStore) Save(paymentID, filename string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating screenshot directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
	default:
		ext = ".png"
	}

	name := paymentID + ext
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("error creating screenshot file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("error writing screenshot: %w", err)
	}

	return name, nil
}
