package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// TextSuffix is appended to the source path to name its saved text.
const TextSuffix = ".txt"

// LocalStorage implements TextStore using the local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a text store. With an empty basePath the text is
// written next to each source file; otherwise all entries go to basePath.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if basePath != "" {
		if err := os.MkdirAll(basePath, 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	return &LocalStorage{basePath: basePath}, nil
}

// Path returns the saved-text path for source
func (s *LocalStorage) Path(source string) string {
	if s.basePath == "" {
		return source + TextSuffix
	}
	return filepath.Join(s.basePath, sanitizeFilename(filepath.ToSlash(filepath.Clean(source)))+TextSuffix)
}

// SaveText stores text for source; an existing entry is left untouched
func (s *LocalStorage) SaveText(ctx context.Context, source, text string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	path := s.Path(source)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create text file: %w", err)
	}

	if _, err := f.WriteString(text); err != nil {
		f.Close()
		os.Remove(path) // Cleanup on error
		return false, fmt.Errorf("failed to write text file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return false, fmt.Errorf("failed to close text file: %w", err)
	}

	return true, nil
}

// LoadText returns the saved text for source
func (s *LocalStorage) LoadText(ctx context.Context, source string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(s.Path(source))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, source)
		}
		return "", fmt.Errorf("failed to read text file: %w", err)
	}

	return string(data), nil
}

// sanitizeFilename flattens a source path into a single file name
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"..", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return replacer.Replace(name)
}
