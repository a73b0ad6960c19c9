// Package security guards the files users hand to the CLI and the container:
// catalog definitions, custom schedules and exports.
package security

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MaxDocumentSize caps catalog and schedule files.
const MaxDocumentSize = 1 << 20

// ErrTooLarge is returned when a document exceeds MaxDocumentSize.
var ErrTooLarge = errors.New("file exceeds maximum document size")

var forbidden = []string{";", "&", "|", "$", "`", "<", ">", "\n", "\r", "\x00"}

// CleanPath rejects shell metacharacters, makes path absolute and resolves
// symlinks when the file exists.
func CleanPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("file path cannot be empty")
	}
	for _, c := range forbidden {
		if strings.Contains(path, c) {
			return "", fmt.Errorf("file path contains forbidden character %q", c)
		}
	}

	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	switch {
	case err == nil:
		return resolved, nil
	case errors.Is(err, os.ErrNotExist):
		return abs, nil
	default:
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}
}

// ReadDocument reads a validated path, refusing directories and files larger
// than MaxDocumentSize.
func ReadDocument(path string) ([]byte, error) {
	clean, err := CleanPath(path)
	if err != nil {
		return nil, err
	}
	// #nosec G304 - path is validated above
	f, err := os.Open(clean)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", clean)
	}

	data, err := io.ReadAll(io.LimitReader(f, MaxDocumentSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxDocumentSize {
		return nil, fmt.Errorf("%s: %w", clean, ErrTooLarge)
	}
	return data, nil
}

// WriteDocument writes data to a validated path. Parent directories must exist.
func WriteDocument(path string, data []byte) error {
	clean, err := CleanPath(path)
	if err != nil {
		return err
	}
	// #nosec G306 - exported catalogs are meant to be shared
	return os.WriteFile(clean, data, 0o644)
}
