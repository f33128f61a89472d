package logging

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Rotation limits for the state directory log file.
const (
	DefaultMaxLogBytes = 10 << 20
	DefaultKeepLogs    = 3
)

// RotateIfLarge shifts path to path.1 (path.1 to path.2, and so on) once it
// reaches maxBytes, keeping at most keep rotated generations. A missing file
// or a non-positive maxBytes is a no-op.
func RotateIfLarge(path string, maxBytes int64, keep int) error {
	path = strings.TrimSpace(path)
	if path == "" || maxBytes <= 0 {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat log file: %w", err)
	}
	if info.Size() < maxBytes {
		return nil
	}
	if keep < 1 {
		keep = 1
	}

	oldest := generation(path, keep)
	if err := os.Remove(oldest); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", oldest, err)
	}
	for n := keep - 1; n >= 1; n-- {
		from := generation(path, n)
		if err := os.Rename(from, generation(path, n+1)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("rotate %s: %w", from, err)
		}
	}
	if err := os.Rename(path, generation(path, 1)); err != nil {
		return fmt.Errorf("rotate %s: %w", path, err)
	}
	return nil
}

func generation(path string, n int) string {
	return fmt.Sprintf("%s.%d", path, n)
}
