package library

import (
	"fmt"
	"os"
	"path/filepath"
)

// Clear removes every stored track by deleting root and recreating it empty.
func Clear(root string) error {
	root = filepath.Clean(root)
	if root == "" || root == "." || root == filepath.Dir(root) {
		return fmt.Errorf("refusing to clear %q", root)
	}
	if home, err := os.UserHomeDir(); err == nil && filepath.Clean(home) == root {
		return fmt.Errorf("refusing to clear home directory %q", root)
	}
	if err := os.RemoveAll(root); err != nil {
		return fmt.Errorf("remove library root: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("recreate library root: %w", err)
	}
	return nil
}
