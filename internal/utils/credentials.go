package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteCredentialFile writes inline credential content (a CA certificate, a
// service account key) to dir/name with owner-only permissions and returns
// the file path. Empty content writes nothing and returns "".
func WriteCredentialFile(dir, name, content string) (string, error) {
	if content == "" {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create credentials directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("failed to write credential file %s: %w", path, err)
	}
	return path, nil
}
