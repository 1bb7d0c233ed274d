// Package filex contains small filesystem helpers used by the client.
package filex

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// EnsureDir creates dir (and parents) if it does not exist yet and
// returns the absolute path.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}
	return abs, nil
}

// LoadOrCreateSecret reads the device secret from path, creating a new
// random one (size bytes, mode 0600) on first use.
func LoadOrCreateSecret(path string, size int) ([]byte, error) {
	secret, err := os.ReadFile(path)
	if err == nil {
		if len(secret) != size {
			return nil, fmt.Errorf("secret file %s has unexpected size %d", path, len(secret))
		}
		return secret, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read secret %s: %w", path, err)
	}

	secret = make([]byte, size)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, secret, 0o600); err != nil {
		return nil, fmt.Errorf("write secret %s: %w", path, err)
	}
	return secret, nil
}
