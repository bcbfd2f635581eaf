package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// EnsureConfigExists writes the config template to configPath unless a file
// is already there. created reports whether the template was written. The
// file may hold an API key, so it is only readable by the owner.
func EnsureConfigExists(configPath string) (created bool, err error) {
	_, err = os.Stat(configPath)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(configPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(configTemplate); err != nil {
		return false, fmt.Errorf("failed to write config template: %w", err)
	}
	return true, f.Close()
}
