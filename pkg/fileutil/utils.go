package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// FileExists checks if a regular file exists at the given path
func FileExists(fsys afero.Fs, path string) (bool, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check if file exists: %w", err)
	}
	return !info.IsDir(), nil
}

// DirExists checks if a directory exists at the given path
func DirExists(fsys afero.Fs, path string) (bool, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat directory: %w", err)
	}
	return info.IsDir(), nil
}

// ReadFileString reads a file and returns its contents as a string
func ReadFileString(fsys afero.Fs, path string) (string, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}

// WriteFileString writes content to path. An existing file keeps its permissions;
// a new one is created with ReadWriteUserReadOthers.
func WriteFileString(fsys afero.Fs, path, content string) error {
	perm := fs.FileMode(ReadWriteUserReadOthers)
	if info, err := fsys.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := afero.WriteFile(fsys, path, []byte(content), perm); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// IsYAMLFile reports whether path ends in .yaml or .yml (case-insensitive).
func IsYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ExtYAML || ext == ExtYML
}

// GetAbsPath returns the absolute path of a file
func GetAbsPath(path string) (string, error) {
	if path == "" {
		return "", errors.New("failed to get absolute path: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return abs, nil
}
