// Package fsio provides the single atomic-write path every produced artifact
// (page HTML, index HTML, copied static asset) goes through.
package fsio

import (
	"os"
	"path/filepath"

	"github.com/tmoreland/bookweave/internal/core/entities"
)

// WriteFile writes data to path, creating parent directories as needed.
// The write goes to a temp file in the same directory followed by a rename,
// so a reader never observes a partially written file — though no
// atomicity is promised across the output tree as a whole.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &entities.IoError{Op: "mkdir", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return &entities.IoError{Op: "create", Path: dir, Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &entities.IoError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &entities.IoError{Op: "write", Path: path, Err: err}
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return &entities.IoError{Op: "chmod", Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &entities.IoError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

// CopyFile copies src to dst byte-for-byte through WriteFile, used by the
// Asset Copier to mirror static files into the output root.
func CopyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return &entities.IoError{Op: "read", Path: src, Err: err}
	}
	info, err := os.Stat(src)
	perm := os.FileMode(0o644)
	if err == nil {
		perm = info.Mode().Perm()
	}
	return WriteFile(dst, data, perm)
}
