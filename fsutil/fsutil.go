package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CopyFile copies a file from src to dst creating missing directories.
func CopyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return err
	}
	return dstFile.Sync()
}

// CopyTree copies an entire directory tree to dst preserving structure.
// Dot files and dot directories are skipped.
func CopyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel != "." && d.Name()[0] == '.' {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return CopyFile(path, target)
	})
}

// WriteFile writes data to path creating missing directories.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReplaceDir moves staged into place at final. A previous final directory is
// rotated to final+".old" and restored if the swap fails.
func ReplaceDir(staged, final string) error {
	parent := filepath.Dir(final)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("ensure output parent: %w", err)
	}

	backup := final + ".old"
	if err := os.RemoveAll(backup); err != nil {
		return fmt.Errorf("clean backup dir: %w", err)
	}
	if err := os.Rename(final, backup); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("rotate old output: %w", err)
	}
	if err := os.Rename(staged, final); err != nil {
		_ = os.Rename(backup, final)
		return fmt.Errorf("activate new output: %w", err)
	}
	_ = os.RemoveAll(backup)
	return nil
}
