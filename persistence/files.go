package persistence

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// SaveToFile writes a file atomically: the content goes to a temp file in
// the same directory, which is fsynced and renamed over the target.
func SaveToFile(filename string, writeFunc func(io.Writer) error) error {
	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	// Write to a temp file in the same directory to ensure rename is atomic.
	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	// Match typical file permissions (best-effort).
	_ = tmp.Chmod(0644)

	// Use buffered writer to batch writes (critical for performance)
	buf := bufio.NewWriterSize(tmp, 256*1024) // 256KB buffer
	if err := writeFunc(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// Atomically replace target.
	if err := os.Rename(tmpName, filename); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}

// SaveStore writes a document store file atomically. The writeFunc receives
// the store writer and adds documents to it; header, index, and footer are
// handled here.
func SaveStore(filename string, writeFunc func(*StoreWriter) error, optFns ...func(*StoreWriterOptions)) error {
	return SaveToFile(filename, func(w io.Writer) error {
		sw, err := NewStoreWriter(w, optFns...)
		if err != nil {
			return err
		}
		if err := writeFunc(sw); err != nil {
			return err
		}
		return sw.Close()
	})
}

// LoadStore reads a store file fully into memory and opens it. For large
// stores prefer OpenStore, which memory-maps the file instead.
func LoadStore(filename string) (*StoreReader, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return OpenStoreBytes(data)
}

// AtomicSaveToDir saves multiple files atomically to a directory.
// All files are written to temp files first, then renamed together.
// This ensures either all files are saved or none are.
//
// Usage:
//
//	err := persistence.AtomicSaveToDir("/path/to/index", map[string]func(io.Writer) error{
//	    "store.bin":   func(w io.Writer) error { return writeStore(w) },
//	    "columns.bin": func(w io.Writer) error { return writeColumns(w) },
//	})
func AtomicSaveToDir(dir string, files map[string]func(io.Writer) error) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("persistence: failed to create directory %s: %w", dir, err)
	}

	// Track temp files for cleanup on error
	tempFiles := make([]string, 0, len(files))
	defer func() {
		for _, tmp := range tempFiles {
			_ = os.Remove(tmp)
		}
	}()

	type fileMapping struct {
		temp   string
		target string
	}
	mappings := make([]fileMapping, 0, len(files))

	for filename, writeFunc := range files {
		target := filepath.Join(dir, filename)

		// Create temp file in same directory for atomic rename
		tmp, err := os.CreateTemp(dir, filename+".tmp-*")
		if err != nil {
			return fmt.Errorf("persistence: failed to create temp file for %s: %w", filename, err)
		}
		tempFiles = append(tempFiles, tmp.Name())

		if err := writeFunc(tmp); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("persistence: failed to write %s: %w", filename, err)
		}

		if err := tmp.Sync(); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("persistence: failed to sync %s: %w", filename, err)
		}
		if err := tmp.Close(); err != nil {
			return fmt.Errorf("persistence: failed to close %s: %w", filename, err)
		}

		mappings = append(mappings, fileMapping{temp: tmp.Name(), target: target})
	}

	// Rename all temp files to final names (atomic on most filesystems)
	for _, m := range mappings {
		if err := os.Rename(m.temp, m.target); err != nil {
			return fmt.Errorf("persistence: failed to rename %s: %w", m.target, err)
		}
	}

	// Rename succeeded; nothing left to clean up.
	tempFiles = tempFiles[:0]

	// Best-effort: fsync the directory so the renames are durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}
