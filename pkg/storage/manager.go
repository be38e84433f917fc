package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	filePrefix = "image_"
	fileExt    = ".jpg"
)

// Manager handles the output directory and sequential image files
type Manager struct {
	outputDir string
}

// NewManager creates a storage manager for dir. It does not touch the disk.
func NewManager(outputDir string) *Manager {
	return &Manager{outputDir: outputDir}
}

// Reset deletes the output directory recursively, if it exists, and
// recreates it empty
func (m *Manager) Reset() error {
	if err := os.RemoveAll(m.outputDir); err != nil {
		return fmt.Errorf("failed to remove output directory: %w", err)
	}
	if err := os.MkdirAll(m.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// FileName returns the file name used for a 1-based index
func FileName(index int) string {
	return filePrefix + strconv.Itoa(index) + fileExt
}

// ImagePath returns the full path for a 1-based index
func (m *Manager) ImagePath(index int) string {
	return filepath.Join(m.outputDir, FileName(index))
}

// SaveImage writes r to image_<index>.jpg and returns the path and byte count
func (m *Manager) SaveImage(index int, r io.Reader) (string, int64, error) {
	if index < 1 {
		return "", 0, fmt.Errorf("invalid image index %d", index)
	}

	filename := m.ImagePath(index)
	tempFile := filename + ".tmp"

	out, err := os.Create(tempFile)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temporary file: %w", err)
	}

	written, err := io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return "", 0, fmt.Errorf("failed to save image data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return "", 0, fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return "", 0, fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return filename, written, nil
}

// List returns the image files currently in the output directory, ordered by index
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	type indexed struct {
		index int
		name  string
	}
	var files []indexed
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileExt) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileExt))
		if err != nil {
			continue
		}
		files = append(files, indexed{index: n, name: name})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].index < files[j].index })

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = filepath.Join(m.outputDir, f.name)
	}
	return paths, nil
}
