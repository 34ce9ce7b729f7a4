package series

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dicomviewer/internal/models"
)

// ReadDir reads every regular, non-hidden file of dir as a flat batch.
// Subdirectories are ignored; order is left to the builder.
func ReadDir(dir string) ([]models.SourceFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}

	var files []models.SourceFile
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		files = append(files, models.SourceFile{Name: entry.Name(), Data: data})
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files found in %s", dir)
	}
	return files, nil
}
