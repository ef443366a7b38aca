package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DiscoverInputs lists the files directly under dir whose extension
// matches ext (e.g. ".txt"). It does not recurse, and the order of the
// result is whatever the filesystem reports.
func DiscoverInputs(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}
