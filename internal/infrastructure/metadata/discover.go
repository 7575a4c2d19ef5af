package metadata

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zjrosen/runmanager/internal/log"
)

// Discover returns the sorted names of root's sub-directories that contain infoFile.
func Discover(root, infoFile string) ([]string, error) {
	if infoFile == "" {
		infoFile = DefaultInfoFile
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("scanning collection root: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		stat, err := os.Stat(filepath.Join(root, entry.Name(), infoFile))
		if err != nil || stat.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}

	log.Debug(log.CatCollection, "discovered datasets", "root", root, "count", len(names))
	return names, nil
}
