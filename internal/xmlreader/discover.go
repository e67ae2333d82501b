package xmlreader

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gmorong/fias-ingest/internal/ingesterr"
)

// FindFiles returns every .XML file under root and root/regionCode
// whose basename contains pattern, case-insensitively, per spec.md
// §4.1. regionCode may be empty, in which case only root is searched.
func FindFiles(root, pattern, regionCode string) ([]string, error) {
	dirs := []string{root}
	if regionCode != "" {
		dirs = append(dirs, filepath.Join(root, regionCode))
	}

	pattern = strings.ToUpper(pattern)
	var matches []string

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, ingesterr.Source("xmlreader.FindFiles", err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := e.Name()
			upper := strings.ToUpper(name)
			if !strings.HasSuffix(upper, ".XML") {
				continue
			}
			if !strings.Contains(upper, pattern) {
				continue
			}
			matches = append(matches, filepath.Join(dir, name))
		}
	}

	return matches, nil
}
