package files

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// FileInfo describes a discovered input file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery finds input files below a base directory
type Discovery struct {
	basePath string
}

// NewDiscovery creates a Discovery rooted at basePath
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// FindFilesByPattern returns the regular files in dir matching any of the
// glob patterns, sorted by name. A file matched by several patterns is
// returned once. No match is not an error.
func (d *Discovery) FindFilesByPattern(dir string, patterns ...string) ([]FileInfo, error) {
	root := d.resolve(dir)
	seen := make(map[string]bool)
	var found []FileInfo

	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(root, strings.TrimSpace(pattern)))
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			info, err := os.Stat(m)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			seen[m] = true
			found = append(found, FileInfo{
				Path:    m,
				Name:    info.Name(),
				Size:    info.Size(),
				ModTime: info.ModTime(),
			})
		}
	}

	slices.SortFunc(found, func(a, b FileInfo) int { return strings.Compare(a.Name, b.Name) })
	return found, nil
}

// TotalSize returns the combined size of files in bytes
func TotalSize(files []FileInfo) int64 {
	var total int64
	for _, f := range files {
		total += f.Size
	}
	return total
}
