package files

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// CompressedSuffix marks a gzip-compressed export; the extension before it
// decides whether the file matches a filter
const CompressedSuffix = ".gz"

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// Compressed reports whether the file is a gzip-compressed export
func (f FileInfo) Compressed() bool {
	return strings.HasSuffix(strings.ToLower(f.Name), CompressedSuffix)
}

// Ext returns the lower-cased data extension, ignoring a trailing .gz
func (f FileInfo) Ext() string {
	return DataExt(f.Name)
}

// DataExt returns the lower-cased extension of name with a trailing .gz removed
func DataExt(name string) string {
	lower := strings.ToLower(name)
	lower = strings.TrimSuffix(lower, CompressedSuffix)
	return filepath.Ext(lower)
}

// Filter selects data files during discovery
type Filter struct {
	// Extensions are matched case-insensitively, with or without .gz
	Extensions []string
	// Exclude drops files whose name contains any of the substrings
	Exclude   []string
	Recursive bool
}

// Match reports whether a file name passes the filter
func (f Filter) Match(name string) bool {
	for _, pattern := range f.Exclude {
		if pattern != "" && strings.Contains(name, pattern) {
			return false
		}
	}

	if len(f.Extensions) == 0 {
		return true
	}
	ext := DataExt(name)
	for _, want := range f.Extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// FindDataFiles finds the files of dir accepted by filter, walking
// sub-directories when filter.Recursive is set. Results are ordered by path
// so repeated runs visit files in the same order.
func (d *Discovery) FindDataFiles(dir string, filter Filter) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	root, err := os.Stat(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}
	if !root.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", fullPath)
	}

	var files []FileInfo
	err = filepath.WalkDir(fullPath, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if path != fullPath && !filter.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !filter.Match(entry.Name()) {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return nil
		}
		files = append(files, FileInfo{
			Path:    path,
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", fullPath, err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	return files, nil
}

// ListDirectories lists the subdirectories of dir ordered by name
func (d *Discovery) ListDirectories(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var dirs []FileInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		dirs = append(dirs, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			ModTime: info.ModTime(),
			IsDir:   true,
		})
	}

	return dirs, nil
}
