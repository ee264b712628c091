package crawler

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// Crawler scans a directory for source files.
type Crawler struct {
	extensions []string
	ignored    []string
}

// NewCrawler creates a crawler accepting files with the given extensions.
// Build output and VCS directories are always skipped; exclude adds more
// directory names.
func NewCrawler(extensions []string, exclude ...string) *Crawler {
	return &Crawler{
		extensions: extensions,
		ignored:    append([]string{".git", ".vs", "bin", "obj", "node_modules", "packages"}, exclude...),
	}
}

// ScanProject walks the root directory and streams every matching file to
// onFile, preventing large memory buildup.
func (c *Crawler) ScanProject(root string, onFile func(path string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip ignored directories
		if d.IsDir() {
			if path != root && slices.Contains(c.ignored, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !c.accepts(d.Name()) {
			return nil
		}
		onFile(path)
		return nil
	})
}

// Files collects the matching files under root in walk order.
func (c *Crawler) Files(root string) ([]string, error) {
	var files []string
	err := c.ScanProject(root, func(path string) {
		files = append(files, path)
	})
	return files, err
}

func (c *Crawler) accepts(name string) bool {
	// generated designer files carry no hand-written handlers
	if strings.HasSuffix(name, ".g.cs") || strings.HasSuffix(name, ".Designer.cs") {
		return false
	}
	ext := filepath.Ext(name)
	for _, e := range c.extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
