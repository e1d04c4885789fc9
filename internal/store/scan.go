package store

import (
	"io/fs"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ScanTree walks rootDir recursively and returns the absolute paths of
// files whose lowercase extension is in exts (given with leading dots).
// Order follows the directory traversal, which is consistent for a
// static filesystem snapshot. Unreadable subtrees are skipped.
func (s *Store) ScanTree(rootDir string, exts []string) ([]string, error) {
	want := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		want[ext] = true
	}

	var found []string
	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.log.Debug("walk error", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !want[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil
		}
		found = append(found, abs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}
