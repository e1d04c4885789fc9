package store

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"mediadex/internal/pathref"
)

const validNameChars = "-_.() abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// SanitizeName projects a display name onto the allowed descriptor
// filename character set and trims it to the filename budget. An empty
// result falls back to a hash-derived name so distinct items never
// collapse into a bare ".m3u".
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(validNameChars, r) {
			b.WriteRune(r)
		}
	}
	safe := strings.TrimSpace(b.String())
	if safe == "" {
		sum := md5.Sum([]byte(name))
		safe = "playlist_" + hex.EncodeToString(sum[:])[:8]
	}
	if budget := maxDescriptorStem - len(DescriptorExt); len(safe) > budget {
		safe = safe[:budget]
	}
	return safe
}

// WriteMediaDescriptor writes one descriptor file naming an ordered set
// of path references. The first line is a header comment, each further
// line one encoded reference. An existing descriptor of the same
// sanitized name is overwritten.
func (s *Store) WriteMediaDescriptor(displayName string, orderedPaths []string, header string) (string, error) {
	if err := os.MkdirAll(s.layout.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create playlist folder: %w", err)
	}
	safe := SanitizeName(displayName)
	path := filepath.Join(s.layout.Dir, safe+DescriptorExt)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %s\n", header, displayName)
	for _, p := range orderedPaths {
		b.WriteString(pathref.Encode(p))
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write descriptor %s: %w", path, err)
	}
	s.log.Debug("descriptor written", zap.String("path", path), zap.Int("entries", len(orderedPaths)))
	return path, nil
}

// ReadDescriptorPaths returns the decoded path references of a
// descriptor file in order, skipping the header and blank lines.
func (s *Store) ReadDescriptorPaths(path string) ([]string, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, fmt.Errorf("read descriptor %s: %w", path, err)
	}
	paths := make([]string, 0, len(lines))
	for _, line := range lines {
		paths = append(paths, pathref.Decode(line))
	}
	return paths, nil
}

// ListDescriptors returns the descriptor files in the playlist folder,
// excluding the internal history logs. Order follows the directory
// listing, which is stable for a static snapshot.
func (s *Store) ListDescriptors() ([]string, error) {
	entries, err := os.ReadDir(s.layout.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list playlist folder: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, DescriptorExt) || s.layout.IsHistoryLog(name) {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}
