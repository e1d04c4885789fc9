package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"mediadex/internal/pathref"
)

// AppendHistory appends path to the log at logPath unless an entry with
// the same normalized key is already present. It reports whether an
// append occurred. Calling it twice with the same path is a no-op the
// second time; the log is never truncated or rewritten.
func (s *Store) AppendHistory(logPath, path string, encode bool) (bool, error) {
	existing, err := readLines(logPath)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("read history %s: %w", logPath, err)
	}
	keys := make(map[string]struct{}, len(existing))
	for _, line := range existing {
		keys[pathref.NormalizeForCompare(line)] = struct{}{}
	}

	entry := path
	if encode {
		entry = pathref.Encode(path)
	}
	if _, dup := keys[pathref.NormalizeForCompare(entry)]; dup {
		s.log.Debug("already in history", zap.String("log", logPath), zap.String("entry", entry))
		return false, nil
	}
	if err := appendLine(logPath, entry); err != nil {
		return false, fmt.Errorf("append history %s: %w", logPath, err)
	}
	s.log.Debug("added to history", zap.String("log", logPath), zap.String("entry", entry))
	return true, nil
}

// AppendQuery records a resolved query title. Query history is a plain
// append log with no duplicate suppression.
func (s *Store) AppendQuery(title string) error {
	if err := appendLine(s.layout.QueryHistory(), title); err != nil {
		return fmt.Errorf("append query history: %w", err)
	}
	return nil
}

// ReadHistory returns the decoded entries of a history log in file
// order, skipping comments and blank lines. A missing log reads as
// empty.
func (s *Store) ReadHistory(logPath string) ([]string, error) {
	lines, err := readLines(logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history %s: %w", logPath, err)
	}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, pathref.Decode(line))
	}
	return out, nil
}

// readLines returns the trimmed, non-blank, non-comment lines of path.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

func appendLine(path, line string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		return err
	}
	return f.Sync()
}
