// Package store persists playlist descriptor files and append-only
// history logs inside a single playlist folder.
package store

import (
	"errors"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Well-known file names inside the playlist folder.
const (
	AudioHistoryName  = "history.m3u"
	VideoHistoryName  = "history2.m3u"
	DocHistoryName    = "pdf_history.txt"
	DocOpenedName     = "pdf_opened_history.txt"
	QueryHistoryName  = "search_history.txt"
	SettingsName      = "config.json"
	DescriptorExt     = ".m3u"
	maxDescriptorStem = 215
)

// Layout names the well-known paths of a playlist folder.
type Layout struct {
	Dir string
}

// NewLayout creates a layout rooted at dir.
func NewLayout(dir string) (Layout, error) {
	if strings.TrimSpace(dir) == "" {
		return Layout{}, errors.New("playlist folder required")
	}
	return Layout{Dir: dir}, nil
}

func (l Layout) AudioHistory() string { return filepath.Join(l.Dir, AudioHistoryName) }
func (l Layout) VideoHistory() string { return filepath.Join(l.Dir, VideoHistoryName) }
func (l Layout) DocHistory() string   { return filepath.Join(l.Dir, DocHistoryName) }
func (l Layout) DocOpened() string    { return filepath.Join(l.Dir, DocOpenedName) }
func (l Layout) QueryHistory() string { return filepath.Join(l.Dir, QueryHistoryName) }
func (l Layout) Settings() string     { return filepath.Join(l.Dir, SettingsName) }

// IsHistoryLog reports whether name is one of the internal history logs
// that live alongside descriptors but are never descriptors themselves.
func (l Layout) IsHistoryLog(name string) bool {
	return name == AudioHistoryName || name == VideoHistoryName
}

// Store reads and writes descriptor and history files.
type Store struct {
	log    *zap.Logger
	layout Layout
}

// New creates a store over layout.
func New(log *zap.Logger, layout Layout) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{log: log, layout: layout}
}

// Layout returns the store's folder layout.
func (s *Store) Layout() Layout { return s.layout }
