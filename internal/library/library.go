// Package library builds the in-memory media index from the descriptor
// folder and the document history log.
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"mediadex/internal/store"
)

// MediaType classifies a library entry.
type MediaType string

const (
	TypeVideo    MediaType = "Video"
	TypeAudio    MediaType = "Audio"
	TypeDocument MediaType = "Document"
	TypeUnknown  MediaType = "Unknown"
)

var videoExts = map[string]bool{".mkv": true, ".mp4": true, ".avi": true, ".webm": true, ".mov": true}
var audioExts = map[string]bool{".aif": true, ".aiff": true, ".mp3": true, ".flac": true, ".ogg": true, ".m4a": true}

// TypeForExt classifies a media path by its lowercase extension.
func TypeForExt(path string) MediaType {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case videoExts[ext]:
		return TypeVideo
	case audioExts[ext]:
		return TypeAudio
	case ext == ".pdf":
		return TypeDocument
	default:
		return TypeUnknown
	}
}

// Entry is one indexed item. Entries carry no identity across refreshes
// beyond name+path equality.
type Entry struct {
	Name             string
	Type             MediaType
	Path             string
	SourceDescriptor string
	Artist           string
	Album            string
}

// Warning records a descriptor file skipped during a refresh.
type Warning struct {
	Path string
	Err  error
}

func (w Warning) String() string {
	return fmt.Sprintf("skipped %s: %v", w.Path, w.Err)
}

// Index holds the last computed library snapshot.
type Index struct {
	log   *zap.Logger
	store *store.Store

	mu      sync.RWMutex
	entries []Entry
}

// New creates an index over st. The index is empty until Refresh runs.
func New(log *zap.Logger, st *store.Store) *Index {
	if log == nil {
		log = zap.NewNop()
	}
	return &Index{log: log, store: st}
}

// All returns the last computed snapshot without refreshing.
func (x *Index) All() []Entry {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]Entry, len(x.entries))
	copy(out, x.entries)
	return out
}

// Refresh rebuilds the snapshot wholesale from the descriptor folder and
// the document history log. Unreadable descriptors are skipped and
// reported as warnings; the snapshot is only replaced once the rebuild
// completes.
func (x *Index) Refresh() ([]Entry, []Warning, error) {
	names, err := x.store.ListDescriptors()
	if err != nil {
		return nil, nil, err
	}

	var warnings []Warning
	next := make([]Entry, 0, len(names))
	layout := x.store.Layout()

	for _, name := range names {
		descriptorPath := filepath.Join(layout.Dir, name)
		entry, err := x.buildEntry(name, descriptorPath)
		if err != nil {
			warnings = append(warnings, Warning{Path: descriptorPath, Err: err})
			x.log.Warn("descriptor skipped", zap.String("path", descriptorPath), zap.Error(err))
			continue
		}
		next = append(next, entry)
	}

	docs, err := x.store.ReadHistory(layout.DocHistory())
	if err != nil {
		warnings = append(warnings, Warning{Path: layout.DocHistory(), Err: err})
	}
	for _, docPath := range docs {
		// Stale document entries are dropped; media entries are kept
		// even when the referenced file is gone.
		if _, err := os.Stat(docPath); err != nil {
			continue
		}
		next = append(next, Entry{
			Name: strings.TrimSuffix(filepath.Base(docPath), filepath.Ext(docPath)),
			Type: TypeDocument,
			Path: docPath,
		})
	}

	x.mu.Lock()
	x.entries = next
	x.mu.Unlock()

	x.log.Info("library refreshed", zap.Int("entries", len(next)), zap.Int("skipped", len(warnings)))
	return next, warnings, nil
}

func (x *Index) buildEntry(fileName, descriptorPath string) (Entry, error) {
	paths, err := x.store.ReadDescriptorPaths(descriptorPath)
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{
		Name:             strings.TrimSuffix(fileName, store.DescriptorExt),
		Type:             TypeUnknown,
		SourceDescriptor: descriptorPath,
	}
	if len(paths) > 0 {
		entry.Path = paths[0]
		entry.Type = TypeForExt(paths[0])
	}
	if entry.Type == TypeAudio {
		entry.Artist, entry.Album = deriveArtistAlbum(entry.Path)
	}
	return entry, nil
}

// deriveArtistAlbum infers artist and album from the path shape
// (grandparent = artist, parent = album) when at least three segments
// are present.
func deriveArtistAlbum(mediaPath string) (artist, album string) {
	clean := filepath.ToSlash(filepath.Clean(mediaPath))
	parts := strings.Split(clean, "/")
	if len(parts) >= 3 {
		album = parts[len(parts)-2]
		artist = parts[len(parts)-3]
	}
	return artist, album
}
