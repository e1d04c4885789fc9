// Package scanner turns media folders into descriptor files and history
// log entries.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"mediadex/internal/config"
	"mediadex/internal/store"
)

// Scanner orchestrates the per-class folder scans.
type Scanner struct {
	log   *zap.Logger
	store *store.Store
}

// New creates a scanner writing through st.
func New(log *zap.Logger, st *store.Store) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{log: log, store: st}
}

// Summary counts what one scan produced.
type Summary struct {
	Descriptors int
	LoggedPaths int
}

func (s Summary) Empty() bool { return s.Descriptors == 0 && s.LoggedPaths == 0 }

// ScanVideos writes one descriptor per .mkv under root and records all
// video files in the video history log.
func (s *Scanner) ScanVideos(root string) (Summary, error) {
	var sum Summary
	if err := checkDir(root); err != nil {
		return sum, err
	}

	files, err := s.store.ScanTree(root, []string{".mkv"})
	if err != nil {
		return sum, err
	}
	for _, path := range files {
		name := stem(path)
		if _, err := s.store.WriteMediaDescriptor(name, []string{path}, "Movie"); err != nil {
			s.log.Warn("descriptor write failed", zap.String("path", path), zap.Error(err))
			continue
		}
		sum.Descriptors++
	}

	logged, err := s.logTree(root, []string{".mkv", ".mp4", ".avi"}, s.store.Layout().VideoHistory(), true)
	if err != nil {
		return sum, err
	}
	sum.LoggedPaths = logged
	s.log.Info("video scan complete", zap.String("root", root),
		zap.Int("descriptors", sum.Descriptors), zap.Int("logged", sum.LoggedPaths))
	return sum, nil
}

// ScanMP4s writes one descriptor per .mp4 under root.
func (s *Scanner) ScanMP4s(root string) (Summary, error) {
	var sum Summary
	if err := checkDir(root); err != nil {
		return sum, err
	}
	files, err := s.store.ScanTree(root, []string{".mp4"})
	if err != nil {
		return sum, err
	}
	for _, path := range files {
		if _, err := s.store.WriteMediaDescriptor(stem(path), []string{path}, "Movie"); err != nil {
			s.log.Warn("descriptor write failed", zap.String("path", path), zap.Error(err))
			continue
		}
		sum.Descriptors++
	}
	s.log.Info("mp4 scan complete", zap.String("root", root), zap.Int("descriptors", sum.Descriptors))
	return sum, nil
}

// ScanDocuments records every .pdf under root in the document history
// log.
func (s *Scanner) ScanDocuments(root string) (Summary, error) {
	var sum Summary
	if err := checkDir(root); err != nil {
		return sum, err
	}
	logged, err := s.logTree(root, []string{".pdf"}, s.store.Layout().DocHistory(), false)
	if err != nil {
		return sum, err
	}
	sum.LoggedPaths = logged
	s.log.Info("document scan complete", zap.String("root", root), zap.Int("logged", logged))
	return sum, nil
}

// ScanMusic walks an Artist/Album/track tree of .aif/.aiff files. Each
// track gets a rotation descriptor starting at itself and continuing
// through the rest of the album; each album and artist gets an ordered
// descriptor. All tracks land in the audio history log.
func (s *Scanner) ScanMusic(root string) (Summary, error) {
	var sum Summary
	if err := checkDir(root); err != nil {
		return sum, err
	}

	artists, err := os.ReadDir(root)
	if err != nil {
		return sum, fmt.Errorf("read music folder: %w", err)
	}
	for _, artist := range artists {
		if !artist.IsDir() {
			continue
		}
		artistDir := filepath.Join(root, artist.Name())
		albums, err := os.ReadDir(artistDir)
		if err != nil {
			s.log.Warn("artist folder unreadable", zap.String("path", artistDir), zap.Error(err))
			continue
		}

		var artistSongs []string
		for _, album := range albums {
			if !album.IsDir() {
				continue
			}
			albumDir := filepath.Join(artistDir, album.Name())
			songs, err := listSongs(albumDir)
			if err != nil {
				s.log.Warn("album folder unreadable", zap.String("path", albumDir), zap.Error(err))
				continue
			}
			if len(songs) == 0 {
				continue
			}

			for i := range songs {
				rotated := append(append([]string{}, songs[i:]...), songs[:i]...)
				if _, err := s.store.WriteMediaDescriptor(stem(songs[i]), rotated, "Song"); err != nil {
					s.log.Warn("song descriptor failed", zap.String("path", songs[i]), zap.Error(err))
					continue
				}
				sum.Descriptors++
			}
			albumName := fmt.Sprintf("%s - %s", artist.Name(), album.Name())
			if _, err := s.store.WriteMediaDescriptor(albumName, songs, "Album"); err == nil {
				sum.Descriptors++
			}
			artistSongs = append(artistSongs, songs...)
		}

		if len(artistSongs) > 0 {
			sort.Strings(artistSongs)
			if _, err := s.store.WriteMediaDescriptor(artist.Name(), artistSongs, "Artist"); err == nil {
				sum.Descriptors++
			}
		}
	}

	logged, err := s.logTree(root, []string{".aif", ".aiff"}, s.store.Layout().AudioHistory(), true)
	if err != nil {
		return sum, err
	}
	sum.LoggedPaths = logged
	s.log.Info("music scan complete", zap.String("root", root),
		zap.Int("descriptors", sum.Descriptors), zap.Int("logged", sum.LoggedPaths))
	return sum, nil
}

// RunAuto scans every configured folder. Per-folder failures are logged
// and the batch continues.
func (s *Scanner) RunAuto(settings config.Settings) Summary {
	var total Summary
	add := func(sum Summary, err error, root string) {
		if err != nil {
			s.log.Warn("auto-scan folder failed", zap.String("root", root), zap.Error(err))
			return
		}
		total.Descriptors += sum.Descriptors
		total.LoggedPaths += sum.LoggedPaths
	}
	for _, root := range settings.ScanFolders.MKV {
		sum, err := s.ScanVideos(root)
		add(sum, err, root)
	}
	for _, root := range settings.ScanFolders.MP4 {
		sum, err := s.ScanMP4s(root)
		add(sum, err, root)
	}
	for _, root := range settings.ScanFolders.PDF {
		sum, err := s.ScanDocuments(root)
		add(sum, err, root)
	}
	for _, root := range settings.ScanFolders.Music {
		sum, err := s.ScanMusic(root)
		add(sum, err, root)
	}
	return total
}

func (s *Scanner) logTree(root string, exts []string, logPath string, encode bool) (int, error) {
	files, err := s.store.ScanTree(root, exts)
	if err != nil {
		return 0, err
	}
	added := 0
	for _, path := range files {
		ok, err := s.store.AppendHistory(logPath, path, encode)
		if err != nil {
			s.log.Warn("history append failed", zap.String("path", path), zap.Error(err))
			continue
		}
		if ok {
			added++
		}
	}
	return added, nil
}

func listSongs(albumDir string) ([]string, error) {
	entries, err := os.ReadDir(albumDir)
	if err != nil {
		return nil, err
	}
	var songs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".aif" && ext != ".aiff" {
			continue
		}
		abs, err := filepath.Abs(filepath.Join(albumDir, e.Name()))
		if err != nil {
			continue
		}
		songs = append(songs, abs)
	}
	sort.Strings(songs)
	return songs, nil
}

func checkDir(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("scan folder %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("scan folder %s: not a directory", root)
	}
	return nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
