// Package thumbs maintains the thumbnail cache for library entries.
// The core contract is cache lookup by media path; extraction shells
// out to external tools with a bounded timeout.
package thumbs

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"mediadex/internal/library"
)

// Thumbnail dimensions.
const (
	Width  = 200
	Height = 150
)

// extractTimeout bounds every external extraction call.
const extractTimeout = 30 * time.Second

// Cache is a folder of <md5(mediaPath)>.png thumbnails.
type Cache struct {
	log *zap.Logger
	dir string
}

// NewCache creates a cache rooted at dir.
func NewCache(log *zap.Logger, dir string) (*Cache, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("thumbnail folder required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{log: log, dir: dir}, nil
}

// Path returns the cache location for mediaPath, whether or not a
// thumbnail exists there yet.
func (c *Cache) Path(mediaPath string) string {
	sum := md5.Sum([]byte(mediaPath))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".png")
}

// Lookup reports the cached thumbnail for mediaPath, if present.
func (c *Cache) Lookup(mediaPath string) (string, bool) {
	p := c.Path(mediaPath)
	if _, err := os.Stat(p); err != nil {
		return "", false
	}
	return p, true
}

// Get returns a thumbnail for mediaPath, extracting and caching one on
// a miss. A nil-error empty result means no thumbnail is obtainable.
func (c *Cache) Get(ctx context.Context, mediaPath string, mediaType library.MediaType) (string, error) {
	if p, ok := c.Lookup(mediaPath); ok {
		return p, nil
	}
	if _, err := os.Stat(mediaPath); err != nil {
		return "", nil
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("create thumbnail folder: %w", err)
	}

	switch mediaType {
	case library.TypeVideo:
		return c.extractVideo(ctx, mediaPath)
	case library.TypeDocument:
		return c.extractDocument(ctx, mediaPath)
	case library.TypeAudio:
		return c.extractAudio(mediaPath)
	default:
		return "", nil
	}
}

// extractVideo grabs a frame with ffmpeg, trying the 30s mark first and
// falling back to 5s for short clips.
func (c *Cache) extractVideo(ctx context.Context, mediaPath string) (string, error) {
	out := c.Path(mediaPath)
	for _, offset := range []string{"00:00:30", "00:00:05"} {
		cctx, cancel := context.WithTimeout(ctx, extractTimeout)
		err := exec.CommandContext(cctx, "ffmpeg",
			"-i", mediaPath,
			"-ss", offset,
			"-vframes", "1",
			"-vf", fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", Width, Height),
			"-y", out,
		).Run()
		cancel()
		if err != nil {
			c.log.Debug("ffmpeg extraction failed", zap.String("offset", offset), zap.Error(err))
		}
		if _, statErr := os.Stat(out); statErr == nil {
			return out, nil
		}
	}
	return "", nil
}

// extractDocument renders the first page with pdftoppm.
func (c *Cache) extractDocument(ctx context.Context, mediaPath string) (string, error) {
	out := c.Path(mediaPath)
	prefix := strings.TrimSuffix(out, ".png")
	cctx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()
	err := exec.CommandContext(cctx, "pdftoppm",
		"-png", "-f", "1", "-l", "1",
		"-scale-to", strconv.Itoa(Width),
		mediaPath, prefix,
	).Run()
	if err != nil {
		c.log.Debug("pdftoppm extraction failed", zap.String("path", mediaPath), zap.Error(err))
		return "", nil
	}
	generated := prefix + "-1.png"
	if _, err := os.Stat(generated); err != nil {
		return "", nil
	}
	if err := os.Rename(generated, out); err != nil {
		return "", fmt.Errorf("store thumbnail: %w", err)
	}
	return out, nil
}

// extractAudio pulls embedded artwork from the file's tags and resizes
// it; audio files without artwork simply have no thumbnail.
func (c *Cache) extractAudio(mediaPath string) (string, error) {
	f, err := os.Open(mediaPath)
	if err != nil {
		return "", nil
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil || meta.Picture() == nil {
		return "", nil
	}
	img, err := imaging.Decode(bytes.NewReader(meta.Picture().Data))
	if err != nil {
		c.log.Debug("artwork decode failed", zap.String("path", mediaPath), zap.Error(err))
		return "", nil
	}
	out := c.Path(mediaPath)
	thumb := imaging.Fit(img, Width, Height, imaging.Lanczos)
	if err := imaging.Save(thumb, out); err != nil {
		return "", fmt.Errorf("store thumbnail: %w", err)
	}
	return out, nil
}
