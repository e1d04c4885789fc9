// Package dispatch resolves free-text queries against the library and
// decides playlist versus document handling.
package dispatch

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"mediadex/internal/library"
	"mediadex/internal/store"
)

// Acceptance thresholds on the 0-100 similarity scale.
const (
	filterThreshold    = 70
	bestMatchThreshold = 60
)

// ErrNoMatch reports that no title cleared the best-match threshold. It
// is an expected outcome, not a fault; nothing is mutated.
var ErrNoMatch = errors.New("no close match")

// Kind tags the two dispatchable target classes.
type Kind string

const (
	KindMedia    Kind = "Media"
	KindDocument Kind = "Document"
)

// Result is a resolved dispatch target.
type Result struct {
	Kind             Kind
	Title            string
	ResolvedPath     string
	SourceDescriptor string
}

// Dispatcher resolves queries against the descriptor folder and the
// document history log.
type Dispatcher struct {
	log   *zap.Logger
	store *store.Store
}

// New creates a dispatcher over st.
func New(log *zap.Logger, st *store.Store) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{log: log, store: st}
}

// Resolve picks the single best-scoring title across descriptor display
// names and document base names, requiring the best-match threshold.
// The first-seen title wins ties. A successful resolution appends the
// title to the query-history log and, for documents, the resolved path
// to the opened-documents log.
func (d *Dispatcher) Resolve(query string) (Result, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return Result{}, ErrNoMatch
	}

	descriptors, err := d.store.ListDescriptors()
	if err != nil {
		return Result{}, err
	}
	docPaths, err := d.store.ReadHistory(d.store.Layout().DocHistory())
	if err != nil {
		return Result{}, err
	}

	type candidate struct {
		title string
		doc   string // document path, empty for descriptors
	}
	candidates := make([]candidate, 0, len(descriptors)+len(docPaths))
	for _, name := range descriptors {
		candidates = append(candidates, candidate{title: strings.TrimSuffix(name, store.DescriptorExt)})
	}
	for _, p := range docPaths {
		title := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		candidates = append(candidates, candidate{title: title, doc: p})
	}
	if len(candidates) == 0 {
		return Result{}, ErrNoMatch
	}

	best := candidates[0]
	bestScore := -1
	for _, c := range candidates {
		if s := Score(query, strings.ToLower(c.title)); s > bestScore {
			best, bestScore = c, s
		}
	}
	if bestScore < bestMatchThreshold {
		d.log.Debug("no match", zap.String("query", query), zap.Int("best", bestScore))
		return Result{}, ErrNoMatch
	}

	result, err := d.buildResult(best.title, best.doc)
	if err != nil {
		return Result{}, err
	}
	if err := d.store.AppendQuery(result.Title); err != nil {
		return Result{}, err
	}
	if result.Kind == KindDocument {
		if _, err := d.store.AppendHistory(d.store.Layout().DocOpened(), result.ResolvedPath, false); err != nil {
			return Result{}, err
		}
	}
	d.log.Info("query resolved",
		zap.String("query", query),
		zap.String("title", result.Title),
		zap.String("kind", string(result.Kind)),
		zap.Int("score", bestScore))
	return result, nil
}

func (d *Dispatcher) buildResult(title, docPath string) (Result, error) {
	if docPath != "" {
		return Result{Kind: KindDocument, Title: title, ResolvedPath: docPath}, nil
	}
	descriptor := filepath.Join(d.store.Layout().Dir, title+store.DescriptorExt)
	paths, err := d.store.ReadDescriptorPaths(descriptor)
	if err != nil {
		return Result{}, fmt.Errorf("resolve %q: %w", title, err)
	}
	resolved := ""
	if len(paths) > 0 {
		resolved = paths[0]
	}
	return Result{
		Kind:             KindMedia,
		Title:            title,
		ResolvedPath:     resolved,
		SourceDescriptor: descriptor,
	}, nil
}

// Filter returns the entries qualifying against query for live table
// filtering. The query splits on commas into at most three trimmed,
// lower-cased parts: one part matches name, album or artist loosely;
// two parts mean "album, artist"; three mean "song, album, artist".
// Every named field must clear the filter threshold.
func Filter(query string, entries []library.Entry) []library.Entry {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return entries
	}
	parts := strings.Split(query, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	var out []library.Entry
	switch len(parts) {
	case 1:
		for _, e := range entries {
			if Score(parts[0], strings.ToLower(e.Name)) >= filterThreshold ||
				Score(parts[0], strings.ToLower(e.Album)) >= filterThreshold ||
				Score(parts[0], strings.ToLower(e.Artist)) >= filterThreshold {
				out = append(out, e)
			}
		}
	case 2:
		for _, e := range entries {
			if e.Album == "" || e.Artist == "" {
				continue
			}
			if Score(parts[0], strings.ToLower(e.Album)) >= filterThreshold &&
				Score(parts[1], strings.ToLower(e.Artist)) >= filterThreshold {
				out = append(out, e)
			}
		}
	case 3:
		for _, e := range entries {
			if e.Name == "" || e.Album == "" || e.Artist == "" {
				continue
			}
			if Score(parts[0], strings.ToLower(e.Name)) >= filterThreshold &&
				Score(parts[1], strings.ToLower(e.Album)) >= filterThreshold &&
				Score(parts[2], strings.ToLower(e.Artist)) >= filterThreshold {
				out = append(out, e)
			}
		}
	}
	return out
}
