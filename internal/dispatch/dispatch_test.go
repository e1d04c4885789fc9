package dispatch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"mediadex/internal/library"
	"mediadex/internal/store"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *store.Store) {
	t.Helper()
	layout, err := store.NewLayout(t.TempDir())
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	st := store.New(zap.NewNop(), layout)
	return New(zap.NewNop(), st), st
}

func TestScore(t *testing.T) {
	cases := []struct {
		a, b string
		min  int
		max  int
	}{
		{"inception", "inception", 100, 100},
		{"beatles", "the beatles", 100, 100}, // subsequence of the candidate
		{"incepton", "inception", 60, 100},
		{"abbey roadxxxxx", "abbey road", 31, 69},
		{"xyz123", "inception", 0, 30},
		{"", "", 100, 100},
		{"abc", "", 0, 0},
	}
	for _, c := range cases {
		got := Score(c.a, c.b)
		if got < c.min || got > c.max {
			t.Errorf("Score(%q, %q) = %d, want in [%d,%d]", c.a, c.b, got, c.min, c.max)
		}
	}
}

func TestResolveBestMatch(t *testing.T) {
	d, st := newTestDispatcher(t)
	if _, err := st.WriteMediaDescriptor("Inception", []string{"/media/Inception.mkv"}, "Movie"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := st.WriteMediaDescriptor("Interstellar", []string{"/media/Interstellar.mkv"}, "Movie"); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := d.Resolve("incepton")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Kind != KindMedia || res.Title != "Inception" {
		t.Fatalf("result = %+v", res)
	}
	if res.ResolvedPath != "/media/Inception.mkv" {
		t.Errorf("resolved path = %q", res.ResolvedPath)
	}
	if filepath.Base(res.SourceDescriptor) != "Inception.m3u" {
		t.Errorf("source descriptor = %q", res.SourceDescriptor)
	}

	queries, err := st.ReadHistory(st.Layout().QueryHistory())
	if err != nil {
		t.Fatalf("query history: %v", err)
	}
	if len(queries) != 1 || queries[0] != "Inception" {
		t.Errorf("query history = %v", queries)
	}
}

func TestResolveNoMatch(t *testing.T) {
	d, st := newTestDispatcher(t)
	if _, err := st.WriteMediaDescriptor("Inception", []string{"/media/Inception.mkv"}, "Movie"); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := d.Resolve("xyz123")
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
	if _, statErr := os.Stat(st.Layout().QueryHistory()); !os.IsNotExist(statErr) {
		t.Error("failed resolve must not touch the query history")
	}
}

func TestResolveEmptyUniverse(t *testing.T) {
	d, _ := newTestDispatcher(t)
	if _, err := d.Resolve("anything"); !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestResolveDocumentLogsOpened(t *testing.T) {
	d, st := newTestDispatcher(t)
	doc := filepath.Join(t.TempDir(), "Quarterly Report.pdf")
	if err := os.WriteFile(doc, []byte("%PDF"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := st.AppendHistory(st.Layout().DocHistory(), doc, false); err != nil {
		t.Fatalf("doc history: %v", err)
	}

	res, err := d.Resolve("quarterly report")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Kind != KindDocument || res.ResolvedPath != doc {
		t.Fatalf("result = %+v", res)
	}

	opened, err := st.ReadHistory(st.Layout().DocOpened())
	if err != nil {
		t.Fatalf("opened log: %v", err)
	}
	if len(opened) != 1 || opened[0] != doc {
		t.Errorf("opened log = %v", opened)
	}

	// Resolving again appends the query but not a second opened entry.
	if _, err := d.Resolve("quarterly report"); err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	opened, _ = st.ReadHistory(st.Layout().DocOpened())
	if len(opened) != 1 {
		t.Errorf("opened log grew on duplicate: %v", opened)
	}
	queries, _ := st.ReadHistory(st.Layout().QueryHistory())
	if len(queries) != 2 {
		t.Errorf("query history should plain-append, got %v", queries)
	}
}

func TestResolveIgnoresHistoryLogs(t *testing.T) {
	d, st := newTestDispatcher(t)
	if _, err := st.AppendHistory(st.Layout().VideoHistory(), "/media/history2target.mkv", true); err != nil {
		t.Fatalf("history: %v", err)
	}
	if _, err := d.Resolve("history2"); !errors.Is(err, ErrNoMatch) {
		t.Fatal("history logs must not join the title universe")
	}
}

func testEntries() []library.Entry {
	return []library.Entry{
		{Name: "Track1", Type: library.TypeAudio, Album: "Abbey Road", Artist: "The Beatles"},
		{Name: "Inception", Type: library.TypeVideo},
		{Name: "Paranoid", Type: library.TypeAudio, Album: "Paranoid", Artist: "Black Sabbath"},
	}
}

func TestFilterLooseMode(t *testing.T) {
	got := Filter("inception", testEntries())
	if len(got) != 1 || got[0].Name != "Inception" {
		t.Errorf("loose filter = %v", got)
	}
	if got := Filter("abbey road", testEntries()); len(got) != 1 || got[0].Name != "Track1" {
		t.Errorf("album term filter = %v", got)
	}
	if got := Filter("", testEntries()); len(got) != 3 {
		t.Errorf("empty query must pass everything, got %v", got)
	}
}

func TestFilterStructuredTwoPart(t *testing.T) {
	got := Filter("abbey road, beatles", testEntries())
	if len(got) != 1 || got[0].Name != "Track1" {
		t.Errorf("two-part filter = %v", got)
	}
	if got := Filter("abbey roadxxxxx, beatles", testEntries()); len(got) != 0 {
		t.Errorf("below-threshold album must not qualify, got %v", got)
	}
	// Entries without both fields never qualify.
	entries := []library.Entry{{Name: "Inception", Type: library.TypeVideo}}
	if got := Filter("inception, whatever", entries); len(got) != 0 {
		t.Errorf("fieldless entry qualified: %v", got)
	}
}

func TestFilterStructuredThreePart(t *testing.T) {
	got := Filter("track1, abbey road, the beatles", testEntries())
	if len(got) != 1 || got[0].Name != "Track1" {
		t.Errorf("three-part filter = %v", got)
	}
	if got := Filter("trackzzzzz, abbey road, the beatles", testEntries()); len(got) != 0 {
		t.Errorf("bad song part qualified: %v", got)
	}
}
