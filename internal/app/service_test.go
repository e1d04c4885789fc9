//go:build !windows

package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"mediadex/internal/config"
	"mediadex/internal/dispatch"
	"mediadex/internal/library"
	"mediadex/internal/player"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	playerPath := filepath.Join(t.TempDir(), "fakeplayer")
	if err := os.WriteFile(playerPath, []byte("#!/bin/sh\nsleep 60\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := config.Config{
		Paths: config.PathsConfig{
			PlaylistDir:  t.TempDir(),
			ThumbnailDir: t.TempDir(),
		},
		Player: config.PlayerConfig{
			Binary: playerPath,
			RCHost: "127.0.0.1",
			RCPort: 52123,
		},
	}
	svc, err := New(zap.NewNop(), cfg)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	t.Cleanup(svc.Close)
	return svc
}

func TestScanRefreshPlay(t *testing.T) {
	svc := newTestService(t)
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "Inception.mkv"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	sum, err := svc.Scan(ScanMKV, root)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if sum.Descriptors != 1 {
		t.Fatalf("summary = %+v", sum)
	}

	entries, warnings, err := svc.Refresh()
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(warnings) != 0 || len(entries) != 1 {
		t.Fatalf("entries = %v warnings = %v", entries, warnings)
	}

	res, err := svc.Play("incepton")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if res.Kind != dispatch.KindMedia || res.Title != "Inception" {
		t.Fatalf("result = %+v", res)
	}
	if got := svc.Session().State(); got != player.StateLaunching && got != player.StateConnected {
		t.Errorf("session state = %v after launch", got)
	}

	if _, err := svc.Play("zzzzzz"); !errors.Is(err, dispatch.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestFilterUsesSnapshot(t *testing.T) {
	svc := newTestService(t)
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "Inception.mkv"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Scan(ScanMKV, root); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if got := svc.Filter("inception"); len(got) != 0 {
		t.Fatal("filter must not see entries before a refresh")
	}
	if _, _, err := svc.Refresh(); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	got := svc.Filter("inception")
	if len(got) != 1 || got[0].Name != "Inception" {
		t.Errorf("filter = %v", got)
	}
}

func TestCommandWithoutPlayer(t *testing.T) {
	svc := newTestService(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := svc.Command(ctx, "pause"); err == nil {
		t.Fatal("expected error with no running player")
	}
}

func TestPlayRandomEmptyHistory(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.PlayRandom(HistoryVideo)
	if ExitCode(err) != ExitNoMatch {
		t.Fatalf("expected no-match exit, got %v", err)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	svc := newTestService(t)
	settings, err := svc.Settings()
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	settings.AutoScanEnabled = true
	settings.ScanFolders.PDF = []string{"/docs"}
	if err := svc.SaveSettings(settings); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := svc.Settings()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !got.AutoScanEnabled || len(got.ScanFolders.PDF) != 1 {
		t.Errorf("settings = %+v", got)
	}
}

func TestAutoScanDisabledIsNoop(t *testing.T) {
	svc := newTestService(t)
	sum, err := svc.AutoScan(false)
	if err != nil {
		t.Fatalf("autoscan: %v", err)
	}
	if !sum.Empty() {
		t.Errorf("disabled auto-scan did work: %+v", sum)
	}
}

func TestExitCode(t *testing.T) {
	if got := ExitCode(nil); got != ExitOK {
		t.Errorf("nil -> %d", got)
	}
	if got := ExitCode(dispatch.ErrNoMatch); got != ExitNoMatch {
		t.Errorf("no match -> %d", got)
	}
	if got := ExitCode(&CLIError{Code: ExitUsage, Msg: "bad"}); got != ExitUsage {
		t.Errorf("usage -> %d", got)
	}
	if got := ExitCode(errors.New("boom")); got != ExitRuntime {
		t.Errorf("runtime -> %d", got)
	}
}

func TestPlayEntryDocumentRequiresFile(t *testing.T) {
	svc := newTestService(t)
	err := svc.PlayEntry(library.Entry{
		Name: "gone",
		Type: library.TypeDocument,
		Path: "/no/such/doc.pdf",
	})
	if ExitCode(err) != ExitNoMatch {
		t.Fatalf("expected no-match exit, got %v", err)
	}
}
