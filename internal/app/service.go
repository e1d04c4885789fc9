// Package app wires the library components together behind the
// operations the CLI exposes.
package app

import (
	"context"
	"fmt"
	"math/rand"
	"os"

	"go.uber.org/zap"

	"mediadex/internal/config"
	"mediadex/internal/dispatch"
	"mediadex/internal/library"
	"mediadex/internal/opener"
	"mediadex/internal/player"
	"mediadex/internal/scanner"
	"mediadex/internal/store"
	"mediadex/internal/thumbs"
)

// Service owns the component graph for one process.
type Service struct {
	log        *zap.Logger
	cfg        config.Config
	store      *store.Store
	index      *library.Index
	scanner    *scanner.Scanner
	dispatcher *dispatch.Dispatcher
	session    *player.Session
	thumbs     *thumbs.Cache
}

// New builds a service from cfg. No scanning or refreshing happens
// until the corresponding operation is called.
func New(log *zap.Logger, cfg config.Config) (*Service, error) {
	if log == nil {
		log = zap.NewNop()
	}
	layout, err := store.NewLayout(cfg.Paths.PlaylistDir)
	if err != nil {
		return nil, err
	}
	st := store.New(log, layout)
	cache, err := thumbs.NewCache(log, cfg.Paths.ThumbnailDir)
	if err != nil {
		return nil, err
	}
	return &Service{
		log:        log,
		cfg:        cfg,
		store:      st,
		index:      library.New(log, st),
		scanner:    scanner.New(log, st),
		dispatcher: dispatch.New(log, st),
		session: player.New(log, player.Config{
			PlayerPath: cfg.Player.Binary,
			RCHost:     cfg.Player.RCHost,
			RCPort:     cfg.Player.RCPort,
		}),
		thumbs: cache,
	}, nil
}

// Close releases the player session.
func (s *Service) Close() { s.session.Close() }

// Store exposes the descriptor store for collaborators.
func (s *Service) Store() *store.Store { return s.store }

// Session exposes the player session.
func (s *Service) Session() *player.Session { return s.session }

// Refresh rebuilds the library index.
func (s *Service) Refresh() ([]library.Entry, []library.Warning, error) {
	entries, warnings, err := s.index.Refresh()
	if err != nil {
		return nil, nil, WrapError(ExitRuntime, "refresh library", err)
	}
	return entries, warnings, nil
}

// Entries returns the current snapshot.
func (s *Service) Entries() []library.Entry { return s.index.All() }

// Filter narrows the current snapshot by a live-filter query.
func (s *Service) Filter(query string) []library.Entry {
	return dispatch.Filter(query, s.index.All())
}

// Play resolves a free-text query and acts on the winner: media targets
// launch the player on their descriptor, documents open with the OS
// handler.
func (s *Service) Play(query string) (dispatch.Result, error) {
	res, err := s.dispatcher.Resolve(query)
	if err != nil {
		return dispatch.Result{}, err
	}
	if err := s.playResult(res); err != nil {
		return res, err
	}
	return res, nil
}

func (s *Service) playResult(res dispatch.Result) error {
	switch res.Kind {
	case dispatch.KindDocument:
		if err := opener.Open(res.ResolvedPath); err != nil {
			return WrapError(ExitRuntime, "open document", err)
		}
	default:
		target := res.SourceDescriptor
		if target == "" {
			target = res.ResolvedPath
		}
		if err := s.session.Launch(target); err != nil {
			return WrapError(ExitRuntime, "launch player", err)
		}
	}
	return nil
}

// PlayEntry plays one library entry directly, preferring the full
// descriptor over the bare media path so rotations play whole.
func (s *Service) PlayEntry(e library.Entry) error {
	if e.Type == library.TypeDocument {
		if _, err := os.Stat(e.Path); err != nil {
			return WrapError(ExitNoMatch, fmt.Sprintf("document no longer exists: %s", e.Path), nil)
		}
		if err := opener.Open(e.Path); err != nil {
			return WrapError(ExitRuntime, "open document", err)
		}
		if _, err := s.store.AppendHistory(s.store.Layout().DocOpened(), e.Path, false); err != nil {
			return WrapError(ExitRuntime, "record opened document", err)
		}
		return nil
	}
	target := e.SourceDescriptor
	if target == "" {
		target = e.Path
	}
	if err := s.session.Launch(target); err != nil {
		return WrapError(ExitRuntime, "launch player", err)
	}
	return nil
}

// History log classes addressable from the CLI.
const (
	HistoryAudio     = "audio"
	HistoryVideo     = "video"
	HistoryDocs      = "docs"
	HistoryDocOpened = "opened"
)

func (s *Service) historyPath(class string) (string, error) {
	layout := s.store.Layout()
	switch class {
	case HistoryAudio:
		return layout.AudioHistory(), nil
	case HistoryVideo:
		return layout.VideoHistory(), nil
	case HistoryDocs:
		return layout.DocHistory(), nil
	case HistoryDocOpened:
		return layout.DocOpened(), nil
	default:
		return "", &CLIError{Code: ExitUsage, Msg: fmt.Sprintf("unknown history class %q", class)}
	}
}

// History returns the decoded entries of the named history log.
func (s *Service) History(class string) ([]string, error) {
	path, err := s.historyPath(class)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.ReadHistory(path)
	if err != nil {
		return nil, WrapError(ExitRuntime, "read history", err)
	}
	return entries, nil
}

// PlayRandom picks a random entry from the named history log and plays
// or opens it.
func (s *Service) PlayRandom(class string) (string, error) {
	entries, err := s.History(class)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", &CLIError{Code: ExitNoMatch, Msg: fmt.Sprintf("no %s history", class)}
	}
	selected := entries[rand.Intn(len(entries))]
	if library.TypeForExt(selected) == library.TypeDocument {
		if err := opener.Open(selected); err != nil {
			return "", WrapError(ExitRuntime, "open document", err)
		}
		if _, err := s.store.AppendHistory(s.store.Layout().DocOpened(), selected, false); err != nil {
			return "", WrapError(ExitRuntime, "record opened document", err)
		}
		return selected, nil
	}
	if err := s.session.Launch(selected); err != nil {
		return "", WrapError(ExitRuntime, "launch player", err)
	}
	return selected, nil
}

// Command attaches to a running player and sends one control verb.
func (s *Service) Command(ctx context.Context, verb string) error {
	if err := s.session.Attach(ctx); err != nil {
		return WrapError(ExitRuntime, "no running player", err)
	}
	if err := s.session.SendCommand(verb); err != nil {
		return WrapError(ExitRuntime, "send command", err)
	}
	return nil
}

// Scan kinds addressable from the CLI.
const (
	ScanMKV   = "mkv"
	ScanMP4   = "mp4"
	ScanPDF   = "pdf"
	ScanMusic = "music"
)

// Scan runs one folder scan of the given kind.
func (s *Service) Scan(kind, root string) (scanner.Summary, error) {
	var (
		sum scanner.Summary
		err error
	)
	switch kind {
	case ScanMKV:
		sum, err = s.scanner.ScanVideos(root)
	case ScanMP4:
		sum, err = s.scanner.ScanMP4s(root)
	case ScanPDF:
		sum, err = s.scanner.ScanDocuments(root)
	case ScanMusic:
		sum, err = s.scanner.ScanMusic(root)
	default:
		return sum, &CLIError{Code: ExitUsage, Msg: fmt.Sprintf("unknown scan kind %q", kind)}
	}
	if err != nil {
		return sum, WrapError(ExitRuntime, fmt.Sprintf("scan %s folder %s", kind, root), err)
	}
	return sum, nil
}

// AutoScan runs every folder configured in the settings file. With
// force unset it is a no-op unless auto-scan is enabled.
func (s *Service) AutoScan(force bool) (scanner.Summary, error) {
	settings, err := s.Settings()
	if err != nil {
		return scanner.Summary{}, err
	}
	if !settings.AutoScanEnabled && !force {
		return scanner.Summary{}, nil
	}
	return s.scanner.RunAuto(settings), nil
}

// Settings loads the scan settings from the playlist folder.
func (s *Service) Settings() (config.Settings, error) {
	settings, err := config.LoadSettings(s.store.Layout().Settings())
	if err != nil {
		return config.Settings{}, WrapError(ExitRuntime, "load settings", err)
	}
	return settings, nil
}

// SaveSettings persists the scan settings.
func (s *Service) SaveSettings(settings config.Settings) error {
	if err := config.SaveSettings(s.store.Layout().Settings(), settings); err != nil {
		return WrapError(ExitRuntime, "save settings", err)
	}
	return nil
}

// Thumbnail returns a cached or freshly extracted thumbnail for an
// entry; empty when none is obtainable.
func (s *Service) Thumbnail(ctx context.Context, e library.Entry) (string, error) {
	p, err := s.thumbs.Get(ctx, e.Path, e.Type)
	if err != nil {
		return "", WrapError(ExitRuntime, "extract thumbnail", err)
	}
	return p, nil
}
