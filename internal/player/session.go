// Package player owns the external player process and its
// remote-control channel.
package player

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State tracks the session lifecycle.
type State string

const (
	StateIdle         State = "Idle"
	StateLaunching    State = "Launching"
	StateConnected    State = "Connected"
	StateDisconnected State = "Disconnected"
)

// ErrNotConnected reports a command sent with no live control channel.
// The command is dropped, not queued.
var ErrNotConnected = errors.New("player control channel not connected")

// Defaults for the remote-control endpoint and the connect retry loop.
const (
	DefaultRCHost        = "localhost"
	DefaultRCPort        = 42123
	defaultConnectWait   = 5 * time.Second
	defaultRetryInterval = 100 * time.Millisecond
)

// Config describes how to start and reach the external player.
type Config struct {
	PlayerPath    string
	RCHost        string
	RCPort        int
	ConnectWait   time.Duration
	RetryInterval time.Duration
}

// Session drives one external player process at a time. Launching a new
// target supersedes the previous process and channel.
type Session struct {
	log *zap.Logger
	cfg Config

	mu       sync.Mutex
	state    State
	cmd      *exec.Cmd
	conn     net.Conn
	launchID string
	cancel   context.CancelFunc
}

// New creates an idle session.
func New(log *zap.Logger, cfg Config) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.PlayerPath == "" {
		cfg.PlayerPath = "vlc"
	}
	if cfg.RCHost == "" {
		cfg.RCHost = DefaultRCHost
	}
	if cfg.RCPort == 0 {
		cfg.RCPort = DefaultRCPort
	}
	if cfg.ConnectWait <= 0 {
		cfg.ConnectWait = defaultConnectWait
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = defaultRetryInterval
	}
	return &Session{log: log, cfg: cfg, state: StateIdle}
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) rcAddr() string {
	return net.JoinHostPort(s.cfg.RCHost, strconv.Itoa(s.cfg.RCPort))
}

// Launch tears down any previous process and channel, starts the player
// on target with the remote-control interface enabled, and connects the
// control channel in the background. The caller is never blocked on the
// player's control interface coming up.
func (s *Session) Launch(target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teardownLocked()

	cmd := exec.Command(s.cfg.PlayerPath,
		"--extraintf", "rc",
		"--rc-host", s.rcAddr(),
		target)
	if err := cmd.Start(); err != nil {
		s.state = StateIdle
		return fmt.Errorf("launch player %s: %w", s.cfg.PlayerPath, err)
	}
	go func() { _ = cmd.Wait() }()

	id := uuid.NewString()
	s.cmd = cmd
	s.launchID = id
	s.state = StateLaunching
	s.log.Info("player launched",
		zap.String("launch_id", id),
		zap.String("target", target),
		zap.Int("pid", cmd.Process.Pid))

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ConnectWait)
	s.cancel = cancel
	go s.connect(ctx, id)
	return nil
}

// connect retries the control-channel dial until the bounded wait runs
// out. A stale connector (superseded launch) discards its connection.
func (s *Session) connect(ctx context.Context, id string) {
	ticker := time.NewTicker(s.cfg.RetryInterval)
	defer ticker.Stop()
	for {
		conn, err := (&net.Dialer{Timeout: s.cfg.RetryInterval}).DialContext(ctx, "tcp", s.rcAddr())
		if err == nil {
			s.mu.Lock()
			if s.launchID != id {
				s.mu.Unlock()
				_ = conn.Close()
				return
			}
			s.conn = conn
			s.state = StateConnected
			s.mu.Unlock()
			s.log.Info("control channel connected", zap.String("launch_id", id))
			return
		}
		select {
		case <-ctx.Done():
			s.log.Warn("control channel never came up", zap.String("launch_id", id))
			return
		case <-ticker.C:
		}
	}
}

// Attach connects the control channel to an already-running player
// without launching one, using the same bounded retry discipline.
func (s *Session) Attach(ctx context.Context) error {
	s.mu.Lock()
	if s.conn != nil {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ConnectWait)
	defer cancel()
	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", s.rcAddr())
	if err != nil {
		return fmt.Errorf("attach to player at %s: %w", s.rcAddr(), err)
	}
	s.mu.Lock()
	s.conn = conn
	s.state = StateConnected
	s.mu.Unlock()
	return nil
}

// SendCommand writes one newline-terminated verb to the control
// channel. Without a live channel the command is dropped and
// ErrNotConnected returned. A write failure drops the channel and moves
// the session to Disconnected; the player process stays alive.
func (s *Session) SendCommand(cmd string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return ErrNotConnected
	}
	if _, err := fmt.Fprintf(s.conn, "%s\n", cmd); err != nil {
		_ = s.conn.Close()
		s.conn = nil
		s.state = StateDisconnected
		s.log.Warn("control channel lost", zap.String("command", cmd), zap.Error(err))
		return fmt.Errorf("send %q: %w", cmd, err)
	}
	return nil
}

// WaitReady blocks until the channel connects or d elapses.
func (s *Session) WaitReady(d time.Duration) bool {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if s.State() == StateConnected {
			return true
		}
		time.Sleep(25 * time.Millisecond)
	}
	return s.State() == StateConnected
}

// Close releases the channel and terminates the player process.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
	s.state = StateIdle
}

// teardownLocked releases the previous channel and process, best
// effort. Callers hold s.mu.
func (s *Session) teardownLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.launchID = ""
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	if s.cmd != nil && s.cmd.Process != nil {
		if err := s.cmd.Process.Kill(); err != nil {
			s.log.Debug("terminate previous player", zap.Error(err))
		}
		s.cmd = nil
	}
}
