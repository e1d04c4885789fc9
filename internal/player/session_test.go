//go:build !windows

package player

import (
	"bufio"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"testing"
	"time"

	"go.uber.org/zap"
)

// fakePlayer writes a shell script that ignores its arguments and stays
// alive, standing in for the external player binary.
func fakePlayer(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fakeplayer")
	script := "#!/bin/sh\nsleep 60\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func processGone(pid int) bool {
	return syscall.Kill(pid, 0) != nil
}

func TestLaunchExclusivity(t *testing.T) {
	s := New(zap.NewNop(), Config{
		PlayerPath:    fakePlayer(t),
		RCHost:        "127.0.0.1",
		RCPort:        freePort(t),
		ConnectWait:   200 * time.Millisecond,
		RetryInterval: 20 * time.Millisecond,
	})
	defer s.Close()

	if err := s.Launch("/media/a.m3u"); err != nil {
		t.Fatalf("launch A: %v", err)
	}
	pidA := s.cmd.Process.Pid

	if err := s.Launch("/media/b.m3u"); err != nil {
		t.Fatalf("launch B: %v", err)
	}
	pidB := s.cmd.Process.Pid
	if pidA == pidB {
		t.Fatal("second launch reused the first process")
	}

	deadline := time.Now().Add(2 * time.Second)
	for !processGone(pidA) && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if !processGone(pidA) {
		t.Errorf("process %d from the first launch is still alive", pidA)
	}
	if processGone(pidB) {
		t.Errorf("process %d from the second launch died", pidB)
	}
}

func TestLaunchFailureLeavesIdle(t *testing.T) {
	s := New(zap.NewNop(), Config{PlayerPath: "/no/such/player"})
	if err := s.Launch("/media/a.m3u"); err == nil {
		t.Fatal("expected launch error")
	}
	if got := s.State(); got != StateIdle {
		t.Errorf("state = %v, want Idle", got)
	}
}

func TestSendCommandOverChannel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	lines := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		line, _ := bufio.NewReader(conn).ReadString('\n')
		lines <- line
	}()

	s := New(zap.NewNop(), Config{
		PlayerPath:    fakePlayer(t),
		RCHost:        "127.0.0.1",
		RCPort:        port,
		ConnectWait:   2 * time.Second,
		RetryInterval: 20 * time.Millisecond,
	})
	defer s.Close()

	if err := s.Launch("/media/a.m3u"); err != nil {
		t.Fatalf("launch: %v", err)
	}
	if !s.WaitReady(2 * time.Second) {
		t.Fatal("channel never connected")
	}
	if err := s.SendCommand("pause"); err != nil {
		t.Fatalf("send: %v", err)
	}
	select {
	case line := <-lines:
		if line != "pause\n" {
			t.Errorf("player received %q", line)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("command never arrived")
	}
}

func TestSendCommandWithoutChannel(t *testing.T) {
	s := New(zap.NewNop(), Config{
		PlayerPath:    fakePlayer(t),
		RCHost:        "127.0.0.1",
		RCPort:        freePort(t), // nothing listening
		ConnectWait:   100 * time.Millisecond,
		RetryInterval: 20 * time.Millisecond,
	})
	defer s.Close()

	if err := s.Launch("/media/a.m3u"); err != nil {
		t.Fatalf("launch: %v", err)
	}
	if err := s.SendCommand("next"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	time.Sleep(200 * time.Millisecond)
	if got := s.State(); got != StateLaunching {
		t.Errorf("state = %v, want Launching after exhausted connect budget", got)
	}
}

func TestSendCommandFailureDisconnects(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	s := New(zap.NewNop(), Config{
		PlayerPath:    fakePlayer(t),
		RCHost:        "127.0.0.1",
		RCPort:        port,
		ConnectWait:   2 * time.Second,
		RetryInterval: 20 * time.Millisecond,
	})
	defer s.Close()

	if err := s.Launch("/media/a.m3u"); err != nil {
		t.Fatalf("launch: %v", err)
	}
	if !s.WaitReady(2 * time.Second) {
		t.Fatal("channel never connected")
	}

	conn := <-accepted
	_ = conn.Close()

	// The first writes may land in the kernel buffer; keep sending
	// until the failure surfaces.
	deadline := time.Now().Add(2 * time.Second)
	var sendErr error
	for time.Now().Before(deadline) {
		if sendErr = s.SendCommand("pause"); sendErr != nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if sendErr == nil {
		t.Fatal("write to a closed channel never failed")
	}
	if got := s.State(); got != StateDisconnected {
		t.Errorf("state = %v, want Disconnected", got)
	}
	if err := s.SendCommand("next"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected after disconnect, got %v", err)
	}
}

func TestAttach(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	go func() {
		for {
			if _, err := ln.Accept(); err != nil {
				return
			}
		}
	}()

	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	s := New(zap.NewNop(), Config{RCHost: host, RCPort: port, ConnectWait: time.Second})
	defer s.Close()

	if err := s.Attach(context.Background()); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if got := s.State(); got != StateConnected {
		t.Errorf("state = %v, want Connected", got)
	}
}
