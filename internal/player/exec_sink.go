//go:build !windows

package player

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/tartampluch/go-salat/internal/config"
)

// ExecSink plays audio by spawning a command-line player. The first candidate
// found on PATH wins. Pause and resume map to SIGSTOP/SIGCONT; seeking and
// mid-session volume changes respawn the process at the wanted offset, since
// neither candidate takes transport commands without an IPC channel.
type ExecSink struct {
	// Candidates overrides the probed commands, mainly for tests.
	Candidates []string

	mu   sync.Mutex
	ctx  context.Context
	cmd  *exec.Cmd
	done chan error

	// stale marks processes killed by a respawn so their waiters stay quiet.
	stale map[*exec.Cmd]bool

	source   string
	volume   int
	offset   time.Duration
	started  time.Time
	pausedAt time.Time
}

var defaultCandidates = []string{"mpv", "ffplay"}

func NewExecSink() *ExecSink {
	return &ExecSink{
		Candidates: defaultCandidates,
		stale:      make(map[*exec.Cmd]bool),
	}
}

func (s *ExecSink) Start(ctx context.Context, source string, volumePct int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stale == nil {
		s.stale = make(map[*exec.Cmd]bool)
	}
	s.ctx = ctx
	s.source = source
	s.volume = volumePct
	s.offset = 0
	s.pausedAt = time.Time{}
	s.done = make(chan error, 1)

	return s.spawn(0)
}

// spawn launches the player at the given offset into the source. It must run
// with the lock held and s.done set for the session.
func (s *ExecSink) spawn(offset time.Duration) error {
	name, args, err := s.command(s.source, s.volume, offset)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(s.ctx, name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}

	s.cmd = cmd
	s.offset = offset
	s.started = time.Now()
	go func(c *exec.Cmd, ch chan error) {
		err := c.Wait()
		s.mu.Lock()
		skip := s.stale[c]
		delete(s.stale, c)
		s.mu.Unlock()
		if skip {
			return
		}
		ch <- err
	}(cmd, s.done)
	return nil
}

// respawn replaces the running process with one starting at the offset,
// keeping the session's done channel and its paused state. Lock held by the
// caller.
func (s *ExecSink) respawn(offset time.Duration) error {
	wasPaused := !s.pausedAt.IsZero()
	if s.cmd != nil && s.cmd.Process != nil {
		s.stale[s.cmd] = true
		_ = s.cmd.Process.Kill()
	}
	s.pausedAt = time.Time{}
	if err := s.spawn(offset); err != nil {
		return err
	}
	if wasPaused {
		if err := s.signal(syscall.SIGSTOP); err != nil {
			return err
		}
		s.pausedAt = time.Now()
	}
	return nil
}

// command picks the first available player and builds its invocation. Both
// candidates accept local paths and HTTP(S) URLs.
func (s *ExecSink) command(source string, volumePct int, offset time.Duration) (string, []string, error) {
	for _, candidate := range s.Candidates {
		path, err := exec.LookPath(candidate)
		if err != nil {
			continue
		}
		secs := offset.Seconds()
		switch candidate {
		case "ffplay":
			// ffplay volume is 0-100, matching the preference scale.
			args := []string{"-nodisp", "-autoexit", "-loglevel", "error", "-volume", strconv.Itoa(volumePct)}
			if secs > 0 {
				args = append(args, "-ss", fmt.Sprintf("%.1f", secs))
			}
			return path, append(args, source), nil
		default:
			args := []string{"--no-video", "--really-quiet", fmt.Sprintf("--volume=%d", volumePct)}
			if secs > 0 {
				args = append(args, fmt.Sprintf("--start=%.1f", secs))
			}
			return path, append(args, source), nil
		}
	}
	return "", nil, errors.New(config.ErrNoAudioPlayer)
}

// elapsed estimates the playback position. Lock held by the caller.
func (s *ExecSink) elapsed() time.Duration {
	if !s.pausedAt.IsZero() {
		return s.offset + s.pausedAt.Sub(s.started)
	}
	return s.offset + time.Since(s.started)
}

func (s *ExecSink) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.signal(syscall.SIGSTOP); err != nil {
		return err
	}
	s.pausedAt = time.Now()
	return nil
}

func (s *ExecSink) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.signal(syscall.SIGCONT); err != nil {
		return err
	}
	if !s.pausedAt.IsZero() {
		// Shift the clock so the paused stretch does not count as progress.
		s.started = s.started.Add(time.Since(s.pausedAt))
		s.pausedAt = time.Time{}
	}
	return nil
}

// Seek jumps the running session to the offset by respawning the player
// there.
func (s *ExecSink) Seek(offset time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd == nil || s.cmd.Process == nil {
		return errors.New(config.ErrNoAudioPlayer)
	}
	return s.respawn(offset)
}

// SetVolume changes the session volume, respawning at the current position
// when a process is live.
func (s *ExecSink) SetVolume(volumePct int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = volumePct
	if s.cmd == nil || s.cmd.Process == nil {
		return nil
	}
	return s.respawn(s.elapsed())
}

func (s *ExecSink) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd == nil || s.cmd.Process == nil {
		return nil
	}
	err := s.cmd.Process.Kill()
	s.cmd = nil
	return err
}

func (s *ExecSink) Done() <-chan error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// signal must run with the lock held.
func (s *ExecSink) signal(sig syscall.Signal) error {
	if s.cmd == nil || s.cmd.Process == nil {
		return errors.New(config.ErrNoAudioPlayer)
	}
	return s.cmd.Process.Signal(sig)
}
