// Package player drives adhan audio playback through an external process,
// exposing a small play/pause/stop state machine to the UI.
package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tartampluch/go-salat/internal/config"
)

// ErrPlayback wraps every audio failure.
var ErrPlayback = errors.New("audio playback failed")

// Status is the player's externally visible state.
type Status int

const (
	StatusIdle Status = iota
	StatusPlaying
	StatusPaused
)

// Sink performs the actual audio output. Start spawns playback of a local
// file or URL; Done yields exactly one completion per Start, nil on a natural
// end of stream. Seek and SetVolume act on the running session only.
type Sink interface {
	Start(ctx context.Context, source string, volumePct int) error
	Pause() error
	Resume() error
	Stop() error
	Seek(offset time.Duration) error
	SetVolume(volumePct int) error
	Done() <-chan error
}

// Player serializes access to the sink and tracks playback state. All methods
// are safe for concurrent use.
type Player struct {
	Sink Sink

	// VolumePct applies at the next Play; SetVolume changes it for the
	// running session too.
	VolumePct int

	mu       sync.Mutex
	status   Status
	source   string
	finished chan struct{}
	logger   *slog.Logger
}

func New(sink Sink, logger *slog.Logger) *Player {
	return &Player{
		Sink:      sink,
		VolumePct: config.DefaultAdhanVolume,
		logger:    logger.With(config.LogKeyComponent, config.CompPlayer),
	}
}

// Play starts the source. When something is already playing this is a no-op;
// a paused session is discarded in favor of the new source.
func (p *Player) Play(ctx context.Context, source string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status == StatusPlaying {
		return nil
	}
	if p.status == StatusPaused {
		if err := p.Sink.Stop(); err != nil {
			p.logger.Warn(config.MsgPlaybackFailed, config.LogKeyError, err.Error())
		}
		p.reset()
	}

	if err := p.Sink.Start(ctx, source, p.VolumePct); err != nil {
		return fmt.Errorf("%w: %w", ErrPlayback, err)
	}

	p.status = StatusPlaying
	p.source = source
	p.finished = make(chan struct{})
	go p.watch(p.finished, p.Sink.Done())

	p.logger.Info(config.MsgPlaybackStart, config.LogKeySource, source)
	return nil
}

// watch closes the session's finished channel when the sink reports
// completion, unless Stop already ended the session.
func (p *Player) watch(fin chan struct{}, done <-chan error) {
	err := <-done

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished != fin {
		// Superseded by Stop or a newer Play.
		return
	}
	p.status = StatusIdle
	p.finished = nil
	close(fin)
	if err != nil {
		p.logger.Warn(config.MsgPlaybackFailed, config.LogKeyError, err.Error())
	}
}

// Pause suspends playback; a no-op unless something is playing.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status != StatusPlaying {
		return nil
	}
	if err := p.Sink.Pause(); err != nil {
		return fmt.Errorf("%w: %w", ErrPlayback, err)
	}
	p.status = StatusPaused
	return nil
}

// Resume continues a paused session; a no-op unless paused.
func (p *Player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status != StatusPaused {
		return nil
	}
	if err := p.Sink.Resume(); err != nil {
		return fmt.Errorf("%w: %w", ErrPlayback, err)
	}
	p.status = StatusPlaying
	return nil
}

// Seek moves the current session to the given offset from the start of the
// source; a no-op when idle. Negative offsets clamp to the start.
func (p *Player) Seek(offset time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == StatusIdle {
		return nil
	}
	if offset < 0 {
		offset = 0
	}
	if err := p.Sink.Seek(offset); err != nil {
		return fmt.Errorf("%w: %w", ErrPlayback, err)
	}
	return nil
}

// SetVolume adjusts the volume as a 0..1 fraction, clamped. It applies to the
// running session immediately and to every later Play.
func (p *Player) SetVolume(level float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	p.VolumePct = int(level*100 + 0.5)

	if p.status == StatusIdle {
		return nil
	}
	if err := p.Sink.SetVolume(p.VolumePct); err != nil {
		return fmt.Errorf("%w: %w", ErrPlayback, err)
	}
	return nil
}

// Stop ends the current session, if any, and closes its finished channel.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == StatusIdle {
		return nil
	}
	err := p.Sink.Stop()
	p.reset()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPlayback, err)
	}
	return nil
}

// reset must run with the lock held.
func (p *Player) reset() {
	p.status = StatusIdle
	p.source = ""
	if p.finished != nil {
		close(p.finished)
		p.finished = nil
	}
}

// Status returns the current playback state.
func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Source returns what is currently loaded, empty when idle.
func (p *Player) Source() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.source
}

// Finished returns a channel closed when the current session ends, whether
// naturally or via Stop. With no session active, a closed channel is
// returned.
func (p *Player) Finished() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return p.finished
}
