package audio

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Sink plays one PCM buffer to completion. Play must return promptly once
// ctx is cancelled and release whatever device or process it holds.
type Sink interface {
	Play(ctx context.Context, pcm []byte, f Format) error
}

// Player owns a single playback slot. Starting a new sound always stops the
// current one first, so sounds never overlap and the latest request wins.
type Player struct {
	sink   Sink
	format Format
	log    *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	label  string
}

// NewPlayer creates a Player that plays through sink. A nil logger
// disables logging.
func NewPlayer(sink Sink, f Format, log *zap.Logger) *Player {
	if log == nil {
		log = zap.NewNop()
	}
	return &Player{sink: sink, format: f, log: log.Named("audio")}
}

// Play stops any current playback and starts pcm in the background. label
// identifies the sound for Current. Empty buffers only stop playback.
func (p *Player) Play(label string, pcm []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	if len(pcm) == 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel, p.done, p.label = cancel, done, label

	go func() {
		defer close(done)
		err := p.sink.Play(ctx, pcm, p.format)
		switch {
		case err == nil:
			p.log.Debug("playback finished", zap.String("label", label), zap.Duration("length", p.format.Duration(pcm)))
		case errors.Is(err, context.Canceled):
			p.log.Debug("playback stopped", zap.String("label", label))
		default:
			p.log.Warn("playback failed", zap.String("label", label), zap.Error(err))
		}
	}()
}

// Stop halts the current playback, if any, and waits for the sink to
// release it.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// Current returns the label of the sound that is still playing, or "".
func (p *Player) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done == nil {
		return ""
	}
	select {
	case <-p.done:
		return ""
	default:
		return p.label
	}
}

// Close stops playback. The Player may still be used afterwards.
func (p *Player) Close() error {
	p.Stop()
	return nil
}

func (p *Player) stopLocked() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.cancel, p.done, p.label = nil, nil, ""
}
