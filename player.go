package pgmplay

import (
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Surface is a character-cell display frames are drawn on.
type Surface interface {
	Init() error
	HideCursor()
	Clear()
	WriteGlyph(row, col int, glyph byte)
	Present() error
	// Teardown gives the display back in a usable state. It must be safe to
	// call more than once.
	Teardown() error
}

type PlayerOpt func(p *Player)

func WithPlayerLogger(l *zap.Logger) PlayerOpt {
	return func(p *Player) {
		p.logger = l
	}
}

// WithSleep replaces time.Sleep for the pause after each frame.
func WithSleep(sleep func(time.Duration)) PlayerOpt {
	return func(p *Player) {
		p.sleep = sleep
	}
}

// Player shows a Sequence on a Surface at a fixed pace.
type Player struct {
	surface Surface
	sleep   func(time.Duration)
	logger  *zap.Logger
}

func NewPlayer(s Surface, opts ...PlayerOpt) *Player {
	p := Player{
		surface: s,
		sleep:   time.Sleep,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&p)
	}
	return &p
}

/*
Play draws every frame of seq once, in order. Each frame clears the surface,
writes all of its glyphs, presents them and then waits delay before the next
one. There is no looping and no input handling.

The surface is initialized once up front and torn down before Play returns,
whether playback finished or failed, so callers can report errors on a
restored terminal.
*/
func (p *Player) Play(seq *Sequence, delay time.Duration) (err error) {
	if delay < 0 {
		return ErrNegativeDelay
	}
	if err := p.surface.Init(); err != nil {
		return multierr.Append(err, p.surface.Teardown())
	}
	defer func() {
		err = multierr.Append(err, p.surface.Teardown())
	}()
	p.surface.HideCursor()

	for i := 0; i < seq.Len(); i++ {
		trace(p.logger, TraceFrames, "show frame", zap.Int("frame", seq.First()+i))
		if err := p.draw(seq.Frame(i)); err != nil {
			return err
		}
		p.sleep(delay)
	}
	return nil
}

func (p *Player) draw(f *Frame) error {
	p.surface.Clear()
	for row := 0; row < f.Height(); row++ {
		for col := 0; col < f.Width(); col++ {
			p.surface.WriteGlyph(row, col, f.At(row, col))
		}
	}
	return p.surface.Present()
}
