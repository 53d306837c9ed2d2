package host

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dshills/reel/internal/clock"
	"github.com/dshills/reel/internal/input"
	"github.com/dshills/reel/internal/input/manager"
	"github.com/dshills/reel/internal/input/replay"
)

// DefaultStep is the loop period when none is configured (60 steps per second).
const DefaultStep = time.Second / 60

// StepFunc is called after each manager update with the step time.
type StepFunc func(now time.Duration)

// Loop is a fixed-step driver for a manager.
type Loop struct {
	manager *manager.Manager
	clock   clock.Clock
	step    time.Duration
	logger  *slog.Logger

	events <-chan input.Event
	frames <-chan replay.Frame
	target *replay.Recording

	onStep StepFunc

	start   time.Time
	started bool
	ticks   uint64
}

// Option configures a Loop.
type Option func(*Loop)

// WithClock sets the loop clock. Defaults to the real clock.
func WithClock(c clock.Clock) Option {
	return func(l *Loop) {
		if c != nil {
			l.clock = c
		}
	}
}

// WithStep sets the loop period. Non-positive values are ignored.
func WithStep(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.step = d
		}
	}
}

// WithLogger sets the loop's logger.
func WithLogger(lg *slog.Logger) Option {
	return func(l *Loop) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// WithEvents sets the channel of live device events fed to the manager.
// Run returns when the channel is closed.
func WithEvents(ch <-chan input.Event) Option {
	return func(l *Loop) {
		l.events = ch
	}
}

// WithFrames appends frames received on ch to target before each update.
// Used to replay a recording that is still being written elsewhere.
func WithFrames(ch <-chan replay.Frame, target *replay.Recording) Option {
	return func(l *Loop) {
		if target != nil {
			l.frames = ch
			l.target = target
		}
	}
}

// OnStep registers fn to run after every update.
func OnStep(fn StepFunc) Option {
	return func(l *Loop) {
		l.onStep = fn
	}
}

// New creates a loop around m.
func New(m *manager.Manager, opts ...Option) *Loop {
	l := &Loop{
		manager: m,
		clock:   clock.NewReal(),
		step:    DefaultStep,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Step returns the loop period.
func (l *Loop) Step() time.Duration {
	return l.step
}

// Ticks returns the number of updates performed so far.
func (l *Loop) Ticks() uint64 {
	return l.ticks
}

// Elapsed returns the time since the first tick, or zero before it.
func (l *Loop) Elapsed() time.Duration {
	if !l.started {
		return 0
	}
	return l.clock.Since(l.start)
}

// Tick performs one step: drain pending events and frames, then update the
// manager at the elapsed time. It reports false once the event channel has
// been closed.
func (l *Loop) Tick() bool {
	if !l.started {
		l.start = l.clock.Now()
		l.started = true
	}

	open := l.drainEvents()
	l.drainFrames()

	now := l.clock.Since(l.start)
	l.manager.Update(now)
	l.ticks++
	if l.onStep != nil {
		l.onStep(now)
	}
	return open
}

// Run ticks every step until ctx is done or the event channel closes.
// Cancellation is a normal stop and returns nil.
func (l *Loop) Run(ctx context.Context) error {
	if l.manager == nil {
		return fmt.Errorf("host: nil manager: %w", input.ErrInvalidState)
	}

	ticker := time.NewTicker(l.step)
	defer ticker.Stop()

	l.logger.Debug("loop started", "step", l.step)
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("loop stopped", "ticks", l.ticks)
			return nil
		case <-ticker.C:
			if !l.Tick() {
				l.logger.Debug("event source closed", "ticks", l.ticks)
				return nil
			}
		}
	}
}

func (l *Loop) drainEvents() bool {
	if l.events == nil {
		return true
	}
	for {
		select {
		case ev, ok := <-l.events:
			if !ok {
				l.events = nil
				return false
			}
			l.manager.Feed(ev)
		default:
			return true
		}
	}
}

func (l *Loop) drainFrames() {
	if l.frames == nil {
		return
	}
	for {
		select {
		case f, ok := <-l.frames:
			if !ok {
				l.frames = nil
				l.logger.Debug("frame stream ended", "frames", l.target.Len())
				return
			}
			l.target.Append(f)
		default:
			return
		}
	}
}

// Steps updates m at from, from+step, ... and finally at to, calling fn
// after each update when fn is non-nil.
func Steps(m *manager.Manager, from, to, step time.Duration, fn StepFunc) error {
	if m == nil {
		return fmt.Errorf("host: nil manager: %w", input.ErrInvalidState)
	}
	if step <= 0 {
		return fmt.Errorf("host: step %v: %w", step, input.ErrOutOfRange)
	}
	if to < from {
		return fmt.Errorf("host: range %v..%v: %w", from, to, input.ErrOutOfRange)
	}

	update := func(now time.Duration) {
		m.Update(now)
		if fn != nil {
			fn(now)
		}
	}

	now := from
	for ; now < to; now += step {
		update(now)
	}
	update(to)
	return nil
}
