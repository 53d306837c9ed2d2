package replay

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dshills/reel/internal/clock"
	"github.com/dshills/reel/internal/input"
	"github.com/dshills/reel/internal/input/action"
)

// Recorder converts pointer moves and action presses/releases into frames
// appended to a target recording.
//
// A Recorder implements binding.Handler and the manager's pointer handler
// interface. It never reports an event as handled.
type Recorder struct {
	target    *Recording
	clock     clock.Clock
	start     time.Time
	transform input.Transform
	observers []func(Frame)
	logger    *slog.Logger

	position input.Position
	active   action.Set
	last     time.Duration
	closed   bool
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithClock sets the clock used to stamp frames. Defaults to the real clock.
func WithClock(c clock.Clock) RecorderOption {
	return func(r *Recorder) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithLocalSpace sets the transform from manager space into the recorder's
// local space. Positions are stored after this transform.
func WithLocalSpace(t input.Transform) RecorderOption {
	return func(r *Recorder) {
		if t != nil {
			r.transform = t
		}
	}
}

// WithObserver registers fn to be called with every appended frame.
func WithObserver(fn func(Frame)) RecorderOption {
	return func(r *Recorder) {
		if fn != nil {
			r.observers = append(r.observers, fn)
		}
	}
}

// WithRecorderLogger sets the recorder's logger.
func WithRecorderLogger(l *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRecorder creates a recorder writing to target.
// Frame times are measured from the moment the recorder is created.
// Returns an error wrapping input.ErrInvalidState if target already has a
// recorder.
func NewRecorder(target *Recording, opts ...RecorderOption) (*Recorder, error) {
	if target == nil {
		return nil, fmt.Errorf("nil recording: %w", input.ErrInvalidState)
	}

	r := &Recorder{
		target:    target,
		clock:     clock.NewReal(),
		transform: input.Identity,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := target.claim(); err != nil {
		return nil, err
	}
	r.start = r.clock.Now()
	r.logger.Debug("recorder attached", "recording", target.ID().String())
	return r, nil
}

// Target returns the recording being written.
func (r *Recorder) Target() *Recording {
	return r.target
}

// Active returns the action set the recorder currently tracks.
func (r *Recorder) Active() action.Set {
	return r.active
}

// OnPointerMove records a frame at the new position.
func (r *Recorder) OnPointerMove(pos input.Position) bool {
	r.position = r.transform(pos)
	r.record()
	return false
}

// OnPressed adds a to the active set and records a frame.
// Pressing an already active action still records a frame.
func (r *Recorder) OnPressed(a action.Action) bool {
	r.active = r.active.With(a)
	r.record()
	return false
}

// OnReleased removes a from the active set and records a frame.
func (r *Recorder) OnReleased(a action.Action) {
	r.active = r.active.Without(a)
	r.record()
}

// Seed sets the position and active actions the recorder starts from and
// records them as a frame. It is used when recording begins while input is
// already in progress, so the first frame is a complete snapshot.
func (r *Recorder) Seed(pos input.Position, active action.Set) {
	r.position = r.transform(pos)
	r.active = active
	r.record()
}

// Close stops recording and releases the target for another recorder.
// Events received after Close are ignored.
func (r *Recorder) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.target.release()
	r.logger.Debug("recorder closed",
		"recording", r.target.ID().String(), "frames", r.target.Len())
}

func (r *Recorder) record() {
	if r.closed {
		return
	}

	t := r.clock.Since(r.start)
	if t < r.last {
		t = r.last
	}
	r.last = t

	f := Frame{
		Time:     t,
		Position: r.position,
		Actions:  r.active,
	}
	r.target.Append(f)
	for _, fn := range r.observers {
		fn(f)
	}
}
