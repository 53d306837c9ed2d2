package replay

import (
	"sort"
	"time"

	"github.com/dshills/reel/internal/input"
	"github.com/dshills/reel/internal/input/action"
)

// Cursor resolves the current frame of a recording at a host-supplied time
// and synthesizes the input a live device would have produced.
type Cursor struct {
	rec       *Recording
	transform input.Transform
	neutral   input.Position

	// index is the current frame, or -1 before the first frame.
	index int
	time  time.Duration
}

// CursorOption configures a Cursor.
type CursorOption func(*Cursor)

// WithTransform sets the transform from recorded positions into the
// consumer's space. It is applied on every poll.
func WithTransform(t input.Transform) CursorOption {
	return func(c *Cursor) {
		if t != nil {
			c.transform = t
		}
	}
}

// WithNeutral sets the position reported when no frame is current.
// Defaults to the origin.
func WithNeutral(pos input.Position) CursorOption {
	return func(c *Cursor) {
		c.neutral = pos
	}
}

// NewCursor creates a cursor positioned before the first frame of rec.
// A nil recording behaves as an empty one.
func NewCursor(rec *Recording, opts ...CursorOption) *Cursor {
	if rec == nil {
		rec = &Recording{}
	}
	c := &Cursor{
		rec:       rec,
		transform: input.Identity,
		index:     -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Recording returns the recording being played.
func (c *Cursor) Recording() *Recording {
	return c.rec
}

// SetTransform replaces the output transform.
// The consumer may move between polls, so the transform is not baked into
// frames.
func (c *Cursor) SetTransform(t input.Transform) {
	if t == nil {
		t = input.Identity
	}
	c.transform = t
}

// SetTime resolves the frame current at t and reports whether one exists.
//
// The resolved frame i satisfies frame[i].Time <= t < frame[i+1].Time, or is
// the last frame when t is at or after it. When t precedes the first frame,
// or the recording is empty, no frame is current. t may move backward.
func (c *Cursor) SetTime(t time.Duration) bool {
	c.time = t
	frames := c.rec.frames
	n := len(frames)

	if n == 0 || t < frames[0].Time {
		c.index = -1
		return false
	}

	// Monotonic polling usually stays on the current frame or steps to the next.
	for _, i := range [2]int{c.index, c.index + 1} {
		if i >= 0 && i < n && brackets(frames, i, t) {
			c.index = i
			return true
		}
	}

	c.index = sort.Search(n, func(j int) bool {
		return frames[j].Time > t
	}) - 1
	return true
}

func brackets(frames []Frame, i int, t time.Duration) bool {
	if frames[i].Time > t {
		return false
	}
	return i == len(frames)-1 || t < frames[i+1].Time
}

// Time returns the last time passed to SetTime.
func (c *Cursor) Time() time.Duration {
	return c.time
}

// Index returns the current frame index, or -1 if none is current.
func (c *Cursor) Index() int {
	return c.index
}

// CurrentFrame returns the current frame, if any.
func (c *Cursor) CurrentFrame() (Frame, bool) {
	if c.index < 0 || c.index >= len(c.rec.frames) {
		return Frame{}, false
	}
	return c.rec.frames[c.index], true
}

// PendingInputs returns the synthesized events for the current frame: an
// absolute pointer position in the consumer's space and the full set of
// active actions. With no current frame the neutral position and an empty
// set are reported.
func (c *Cursor) PendingInputs() []input.Event {
	pos := c.neutral
	var actions action.Set
	if f, ok := c.CurrentFrame(); ok {
		pos = f.Position
		actions = f.Actions
	}

	return []input.Event{
		input.PositionEvent{Position: c.transform(pos)},
		input.ActionStateEvent{Actions: actions},
	}
}
