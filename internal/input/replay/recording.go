package replay

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/reel/internal/input"
)

// Recording is an ordered, append-only list of frames for one session.
//
// Frame times are expected to be non-decreasing in append order. Appending
// out of order is a caller error: it is not checked, and playback of such a
// recording resolves arbitrary frames.
type Recording struct {
	id      uuid.UUID
	created time.Time
	frames  []Frame

	// claimed is set while a recorder writes to the recording.
	claimed bool
}

// NewRecording creates an empty recording with a fresh ID.
func NewRecording() *Recording {
	return &Recording{
		id:      uuid.New(),
		created: time.Now().UTC(),
	}
}

// Restore rebuilds a recording from stored frames.
// The frames are copied.
func Restore(id uuid.UUID, created time.Time, frames []Frame) *Recording {
	return &Recording{
		id:      id,
		created: created,
		frames:  slices.Clone(frames),
	}
}

// ID returns the recording's identifier.
func (r *Recording) ID() uuid.UUID {
	return r.id
}

// CreatedAt returns when the recording was created.
func (r *Recording) CreatedAt() time.Time {
	return r.created
}

// Append adds a frame at the end of the recording.
func (r *Recording) Append(f Frame) {
	r.frames = append(r.frames, f)
}

// Len returns the number of frames.
func (r *Recording) Len() int {
	return len(r.frames)
}

// At returns the frame at index i.
func (r *Recording) At(i int) (Frame, error) {
	if i < 0 || i >= len(r.frames) {
		return Frame{}, fmt.Errorf("frame %d of %d: %w", i, len(r.frames), input.ErrOutOfRange)
	}
	return r.frames[i], nil
}

// Frames returns a copy of all frames.
func (r *Recording) Frames() []Frame {
	return slices.Clone(r.frames)
}

// First returns the first frame, if any.
func (r *Recording) First() (Frame, bool) {
	if len(r.frames) == 0 {
		return Frame{}, false
	}
	return r.frames[0], true
}

// Last returns the last frame, if any.
func (r *Recording) Last() (Frame, bool) {
	if len(r.frames) == 0 {
		return Frame{}, false
	}
	return r.frames[len(r.frames)-1], true
}

// Duration returns the time of the last frame, or zero if empty.
func (r *Recording) Duration() time.Duration {
	last, ok := r.Last()
	if !ok {
		return 0
	}
	return last.Time
}

// Ordered reports whether frame times are non-decreasing.
func (r *Recording) Ordered() bool {
	return slices.IsSortedFunc(r.frames, func(a, b Frame) int {
		return cmp.Compare(a.Time, b.Time)
	})
}

// HasRecorder reports whether a recorder currently writes to the recording.
func (r *Recording) HasRecorder() bool {
	return r.claimed
}

func (r *Recording) claim() error {
	if r.claimed {
		return fmt.Errorf("recording %s already has a recorder: %w", r.id, input.ErrInvalidState)
	}
	r.claimed = true
	return nil
}

func (r *Recording) release() {
	r.claimed = false
}
