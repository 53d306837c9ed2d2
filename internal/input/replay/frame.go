package replay

import (
	"fmt"
	"time"

	"github.com/dshills/reel/internal/input"
	"github.com/dshills/reel/internal/input/action"
)

// Frame is a timestamped snapshot of logical input state.
type Frame struct {
	// Time is the offset from the start of the recording.
	Time time.Duration

	// Position is the pointer position in the recorder's local space.
	Position input.Position

	// Actions is the full set of active actions.
	Actions action.Set
}

// NewFrame creates a frame.
func NewFrame(t time.Duration, pos input.Position, actions ...action.Action) Frame {
	return Frame{
		Time:     t,
		Position: pos,
		Actions:  action.NewSet(actions...),
	}
}

// Equal reports whether two frames hold the same time and state.
func (f Frame) Equal(other Frame) bool {
	return f.Time == other.Time &&
		f.Position == other.Position &&
		f.Actions.Equal(other.Actions)
}

// SameState reports whether two frames hold the same input state,
// ignoring time.
func (f Frame) SameState(other Frame) bool {
	return f.Position == other.Position && f.Actions.Equal(other.Actions)
}

// String returns "@100ms (5, 5) {a}".
func (f Frame) String() string {
	return fmt.Sprintf("@%s %s %s", f.Time, f.Position, f.Actions)
}
