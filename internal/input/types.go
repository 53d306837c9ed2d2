package input

import (
	"fmt"

	"github.com/dshills/reel/internal/input/action"
	"github.com/dshills/reel/internal/input/key"
)

// Position is a pointer coordinate in some 2D space.
type Position struct {
	X float64
	Y float64
}

// Pos is shorthand for Position{X: x, Y: y}.
func Pos(x, y float64) Position {
	return Position{X: x, Y: y}
}

// Add returns p translated by other.
func (p Position) Add(other Position) Position {
	return Position{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns p minus other.
func (p Position) Sub(other Position) Position {
	return Position{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale returns p with both components multiplied by f.
func (p Position) Scale(f float64) Position {
	return Position{X: p.X * f, Y: p.Y * f}
}

// String returns "(x, y)".
func (p Position) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Transform maps a position from one space into another.
type Transform func(Position) Position

// Identity returns p unchanged.
func Identity(p Position) Position {
	return p
}

// Offset returns a transform that translates by delta.
func Offset(delta Position) Transform {
	return func(p Position) Position {
		return p.Add(delta)
	}
}

// Source indicates the origin of an event.
type Source uint8

const (
	// SourceLive indicates the event came from a physical device.
	SourceLive Source = iota
	// SourceReplay indicates the event was synthesized by a playback cursor.
	SourceReplay
)

// String returns a string representation of the source.
func (s Source) String() string {
	switch s {
	case SourceLive:
		return "live"
	case SourceReplay:
		return "replay"
	default:
		return "unknown"
	}
}

// Event is one unit of input delivered to the manager.
// The set of events is closed: PositionEvent, KeyDownEvent, KeyUpEvent and
// ActionStateEvent.
type Event interface {
	isEvent()
}

// PositionEvent moves the pointer to an absolute position.
type PositionEvent struct {
	Position Position
}

// KeyDownEvent reports a raw input going down.
type KeyDownEvent struct {
	Key key.Key
}

// KeyUpEvent reports a raw input going up.
type KeyUpEvent struct {
	Key key.Key
}

// ActionStateEvent replaces the set of active logical actions.
// Playback emits it instead of raw key events.
type ActionStateEvent struct {
	Actions action.Set
}

func (PositionEvent) isEvent()    {}
func (KeyDownEvent) isEvent()     {}
func (KeyUpEvent) isEvent()       {}
func (ActionStateEvent) isEvent() {}

// Describe returns a short human-readable description of an event.
func Describe(ev Event) string {
	switch e := ev.(type) {
	case PositionEvent:
		return "position " + e.Position.String()
	case KeyDownEvent:
		return "down " + e.Key.String()
	case KeyUpEvent:
		return "up " + e.Key.String()
	case ActionStateEvent:
		return "actions " + e.Actions.String()
	default:
		return fmt.Sprintf("event %T", ev)
	}
}
