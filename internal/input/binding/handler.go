package binding

import "github.com/dshills/reel/internal/input/action"

// Handler receives logical action notifications.
//
// Handlers are compared by identity when added or removed, so they should be
// pointers or other comparable values.
type Handler interface {
	// OnPressed is called when an action becomes active.
	// Return true to stop the press reaching later handlers.
	OnPressed(a action.Action) bool

	// OnReleased is called when an action that was offered to this handler
	// becomes inactive.
	OnReleased(a action.Action)
}

// Funcs adapts a pair of functions to the Handler interface.
// Nil functions are treated as no-ops that do not handle the press.
type Funcs struct {
	Pressed  func(a action.Action) bool
	Released func(a action.Action)
}

// OnPressed implements Handler.
func (f *Funcs) OnPressed(a action.Action) bool {
	if f.Pressed == nil {
		return false
	}
	return f.Pressed(a)
}

// OnReleased implements Handler.
func (f *Funcs) OnReleased(a action.Action) {
	if f.Released != nil {
		f.Released(a)
	}
}
