package binding

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/dshills/reel/internal/input"
	"github.com/dshills/reel/internal/input/action"
	"github.com/dshills/reel/internal/input/key"
)

// activation tracks one active action.
type activation struct {
	// class is the raw channel class that activated the action.
	// ClassNone for actions set directly through SetActive.
	class key.Class

	// holders are the raw keys currently holding the action down.
	holders []key.Key

	// receivers are the handlers offered the press, in notification order.
	receivers []Handler
}

// Router translates raw keys into logical actions and notifies handlers.
//
// Router is not safe for concurrent use; it is driven from the update loop.
type Router struct {
	table  *Table
	mode   Mode
	logger *slog.Logger

	handlers []Handler

	// held maps raw keys that are down to the action they resolved to.
	held map[key.Key]action.Action

	// active holds current activations; order records activation order.
	active map[action.Action]*activation
	order  []action.Action
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRouter creates a router over table using the given mode.
// A nil table binds nothing.
func NewRouter(table *Table, mode Mode, opts ...Option) *Router {
	if table == nil {
		table = &Table{index: map[key.Key]action.Action{}}
	}
	r := &Router{
		table:  table,
		mode:   mode,
		logger: slog.New(slog.DiscardHandler),
		held:   make(map[key.Key]action.Action),
		active: make(map[action.Action]*activation),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Table returns the router's binding table.
func (r *Router) Table() *Table {
	return r.table
}

// Mode returns the simultaneous binding mode.
func (r *Router) Mode() Mode {
	return r.mode
}

// AddHandler appends h to the handler list.
// Adding a handler that is already present is a no-op.
func (r *Router) AddHandler(h Handler) {
	if h == nil || r.hasHandler(h) {
		return
	}
	r.handlers = append(r.handlers, h)
}

// PrependHandler inserts h at the front of the handler list so it is
// offered every press before any other handler.
// Adding a handler that is already present is a no-op.
func (r *Router) PrependHandler(h Handler) {
	if h == nil || r.hasHandler(h) {
		return
	}
	r.handlers = slices.Insert(r.handlers, 0, h)
}

// JoinActive makes h a receiver of every action that is already active, so
// it is notified when those actions are released. h is placed ahead of the
// existing receivers. Actions h already receives are left alone.
func (r *Router) JoinActive(h Handler) {
	if h == nil {
		return
	}
	for _, a := range r.order {
		act := r.active[a]
		if slices.Contains(act.receivers, h) {
			continue
		}
		act.receivers = slices.Insert(act.receivers, 0, h)
	}
}

// RemoveHandler removes h from the handler list.
// Removing an absent handler is a no-op. Releases for presses h was already
// offered are still delivered to it.
func (r *Router) RemoveHandler(h Handler) {
	r.handlers = slices.DeleteFunc(r.handlers, func(existing Handler) bool {
		return existing == h
	})
}

// Handler returns the handler at index i.
func (r *Router) Handler(i int) (Handler, error) {
	if i < 0 || i >= len(r.handlers) {
		return nil, fmt.Errorf("handler %d of %d: %w", i, len(r.handlers), input.ErrOutOfRange)
	}
	return r.handlers[i], nil
}

// HandlerCount returns the number of registered handlers.
func (r *Router) HandlerCount() int {
	return len(r.handlers)
}

func (r *Router) hasHandler(h Handler) bool {
	return slices.Contains(r.handlers, h)
}

// KeyDown handles a raw key going down.
// It returns true if the key activated an action that was not already active.
func (r *Router) KeyDown(k key.Key) bool {
	a, ok := r.table.Lookup(k)
	if !ok {
		return false
	}
	if _, down := r.held[k]; down {
		// Repeat of a key that is already held.
		return false
	}
	r.held[k] = a

	if act, ok := r.active[a]; ok {
		act.holders = append(act.holders, k)
		return false
	}

	r.applyPolicy(a, k.Class())
	r.activate(a, k.Class(), k)
	return true
}

// KeyUp handles a raw key going up.
// It returns true if the key's release deactivated an action.
func (r *Router) KeyUp(k key.Key) bool {
	a, ok := r.held[k]
	if !ok {
		return false
	}
	delete(r.held, k)

	act, ok := r.active[a]
	if !ok {
		// Already released by the binding mode.
		return false
	}
	i := slices.Index(act.holders, k)
	if i < 0 {
		return false
	}
	act.holders = slices.Delete(act.holders, i, i+1)
	if len(act.holders) > 0 {
		return false
	}
	r.deactivate(a)
	return true
}

// SetActive makes the active action set equal to set.
// Actions missing from set are released and new ones are pressed, through
// the same notification path as raw keys. The binding mode is not applied:
// the set is taken as already resolved.
func (r *Router) SetActive(set action.Set) {
	for _, a := range slices.Clone(r.order) {
		if !set.Has(a) {
			r.deactivate(a)
		}
	}
	for _, a := range set.Slice() {
		if _, ok := r.active[a]; !ok {
			r.activate(a, key.ClassNone, key.KeyNone)
		}
	}
}

// ReleaseAll releases every active action and forgets held keys.
func (r *Router) ReleaseAll() {
	for _, a := range slices.Clone(r.order) {
		r.deactivate(a)
	}
	clear(r.held)
}

// Active returns the set of active actions.
func (r *Router) Active() action.Set {
	return action.NewSet(r.order...)
}

// IsActive reports whether a is active.
func (r *Router) IsActive(a action.Action) bool {
	_, ok := r.active[a]
	return ok
}

// applyPolicy releases actions that the mode says must not stay active
// alongside a.
func (r *Router) applyPolicy(a action.Action, class key.Class) {
	if r.mode == ModeAll {
		return
	}
	for _, other := range slices.Clone(r.order) {
		if other == a {
			continue
		}
		act := r.active[other]
		if r.mode == ModeUnique && act.class != class {
			continue
		}
		r.logger.Debug("releasing action for binding mode",
			"mode", r.mode.String(), "released", string(other), "pressed", string(a))
		r.deactivate(other)
	}
}

func (r *Router) activate(a action.Action, class key.Class, holder key.Key) {
	act := &activation{class: class}
	if holder != key.KeyNone {
		act.holders = []key.Key{holder}
	}
	r.active[a] = act
	r.order = append(r.order, a)

	for _, h := range slices.Clone(r.handlers) {
		act.receivers = append(act.receivers, h)
		if h.OnPressed(a) {
			break
		}
	}
}

func (r *Router) deactivate(a action.Action) {
	act, ok := r.active[a]
	if !ok {
		return
	}
	delete(r.active, a)
	r.order = slices.DeleteFunc(r.order, func(x action.Action) bool { return x == a })

	for _, h := range act.receivers {
		h.OnReleased(a)
	}
}
