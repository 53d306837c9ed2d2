package binding

import (
	"errors"
	"fmt"

	"github.com/dshills/reel/internal/input/action"
	"github.com/dshills/reel/internal/input/key"
)

// Table errors.
var (
	// ErrInvalidBinding indicates a binding with no key or no action.
	ErrInvalidBinding = errors.New("invalid binding")

	// ErrDuplicateKey indicates a raw key bound more than once.
	ErrDuplicateKey = errors.New("key bound more than once")
)

// Binding represents a single raw-key-to-action mapping.
type Binding struct {
	// Key is the raw input that triggers this binding.
	Key key.Key

	// Action is the logical action produced.
	Action action.Action
}

// NewBinding creates a new binding with the given key and action.
func NewBinding(k key.Key, a action.Action) Binding {
	return Binding{Key: k, Action: a}
}

// ParseBinding creates a binding from a key name and an action name.
func ParseBinding(keySpec, actionName string) (Binding, error) {
	k, err := key.Parse(keySpec)
	if err != nil {
		return Binding{}, fmt.Errorf("binding %q: %w", keySpec, err)
	}
	return NewBinding(k, action.Action(actionName)), nil
}

// String returns "Key -> action".
func (b Binding) String() string {
	return fmt.Sprintf("%s -> %s", b.Key, b.Action)
}

// Table is an immutable set of bindings.
type Table struct {
	bindings []Binding
	index    map[key.Key]action.Action
	domain   action.Domain
}

// NewTable validates bindings and builds a table.
// Every action must belong to domain; the zero Domain accepts any action.
func NewTable(domain action.Domain, bindings ...Binding) (*Table, error) {
	t := &Table{
		bindings: make([]Binding, 0, len(bindings)),
		index:    make(map[key.Key]action.Action, len(bindings)),
		domain:   domain,
	}

	for i, b := range bindings {
		if !b.Key.IsValid() {
			return nil, fmt.Errorf("binding %d: %w: no key", i, ErrInvalidBinding)
		}
		if b.Action == "" {
			return nil, fmt.Errorf("binding %d (%s): %w: empty action", i, b.Key, ErrInvalidBinding)
		}
		if err := domain.Validate(b.Action); err != nil {
			return nil, fmt.Errorf("binding %d (%s): %w", i, b.Key, err)
		}
		if existing, ok := t.index[b.Key]; ok {
			return nil, fmt.Errorf("binding %d: %w: %s already maps to %s", i, ErrDuplicateKey, b.Key, existing)
		}
		t.index[b.Key] = b.Action
		t.bindings = append(t.bindings, b)
	}

	return t, nil
}

// MustTable is like NewTable with an open domain but panics on error.
func MustTable(bindings ...Binding) *Table {
	t, err := NewTable(action.Domain{}, bindings...)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the action bound to k.
func (t *Table) Lookup(k key.Key) (action.Action, bool) {
	if t == nil {
		return "", false
	}
	a, ok := t.index[k]
	return a, ok
}

// KeysFor returns the keys bound to a, in table order.
func (t *Table) KeysFor(a action.Action) []key.Key {
	if t == nil {
		return nil
	}
	var keys []key.Key
	for _, b := range t.bindings {
		if b.Action == a {
			keys = append(keys, b.Key)
		}
	}
	return keys
}

// Bindings returns a copy of the bindings in declaration order.
func (t *Table) Bindings() []Binding {
	if t == nil {
		return nil
	}
	out := make([]Binding, len(t.bindings))
	copy(out, t.bindings)
	return out
}

// Len returns the number of bindings.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.bindings)
}

// Domain returns the action domain the table was validated against.
func (t *Table) Domain() action.Domain {
	if t == nil {
		return action.Domain{}
	}
	return t.domain
}
