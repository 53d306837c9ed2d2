// Package action defines logical actions and immutable action sets.
//
// A logical action is an application-level signal ("primary", "jump")
// decoupled from the physical input that triggered it. Actions are plain
// names; a Domain lists the finite set of actions a consumer understands.
package action

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnknownAction indicates an action outside a Domain.
var ErrUnknownAction = errors.New("unknown action")

// Action is a logical action name.
type Action string

// String returns the action name.
func (a Action) String() string {
	return string(a)
}

// Domain is the finite set of actions a consumer recognizes.
// The zero Domain is open and accepts every non-empty action.
type Domain struct {
	actions []Action
}

// NewDomain creates a domain from the given actions.
// Duplicates are ignored and empty names are rejected.
func NewDomain(actions ...Action) (Domain, error) {
	var d Domain
	for _, a := range actions {
		if strings.TrimSpace(string(a)) == "" {
			return Domain{}, fmt.Errorf("%w: empty action name", ErrUnknownAction)
		}
		if !slices.Contains(d.actions, a) {
			d.actions = append(d.actions, a)
		}
	}
	return d, nil
}

// IsOpen returns true if the domain accepts any action.
func (d Domain) IsOpen() bool {
	return len(d.actions) == 0
}

// Contains reports whether a belongs to the domain.
func (d Domain) Contains(a Action) bool {
	if a == "" {
		return false
	}
	return d.IsOpen() || slices.Contains(d.actions, a)
}

// Validate returns ErrUnknownAction if a is outside the domain.
func (d Domain) Validate(a Action) error {
	if !d.Contains(a) {
		return fmt.Errorf("%w: %q", ErrUnknownAction, a)
	}
	return nil
}

// Actions returns the domain members in declaration order.
func (d Domain) Actions() []Action {
	return slices.Clone(d.actions)
}
