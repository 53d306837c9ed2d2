package action

import (
	"slices"
	"strings"
)

// Set is an immutable set of actions.
// Members are kept sorted so equal sets compare and print identically.
// The zero Set is empty and ready to use.
type Set struct {
	members []Action
}

// NewSet creates a set from the given actions, dropping duplicates.
func NewSet(actions ...Action) Set {
	if len(actions) == 0 {
		return Set{}
	}
	members := slices.Clone(actions)
	slices.Sort(members)
	return Set{members: slices.Compact(members)}
}

// Len returns the number of actions in the set.
func (s Set) Len() int {
	return len(s.members)
}

// IsEmpty returns true if the set has no members.
func (s Set) IsEmpty() bool {
	return len(s.members) == 0
}

// Has reports whether a is in the set.
func (s Set) Has(a Action) bool {
	_, found := slices.BinarySearch(s.members, a)
	return found
}

// With returns a set that also contains a.
// Adding a present action returns s unchanged.
func (s Set) With(a Action) Set {
	i, found := slices.BinarySearch(s.members, a)
	if found {
		return s
	}
	members := make([]Action, 0, len(s.members)+1)
	members = append(members, s.members[:i]...)
	members = append(members, a)
	members = append(members, s.members[i:]...)
	return Set{members: members}
}

// Without returns a set that does not contain a.
// Removing an absent action returns s unchanged.
func (s Set) Without(a Action) Set {
	i, found := slices.BinarySearch(s.members, a)
	if !found {
		return s
	}
	members := make([]Action, 0, len(s.members)-1)
	members = append(members, s.members[:i]...)
	members = append(members, s.members[i+1:]...)
	return Set{members: members}
}

// Slice returns the members in sorted order.
func (s Set) Slice() []Action {
	return slices.Clone(s.members)
}

// Equal reports whether both sets have the same members.
func (s Set) Equal(other Set) bool {
	return slices.Equal(s.members, other.members)
}

// String returns "{a, b}".
func (s Set) String() string {
	names := make([]string, len(s.members))
	for i, a := range s.members {
		names[i] = string(a)
	}
	return "{" + strings.Join(names, ", ") + "}"
}
