package binding

import (
	"fmt"
	"strings"
)

// Mode is the simultaneous binding mode.
type Mode uint8

const (
	// ModeUnique allows one active action per raw channel class.
	ModeUnique Mode = iota
	// ModeAll allows any number of distinct active actions.
	ModeAll
	// ModeSingle allows one active action in total.
	ModeSingle
)

// String returns a string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeUnique:
		return "unique"
	case ModeAll:
		return "all"
	case ModeSingle:
		return "single"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unique", "":
		return ModeUnique, nil
	case "all":
		return ModeAll, nil
	case "single", "none":
		return ModeSingle, nil
	default:
		return ModeUnique, fmt.Errorf("unknown binding mode %q (must be unique, all, or single)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
