package key

import (
	"errors"
	"fmt"
	"strings"
)

// Parse errors
var (
	ErrEmptySpec  = errors.New("empty key specification")
	ErrUnknownKey = errors.New("unknown key")
)

var aliases = map[string]Key{
	"esc":        KeyEscape,
	"return":     KeyEnter,
	"cr":         KeyEnter,
	"bs":         KeyBackspace,
	"ctrl":       KeyControl,
	"lmb":        MouseLeft,
	"mmb":        MouseMiddle,
	"rmb":        MouseRight,
	"mouse1":     MouseLeft,
	"mouse2":     MouseRight,
	"mouse3":     MouseMiddle,
	"mouse4":     MouseButton4,
	"mouse5":     MouseButton5,
	"scrollup":   WheelUp,
	"scrolldown": WheelDown,
}

// byName indexes canonical names in lower case.
var byName = func() map[string]Key {
	m := make(map[string]Key, int(keyCount))
	for _, k := range All() {
		m[strings.ToLower(k.String())] = k
	}
	return m
}()

// Parse parses a key name into a Key.
//
// Supported formats:
//   - Canonical names, case-insensitive: "A", "space", "MouseLeft"
//   - Aliases: "Esc", "Return", "Ctrl", "LMB", "Mouse1"
//   - Vim-style brackets are tolerated: "<Space>", "<Esc>"
func Parse(spec string) (Key, error) {
	spec = strings.TrimSpace(spec)
	if strings.HasPrefix(spec, "<") && strings.HasSuffix(spec, ">") {
		spec = strings.TrimSpace(spec[1 : len(spec)-1])
	}
	if spec == "" {
		return KeyNone, ErrEmptySpec
	}

	lower := strings.ToLower(spec)
	if k, ok := byName[lower]; ok {
		return k, nil
	}
	if k, ok := aliases[lower]; ok {
		return k, nil
	}
	return KeyNone, fmt.Errorf("%w: %q", ErrUnknownKey, spec)
}

// MustParse is like Parse but panics on error.
// Intended for static tables and tests.
func MustParse(spec string) Key {
	k, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return k
}

// MarshalText implements encoding.TextMarshaler.
func (k Key) MarshalText() ([]byte, error) {
	if !k.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKey, uint16(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
