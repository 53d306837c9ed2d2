package key

import "strconv"

// Key represents a raw physical input.
type Key uint16

const (
	// KeyNone represents no key.
	KeyNone Key = iota

	// Letters
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ

	// Digits
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9

	// Special keys
	KeySpace
	KeyEnter
	KeyEscape
	KeyTab
	KeyBackspace

	// Arrow keys
	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	// Modifier keys
	KeyShift
	KeyControl
	KeyAlt

	// Mouse buttons
	MouseLeft
	MouseMiddle
	MouseRight
	MouseButton4
	MouseButton5

	// Wheel directions
	WheelUp
	WheelDown

	keyCount
)

// Class is the raw channel a key arrives on.
type Class uint8

const (
	// ClassNone is the class of KeyNone and unknown keys.
	ClassNone Class = iota
	// ClassKeyboard covers keyboard keys.
	ClassKeyboard
	// ClassMouse covers mouse buttons.
	ClassMouse
	// ClassWheel covers wheel directions.
	ClassWheel
)

// String returns a string representation of the class.
func (c Class) String() string {
	switch c {
	case ClassKeyboard:
		return "keyboard"
	case ClassMouse:
		return "mouse"
	case ClassWheel:
		return "wheel"
	default:
		return "none"
	}
}

var specialNames = map[Key]string{
	KeyNone:      "None",
	KeySpace:     "Space",
	KeyEnter:     "Enter",
	KeyEscape:    "Escape",
	KeyTab:       "Tab",
	KeyBackspace: "Backspace",
	KeyUp:        "Up",
	KeyDown:      "Down",
	KeyLeft:      "Left",
	KeyRight:     "Right",
	KeyShift:     "Shift",
	KeyControl:   "Control",
	KeyAlt:       "Alt",
	MouseLeft:    "MouseLeft",
	MouseMiddle:  "MouseMiddle",
	MouseRight:   "MouseRight",
	MouseButton4: "MouseButton4",
	MouseButton5: "MouseButton5",
	WheelUp:      "WheelUp",
	WheelDown:    "WheelDown",
}

// String returns the canonical name of the key.
func (k Key) String() string {
	switch {
	case k >= KeyA && k <= KeyZ:
		return string(rune('A' + int(k-KeyA)))
	case k >= Key0 && k <= Key9:
		return string(rune('0' + int(k-Key0)))
	}
	if name, ok := specialNames[k]; ok {
		return name
	}
	return "Key(" + strconv.Itoa(int(k)) + ")"
}

// Class returns the raw channel class of the key.
func (k Key) Class() Class {
	switch {
	case k == KeyNone || k >= keyCount:
		return ClassNone
	case k >= MouseLeft && k <= MouseButton5:
		return ClassMouse
	case k == WheelUp || k == WheelDown:
		return ClassWheel
	default:
		return ClassKeyboard
	}
}

// IsValid returns true if k names a known physical input.
func (k Key) IsValid() bool {
	return k != KeyNone && k < keyCount
}

// IsMouse returns true for mouse buttons.
func (k Key) IsMouse() bool {
	return k.Class() == ClassMouse
}

// Letter returns the key for an ASCII letter, or KeyNone.
func Letter(r rune) Key {
	switch {
	case r >= 'a' && r <= 'z':
		return KeyA + Key(r-'a')
	case r >= 'A' && r <= 'Z':
		return KeyA + Key(r-'A')
	case r >= '0' && r <= '9':
		return Key0 + Key(r-'0')
	case r == ' ':
		return KeySpace
	}
	return KeyNone
}

// All returns every valid key in declaration order.
func All() []Key {
	keys := make([]Key, 0, int(keyCount)-1)
	for k := KeyNone + 1; k < keyCount; k++ {
		keys = append(keys, k)
	}
	return keys
}
