// Package key identifies raw physical inputs.
//
// A Key names a single physical trigger on an input device: a keyboard key,
// a mouse button, or a wheel direction. Keys are grouped into a Class, the
// raw channel a key arrives on. The binding router uses the class to decide
// which logical actions compete with each other in unique binding mode.
//
// # Key Names
//
// Keys have canonical names used in configuration files:
//
//   - Letters and digits: "A", "Z", "0", "9"
//   - Special keys: "Space", "Enter", "Escape", "Tab", "Backspace"
//   - Arrows and modifiers: "Up", "Left", "Shift", "Control", "Alt"
//   - Mouse: "MouseLeft", "MouseMiddle", "MouseRight", "MouseButton4", "MouseButton5"
//   - Wheel: "WheelUp", "WheelDown"
//
// Parse accepts the canonical names case-insensitively plus a few aliases
// ("Esc", "Return", "Ctrl", "LMB", "RMB", "MMB").
package key
