// Package terminal is a live input device backed by a tcell screen.
//
// Terminals report mouse state as a button mask on every mouse event and
// report keys without releases. The device turns button mask changes into
// key down/up pairs for the mouse buttons, and every key press or wheel
// step into an immediate down/up pair.
package terminal
