// Package cli implements the reel command line.
//
// Commands are built with NewXCommand constructors that share a RootOptions
// value, so each command can also be constructed and executed on its own
// in tests.
package cli
