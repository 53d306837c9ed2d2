// Package input holds the types shared by the recording and replay pipeline.
//
// Raw device input and replayed input travel through the same pipeline:
//
//	live device ──► manager ──► binding router ──► logical actions ──► handlers
//	                   ▲                                │
//	                   │                                ▼ (recorder is a handler)
//	replay cursor ─────┘                            recording
//
// This package defines the pieces every stage agrees on: pointer positions,
// the sealed set of input events, the origin of an event, and the sentinel
// errors of the core.
//
// # Subpackages
//
//   - key: raw physical inputs and their channel classes
//   - action: logical actions, immutable action sets and domains
//   - binding: binding tables, simultaneous binding modes and the router
//   - replay: frames, recordings, the recorder and the playback cursor
//   - manager: the input manager that owns a router and is fed either by a
//     live device or by a playback cursor, never both
//
// # Threading
//
// The pipeline is driven from a single update goroutine. None of the core
// types lock; devices and file followers deliver through channels that the
// host drains during its step.
package input
