// Package store persists recordings.
//
// Three forms are supported:
//
//   - A JSON document holding one complete recording (Encode, Decode,
//     SaveFile, LoadFile).
//   - A JSON-lines stream: a header line followed by one line per frame,
//     appended while recording (StreamWriter) and tailed by Follow.
//   - A SQLite database holding any number of recordings (SQLStore).
//
// Frame times are stored as integer microseconds since the start of the
// recording.
package store
