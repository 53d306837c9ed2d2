// Package replay records input as timestamped frames and plays it back.
//
// # Concepts
//
// A Frame is a complete snapshot of logical input at one instant: the pointer
// position and the full set of active actions. Frames are never deltas, so any
// single frame is enough to reconstruct the input state at its time.
//
// A Recording is the ordered list of frames of one session. It grows by
// append only and has at most one writer.
//
// # Recording
//
// A Recorder is a binding handler that observes pointer moves and action
// presses/releases and appends one frame per event. It never consumes the
// events it sees, so the application keeps running normally while recording.
//
//	rec := replay.NewRecording()
//	recorder, err := replay.NewRecorder(rec, replay.WithClock(clk))
//	if err != nil {
//	    return err // the recording already has a writer
//	}
//	mgr.AttachRecorder(recorder)
//
// # Playback
//
// A Cursor resolves the frame that is current at a host-supplied time and
// synthesizes the events a live device would have produced:
//
//	cursor := replay.NewCursor(rec, replay.WithTransform(toScreen))
//	cursor.SetTime(now - lag)
//	events := cursor.PendingInputs()
//
// Resolution is a step function of time: the frame with the greatest time
// not after the query wins, with no interpolation. Before the first frame
// the cursor reports the neutral state (neutral position, no actions).
// After the last frame the last frame is held; playback never ends on its
// own.
//
// # Thread Safety
//
// Types in this package are not safe for concurrent use. A recording may be
// read by a cursor while a recorder appends to it, provided both run on the
// same update goroutine.
package replay
