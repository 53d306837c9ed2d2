// Package host drives an input manager from a fixed-step loop.
//
// A Loop owns the step cadence: on each tick it drains device events into
// the manager, appends frames received from a followed stream to the
// recording being replayed, then calls Manager.Update with the time elapsed
// since the loop started. Steps drives a manager headlessly over a fixed
// range for deterministic replays.
package host
