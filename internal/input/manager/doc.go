// Package manager composes a binding router with an input source.
//
// A Manager is fed either by a live device or by a playback cursor, never
// both. Live events are queued with Feed and processed on the next Update;
// in replay mode Update polls the cursor instead and live events are dropped.
// Either way events go through the same router path, so handlers cannot tell
// recorded input from real input.
//
//	mgr := manager.New(router)
//	mgr.AddHandler(game)
//
//	// live
//	mgr.Feed(input.KeyDownEvent{Key: key.MouseLeft})
//	mgr.Update(now)
//
//	// replay
//	mgr.AttachReplay(replay.NewCursor(rec), 0)
//	mgr.Update(now)
package manager
