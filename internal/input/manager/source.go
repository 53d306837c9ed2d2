package manager

import (
	"time"

	"github.com/dshills/reel/internal/input"
	"github.com/dshills/reel/internal/input/replay"
)

// Source is where a Manager reads input from: Live or Replay.
// The set of sources is closed.
type Source interface {
	// Kind reports the source kind.
	Kind() input.Source
	isSource()
}

// Live reads input queued with Manager.Feed.
type Live struct{}

// Replay polls a playback cursor on every update.
type Replay struct {
	Cursor *replay.Cursor

	// Lag is subtracted from the host time before polling.
	Lag time.Duration
}

func (Live) Kind() input.Source   { return input.SourceLive }
func (Replay) Kind() input.Source { return input.SourceReplay }

func (Live) isSource()   {}
func (Replay) isSource() {}
