package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/reel/internal/input"
	"github.com/dshills/reel/internal/input/action"
	"github.com/dshills/reel/internal/input/replay"
)

const currentVersion = 1

// Errors returned by decoding.
var (
	// ErrInvalidRecording indicates stored data that does not form a valid
	// recording.
	ErrInvalidRecording = errors.New("invalid recording")

	// ErrNotFound indicates a recording ID with no stored recording.
	ErrNotFound = errors.New("recording not found")
)

// VersionError reports data written by a newer format version.
type VersionError struct {
	Version int
	Max     int
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("unsupported recording version: %d (max supported: %d)", e.Version, e.Max)
}

// persistedFrame is the JSON form of replay.Frame.
type persistedFrame struct {
	T       int64    `json:"t"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	Actions []string `json:"actions,omitempty"`
}

// header identifies a recording in documents and streams.
type header struct {
	Version   int       `json:"version"`
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// persistedRecording is the JSON document form of replay.Recording.
type persistedRecording struct {
	header
	SavedAt time.Time        `json:"saved_at"`
	Frames  []persistedFrame `json:"frames"`
}

func toPersistedFrame(f replay.Frame) persistedFrame {
	p := persistedFrame{
		T: f.Time.Microseconds(),
		X: f.Position.X,
		Y: f.Position.Y,
	}
	for _, a := range f.Actions.Slice() {
		p.Actions = append(p.Actions, string(a))
	}
	return p
}

func toFrame(p persistedFrame) replay.Frame {
	actions := make([]action.Action, len(p.Actions))
	for i, a := range p.Actions {
		actions[i] = action.Action(a)
	}
	return replay.NewFrame(time.Duration(p.T)*time.Microsecond, input.Pos(p.X, p.Y), actions...)
}

func newHeader(rec *replay.Recording) header {
	return header{
		Version:   currentVersion,
		ID:        rec.ID().String(),
		CreatedAt: rec.CreatedAt(),
	}
}

func (h header) check() (uuid.UUID, error) {
	if h.Version > currentVersion {
		return uuid.Nil, &VersionError{Version: h.Version, Max: currentVersion}
	}
	id, err := uuid.Parse(h.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: id %q: %v", ErrInvalidRecording, h.ID, err)
	}
	return id, nil
}

// Encode returns rec as an indented JSON document.
func Encode(rec *replay.Recording) ([]byte, error) {
	frames := rec.Frames()
	data := persistedRecording{
		header:  newHeader(rec),
		SavedAt: time.Now().UTC(),
		Frames:  make([]persistedFrame, len(frames)),
	}
	for i, f := range frames {
		data.Frames[i] = toPersistedFrame(f)
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal recording: %w", err)
	}
	return out, nil
}

// Decode parses a JSON document produced by Encode.
// Frames out of time order are rejected.
func Decode(data []byte) (*replay.Recording, error) {
	var doc persistedRecording
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecording, err)
	}
	id, err := doc.check()
	if err != nil {
		return nil, err
	}

	frames := make([]replay.Frame, len(doc.Frames))
	for i, p := range doc.Frames {
		frames[i] = toFrame(p)
	}
	return restore(id, doc.CreatedAt, frames)
}

func restore(id uuid.UUID, created time.Time, frames []replay.Frame) (*replay.Recording, error) {
	rec := replay.Restore(id, created, frames)
	if !rec.Ordered() {
		return nil, fmt.Errorf("%w: frames out of time order", ErrInvalidRecording)
	}
	return rec, nil
}
