package store

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/dshills/reel/internal/input/replay"
)

// Follower tails a JSON-lines stream while another process records into it.
//
// Frames are delivered on Frames in file order. The channel is closed when
// the context is cancelled, the file is removed or renamed, or an error
// occurs; Err then reports the error, if any.
type Follower struct {
	path    string
	file    *os.File
	reader  *bufio.Reader
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	id      uuid.UUID
	created time.Time

	frames  chan replay.Frame
	partial []byte
	last    time.Duration
	line    int

	mu  sync.Mutex
	err error
}

// FollowOption configures a Follower.
type FollowOption func(*Follower)

// WithFollowLogger sets the follower's logger.
func WithFollowLogger(l *slog.Logger) FollowOption {
	return func(f *Follower) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithBufferSize sets the frame channel capacity. Defaults to 256.
func WithBufferSize(n int) FollowOption {
	return func(f *Follower) {
		if n > 0 {
			f.frames = make(chan replay.Frame, n)
		}
	}
}

// Follow opens the stream at path, reads its header and starts tailing it.
// Frames already in the file are delivered first.
func Follow(ctx context.Context, path string, opts ...FollowOption) (*Follower, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open stream: %w", err)
	}

	f := &Follower{
		path:   path,
		file:   file,
		reader: bufio.NewReader(file),
		logger: slog.New(slog.DiscardHandler),
		frames: make(chan replay.Frame, 256),
		line:   1,
	}
	for _, opt := range opts {
		opt(f)
	}

	line, err := f.reader.ReadBytes('\n')
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%s: %w: missing stream header", path, ErrInvalidRecording)
	}
	h, err := parseHeader(line)
	if err == nil {
		f.id, err = h.check()
	}
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.created = h.CreatedAt

	f.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := f.watcher.Add(path); err != nil {
		f.watcher.Close()
		file.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	f.logger.Debug("following stream", "path", path, "recording", f.id.String())
	go f.run(ctx)
	return f, nil
}

// ID returns the followed recording's ID.
func (f *Follower) ID() uuid.UUID {
	return f.id
}

// NewRecording returns an empty recording with the stream's identity, ready
// to receive the followed frames.
func (f *Follower) NewRecording() *replay.Recording {
	return replay.Restore(f.id, f.created, nil)
}

// Frames returns the channel of followed frames.
func (f *Follower) Frames() <-chan replay.Frame {
	return f.frames
}

// Err returns the error that stopped the follower, if any.
// It is only meaningful once Frames is closed.
func (f *Follower) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *Follower) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err == nil {
		f.err = err
	}
}

func (f *Follower) run(ctx context.Context) {
	defer close(f.frames)
	defer f.file.Close()
	defer f.watcher.Close()

	if !f.drain(ctx) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Write) && !f.drain(ctx) {
				return
			}
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				f.logger.Debug("stream gone", "path", f.path, "op", ev.Op.String())
				return
			}

		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			f.setErr(fmt.Errorf("watching %s: %w", f.path, err))
			return
		}
	}
}

// drain delivers every complete line currently in the file.
// It returns false when the follower must stop.
func (f *Follower) drain(ctx context.Context) bool {
	for {
		chunk, err := f.reader.ReadBytes('\n')
		f.partial = append(f.partial, chunk...)
		if errors.Is(err, io.EOF) {
			return true
		}
		if err != nil {
			f.setErr(fmt.Errorf("failed to read stream: %w", err))
			return false
		}

		line := f.partial
		f.partial = nil
		f.line++

		frame, err := parseFrame(line)
		if err != nil {
			f.setErr(fmt.Errorf("%s line %d: %w", f.path, f.line, err))
			return false
		}
		if frame.Time < f.last {
			f.setErr(fmt.Errorf("%s line %d: %w: frames out of time order", f.path, f.line, ErrInvalidRecording))
			return false
		}
		f.last = frame.Time

		select {
		case f.frames <- frame:
		case <-ctx.Done():
			return false
		}
	}
}
