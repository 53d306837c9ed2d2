package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dshills/reel/internal/input/replay"
)

// StreamWriter appends frames to a JSON-lines stream as they are recorded.
//
// The first line is a header identifying the recording; every following line
// is one frame. Observe can be passed to replay.WithObserver.
type StreamWriter struct {
	w      *bufio.Writer
	closer io.Closer
	enc    *json.Encoder
	err    error
}

// NewStreamWriter writes the header for rec to w and returns a writer for
// its frames.
func NewStreamWriter(w io.Writer, rec *replay.Recording) (*StreamWriter, error) {
	bw := bufio.NewWriter(w)
	s := &StreamWriter{w: bw, enc: json.NewEncoder(bw)}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}

	if err := s.enc.Encode(newHeader(rec)); err != nil {
		return nil, fmt.Errorf("failed to write stream header: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to write stream header: %w", err)
	}
	return s, nil
}

// CreateStream creates or truncates the file at path and writes the stream
// header for rec.
func CreateStream(path string, rec *replay.Recording) (*StreamWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}
	s, err := NewStreamWriter(f, rec)
	if err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

// WriteFrame appends one frame and flushes it.
func (s *StreamWriter) WriteFrame(f replay.Frame) error {
	if s.err != nil {
		return s.err
	}
	if err := s.enc.Encode(toPersistedFrame(f)); err != nil {
		s.err = fmt.Errorf("failed to write frame: %w", err)
		return s.err
	}
	if err := s.w.Flush(); err != nil {
		s.err = fmt.Errorf("failed to write frame: %w", err)
	}
	return s.err
}

// Observe writes f, keeping the first error for Err.
func (s *StreamWriter) Observe(f replay.Frame) {
	_ = s.WriteFrame(f)
}

// Err returns the first write error, if any.
func (s *StreamWriter) Err() error {
	return s.err
}

// Close flushes the stream and closes the underlying writer if it is an
// io.Closer.
func (s *StreamWriter) Close() error {
	err := s.w.Flush()
	if s.closer != nil {
		err = errors.Join(err, s.closer.Close())
		s.closer = nil
	}
	return err
}

// ReadStream reads a complete JSON-lines stream.
// A trailing partial line, as left by an interrupted writer, is ignored.
func ReadStream(r io.Reader) (*replay.Recording, error) {
	br := bufio.NewReader(r)

	line, err := br.ReadBytes('\n')
	if err != nil && (!errors.Is(err, io.EOF) || len(line) == 0) {
		return nil, fmt.Errorf("%w: missing stream header", ErrInvalidRecording)
	}
	h, err := parseHeader(line)
	if err != nil {
		return nil, err
	}
	id, err := h.check()
	if err != nil {
		return nil, err
	}

	var frames []replay.Frame
	for n := 2; ; n++ {
		line, err := br.ReadBytes('\n')
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read stream: %w", err)
		}
		f, err := parseFrame(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		frames = append(frames, f)
	}
	return restore(id, h.CreatedAt, frames)
}

func parseHeader(line []byte) (header, error) {
	var h header
	if err := json.Unmarshal(line, &h); err != nil {
		return header{}, fmt.Errorf("%w: stream header: %v", ErrInvalidRecording, err)
	}
	return h, nil
}

func parseFrame(line []byte) (replay.Frame, error) {
	var p persistedFrame
	if err := json.Unmarshal(line, &p); err != nil {
		return replay.Frame{}, fmt.Errorf("%w: frame: %v", ErrInvalidRecording, err)
	}
	return toFrame(p), nil
}
