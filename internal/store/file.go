package store

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dshills/reel/internal/input/replay"
)

// SaveFile writes rec to path as a JSON document.
// The file is written atomically using a temporary file and rename.
func SaveFile(rec *replay.Recording, path string) error {
	data, err := Encode(rec)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// LoadFile reads a JSON document written by SaveFile, or a JSON-lines
// stream written by a StreamWriter.
func LoadFile(path string) (*replay.Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read recording file: %w", err)
	}

	if isStream(data) {
		rec, err := ReadStream(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return rec, nil
	}

	rec, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

// isStream reports whether data starts with a single-line header, as
// written by a StreamWriter.
func isStream(data []byte) bool {
	line, _, _ := bytes.Cut(data, []byte("\n"))
	line = bytes.TrimSpace(line)
	return len(line) > 2 && line[0] == '{' && line[len(line)-1] == '}'
}
