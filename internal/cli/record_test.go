package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/reel/internal/device/terminal"
	"github.com/dshills/reel/internal/input"
	"github.com/dshills/reel/internal/store"
)

// simulatedDevice returns a factory for a device on a simulation screen that
// already holds evs.
func simulatedDevice(evs ...tcell.Event) DeviceFactory {
	return func(opts ...terminal.Option) (*terminal.Device, error) {
		screen := tcell.NewSimulationScreen("UTF-8")
		d := terminal.New(screen, opts...)
		if err := d.Init(); err != nil {
			return nil, err
		}
		for _, ev := range evs {
			if err := screen.PostEvent(ev); err != nil {
				return nil, err
			}
		}
		return d, nil
	}
}

func clickAndQuit() DeviceFactory {
	return simulatedDevice(
		tcell.NewEventMouse(3, 4, tcell.ButtonPrimary, tcell.ModNone),
		tcell.NewEventMouse(3, 4, tcell.ButtonNone, tcell.ModNone),
		tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone),
	)
}

func TestRecord(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "session.json")
	streamPath := filepath.Join(dir, "live.jsonl")
	dbPath := filepath.Join(dir, "reel.db")

	opts := &RecordOptions{RootOptions: &RootOptions{Format: FormatText}, OpenDevice: clickAndQuit()}
	stdout, _, err := execute(newRecordCommand(opts),
		"--out", out, "--stream", streamPath, "--db", dbPath, "--step", "1ms")
	require.NoError(t, err)
	assert.Contains(t, stdout, "3 frame(s)")
	assert.Contains(t, stdout, "file:     "+out)

	rec, err := store.LoadFile(out)
	require.NoError(t, err)
	frames := rec.Frames()
	require.Len(t, frames, 3)
	assert.Equal(t, input.Pos(3, 4), frames[0].Position)
	assert.True(t, frames[0].Actions.IsEmpty())
	assert.True(t, frames[1].Actions.Has("primary"))
	assert.True(t, frames[2].Actions.IsEmpty())
	assert.True(t, rec.Ordered())

	streamed, err := store.LoadFile(streamPath)
	require.NoError(t, err)
	assert.Equal(t, rec.ID(), streamed.ID())
	assert.Equal(t, frames, streamed.Frames())

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	stored, err := st.Load(context.Background(), rec.ID())
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Len())
}

func TestRecordJSON(t *testing.T) {
	out := filepath.Join(t.TempDir(), "session.json")

	opts := &RecordOptions{RootOptions: &RootOptions{Format: FormatJSON}, OpenDevice: clickAndQuit()}
	stdout, _, err := execute(newRecordCommand(opts), "--out", out)
	require.NoError(t, err)

	var result RecordResult
	assert.Equal(t, "ok", decodeResponse(t, stdout, &result))
	assert.Equal(t, 3, result.Frames)
	assert.Equal(t, out, result.File)
	assert.Empty(t, result.Database)
}

func TestRecordErrors(t *testing.T) {
	opts := &RecordOptions{RootOptions: &RootOptions{Format: FormatText}, OpenDevice: clickAndQuit()}
	_, _, err := execute(newRecordCommand(opts))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "set --out or --db")

	failing := func(...terminal.Option) (*terminal.Device, error) {
		return nil, assert.AnError
	}
	opts = &RecordOptions{RootOptions: &RootOptions{Format: FormatText}, OpenDevice: failing}
	_, _, err = execute(newRecordCommand(opts), "--out", filepath.Join(t.TempDir(), "x.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open terminal")
}
