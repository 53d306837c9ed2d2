package script

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/reel/internal/input"
)

const counterScript = `
pressed = 0

function on_pressed(action)
  pressed = pressed + 1
  reel.emit("+" .. action)
  return action == "fire"
end

function on_released(action)
  reel.emit("-" .. action)
end

function on_pointer_move(x, y)
  reel.emit(string.format("move %g %g", x, y))
  return false
end
`

func TestHandlerCallbacks(t *testing.T) {
	var out bytes.Buffer
	h, err := LoadString(counterScript, WithOutput(&out))
	require.NoError(t, err)
	defer h.Close()

	assert.True(t, h.OnPressed("fire"))
	assert.False(t, h.OnPressed("aim"))
	h.OnReleased("fire")
	assert.False(t, h.OnPointerMove(input.Pos(1.5, 2)))

	assert.Equal(t, "+fire\n+aim\n-fire\nmove 1.5 2\n", out.String())
	assert.Equal(t, "2", h.L.GetGlobal("pressed").String())
	assert.NoError(t, h.Err())
}

func TestHandlerMissingCallbacks(t *testing.T) {
	h, err := LoadString(`x = 1`)
	require.NoError(t, err)
	defer h.Close()

	assert.False(t, h.OnPressed("fire"))
	h.OnReleased("fire")
	assert.False(t, h.OnPointerMove(input.Pos(0, 0)))
	assert.NoError(t, h.Err())
}

func TestHandlerCallbackError(t *testing.T) {
	h, err := LoadString(`function on_pressed(a) error("boom") end`)
	require.NoError(t, err)
	defer h.Close()

	assert.False(t, h.OnPressed("fire"))

	var callErr *CallError
	require.ErrorAs(t, h.Err(), &callErr)
	assert.Equal(t, "on_pressed", callErr.Func)
	assert.Contains(t, callErr.Error(), "boom")
}

func TestHandlerTimeout(t *testing.T) {
	h, err := LoadString(`function on_released(a) while true do end end`,
		WithCallTimeout(20*time.Millisecond))
	require.NoError(t, err)
	defer h.Close()

	done := make(chan struct{})
	go func() {
		h.OnReleased("fire")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("runaway callback was not stopped")
	}
	assert.Error(t, h.Err())
}

func TestSandbox(t *testing.T) {
	for _, code := range []string{
		`io.write("x")`,
		`os.exit(1)`,
		`dofile("/etc/passwd")`,
		`require("os")`,
	} {
		_, err := LoadString(code)
		assert.Error(t, err, code)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "handler.lua")
	require.NoError(t, os.WriteFile(path, []byte(counterScript), 0o644))

	var out bytes.Buffer
	h, err := Load(path, WithOutput(&out))
	require.NoError(t, err)
	defer h.Close()

	h.OnReleased("jump")
	assert.Equal(t, "-jump\n", out.String())

	_, err = Load(filepath.Join(t.TempDir(), "missing.lua"))
	assert.Error(t, err)

	_, err = LoadString(`function broken(`)
	assert.Error(t, err)
}

func TestClosedHandler(t *testing.T) {
	h, err := LoadString(counterScript)
	require.NoError(t, err)
	h.Close()
	h.Close()

	assert.False(t, h.OnPressed("fire"))
	_, err = h.call("on_pressed")
	assert.ErrorIs(t, err, ErrClosed)
}
