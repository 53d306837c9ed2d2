package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/reel/internal/input"
	"github.com/dshills/reel/internal/input/action"
)

// DefaultCallTimeout bounds each callback.
const DefaultCallTimeout = 100 * time.Millisecond

// ErrClosed is returned when using a closed handler.
var ErrClosed = errors.New("script handler is closed")

// CallError reports a failed callback.
type CallError struct {
	Func string
	Err  error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("lua %s: %v", e.Func, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// Handler runs Lua callbacks for action and pointer notifications.
// It implements binding.Handler and manager.PointerHandler.
//
// Handler is not safe for concurrent use.
type Handler struct {
	L       *lua.LState
	out     io.Writer
	logger  *slog.Logger
	timeout time.Duration

	err    error
	closed bool
}

// Option configures a Handler.
type Option func(*Handler)

// WithOutput sets where reel.emit writes. Defaults to io.Discard.
func WithOutput(w io.Writer) Option {
	return func(h *Handler) {
		if w != nil {
			h.out = w
		}
	}
}

// WithLogger sets the logger used by reel.log and for callback errors.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithCallTimeout bounds each callback. Zero disables the bound.
func WithCallTimeout(d time.Duration) Option {
	return func(h *Handler) {
		h.timeout = d
	}
}

func newHandler(opts []Option) *Handler {
	h := &Handler{
		out:     io.Discard,
		logger:  slog.New(slog.DiscardHandler),
		timeout: DefaultCallTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}

	h.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(h.L)
	h.L.SetGlobal("reel", h.L.SetFuncs(h.L.NewTable(), map[string]lua.LGFunction{
		"emit": h.luaEmit,
		"log":  h.luaLog,
	}))
	return h
}

// openSafeLibraries opens only libraries without file or process access.
func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// Load runs the script file at path and returns a handler for it.
func Load(path string, opts ...Option) (*Handler, error) {
	h := newHandler(opts)
	if err := h.L.DoFile(path); err != nil {
		h.L.Close()
		return nil, fmt.Errorf("loading script %s: %w", path, err)
	}
	return h, nil
}

// LoadString runs code and returns a handler for it.
func LoadString(code string, opts ...Option) (*Handler, error) {
	h := newHandler(opts)
	if err := h.L.DoString(code); err != nil {
		h.L.Close()
		return nil, fmt.Errorf("loading script: %w", err)
	}
	return h, nil
}

// OnPressed calls on_pressed(action).
func (h *Handler) OnPressed(a action.Action) bool {
	ret, _ := h.call("on_pressed", lua.LString(a))
	return lua.LVAsBool(ret)
}

// OnReleased calls on_released(action).
func (h *Handler) OnReleased(a action.Action) {
	_, _ = h.call("on_released", lua.LString(a))
}

// OnPointerMove calls on_pointer_move(x, y).
func (h *Handler) OnPointerMove(pos input.Position) bool {
	ret, _ := h.call("on_pointer_move", lua.LNumber(pos.X), lua.LNumber(pos.Y))
	return lua.LVAsBool(ret)
}

// Err returns the first callback error, if any.
func (h *Handler) Err() error {
	return h.err
}

// Close releases the Lua state.
func (h *Handler) Close() {
	if h.closed {
		return
	}
	h.closed = true
	h.L.Close()
}

// call invokes a global function if the script defines it and returns its
// first result. Missing functions are not an error.
func (h *Handler) call(name string, args ...lua.LValue) (lua.LValue, error) {
	if h.closed {
		return lua.LNil, ErrClosed
	}

	fn, ok := h.L.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return lua.LNil, nil
	}

	if h.timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()
		h.L.SetContext(ctx)
		defer h.L.RemoveContext()
	}

	err := h.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...)
	if err != nil {
		callErr := &CallError{Func: name, Err: err}
		if h.err == nil {
			h.err = callErr
		}
		h.logger.Warn("script callback failed", "func", name, "error", err)
		return lua.LNil, callErr
	}

	ret := h.L.Get(-1)
	h.L.Pop(1)
	return ret, nil
}

func (h *Handler) luaEmit(L *lua.LState) int {
	text := L.CheckString(1)
	if _, err := fmt.Fprintln(h.out, text); err != nil {
		L.RaiseError("emit: %v", err)
	}
	return 0
}

func (h *Handler) luaLog(L *lua.LState) int {
	h.logger.Info(L.CheckString(1), "source", "script")
	return 0
}
