package terminal

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/reel/internal/input"
	"github.com/dshills/reel/internal/input/key"
)

// buttons maps held tcell mouse buttons to raw keys, in report order.
var buttons = []struct {
	mask tcell.ButtonMask
	key  key.Key
}{
	{tcell.ButtonPrimary, key.MouseLeft},
	{tcell.ButtonSecondary, key.MouseRight},
	{tcell.ButtonMiddle, key.MouseMiddle},
	{tcell.Button4, key.MouseButton4},
	{tcell.Button5, key.MouseButton5},
}

// wheels maps momentary wheel masks to raw keys.
var wheels = []struct {
	mask tcell.ButtonMask
	key  key.Key
}{
	{tcell.WheelUp, key.WheelUp},
	{tcell.WheelDown, key.WheelDown},
}

// specialKeys maps non-rune tcell keys to raw keys.
var specialKeys = map[tcell.Key]key.Key{
	tcell.KeyEnter:      key.KeyEnter,
	tcell.KeyTab:        key.KeyTab,
	tcell.KeyBackspace:  key.KeyBackspace,
	tcell.KeyBackspace2: key.KeyBackspace,
	tcell.KeyUp:         key.KeyUp,
	tcell.KeyDown:       key.KeyDown,
	tcell.KeyLeft:       key.KeyLeft,
	tcell.KeyRight:      key.KeyRight,
}

// Device translates tcell events into input events.
type Device struct {
	screen tcell.Screen
	logger *slog.Logger
	quit   func(*tcell.EventKey) bool

	mu      sync.Mutex
	held    tcell.ButtonMask
	pointer input.Position
	moved   bool
}

// Option configures a Device.
type Option func(*Device)

// WithLogger sets the device's logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Device) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithQuit sets the predicate for keys that stop Run.
// Defaults to Escape and Ctrl-C.
func WithQuit(fn func(*tcell.EventKey) bool) Option {
	return func(d *Device) {
		if fn != nil {
			d.quit = fn
		}
	}
}

// New creates a device reading from screen.
func New(screen tcell.Screen, opts ...Option) *Device {
	d := &Device{
		screen: screen,
		logger: slog.New(slog.DiscardHandler),
		quit:   defaultQuit,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func defaultQuit(ev *tcell.EventKey) bool {
	return ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC
}

// Open creates a device on the controlling terminal and initializes it.
func Open(opts ...Option) (*Device, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	d := New(screen, opts...)
	if err := d.Init(); err != nil {
		return nil, err
	}
	return d, nil
}

// Init initializes the screen and enables mouse reporting.
func (d *Device) Init() error {
	if err := d.screen.Init(); err != nil {
		return err
	}
	d.screen.EnableMouse()
	d.screen.HideCursor()
	return nil
}

// Shutdown restores the terminal.
func (d *Device) Shutdown() {
	d.screen.Fini()
}

// Screen returns the underlying screen.
func (d *Device) Screen() tcell.Screen {
	return d.screen
}

// Status draws msg on the top row.
func (d *Device) Status(msg string) {
	w, _ := d.screen.Size()
	style := tcell.StyleDefault.Reverse(true)
	x := 0
	for _, r := range msg {
		if x >= w {
			break
		}
		d.screen.SetContent(x, 0, r, nil, style)
		x++
	}
	for ; x < w; x++ {
		d.screen.SetContent(x, 0, ' ', nil, style)
	}
	d.screen.Show()
}

// Translate converts one tcell event into input events.
// quit reports whether the event is a quit key; quit keys produce no events.
func (d *Device) Translate(ev tcell.Event) (events []input.Event, quit bool) {
	switch e := ev.(type) {
	case *tcell.EventMouse:
		return d.translateMouse(e), false
	case *tcell.EventKey:
		if d.quit(e) {
			return nil, true
		}
		return d.translateKey(e), false
	default:
		return nil, false
	}
}

func (d *Device) translateMouse(e *tcell.EventMouse) []input.Event {
	d.mu.Lock()
	defer d.mu.Unlock()

	var events []input.Event

	x, y := e.Position()
	pos := input.Pos(float64(x), float64(y))
	if !d.moved || pos != d.pointer {
		d.pointer = pos
		d.moved = true
		events = append(events, input.PositionEvent{Position: pos})
	}

	mask := e.Buttons()
	for _, b := range buttons {
		was, is := d.held&b.mask != 0, mask&b.mask != 0
		switch {
		case is && !was:
			events = append(events, input.KeyDownEvent{Key: b.key})
		case was && !is:
			events = append(events, input.KeyUpEvent{Key: b.key})
		}
	}
	d.held = mask &^ wheelMask()

	for _, w := range wheels {
		if mask&w.mask != 0 {
			events = append(events, input.KeyDownEvent{Key: w.key}, input.KeyUpEvent{Key: w.key})
		}
	}
	return events
}

func wheelMask() tcell.ButtonMask {
	var m tcell.ButtonMask
	for _, w := range wheels {
		m |= w.mask
	}
	return m
}

func (d *Device) translateKey(e *tcell.EventKey) []input.Event {
	var k key.Key
	if e.Key() == tcell.KeyRune {
		k = key.Letter(e.Rune())
	} else {
		k = specialKeys[e.Key()]
	}
	if k == key.KeyNone {
		d.logger.Debug("ignoring unmapped key", "key", e.Name())
		return nil
	}
	return []input.Event{input.KeyDownEvent{Key: k}, input.KeyUpEvent{Key: k}}
}

// Run reads events until a quit key is pressed, the screen is finalized, or
// ctx is cancelled, sending translated events to out.
// It returns nil on quit and ctx.Err() on cancellation.
func (d *Device) Run(ctx context.Context, out chan<- input.Event) error {
	stop := context.AfterFunc(ctx, func() {
		_ = d.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	for {
		ev := d.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		events, quit := d.Translate(ev)
		if quit {
			d.logger.Debug("quit key pressed")
			return nil
		}
		for _, e := range events {
			select {
			case out <- e:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
