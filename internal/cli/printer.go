package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dshills/reel/internal/input"
	"github.com/dshills/reel/internal/input/action"
)

// Notification kinds.
const (
	KindPress   = "press"
	KindRelease = "release"
	KindMove    = "move"
)

// Point is a JSON-friendly position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Notification is one handler notification observed during replay.
type Notification struct {
	Time    time.Duration `json:"-"`
	Micros  int64         `json:"t_us"`
	Kind    string        `json:"kind"`
	Action  string        `json:"action,omitempty"`
	Pointer *Point        `json:"pointer,omitempty"`
}

func (n Notification) String() string {
	switch n.Kind {
	case KindPress:
		return fmt.Sprintf("%10s  +%s", n.Time, n.Action)
	case KindRelease:
		return fmt.Sprintf("%10s  -%s", n.Time, n.Action)
	default:
		return fmt.Sprintf("%10s  %s", n.Time, input.Pos(n.Pointer.X, n.Pointer.Y))
	}
}

// printer collects notifications as a binding.Handler and
// manager.PointerHandler. Handlers are not told the step time, so
// notifications are buffered and stamped by flush after each update.
type printer struct {
	w       io.Writer
	format  string
	stream  bool
	pending []Notification
	all     []Notification
}

// newPrinter creates a printer. Streaming printers write each notification
// on flush, one text line or JSON object per notification; others only
// collect.
func newPrinter(w io.Writer, format string, stream bool) *printer {
	return &printer{w: w, format: format, stream: stream}
}

func (p *printer) OnPressed(a action.Action) bool {
	p.pending = append(p.pending, Notification{Kind: KindPress, Action: string(a)})
	return false
}

func (p *printer) OnReleased(a action.Action) {
	p.pending = append(p.pending, Notification{Kind: KindRelease, Action: string(a)})
}

func (p *printer) OnPointerMove(pos input.Position) bool {
	p.pending = append(p.pending, Notification{Kind: KindMove, Pointer: &Point{X: pos.X, Y: pos.Y}})
	return false
}

// flush stamps pending notifications with now and writes them when
// streaming.
func (p *printer) flush(now time.Duration) {
	for _, n := range p.pending {
		n.Time = now
		n.Micros = now.Microseconds()
		p.all = append(p.all, n)
		if !p.stream {
			continue
		}
		if p.format == FormatJSON {
			_ = json.NewEncoder(p.w).Encode(n)
		} else {
			fmt.Fprintln(p.w, n)
		}
	}
	p.pending = p.pending[:0]
}

// Notifications returns everything flushed so far.
func (p *printer) Notifications() []Notification {
	return p.all
}
