package manager

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/dshills/reel/internal/input"
	"github.com/dshills/reel/internal/input/action"
	"github.com/dshills/reel/internal/input/binding"
	"github.com/dshills/reel/internal/input/replay"
)

// PointerHandler receives pointer position changes.
type PointerHandler interface {
	// OnPointerMove is called with the new absolute pointer position.
	// Return true to stop the move reaching later handlers.
	OnPointerMove(pos input.Position) bool
}

// Manager routes live or replayed input through a binding router.
//
// Manager is not safe for concurrent use. Feed and Update must be called
// from the same goroutine.
type Manager struct {
	router *binding.Router
	source Source
	logger *slog.Logger

	queue []input.Event

	pointer         input.Position
	pointerSet      bool
	pointerHandlers []PointerHandler

	recorder *replay.Recorder
	metrics  *Metrics
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMetrics sets the metrics tracker. Defaults to a fresh one.
func WithMetrics(mt *Metrics) Option {
	return func(m *Manager) {
		if mt != nil {
			m.metrics = mt
		}
	}
}

// New creates a manager in live mode around router.
func New(router *binding.Router, opts ...Option) *Manager {
	if router == nil {
		router = binding.NewRouter(nil, binding.ModeUnique)
	}
	m := &Manager{
		router:  router,
		source:  Live{},
		logger:  slog.New(slog.DiscardHandler),
		metrics: NewMetrics(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Router returns the manager's binding router.
func (m *Manager) Router() *binding.Router {
	return m.router
}

// Metrics returns the manager's metrics tracker.
func (m *Manager) Metrics() *Metrics {
	return m.metrics
}

// Source returns the current input source.
func (m *Manager) Source() Source {
	return m.source
}

// Active returns the set of active actions.
func (m *Manager) Active() action.Set {
	return m.router.Active()
}

// Pointer returns the last pointer position.
func (m *Manager) Pointer() input.Position {
	return m.pointer
}

// AddHandler appends an action handler. Duplicates are ignored.
func (m *Manager) AddHandler(h binding.Handler) {
	m.router.AddHandler(h)
}

// RemoveHandler removes an action handler. Absent handlers are ignored.
func (m *Manager) RemoveHandler(h binding.Handler) {
	m.router.RemoveHandler(h)
}

// AddPointerHandler appends a pointer handler. Duplicates are ignored.
func (m *Manager) AddPointerHandler(h PointerHandler) {
	if h == nil || slices.Contains(m.pointerHandlers, h) {
		return
	}
	m.pointerHandlers = append(m.pointerHandlers, h)
}

// RemovePointerHandler removes a pointer handler. Absent handlers are ignored.
func (m *Manager) RemovePointerHandler(h PointerHandler) {
	m.pointerHandlers = slices.DeleteFunc(m.pointerHandlers, func(existing PointerHandler) bool {
		return existing == h
	})
}

// AttachRecorder installs r ahead of every other handler so it observes all
// pointer moves and presses. Only one recorder may be attached at a time.
//
// When input is already in progress, r is seeded with the current pointer
// and active actions, and it receives the releases of actions held at
// attach time.
func (m *Manager) AttachRecorder(r *replay.Recorder) error {
	if r == nil {
		return fmt.Errorf("nil recorder: %w", input.ErrInvalidState)
	}
	if m.recorder != nil {
		return fmt.Errorf("manager already has recorder for %s: %w",
			m.recorder.Target().ID(), input.ErrInvalidState)
	}

	m.recorder = r
	m.router.PrependHandler(r)
	m.pointerHandlers = slices.Insert(m.pointerHandlers, 0, PointerHandler(r))

	if active := m.router.Active(); m.pointerSet || !active.IsEmpty() {
		r.Seed(m.pointer, active)
		m.router.JoinActive(r)
	}
	m.logger.Info("recorder attached", "recording", r.Target().ID().String())
	return nil
}

// DetachRecorder removes and closes the attached recorder, if any, and
// returns it.
func (m *Manager) DetachRecorder() *replay.Recorder {
	r := m.recorder
	if r == nil {
		return nil
	}
	m.recorder = nil
	m.router.RemoveHandler(r)
	m.RemovePointerHandler(r)
	r.Close()
	m.logger.Info("recorder detached",
		"recording", r.Target().ID().String(), "frames", r.Target().Len())
	return r
}

// Recorder returns the attached recorder, or nil.
func (m *Manager) Recorder() *replay.Recorder {
	return m.recorder
}

// AttachReplay switches the manager to poll cursor on every Update, at the
// host time minus lag. Live input held at the switch is released and queued
// live events are discarded.
func (m *Manager) AttachReplay(cursor *replay.Cursor, lag time.Duration) error {
	if cursor == nil {
		return fmt.Errorf("nil cursor: %w", input.ErrInvalidState)
	}
	if lag < 0 {
		return fmt.Errorf("negative replay lag %s: %w", lag, input.ErrOutOfRange)
	}

	m.router.ReleaseAll()
	m.queue = m.queue[:0]
	m.source = Replay{Cursor: cursor, Lag: lag}
	m.logger.Info("replay attached",
		"recording", cursor.Recording().ID().String(), "frames", cursor.Recording().Len(), "lag", lag)
	return nil
}

// Detach returns the manager to live mode, releasing every action the
// replay left active.
func (m *Manager) Detach() {
	if _, ok := m.source.(Replay); !ok {
		return
	}
	m.router.ReleaseAll()
	m.source = Live{}
	m.logger.Info("replay detached")
}

// Feed queues a live event for the next Update.
// In replay mode the event is dropped and Feed returns false.
func (m *Manager) Feed(ev input.Event) bool {
	if ev == nil {
		return false
	}
	if _, ok := m.source.(Replay); ok {
		m.metrics.droppedEvents.Add(1)
		m.logger.Debug("dropping live event during replay", "event", input.Describe(ev))
		return false
	}
	m.queue = append(m.queue, ev)
	return true
}

// Update runs one step at host time now.
// In live mode it processes queued events in order; in replay mode it polls
// the cursor and processes the synthesized events.
func (m *Manager) Update(now time.Duration) {
	start := time.Now()

	var events []input.Event
	polled := false
	switch src := m.source.(type) {
	case Live:
		events = m.queue
		m.queue = nil
	case Replay:
		src.Cursor.SetTime(now - src.Lag)
		events = src.Cursor.PendingInputs()
		polled = true
	}

	for _, ev := range events {
		m.process(ev)
	}
	m.metrics.recordUpdate(time.Since(start), polled)
}

func (m *Manager) process(ev input.Event) {
	switch e := ev.(type) {
	case input.PositionEvent:
		m.metrics.positionEvents.Add(1)
		m.movePointer(e.Position)
	case input.KeyDownEvent:
		m.metrics.keyEvents.Add(1)
		m.router.KeyDown(e.Key)
	case input.KeyUpEvent:
		m.metrics.keyEvents.Add(1)
		m.router.KeyUp(e.Key)
	case input.ActionStateEvent:
		m.metrics.stateEvents.Add(1)
		m.router.SetActive(e.Actions)
	}
}

// movePointer notifies pointer handlers when the position changes.
func (m *Manager) movePointer(pos input.Position) {
	if m.pointerSet && pos == m.pointer {
		return
	}
	m.pointer = pos
	m.pointerSet = true

	for _, h := range slices.Clone(m.pointerHandlers) {
		if h.OnPointerMove(pos) {
			break
		}
	}
}
