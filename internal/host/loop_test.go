package host

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/reel/internal/clock"
	"github.com/dshills/reel/internal/input"
	"github.com/dshills/reel/internal/input/action"
	"github.com/dshills/reel/internal/input/binding"
	"github.com/dshills/reel/internal/input/key"
	"github.com/dshills/reel/internal/input/manager"
	"github.com/dshills/reel/internal/input/replay"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type spy struct {
	log []string
}

func (p *spy) OnPressed(a action.Action) bool {
	p.log = append(p.log, "+"+string(a))
	return false
}

func (p *spy) OnReleased(a action.Action) {
	p.log = append(p.log, "-"+string(a))
}

func newManager() (*manager.Manager, *spy) {
	table := binding.MustTable(binding.NewBinding(key.MouseLeft, "fire"))
	m := manager.New(binding.NewRouter(table, binding.ModeUnique))
	p := &spy{}
	m.AddHandler(p)
	return m, p
}

func TestSteps(t *testing.T) {
	m, p := newManager()

	rec := replay.NewRecording()
	rec.Append(replay.NewFrame(0, input.Pos(0, 0)))
	rec.Append(replay.NewFrame(10*time.Millisecond, input.Pos(1, 1), "fire"))
	rec.Append(replay.NewFrame(25*time.Millisecond, input.Pos(2, 2)))
	require.NoError(t, m.AttachReplay(replay.NewCursor(rec), 0))

	var times []time.Duration
	require.NoError(t, Steps(m, 0, 30*time.Millisecond, 8*time.Millisecond, func(now time.Duration) {
		times = append(times, now)
	}))

	assert.Equal(t, []time.Duration{
		0, 8 * time.Millisecond, 16 * time.Millisecond, 24 * time.Millisecond, 30 * time.Millisecond,
	}, times)
	assert.Equal(t, []string{"+fire", "-fire"}, p.log)
	assert.Equal(t, input.Pos(2, 2), m.Pointer())
}

func TestStepsExactEnd(t *testing.T) {
	m, _ := newManager()

	var times []time.Duration
	require.NoError(t, Steps(m, 0, 20*time.Millisecond, 10*time.Millisecond, func(now time.Duration) {
		times = append(times, now)
	}))
	assert.Equal(t, []time.Duration{0, 10 * time.Millisecond, 20 * time.Millisecond}, times)
}

func TestStepsErrors(t *testing.T) {
	m, _ := newManager()

	assert.ErrorIs(t, Steps(nil, 0, time.Second, time.Millisecond, nil), input.ErrInvalidState)
	assert.ErrorIs(t, Steps(m, 0, time.Second, 0, nil), input.ErrOutOfRange)
	assert.ErrorIs(t, Steps(m, time.Second, 0, time.Millisecond, nil), input.ErrOutOfRange)
}

func TestTickDrainsEvents(t *testing.T) {
	m, p := newManager()
	clk := clock.NewVirtual(epoch)
	events := make(chan input.Event, 4)

	var nows []time.Duration
	l := New(m, WithClock(clk), WithEvents(events), OnStep(func(now time.Duration) {
		nows = append(nows, now)
	}))

	events <- input.PositionEvent{Position: input.Pos(5, 6)}
	events <- input.KeyDownEvent{Key: key.MouseLeft}
	assert.True(t, l.Tick())
	assert.Equal(t, []string{"+fire"}, p.log)
	assert.Equal(t, input.Pos(5, 6), m.Pointer())

	clk.Advance(16 * time.Millisecond)
	events <- input.KeyUpEvent{Key: key.MouseLeft}
	close(events)
	assert.False(t, l.Tick())
	assert.Equal(t, []string{"+fire", "-fire"}, p.log)

	assert.Equal(t, []time.Duration{0, 16 * time.Millisecond}, nows)
	assert.Equal(t, uint64(2), l.Ticks())
	assert.Equal(t, 16*time.Millisecond, l.Elapsed())
}

func TestTickAppendsFollowedFrames(t *testing.T) {
	m, p := newManager()
	clk := clock.NewVirtual(epoch)

	rec := replay.NewRecording()
	frames := make(chan replay.Frame, 4)
	require.NoError(t, m.AttachReplay(replay.NewCursor(rec), 0))

	l := New(m, WithClock(clk), WithFrames(frames, rec))

	l.Tick()
	assert.Empty(t, p.log)

	frames <- replay.NewFrame(0, input.Pos(1, 1), "fire")
	clk.Advance(5 * time.Millisecond)
	l.Tick()
	assert.Equal(t, 1, rec.Len())
	assert.Equal(t, []string{"+fire"}, p.log)

	frames <- replay.NewFrame(8*time.Millisecond, input.Pos(2, 2))
	close(frames)
	clk.Advance(5 * time.Millisecond)
	assert.True(t, l.Tick(), "closing the frame stream does not stop the loop")
	assert.Equal(t, 2, rec.Len())
	assert.Equal(t, []string{"+fire", "-fire"}, p.log)
}

func TestRunStopsOnCancel(t *testing.T) {
	m, _ := newManager()
	ctx, cancel := context.WithCancel(context.Background())

	l := New(m, WithStep(time.Millisecond), OnStep(func(time.Duration) {
		cancel()
	}))

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
	assert.GreaterOrEqual(t, l.Ticks(), uint64(1))
}

func TestRunStopsWhenEventsClose(t *testing.T) {
	m, p := newManager()
	events := make(chan input.Event, 2)
	events <- input.KeyDownEvent{Key: key.MouseLeft}
	close(events)

	l := New(m, WithStep(time.Millisecond), WithEvents(events))

	done := make(chan error, 1)
	go func() { done <- l.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
	assert.Equal(t, []string{"+fire"}, p.log)
}

func TestRunNilManager(t *testing.T) {
	l := New(nil)
	assert.ErrorIs(t, l.Run(context.Background()), input.ErrInvalidState)
	assert.Equal(t, DefaultStep, l.Step())
}
