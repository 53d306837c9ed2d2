package replay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/reel/internal/clock"
	"github.com/dshills/reel/internal/input"
	"github.com/dshills/reel/internal/input/action"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// threeFrames is the 0/100/200ms recording used by most cursor tests.
func threeFrames() *Recording {
	rec := NewRecording()
	rec.Append(NewFrame(0, input.Pos(0, 0)))
	rec.Append(NewFrame(100*time.Millisecond, input.Pos(5, 5), "a"))
	rec.Append(NewFrame(200*time.Millisecond, input.Pos(9, 9)))
	return rec
}

func pending(t *testing.T, c *Cursor) (input.Position, action.Set) {
	t.Helper()
	events := c.PendingInputs()
	require.Len(t, events, 2)
	pos, ok := events[0].(input.PositionEvent)
	require.True(t, ok, "first event is %T", events[0])
	state, ok := events[1].(input.ActionStateEvent)
	require.True(t, ok, "second event is %T", events[1])
	return pos.Position, state.Actions
}

func TestRecordingAppendAndAccess(t *testing.T) {
	rec := threeFrames()

	assert.Equal(t, 3, rec.Len())
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", rec.ID().String())
	assert.Equal(t, 200*time.Millisecond, rec.Duration())
	assert.True(t, rec.Ordered())

	f, err := rec.At(1)
	require.NoError(t, err)
	assert.True(t, f.Equal(NewFrame(100*time.Millisecond, input.Pos(5, 5), "a")))

	_, err = rec.At(3)
	assert.ErrorIs(t, err, input.ErrOutOfRange)
	_, err = rec.At(-1)
	assert.ErrorIs(t, err, input.ErrOutOfRange)

	frames := rec.Frames()
	frames[0].Position = input.Pos(42, 42)
	first, ok := rec.First()
	require.True(t, ok)
	assert.Equal(t, input.Pos(0, 0), first.Position, "Frames returns a copy")
}

func TestRecordingRestoreCopiesFrames(t *testing.T) {
	src := threeFrames()
	frames := src.Frames()

	rec := Restore(src.ID(), src.CreatedAt(), frames)
	frames[2].Position = input.Pos(-1, -1)

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, input.Pos(9, 9), last.Position)
	assert.Equal(t, src.ID(), rec.ID())
}

func TestRecordingOrdered(t *testing.T) {
	rec := NewRecording()
	assert.True(t, rec.Ordered())

	rec.Append(NewFrame(50*time.Millisecond, input.Pos(0, 0)))
	rec.Append(NewFrame(50*time.Millisecond, input.Pos(1, 0)))
	assert.True(t, rec.Ordered())

	rec.Append(NewFrame(10*time.Millisecond, input.Pos(2, 0)))
	assert.False(t, rec.Ordered())
}

func TestFrameString(t *testing.T) {
	f := NewFrame(100*time.Millisecond, input.Pos(5, 5), "a")
	assert.Equal(t, "@100ms (5, 5) {a}", f.String())
}

func TestRecorderRecordsFrames(t *testing.T) {
	clk := clock.NewVirtual(epoch)
	rec := NewRecording()
	r, err := NewRecorder(rec, WithClock(clk))
	require.NoError(t, err)

	assert.False(t, r.OnPointerMove(input.Pos(3, 4)))
	clk.Advance(100 * time.Millisecond)
	assert.False(t, r.OnPressed("a"))
	clk.Advance(50 * time.Millisecond)
	r.OnReleased("a")

	want := []Frame{
		NewFrame(0, input.Pos(3, 4)),
		NewFrame(100*time.Millisecond, input.Pos(3, 4), "a"),
		NewFrame(150*time.Millisecond, input.Pos(3, 4)),
	}
	got := rec.Frames()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Equal(got[i]), "frame %d: got %s, want %s", i, got[i], want[i])
	}
}

func TestRecorderFramesAreSnapshots(t *testing.T) {
	clk := clock.NewVirtual(epoch)
	rec := NewRecording()
	r, err := NewRecorder(rec, WithClock(clk))
	require.NoError(t, err)

	r.OnPressed("a")
	r.OnPressed("b")
	r.OnPointerMove(input.Pos(1, 1))
	r.OnReleased("a")

	frames := rec.Frames()
	require.Len(t, frames, 4)
	assert.Equal(t, "{a}", frames[0].Actions.String())
	assert.Equal(t, "{a, b}", frames[1].Actions.String())
	assert.Equal(t, "{a, b}", frames[2].Actions.String())
	assert.Equal(t, "{b}", frames[3].Actions.String())
}

func TestRecorderTimesNonDecreasing(t *testing.T) {
	clk := clock.NewVirtual(epoch)
	rec := NewRecording()
	r, err := NewRecorder(rec, WithClock(clk))
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		r.OnPointerMove(input.Pos(float64(i), 0))
		if i%3 == 0 {
			clk.Advance(time.Duration(i) * time.Millisecond)
		}
	}
	assert.True(t, rec.Ordered())
	assert.Equal(t, 20, rec.Len())
}

func TestRecorderLocalSpace(t *testing.T) {
	rec := NewRecording()
	r, err := NewRecorder(rec,
		WithClock(clock.NewVirtual(epoch)),
		WithLocalSpace(input.Offset(input.Pos(-10, -10))))
	require.NoError(t, err)

	r.OnPointerMove(input.Pos(15, 12))
	f, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, input.Pos(5, 2), f.Position)
}

func TestRecorderObserver(t *testing.T) {
	var seen []Frame
	rec := NewRecording()
	r, err := NewRecorder(rec,
		WithClock(clock.NewVirtual(epoch)),
		WithObserver(func(f Frame) { seen = append(seen, f) }))
	require.NoError(t, err)

	r.OnPressed("a")
	r.OnReleased("a")
	assert.Len(t, seen, 2)
}

func TestSecondRecorderRejected(t *testing.T) {
	rec := NewRecording()
	first, err := NewRecorder(rec)
	require.NoError(t, err)
	assert.True(t, rec.HasRecorder())

	_, err = NewRecorder(rec)
	assert.ErrorIs(t, err, input.ErrInvalidState)

	first.Close()
	assert.False(t, rec.HasRecorder())

	second, err := NewRecorder(rec)
	require.NoError(t, err)
	second.Close()
}

func TestRecorderNilTarget(t *testing.T) {
	_, err := NewRecorder(nil)
	assert.ErrorIs(t, err, input.ErrInvalidState)
}

func TestRecorderIgnoresEventsAfterClose(t *testing.T) {
	rec := NewRecording()
	r, err := NewRecorder(rec, WithClock(clock.NewVirtual(epoch)))
	require.NoError(t, err)

	r.OnPressed("a")
	r.Close()
	r.Close()
	r.OnReleased("a")
	r.OnPointerMove(input.Pos(1, 1))

	assert.Equal(t, 1, rec.Len())
}

func TestCursorResolvesFrames(t *testing.T) {
	// Pointer stays put while "a" is released.
	released := NewRecording()
	released.Append(NewFrame(0, input.Pos(0, 0)))
	released.Append(NewFrame(100*time.Millisecond, input.Pos(5, 5), "a"))
	released.Append(NewFrame(200*time.Millisecond, input.Pos(5, 5)))

	tests := []struct {
		name    string
		rec     *Recording
		at      time.Duration
		pos     input.Position
		actions string
	}{
		{"between first and second", threeFrames(), 50 * time.Millisecond, input.Pos(0, 0), "{}"},
		{"between second and third", threeFrames(), 150 * time.Millisecond, input.Pos(5, 5), "{a}"},
		{"on a frame", threeFrames(), 100 * time.Millisecond, input.Pos(5, 5), "{a}"},
		{"on the last frame", threeFrames(), 200 * time.Millisecond, input.Pos(9, 9), "{}"},
		{"past the end", threeFrames(), 10 * time.Second, input.Pos(9, 9), "{}"},
		{"at zero", threeFrames(), 0, input.Pos(0, 0), "{}"},
		{"released before press", released, 50 * time.Millisecond, input.Pos(0, 0), "{}"},
		{"released while held", released, 150 * time.Millisecond, input.Pos(5, 5), "{a}"},
		{"released after release", released, 250 * time.Millisecond, input.Pos(5, 5), "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCursor(tt.rec)
			require.True(t, c.SetTime(tt.at))
			pos, actions := pending(t, c)
			assert.Equal(t, tt.pos, pos)
			assert.Equal(t, tt.actions, actions.String())
		})
	}
}

func TestCursorMatchesLinearScan(t *testing.T) {
	rec := NewRecording()
	for i, ms := range []int{0, 0, 10, 10, 10, 25, 40, 41, 90} {
		rec.Append(NewFrame(time.Duration(ms)*time.Millisecond, input.Pos(float64(i), 0)))
	}
	frames := rec.Frames()
	c := NewCursor(rec)

	linear := func(at time.Duration) int {
		idx := -1
		for i, f := range frames {
			if f.Time <= at {
				idx = i
			}
		}
		return idx
	}

	// Forward, backward and jumping orders all agree with a linear scan.
	var times []time.Duration
	for ms := -5; ms <= 100; ms++ {
		times = append(times, time.Duration(ms)*time.Millisecond)
	}
	for ms := 100; ms >= -5; ms -= 7 {
		times = append(times, time.Duration(ms)*time.Millisecond)
	}
	for _, ms := range []int{90, 0, 41, 10, 99, 25, -1, 40} {
		times = append(times, time.Duration(ms)*time.Millisecond)
	}

	for _, at := range times {
		c.SetTime(at)
		assert.Equal(t, linear(at), c.Index(), "at %s", at)
	}
}

func TestCursorIdempotent(t *testing.T) {
	c := NewCursor(threeFrames())

	c.SetTime(150 * time.Millisecond)
	_, first := pending(t, c)
	c.SetTime(20 * time.Millisecond)
	c.SetTime(150 * time.Millisecond)
	_, second := pending(t, c)

	assert.True(t, first.Equal(second))
	assert.Equal(t, 1, c.Index())
	assert.Equal(t, 150*time.Millisecond, c.Time())
}

func TestCursorBeforeFirstFrame(t *testing.T) {
	rec := NewRecording()
	rec.Append(NewFrame(100*time.Millisecond, input.Pos(5, 5), "a"))
	c := NewCursor(rec, WithNeutral(input.Pos(1, 2)))

	assert.False(t, c.SetTime(50*time.Millisecond))
	assert.Equal(t, -1, c.Index())
	_, ok := c.CurrentFrame()
	assert.False(t, ok)

	pos, actions := pending(t, c)
	assert.Equal(t, input.Pos(1, 2), pos)
	assert.True(t, actions.IsEmpty())
}

func TestCursorEmptyRecording(t *testing.T) {
	for _, c := range []*Cursor{NewCursor(NewRecording()), NewCursor(nil)} {
		assert.False(t, c.SetTime(0))
		assert.False(t, c.SetTime(time.Hour))
		pos, actions := pending(t, c)
		assert.Equal(t, input.Pos(0, 0), pos)
		assert.True(t, actions.IsEmpty())
	}
}

func TestCursorTransformAppliedOnPoll(t *testing.T) {
	c := NewCursor(threeFrames(), WithTransform(input.Offset(input.Pos(100, 0))))

	c.SetTime(150 * time.Millisecond)
	pos, _ := pending(t, c)
	assert.Equal(t, input.Pos(105, 5), pos)

	c.SetTransform(input.Offset(input.Pos(0, 100)))
	pos, _ = pending(t, c)
	assert.Equal(t, input.Pos(5, 105), pos)

	c.SetTransform(nil)
	pos, _ = pending(t, c)
	assert.Equal(t, input.Pos(5, 5), pos)
}

func TestCursorSeesFramesAppendedWhilePlaying(t *testing.T) {
	rec := NewRecording()
	rec.Append(NewFrame(0, input.Pos(0, 0)))
	c := NewCursor(rec)

	require.True(t, c.SetTime(time.Second))
	assert.Equal(t, 0, c.Index())

	rec.Append(NewFrame(500*time.Millisecond, input.Pos(1, 1), "b"))
	require.True(t, c.SetTime(time.Second))
	assert.Equal(t, 1, c.Index())
}

func TestRoundTrip(t *testing.T) {
	clk := clock.NewVirtual(epoch)
	rec := NewRecording()
	r, err := NewRecorder(rec, WithClock(clk))
	require.NoError(t, err)

	type step struct {
		advance time.Duration
		do      func()
	}
	steps := []step{
		{0, func() { r.OnPointerMove(input.Pos(1, 1)) }},
		{30 * time.Millisecond, func() { r.OnPressed("fire") }},
		{30 * time.Millisecond, func() { r.OnPointerMove(input.Pos(2, 3)) }},
		{40 * time.Millisecond, func() { r.OnPressed("aim") }},
		{40 * time.Millisecond, func() { r.OnReleased("fire") }},
	}

	var snapshots []Frame
	var elapsed time.Duration
	for _, s := range steps {
		clk.Advance(s.advance)
		elapsed += s.advance
		s.do()
		snapshots = append(snapshots, Frame{Time: elapsed, Position: r.position, Actions: r.Active()})
	}
	r.Close()

	c := NewCursor(rec)
	for _, want := range snapshots {
		require.True(t, c.SetTime(want.Time))
		pos, actions := pending(t, c)
		assert.Equal(t, want.Position, pos, "at %s", want.Time)
		assert.True(t, want.Actions.Equal(actions), "at %s: got %s, want %s", want.Time, actions, want.Actions)
	}
}
