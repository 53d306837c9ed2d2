package manager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/reel/internal/clock"
	"github.com/dshills/reel/internal/input"
	"github.com/dshills/reel/internal/input/action"
	"github.com/dshills/reel/internal/input/binding"
	"github.com/dshills/reel/internal/input/key"
	"github.com/dshills/reel/internal/input/replay"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// spy logs action and pointer notifications.
type spy struct {
	log    []string
	moves  []input.Position
	handle bool
}

func (p *spy) OnPressed(a action.Action) bool {
	p.log = append(p.log, "+"+string(a))
	return p.handle
}

func (p *spy) OnReleased(a action.Action) {
	p.log = append(p.log, "-"+string(a))
}

func (p *spy) OnPointerMove(pos input.Position) bool {
	p.moves = append(p.moves, pos)
	return false
}

func testTable() *binding.Table {
	return binding.MustTable(
		binding.NewBinding(key.MouseLeft, "fire"),
		binding.NewBinding(key.MouseRight, "aim"),
		binding.NewBinding(key.KeySpace, "jump"),
	)
}

func newTestManager(mode binding.Mode) (*Manager, *spy) {
	m := New(binding.NewRouter(testTable(), mode))
	p := &spy{}
	m.AddHandler(p)
	m.AddPointerHandler(p)
	return m, p
}

func TestManagerLiveDispatch(t *testing.T) {
	m, p := newTestManager(binding.ModeAll)

	assert.True(t, m.Feed(input.PositionEvent{Position: input.Pos(3, 4)}))
	assert.True(t, m.Feed(input.KeyDownEvent{Key: key.MouseLeft}))
	assert.Empty(t, p.log, "events wait for Update")

	m.Update(0)
	assert.Equal(t, []string{"+fire"}, p.log)
	assert.Equal(t, []input.Position{input.Pos(3, 4)}, p.moves)
	assert.Equal(t, input.Pos(3, 4), m.Pointer())
	assert.True(t, m.Active().Has("fire"))

	m.Feed(input.KeyUpEvent{Key: key.MouseLeft})
	m.Update(time.Millisecond)
	assert.Equal(t, []string{"+fire", "-fire"}, p.log)
	assert.True(t, m.Active().IsEmpty())
}

func TestManagerPointerDedup(t *testing.T) {
	m, p := newTestManager(binding.ModeAll)

	m.Feed(input.PositionEvent{Position: input.Pos(0, 0)})
	m.Feed(input.PositionEvent{Position: input.Pos(0, 0)})
	m.Feed(input.PositionEvent{Position: input.Pos(1, 0)})
	m.Update(0)

	assert.Equal(t, []input.Position{input.Pos(0, 0), input.Pos(1, 0)}, p.moves)
}

func TestManagerBindingModes(t *testing.T) {
	t.Run("unique", func(t *testing.T) {
		m, p := newTestManager(binding.ModeUnique)

		m.Feed(input.KeyDownEvent{Key: key.MouseLeft})
		m.Feed(input.KeyDownEvent{Key: key.MouseRight})
		m.Update(0)

		assert.Equal(t, []string{"+fire", "-fire", "+aim"}, p.log)
		assert.Equal(t, "{aim}", m.Active().String())
	})

	t.Run("all", func(t *testing.T) {
		m, p := newTestManager(binding.ModeAll)

		m.Feed(input.KeyDownEvent{Key: key.MouseLeft})
		m.Feed(input.KeyDownEvent{Key: key.MouseRight})
		m.Update(0)

		assert.Equal(t, []string{"+fire", "+aim"}, p.log)
		assert.Equal(t, "{aim, fire}", m.Active().String())
	})

	t.Run("unique across classes", func(t *testing.T) {
		m, _ := newTestManager(binding.ModeUnique)

		m.Feed(input.KeyDownEvent{Key: key.MouseLeft})
		m.Feed(input.KeyDownEvent{Key: key.KeySpace})
		m.Update(0)

		assert.Equal(t, "{fire, jump}", m.Active().String())
	})
}

func TestManagerReleaseReachesDecliningHandler(t *testing.T) {
	m, first := newTestManager(binding.ModeAll)
	first.handle = true
	second := &spy{}
	m.AddHandler(second)

	m.Feed(input.KeyDownEvent{Key: key.MouseLeft})
	m.Feed(input.KeyUpEvent{Key: key.MouseLeft})
	m.Update(0)

	assert.Equal(t, []string{"+fire", "-fire"}, first.log)
	assert.Empty(t, second.log, "press stopped at the first handler")
}

func TestManagerPointerHandlersIdempotent(t *testing.T) {
	m := New(nil)
	p := &spy{}

	m.AddPointerHandler(p)
	m.AddPointerHandler(p)
	m.Feed(input.PositionEvent{Position: input.Pos(1, 1)})
	m.Update(0)
	assert.Len(t, p.moves, 1)

	m.RemovePointerHandler(p)
	m.RemovePointerHandler(p)
	m.Feed(input.PositionEvent{Position: input.Pos(2, 2)})
	m.Update(0)
	assert.Len(t, p.moves, 1)
}

func TestManagerReplayIsExclusive(t *testing.T) {
	m, p := newTestManager(binding.ModeAll)

	rec := replay.NewRecording()
	rec.Append(replay.NewFrame(0, input.Pos(5, 5), "fire"))

	m.Feed(input.KeyDownEvent{Key: key.MouseRight})
	m.Update(0)
	require.Equal(t, "{aim}", m.Active().String())

	require.NoError(t, m.AttachReplay(replay.NewCursor(rec), 0))
	assert.Equal(t, input.SourceReplay, m.Source().Kind())
	assert.True(t, m.Active().IsEmpty(), "live actions released on attach")

	assert.False(t, m.Feed(input.KeyDownEvent{Key: key.KeySpace}))
	m.Update(10 * time.Millisecond)
	assert.Equal(t, "{fire}", m.Active().String())
	assert.Equal(t, input.Pos(5, 5), m.Pointer())
	assert.Equal(t, uint64(1), m.Metrics().Snapshot().DroppedEvents)

	m.Detach()
	assert.Equal(t, input.SourceLive, m.Source().Kind())
	assert.True(t, m.Active().IsEmpty())
	assert.Equal(t, []string{"+aim", "-aim", "+fire", "-fire"}, p.log)
}

func TestManagerAttachReplayErrors(t *testing.T) {
	m := New(nil)

	assert.ErrorIs(t, m.AttachReplay(nil, 0), input.ErrInvalidState)
	err := m.AttachReplay(replay.NewCursor(replay.NewRecording()), -time.Second)
	assert.ErrorIs(t, err, input.ErrOutOfRange)
	assert.Equal(t, input.SourceLive, m.Source().Kind())

	// Detaching in live mode is a no-op.
	m.Detach()
	assert.Equal(t, input.SourceLive, m.Source().Kind())
}

func TestManagerReplayLag(t *testing.T) {
	m, _ := newTestManager(binding.ModeAll)
	rec := replay.NewRecording()
	rec.Append(replay.NewFrame(100*time.Millisecond, input.Pos(1, 1), "jump"))
	require.NoError(t, m.AttachReplay(replay.NewCursor(rec), 50*time.Millisecond))

	m.Update(120 * time.Millisecond)
	assert.True(t, m.Active().IsEmpty())

	m.Update(150 * time.Millisecond)
	assert.Equal(t, "{jump}", m.Active().String())
}

func TestManagerSecondRecorder(t *testing.T) {
	m := New(nil)

	first, err := replay.NewRecorder(replay.NewRecording())
	require.NoError(t, err)
	second, err := replay.NewRecorder(replay.NewRecording())
	require.NoError(t, err)

	require.NoError(t, m.AttachRecorder(first))
	assert.ErrorIs(t, m.AttachRecorder(second), input.ErrInvalidState)
	assert.ErrorIs(t, m.AttachRecorder(nil), input.ErrInvalidState)

	assert.Same(t, first, m.DetachRecorder())
	assert.False(t, first.Target().HasRecorder())
	assert.Nil(t, m.DetachRecorder())
	require.NoError(t, m.AttachRecorder(second))
}

func TestManagerRecorderDoesNotConsume(t *testing.T) {
	m, p := newTestManager(binding.ModeAll)
	r, err := replay.NewRecorder(replay.NewRecording(), replay.WithClock(clock.NewVirtual(epoch)))
	require.NoError(t, err)
	require.NoError(t, m.AttachRecorder(r))

	m.Feed(input.PositionEvent{Position: input.Pos(2, 2)})
	m.Feed(input.KeyDownEvent{Key: key.MouseLeft})
	m.Update(0)

	assert.Equal(t, []string{"+fire"}, p.log)
	assert.Equal(t, []input.Position{input.Pos(2, 2)}, p.moves)
	assert.Equal(t, 2, r.Target().Len())
}

func TestManagerRecorderAttachedMidSession(t *testing.T) {
	clk := clock.NewVirtual(epoch)
	m, p := newTestManager(binding.ModeAll)

	m.Feed(input.PositionEvent{Position: input.Pos(5, 5)})
	m.Feed(input.KeyDownEvent{Key: key.MouseLeft})
	m.Update(0)

	r, err := replay.NewRecorder(replay.NewRecording(), replay.WithClock(clk))
	require.NoError(t, err)
	require.NoError(t, m.AttachRecorder(r))

	rec := r.Target()
	require.Equal(t, 1, rec.Len())
	first, _ := rec.First()
	assert.Equal(t, time.Duration(0), first.Time)
	assert.Equal(t, input.Pos(5, 5), first.Position)
	assert.Equal(t, "{fire}", first.Actions.String())

	clk.Advance(10 * time.Millisecond)
	m.Feed(input.KeyDownEvent{Key: key.KeySpace})
	m.Update(10 * time.Millisecond)

	clk.Advance(10 * time.Millisecond)
	m.Feed(input.KeyUpEvent{Key: key.MouseLeft})
	m.Update(20 * time.Millisecond)

	require.Equal(t, 3, rec.Len())
	frames := rec.Frames()
	assert.True(t, action.NewSet("fire", "jump").Equal(frames[1].Actions))
	assert.Equal(t, input.Pos(5, 5), frames[1].Position)
	assert.Equal(t, 20*time.Millisecond, frames[2].Time)
	assert.Equal(t, "{jump}", frames[2].Actions.String())
	assert.Equal(t, []string{"+fire", "+jump", "-fire"}, p.log)
}

func TestManagerRecorderAttachedIdleRecordsNothing(t *testing.T) {
	m, _ := newTestManager(binding.ModeAll)
	r, err := replay.NewRecorder(replay.NewRecording())
	require.NoError(t, err)
	require.NoError(t, m.AttachRecorder(r))

	assert.Equal(t, 0, r.Target().Len())
}

func TestRecordThenReplay(t *testing.T) {
	clk := clock.NewVirtual(epoch)
	live, _ := newTestManager(binding.ModeUnique)
	rec := replay.NewRecording()
	r, err := replay.NewRecorder(rec, replay.WithClock(clk))
	require.NoError(t, err)
	require.NoError(t, live.AttachRecorder(r))

	type observed struct {
		at      time.Duration
		pointer input.Position
		actions action.Set
	}

	script := []struct {
		advance time.Duration
		events  []input.Event
	}{
		{0, []input.Event{input.PositionEvent{Position: input.Pos(1, 1)}}},
		{40 * time.Millisecond, []input.Event{input.KeyDownEvent{Key: key.MouseLeft}}},
		{20 * time.Millisecond, []input.Event{input.PositionEvent{Position: input.Pos(4, 2)}}},
		{30 * time.Millisecond, []input.Event{input.KeyDownEvent{Key: key.MouseRight}}},
		{10 * time.Millisecond, []input.Event{input.KeyDownEvent{Key: key.KeySpace}}},
		{50 * time.Millisecond, []input.Event{
			input.KeyUpEvent{Key: key.MouseRight},
			input.PositionEvent{Position: input.Pos(0, 7)},
		}},
		{25 * time.Millisecond, []input.Event{input.KeyUpEvent{Key: key.KeySpace}}},
	}

	var want []observed
	var now time.Duration
	for _, step := range script {
		clk.Advance(step.advance)
		now += step.advance
		for _, ev := range step.events {
			live.Feed(ev)
		}
		live.Update(now)
		want = append(want, observed{at: now, pointer: live.Pointer(), actions: live.Active()})
	}
	live.DetachRecorder()
	require.True(t, rec.Ordered())

	played, p := newTestManager(binding.ModeUnique)
	require.NoError(t, played.AttachReplay(replay.NewCursor(rec), 0))

	for _, w := range want {
		played.Update(w.at)
		assert.Equal(t, w.pointer, played.Pointer(), "pointer at %s", w.at)
		assert.True(t, w.actions.Equal(played.Active()),
			"actions at %s: got %s, want %s", w.at, played.Active(), w.actions)
	}

	// Held at the last frame.
	played.Update(time.Hour)
	assert.True(t, want[len(want)-1].actions.Equal(played.Active()))
	assert.NotEmpty(t, p.log)
}

func TestMetricsSnapshot(t *testing.T) {
	m, _ := newTestManager(binding.ModeAll)

	m.Feed(input.PositionEvent{Position: input.Pos(1, 1)})
	m.Feed(input.KeyDownEvent{Key: key.MouseLeft})
	m.Feed(input.KeyUpEvent{Key: key.MouseLeft})
	m.Update(0)

	snap := m.Metrics().Snapshot()
	assert.Equal(t, uint64(1), snap.PositionEvents)
	assert.Equal(t, uint64(2), snap.KeyEvents)
	assert.Equal(t, uint64(1), snap.Updates)
	assert.Equal(t, uint64(0), snap.Polls)

	m.Metrics().Reset()
	assert.Equal(t, uint64(0), m.Metrics().Snapshot().Updates)
}

func TestLatencyStats(t *testing.T) {
	avg, p99 := latencyStats([]time.Duration{0, 0})
	assert.Zero(t, avg)
	assert.Zero(t, p99)

	avg, p99 = latencyStats([]time.Duration{time.Millisecond, 3 * time.Millisecond, 0})
	assert.Equal(t, 2*time.Millisecond, avg)
	assert.Equal(t, 3*time.Millisecond, p99)
}
