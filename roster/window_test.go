package roster

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// countingSequence records how many rows were read from it.
type countingSequence struct {
	n     int
	reads int
}

func (s *countingSequence) Len() int { return s.n }

func (s *countingSequence) At(i int) Customer {
	s.reads++
	return Customer{PhoneNumber: fmt.Sprintf("%010d", i)}
}

func TestViewport_Range(t *testing.T) {
	tests := []struct {
		name      string
		vp        Viewport
		total     int
		wantStart int
		wantEnd   int
	}{
		{name: "top of list", vp: Viewport{RowHeight: 52, Height: 500}, total: 1000, wantStart: 0, wantEnd: 11},
		{name: "scrolled", vp: Viewport{RowHeight: 52, Height: 500, ScrollOffset: 5200}, total: 1000, wantStart: 100, wantEnd: 111},
		{name: "overscan", vp: Viewport{RowHeight: 52, Height: 500, ScrollOffset: 5200, Overscan: 2}, total: 1000, wantStart: 98, wantEnd: 113},
		{name: "clamped at end", vp: Viewport{RowHeight: 52, Height: 500, ScrollOffset: 52 * 995}, total: 1000, wantStart: 995, wantEnd: 1000},
		{name: "past the end", vp: Viewport{RowHeight: 52, Height: 500, ScrollOffset: 52 * 5000}, total: 1000, wantStart: 1000, wantEnd: 1000},
		{name: "short list", vp: DefaultViewport(), total: 3, wantStart: 0, wantEnd: 3},
		{name: "empty", vp: DefaultViewport(), total: 0, wantStart: 0, wantEnd: 0},
		{name: "bad row height falls back", vp: Viewport{Height: 104, ScrollOffset: -10}, total: 10, wantStart: 0, wantEnd: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.vp.Range(tt.total)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestMaterialize_BoundedByViewport(t *testing.T) {
	seq := &countingSequence{n: 100_000}
	vp := Viewport{RowHeight: 10, Height: 200, Overscan: DefaultOverscan}
	assert.Equal(t, 20, vp.VisibleRows())

	for _, offset := range []int{0, 10 * 50_000, 10 * 99_990, 10 * 100_000} {
		seq.reads = 0
		vp.ScrollOffset = offset
		rows := Materialize(seq, vp, nil)
		assert.LessOrEqual(t, len(rows), 20+1+2*DefaultOverscan)
		assert.Equal(t, len(rows), seq.reads)
	}
}

func TestMaterialize_SelectionReflectedOnScrollBack(t *testing.T) {
	seq := &countingSequence{n: 1000}
	selected := NewPhoneSet(fmt.Sprintf("%010d", 3))
	vp := Viewport{RowHeight: 52, Height: 500}

	rows := Materialize(seq, vp, selected.Has)
	assert.True(t, rows[3].Selected)
	assert.False(t, rows[4].Selected)

	vp.ScrollOffset = 52 * 500
	Materialize(seq, vp, selected.Has)

	delete(selected, fmt.Sprintf("%010d", 3))
	vp.ScrollOffset = 0
	rows = Materialize(seq, vp, selected.Has)
	assert.False(t, rows[3].Selected)
}

func TestWindow_RenderTriggers(t *testing.T) {
	var w Window
	vp := Viewport{RowHeight: 52, Height: 500}
	v1 := SequenceVersion{Generation: 1}

	assert.True(t, w.Sync(v1, 1000, vp), "first render")
	assert.False(t, w.Sync(v1, 1000, vp), "nothing changed")

	vp.ScrollOffset = 10
	assert.False(t, w.Sync(v1, 1000, vp), "scrolling inside the same row keeps the window")

	vp.ScrollOffset = 52 * 3
	assert.True(t, w.Sync(v1, 1000, vp), "window moved")

	assert.True(t, w.Sync(SequenceVersion{Generation: 1, Membership: 1}, 999, vp), "sequence changed")

	vp.Height = 600
	assert.True(t, w.Sync(SequenceVersion{Generation: 1, Membership: 1}, 999, vp), "viewport resized")

	vp.RowHeight = 40
	assert.True(t, w.Sync(SequenceVersion{Generation: 1, Membership: 1}, 999, vp), "row height changed")
}

func TestWindow_SelectionChangedOnlyInsideWindow(t *testing.T) {
	var w Window
	assert.False(t, w.SelectionChanged(0), "nothing rendered yet")

	w.Sync(SequenceVersion{}, 1000, Viewport{RowHeight: 52, Height: 520, ScrollOffset: 52 * 100})
	start, end := w.Bounds()
	assert.Equal(t, 100, start)
	assert.Equal(t, 111, end)

	assert.True(t, w.SelectionChanged(100))
	assert.True(t, w.SelectionChanged(110))
	assert.False(t, w.SelectionChanged(99))
	assert.False(t, w.SelectionChanged(111))
}
