package roster

const (
	DefaultRowHeight      = 52
	DefaultViewportHeight = 500
	DefaultOverscan       = 2
)

// Sequence is a randomly accessible ordered collection of customers.
type Sequence interface {
	Len() int
	At(i int) Customer
}

// Viewport describes the scroll state of a fixed-row-height list.
type Viewport struct {
	RowHeight    int `json:"row_height"`
	Height       int `json:"height"`
	ScrollOffset int `json:"scroll_offset"`
	Overscan     int `json:"overscan"`
}

// DefaultViewport is a viewport scrolled to the top with default dimensions.
func DefaultViewport() Viewport {
	return Viewport{RowHeight: DefaultRowHeight, Height: DefaultViewportHeight, Overscan: DefaultOverscan}
}

func (v Viewport) normalized() Viewport {
	if v.RowHeight <= 0 {
		v.RowHeight = DefaultRowHeight
	}
	if v.Height < 0 {
		v.Height = 0
	}
	if v.ScrollOffset < 0 {
		v.ScrollOffset = 0
	}
	if v.Overscan < 0 {
		v.Overscan = 0
	}
	return v
}

// VisibleRows is the number of rows the viewport can show at once.
func (v Viewport) VisibleRows() int {
	v = v.normalized()
	return (v.Height + v.RowHeight - 1) / v.RowHeight
}

// Range returns the half-open index range [start, end) of rows to materialise for a sequence of
// total rows: the rows from scrollOffset/rowHeight through scrollOffset/rowHeight+VisibleRows,
// widened by the overscan on both ends and clamped to the sequence.
func (v Viewport) Range(total int) (start, end int) {
	v = v.normalized()
	if total <= 0 {
		return 0, 0
	}
	first := v.ScrollOffset / v.RowHeight
	last := first + v.VisibleRows()

	start = max(first-v.Overscan, 0)
	end = min(last+v.Overscan+1, total)
	if start > end {
		start = end
	}
	return start, end
}

// Row is one materialised row of a windowed roster.
type Row struct {
	Index    int      `json:"index"`
	Customer Customer `json:"customer"`
	Selected bool     `json:"selected"`
}

// Materialize builds row objects only for the indices inside the viewport range. Selection state
// is read at materialisation time, so a row scrolled back into view reflects the current
// selection.
func Materialize(seq Sequence, vp Viewport, selected func(phone string) bool) []Row {
	start, end := vp.Range(seq.Len())
	rows := make([]Row, 0, end-start)
	for i := start; i < end; i++ {
		c := seq.At(i)
		rows = append(rows, Row{
			Index:    i,
			Customer: c,
			Selected: selected != nil && selected(c.PhoneNumber),
		})
	}
	return rows
}

// SequenceVersion identifies the ordered sequence a window was rendered from.
type SequenceVersion struct {
	Generation uint64 `json:"generation"`
	Membership uint64 `json:"membership"`
	View       uint64 `json:"view"`
}

// Window tracks what a client last rendered and decides when it must render again.
type Window struct {
	version  SequenceVersion
	viewport Viewport
	total    int
	start    int
	end      int
	rendered bool
}

// Sync records the current sequence version, length and viewport and reports whether any of them
// differ from the last render, which means the window has to be rendered again.
func (w *Window) Sync(version SequenceVersion, total int, vp Viewport) bool {
	vp = vp.normalized()
	start, end := vp.Range(total)
	changed := !w.rendered ||
		w.version != version ||
		w.total != total ||
		w.viewport.RowHeight != vp.RowHeight ||
		w.viewport.Height != vp.Height ||
		w.start != start || w.end != end

	w.version = version
	w.viewport = vp
	w.total = total
	w.start, w.end = start, end
	w.rendered = true
	return changed
}

// SelectionChanged reports whether a selection change at sequence index must trigger a render:
// only rows inside the current window do.
func (w *Window) SelectionChanged(index int) bool {
	return w.rendered && index >= w.start && index < w.end
}

// Bounds returns the last rendered index range.
func (w *Window) Bounds() (start, end int) {
	return w.start, w.end
}
