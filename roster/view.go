package roster

import "context"

// View is the per-session state of one partition: its filter, sort and selection. It holds no
// derived rows; Roster recomputes them from the engine on every call.
type View struct {
	engine    *Engine
	side      Side
	filter    Filter
	sort      SortState
	selection PhoneSet
	revision  uint64
	pruned    membershipStamp
}

// membershipStamp identifies the collection and membership a selection was last checked against.
type membershipStamp struct {
	generation uint64
	membership uint64
}

// NewView creates a view of side with no filter and the default sort.
func NewView(engine *Engine, side Side) *View {
	return &View{
		engine:    engine,
		side:      side,
		sort:      DefaultSort(),
		selection: make(PhoneSet),
	}
}

func (v *View) Side() Side {
	return v.side
}

func (v *View) Filter() Filter {
	return v.filter
}

func (v *View) Sort() SortState {
	return v.sort
}

// SetFilter replaces the filter. Selected phones that are no longer visible under the new filter
// are dropped from the selection.
func (v *View) SetFilter(f Filter) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if v.filter.Equal(f) {
		return nil
	}
	v.filter = f
	v.revision++
	v.prune()
	return nil
}

// ToggleSort applies a click on the header of field and returns the resulting sort.
func (v *View) ToggleSort(field SortField) SortState {
	v.sort = v.sort.Toggle(field)
	v.revision++
	return v.sort
}

// SetSort sets field and direction explicitly.
func (v *View) SetSort(s SortState) {
	if v.sort == s {
		return
	}
	v.sort = s
	v.revision++
}

// Roster returns the current ordered rows of the view.
func (v *View) Roster() Roster {
	v.refresh()
	return v.engine.VisibleRoster(v.side, v.filter, v.sort)
}

// ToggleSelect flips the selection of phone and reports whether it is now selected. Phones that
// are not rows of the view cannot be selected and leave the selection unchanged.
func (v *View) ToggleSelect(phone string) bool {
	v.refresh()
	if v.selection.Has(phone) {
		delete(v.selection, phone)
		return false
	}
	if !v.engine.IsVisible(phone, v.side, v.filter) {
		return false
	}
	v.selection[phone] = struct{}{}
	return true
}

func (v *View) IsSelected(phone string) bool {
	return v.selection.Has(phone)
}

// Selection returns the selected phones in ascending order.
func (v *View) Selection() []string {
	v.refresh()
	return v.selection.Sorted()
}

func (v *View) ClearSelection() {
	clear(v.selection)
}

// MoveSelectedToCalled marks every selected phone as called and clears the selection. Running it
// again with the same phones changes nothing.
func (v *View) MoveSelectedToCalled(ctx context.Context) int {
	v.refresh()
	n := v.engine.MarkCalled(ctx, v.selection.Sorted())
	v.ClearSelection()
	return n
}

// MoveSelectedBack returns every selected phone to the not-called side and clears the selection.
func (v *View) MoveSelectedBack(ctx context.Context) int {
	v.refresh()
	n := v.engine.MarkNotCalled(ctx, v.selection.Sorted())
	v.ClearSelection()
	return n
}

// MoveSelected moves the selection to the opposite side of the view.
func (v *View) MoveSelected(ctx context.Context) int {
	if v.side == Called {
		return v.MoveSelectedBack(ctx)
	}
	return v.MoveSelectedToCalled(ctx)
}

// Version identifies the ordered sequence the view currently produces.
func (v *View) Version() SequenceVersion {
	return SequenceVersion{
		Generation: v.engine.Generation(),
		Membership: v.engine.Partition().Version(),
		View:       v.revision,
	}
}

// refresh drops selected phones that left the view because the collection or the membership
// changed since the last check, for example through another session or a reload.
func (v *View) refresh() {
	stamp := membershipStamp{
		generation: v.engine.Generation(),
		membership: v.engine.Partition().Version(),
	}
	if stamp == v.pruned {
		return
	}
	v.pruned = stamp
	v.prune()
}

func (v *View) prune() {
	for phone := range v.selection {
		if !v.engine.IsVisible(phone, v.side, v.filter) {
			delete(v.selection, phone)
		}
	}
}
