package businessflow

import (
	"context"

	"github.com/amirphl/Eligibility-Roster/app/dto"
	"github.com/amirphl/Eligibility-Roster/roster"
)

// CallListConfig holds the rendering defaults of the call list
type CallListConfig struct {
	RowHeight      int
	ViewportHeight int
	Overscan       int
}

// DefaultCallListConfig returns the standard row and viewport dimensions
func DefaultCallListConfig() CallListConfig {
	return CallListConfig{
		RowHeight:      roster.DefaultRowHeight,
		ViewportHeight: roster.DefaultViewportHeight,
		Overscan:       roster.DefaultOverscan,
	}
}

// CallListFlow manages the two sides of the call list for a staff session
type CallListFlow interface {
	Options(ctx context.Context) (*dto.CallListOptionsResponse, error)
	Window(ctx context.Context, session *roster.Session, side string, query *dto.CallListWindowQuery) (*dto.CallListWindowResponse, error)
	SetFilter(ctx context.Context, session *roster.Session, side string, req *dto.CallListFilterDTO) (*dto.CallListViewStateResponse, error)
	Sort(ctx context.Context, session *roster.Session, side string, req *dto.CallListSortRequest) (*dto.CallListViewStateResponse, error)
	ToggleSelect(ctx context.Context, session *roster.Session, side string, req *dto.CallListSelectRequest) (*dto.CallListSelectResponse, error)
	MoveSelected(ctx context.Context, session *roster.Session, side string) (*dto.CallListMoveResponse, error)
	RemoveFromCalled(ctx context.Context, phoneNumber string) (*dto.RemoveFromCalledResponse, error)
}

// CallListFlowImpl implements CallListFlow
type CallListFlowImpl struct {
	engine *roster.Engine
	config CallListConfig
}

// NewCallListFlow creates a call list flow over engine
func NewCallListFlow(engine *roster.Engine, config CallListConfig) CallListFlow {
	defaults := DefaultCallListConfig()
	if config.RowHeight <= 0 {
		config.RowHeight = defaults.RowHeight
	}
	if config.ViewportHeight <= 0 {
		config.ViewportHeight = defaults.ViewportHeight
	}
	if config.Overscan < 0 {
		config.Overscan = defaults.Overscan
	}
	return &CallListFlowImpl{engine: engine, config: config}
}

func (f *CallListFlowImpl) Options(ctx context.Context) (*dto.CallListOptionsResponse, error) {
	stores := f.engine.StoreOptions()
	out := &dto.CallListOptionsResponse{
		Stores: make([]dto.StoreOptionDTO, 0, len(stores)),
		Plans:  f.engine.PlanOptions(),
	}
	for _, s := range stores {
		out.Stores = append(out.Stores, dto.StoreOptionDTO{Name: s.Name, Count: s.Count})
	}
	return out, nil
}

// Window returns the rows of side visible in the requested viewport. Filter dimensions in the
// query replace the side's current filter first.
func (f *CallListFlowImpl) Window(ctx context.Context, session *roster.Session, side string, query *dto.CallListWindowQuery) (*dto.CallListWindowResponse, error) {
	if session == nil {
		return nil, NewBusinessError(CodeSessionRequired, "Staff session is required", ErrSessionRequired)
	}
	s, err := parseSide(side)
	if err != nil {
		return nil, err
	}
	if query == nil {
		query = &dto.CallListWindowQuery{}
	}

	var filter *roster.Filter
	if query.HasFilter() {
		parsed, err := parseRosterFilter(query.Filter())
		if err != nil {
			return nil, err
		}
		filter = &parsed
	}

	vp := roster.Viewport{
		RowHeight:    f.config.RowHeight,
		Height:       f.config.ViewportHeight,
		ScrollOffset: query.ScrollOffset,
		Overscan:     f.config.Overscan,
	}
	if query.RowHeight > 0 {
		vp.RowHeight = query.RowHeight
	}
	if query.ViewportHeight > 0 {
		vp.Height = query.ViewportHeight
	}

	var res *dto.CallListWindowResponse
	err = session.Do(s, func(v *roster.View, w *roster.Window) error {
		if filter != nil {
			if err := v.SetFilter(*filter); err != nil {
				return NewBusinessError(CodeInvalidDateRange, "Start date is after end date", ErrStartDateAfterEndDate)
			}
		}
		seq := v.Roster()
		rerender := w.Sync(v.Version(), seq.Len(), vp)
		start, end := w.Bounds()

		rows := roster.Materialize(seq, vp, v.IsSelected)
		res = &dto.CallListWindowResponse{
			Side:      s.String(),
			Total:     seq.Len(),
			Start:     start,
			End:       end,
			RowHeight: vp.RowHeight,
			Rerender:  rerender,
			Filter:    toFilterDTO(v.Filter()),
			Sort:      toSortDTO(v.Sort()),
			Selected:  v.Selection(),
			Rows:      make([]dto.CallListRowDTO, 0, len(rows)),
		}
		for _, r := range rows {
			res.Rows = append(res.Rows, dto.CallListRowDTO{
				Index:    r.Index,
				Customer: ToCustomerDTO(r.Customer),
				Selected: r.Selected,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// SetFilter replaces the filter of side. The selection keeps only rows that stay visible.
func (f *CallListFlowImpl) SetFilter(ctx context.Context, session *roster.Session, side string, req *dto.CallListFilterDTO) (*dto.CallListViewStateResponse, error) {
	if session == nil {
		return nil, NewBusinessError(CodeSessionRequired, "Staff session is required", ErrSessionRequired)
	}
	s, err := parseSide(side)
	if err != nil {
		return nil, err
	}
	if req == nil {
		req = &dto.CallListFilterDTO{}
	}
	filter, err := parseRosterFilter(*req)
	if err != nil {
		return nil, err
	}

	var res *dto.CallListViewStateResponse
	err = session.Do(s, func(v *roster.View, _ *roster.Window) error {
		if err := v.SetFilter(filter); err != nil {
			return NewBusinessError(CodeInvalidDateRange, "Start date is after end date", ErrStartDateAfterEndDate)
		}
		res = viewState(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Sort toggles the sort of side on req.Field, or sets it outright when a direction is given
func (f *CallListFlowImpl) Sort(ctx context.Context, session *roster.Session, side string, req *dto.CallListSortRequest) (*dto.CallListViewStateResponse, error) {
	if req == nil {
		return nil, NewBusinessError(CodeInvalidRequest, "request is required", nil)
	}
	if session == nil {
		return nil, NewBusinessError(CodeSessionRequired, "Staff session is required", ErrSessionRequired)
	}
	s, err := parseSide(side)
	if err != nil {
		return nil, err
	}
	field, err := roster.ParseSortField(req.Field)
	if err != nil {
		return nil, NewBusinessErrorf(CodeValidationError, "Unknown sort field %q", ErrInvalidSortField, req.Field)
	}
	var direction roster.SortDirection
	if req.Direction != "" {
		direction, err = roster.ParseSortDirection(req.Direction)
		if err != nil {
			return nil, NewBusinessErrorf(CodeValidationError, "Unknown sort direction %q", ErrInvalidSortDirection, req.Direction)
		}
	}

	var res *dto.CallListViewStateResponse
	err = session.Do(s, func(v *roster.View, _ *roster.Window) error {
		if direction != "" {
			v.SetSort(roster.SortState{Field: field, Direction: direction})
		} else {
			v.ToggleSort(field)
		}
		res = viewState(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ToggleSelect flips the selection of one visible row. Rows outside the current roster of side
// cannot be selected.
func (f *CallListFlowImpl) ToggleSelect(ctx context.Context, session *roster.Session, side string, req *dto.CallListSelectRequest) (*dto.CallListSelectResponse, error) {
	if req == nil {
		return nil, NewBusinessError(CodeInvalidRequest, "request is required", nil)
	}
	if session == nil {
		return nil, NewBusinessError(CodeSessionRequired, "Staff session is required", ErrSessionRequired)
	}
	s, err := parseSide(side)
	if err != nil {
		return nil, err
	}
	phone, err := normalizePhone(req.PhoneNumber)
	if err != nil {
		return nil, err
	}

	res := &dto.CallListSelectResponse{PhoneNumber: phone}
	err = session.Do(s, func(v *roster.View, w *roster.Window) error {
		res.Selected = v.ToggleSelect(phone)
		res.Rerender = w.SelectionChanged(indexOf(v.Roster(), phone))
		res.Selection = v.Selection()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// MoveSelected moves the selection of side to the other side and clears it
func (f *CallListFlowImpl) MoveSelected(ctx context.Context, session *roster.Session, side string) (*dto.CallListMoveResponse, error) {
	if session == nil {
		return nil, NewBusinessError(CodeSessionRequired, "Staff session is required", ErrSessionRequired)
	}
	s, err := parseSide(side)
	if err != nil {
		return nil, err
	}

	to := roster.Called
	if s == roster.Called {
		to = roster.NotCalled
	}
	res := &dto.CallListMoveResponse{From: s.String(), To: to.String()}
	err = session.Do(s, func(v *roster.View, _ *roster.Window) error {
		res.Moved = v.MoveSelected(ctx)
		res.Total = v.Roster().Len()
		return nil
	})
	if err != nil {
		return nil, err
	}
	partitionMovesTotal.WithLabelValues(to.String()).Add(float64(res.Moved))
	rosterCalled.Set(float64(f.engine.Partition().Len()))
	return res, nil
}

// RemoveFromCalled returns one phone number to the not-called side regardless of selection
func (f *CallListFlowImpl) RemoveFromCalled(ctx context.Context, phoneNumber string) (*dto.RemoveFromCalledResponse, error) {
	phone, err := normalizePhone(phoneNumber)
	if err != nil {
		return nil, err
	}
	removed := f.engine.RemoveSingleFromCalled(ctx, phone)
	if removed {
		partitionMovesTotal.WithLabelValues(roster.NotCalled.String()).Inc()
		rosterCalled.Set(float64(f.engine.Partition().Len()))
	}
	return &dto.RemoveFromCalledResponse{PhoneNumber: phone, Removed: removed}, nil
}

func parseRosterFilter(in dto.CallListFilterDTO) (roster.Filter, error) {
	from, to, err := parseDateRange(in.From, in.To)
	if err != nil {
		return roster.Filter{}, err
	}
	return roster.Filter{Store: in.Store, Plan: in.Plan, From: from, To: to}, nil
}

func viewState(v *roster.View) *dto.CallListViewStateResponse {
	return &dto.CallListViewStateResponse{
		Side:     v.Side().String(),
		Total:    v.Roster().Len(),
		Filter:   toFilterDTO(v.Filter()),
		Sort:     toSortDTO(v.Sort()),
		Selected: v.Selection(),
	}
}

func indexOf(seq roster.Sequence, phone string) int {
	for i := range seq.Len() {
		if seq.At(i).PhoneNumber == phone {
			return i
		}
	}
	return -1
}
