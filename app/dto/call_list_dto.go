package dto

// StoreOptionDTO is one store filter choice with its unfiltered population
type StoreOptionDTO struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CallListOptionsResponse lists the filter choices of the full collection
type CallListOptionsResponse struct {
	Stores []StoreOptionDTO `json:"stores"`
	Plans  []string         `json:"plans"`
}

// CallListFilterDTO is the filter of one call-list side. Dates are YYYY-MM-DD.
type CallListFilterDTO struct {
	Store string `json:"store" query:"store"`
	Plan  string `json:"plan" query:"plan"`
	From  string `json:"from" query:"from" validate:"omitempty,datetime=2006-01-02"`
	To    string `json:"to" query:"to" validate:"omitempty,datetime=2006-01-02"`
}

// Filter returns the filter dimensions of the query
func (q CallListWindowQuery) Filter() CallListFilterDTO {
	return CallListFilterDTO{Store: q.Store, Plan: q.Plan, From: q.From, To: q.To}
}

// HasFilter reports whether any filter dimension was supplied
func (q CallListWindowQuery) HasFilter() bool {
	return q.Filter() != CallListFilterDTO{}
}

// CallListWindowQuery selects the rendered window of one side
type CallListWindowQuery struct {
	Store          string `query:"store"`
	Plan           string `query:"plan"`
	From           string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To             string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	ScrollOffset   int    `query:"scroll_offset" validate:"gte=0"`
	ViewportHeight int    `query:"viewport_height" validate:"gte=0,lte=20000"`
	RowHeight      int    `query:"row_height" validate:"gte=0,lte=1000"`
}

// CallListSortRequest toggles the sort of one side, or sets it when a direction is given
type CallListSortRequest struct {
	Field     string `json:"field" validate:"required"`
	Direction string `json:"direction" validate:"omitempty,oneof=asc desc"`
}

// CallListSelectRequest toggles the selection of one row
type CallListSelectRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,phone_digits"`
}

// CallListSortDTO is the active sort of a side
type CallListSortDTO struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// CallListRowDTO is one materialised row
type CallListRowDTO struct {
	Index    int         `json:"index"`
	Customer CustomerDTO `json:"customer"`
	Selected bool        `json:"selected"`
}

// CallListWindowResponse is the visible window of one side
type CallListWindowResponse struct {
	Side      string            `json:"side"`
	Total     int               `json:"total"`
	Start     int               `json:"start"`
	End       int               `json:"end"`
	RowHeight int               `json:"row_height"`
	Rerender  bool              `json:"rerender"`
	Filter    CallListFilterDTO `json:"filter"`
	Sort      CallListSortDTO   `json:"sort"`
	Selected  []string          `json:"selected"`
	Rows      []CallListRowDTO  `json:"rows"`
}

// CallListViewStateResponse describes a side after a filter or sort change
type CallListViewStateResponse struct {
	Side     string            `json:"side"`
	Total    int               `json:"total"`
	Filter   CallListFilterDTO `json:"filter"`
	Sort     CallListSortDTO   `json:"sort"`
	Selected []string          `json:"selected"`
}

// CallListSelectResponse reports the selection state after a toggle
type CallListSelectResponse struct {
	PhoneNumber string   `json:"phone_number"`
	Selected    bool     `json:"selected"`
	Rerender    bool     `json:"rerender"`
	Selection   []string `json:"selection"`
}

// CallListMoveResponse reports a batch move between sides
type CallListMoveResponse struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Moved int    `json:"moved"`
	Total int    `json:"total"`
}

// RemoveFromCalledResponse reports a single removal from the called side
type RemoveFromCalledResponse struct {
	PhoneNumber string `json:"phone_number"`
	Removed     bool   `json:"removed"`
}
