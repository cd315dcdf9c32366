package lookuplog

import (
	"time"

	"github.com/amirphl/Eligibility-Roster/roster"
	"github.com/amirphl/Eligibility-Roster/utils"
)

const (
	StatusLabelEligible    = "Eligible"
	StatusLabelNotEligible = "Not Eligible"
)

// ExportColumns is the fixed header of an exported history sheet.
var ExportColumns = []string{
	"Phone Number",
	"Checked By",
	"Date & Time",
	"Status",
	"Customer Name",
	"Store",
	"Monthly Savings",
	"Yearly Savings",
}

// ExportRow is one exported lookup. Customer columns are empty unless the lookup was eligible.
type ExportRow struct {
	PhoneNumber    string `json:"phone_number"`
	CheckedBy      string `json:"checked_by"`
	DateTime       string `json:"date_time"`
	Status         string `json:"status"`
	CustomerName   string `json:"customer_name"`
	Store          string `json:"store"`
	MonthlySavings string `json:"monthly_savings"`
	YearlySavings  string `json:"yearly_savings"`
}

// Values returns the cells in ExportColumns order.
func (r ExportRow) Values() []string {
	return []string{
		r.PhoneNumber,
		r.CheckedBy,
		r.DateTime,
		r.Status,
		r.CustomerName,
		r.Store,
		r.MonthlySavings,
		r.YearlySavings,
	}
}

// ExportView projects the filtered history, most recent first, into export rows. Timestamps are
// rendered in loc (UTC when nil).
func (l *Log) ExportView(filter Filter, loc *time.Location) []ExportRow {
	records := l.View(filter, roster.Descending)
	rows := make([]ExportRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, exportRow(r, loc))
	}
	return rows
}

func exportRow(r Record, loc *time.Location) ExportRow {
	if loc == nil {
		loc = time.UTC
	}
	row := ExportRow{
		PhoneNumber: r.PhoneNumber,
		CheckedBy:   r.CheckedBy,
		DateTime:    r.Timestamp.In(loc).Format(utils.ExportTimestampLayout),
		Status:      StatusLabelNotEligible,
	}
	if !r.IsEligible || r.Customer == nil {
		return row
	}
	row.Status = StatusLabelEligible
	row.CustomerName = r.Customer.Name
	row.Store = r.Customer.StoreName
	row.MonthlySavings = utils.FormatDollars(r.Customer.MonthlySavings)
	row.YearlySavings = utils.FormatDollars(r.Customer.YearlySavings)
	return row
}
