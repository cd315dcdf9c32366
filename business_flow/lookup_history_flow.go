package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/amirphl/Eligibility-Roster/app/dto"
	"github.com/amirphl/Eligibility-Roster/lookuplog"
	"github.com/amirphl/Eligibility-Roster/roster"
	"github.com/amirphl/Eligibility-Roster/utils"
)

const (
	// LookupHistorySheet is the sheet name of an exported workbook
	LookupHistorySheet = "Lookup History"

	lookupExportFilePrefix = "lookup-history-"
)

var lookupExportColumnWidths = []float64{16, 24, 24, 14, 24, 20, 16, 16}

// LookupHistoryFlow exposes the lookup history to staff
type LookupHistoryFlow interface {
	List(ctx context.Context, query *dto.LookupHistoryQuery) (*dto.LookupHistoryResponse, error)
	Checkers(ctx context.Context) (*dto.LookupCheckersResponse, error)
	Export(ctx context.Context, query *dto.LookupHistoryQuery) (string, []byte, error)
}

// LookupHistoryFlowImpl implements LookupHistoryFlow
type LookupHistoryFlowImpl struct {
	history  *lookuplog.Log
	location *time.Location
	now      func() time.Time
}

// NewLookupHistoryFlow creates the history flow. Exported timestamps and file names use loc,
// UTC when nil.
func NewLookupHistoryFlow(history *lookuplog.Log, loc *time.Location) LookupHistoryFlow {
	if loc == nil {
		loc = time.UTC
	}
	return &LookupHistoryFlowImpl{history: history, location: loc, now: time.Now}
}

func (f *LookupHistoryFlowImpl) List(ctx context.Context, query *dto.LookupHistoryQuery) (*dto.LookupHistoryResponse, error) {
	filter, direction, err := parseLookupQuery(query)
	if err != nil {
		return nil, err
	}
	records := f.history.View(filter, direction)
	out := &dto.LookupHistoryResponse{
		Total:   f.history.Len(),
		Count:   len(records),
		Records: make([]dto.LookupRecordDTO, 0, len(records)),
	}
	for _, r := range records {
		out.Records = append(out.Records, ToLookupRecordDTO(r))
	}
	return out, nil
}

func (f *LookupHistoryFlowImpl) Checkers(ctx context.Context) (*dto.LookupCheckersResponse, error) {
	return &dto.LookupCheckersResponse{Checkers: f.history.DistinctCheckers()}, nil
}

// Export renders the filtered history, most recent first, as an xlsx workbook and returns its
// file name and contents.
func (f *LookupHistoryFlowImpl) Export(ctx context.Context, query *dto.LookupHistoryQuery) (string, []byte, error) {
	filter, _, err := parseLookupQuery(query)
	if err != nil {
		return "", nil, err
	}
	rows := f.history.ExportView(filter, f.location)

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), LookupHistorySheet); err != nil {
		return "", nil, NewBusinessError(CodeExportFailed, "Failed to prepare workbook", fmt.Errorf("%w: %v", ErrExportFailed, err))
	}
	header := make([]any, len(lookuplog.ExportColumns))
	for i, c := range lookuplog.ExportColumns {
		header[i] = c
	}
	if err := xl.SetSheetRow(LookupHistorySheet, "A1", &header); err != nil {
		return "", nil, NewBusinessError(CodeExportFailed, "Failed to write header", fmt.Errorf("%w: %v", ErrExportFailed, err))
	}
	if style, err := xl.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(header), 1)
		_ = xl.SetCellStyle(LookupHistorySheet, "A1", last, style)
	}
	for i, width := range lookupExportColumnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = xl.SetColWidth(LookupHistorySheet, col, col, width)
	}

	for i, row := range rows {
		values := row.Values()
		cells := make([]any, len(values))
		for j, v := range values {
			cells[j] = v
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := xl.SetSheetRow(LookupHistorySheet, cellRef, &cells); err != nil {
			return "", nil, NewBusinessError(CodeExportFailed, "Failed to write row", fmt.Errorf("%w: %v", ErrExportFailed, err))
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError(CodeExportFailed, "Failed to write Excel file", fmt.Errorf("%w: %v", ErrExportFailed, err))
	}
	lookupExportsTotal.Inc()
	return f.exportFileName(), buf.Bytes(), nil
}

func (f *LookupHistoryFlowImpl) exportFileName() string {
	return lookupExportFilePrefix + f.now().In(f.location).Format(utils.DateLayout) + ".xlsx"
}

func parseLookupQuery(query *dto.LookupHistoryQuery) (lookuplog.Filter, roster.SortDirection, error) {
	if query == nil {
		query = &dto.LookupHistoryQuery{}
	}
	status, err := lookuplog.ParseStatus(query.Status)
	if err != nil {
		return lookuplog.Filter{}, "", NewBusinessErrorf(CodeValidationError, "Unknown lookup status %q", ErrInvalidLookupStatus, query.Status)
	}
	direction, err := roster.ParseSortDirection(query.Direction)
	if err != nil {
		return lookuplog.Filter{}, "", NewBusinessErrorf(CodeValidationError, "Unknown sort direction %q", ErrInvalidSortDirection, query.Direction)
	}
	from, to, err := parseDateRange(query.From, query.To)
	if err != nil {
		return lookuplog.Filter{}, "", err
	}
	return lookuplog.Filter{Status: status, CheckedBy: query.CheckedBy, From: from, To: to}, direction, nil
}
