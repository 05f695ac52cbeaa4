package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"hr-ledger/internal/dto"
	"hr-ledger/internal/model"
	"hr-ledger/internal/repository"
	"hr-ledger/pkg/clock"
)

var ErrExportGenerateFail = errors.New("generate excel file failed")

// ExportService commute report export
//
// The workbook is returned as a buffer; the handler sets the download headers.
// One sheet, one row per ledger record of the range, newest first.
type ExportService interface {
	ExportCommuteReport(ctx context.Context, startDate, endDate string, filter repository.CommuteLogFilter) (*bytes.Buffer, string, error)
}

type exportService struct {
	commute CommuteService
	clock   *clock.Civil
	logger  *zap.Logger
}

// NewExportService creates an ExportService on top of the ledger queries
func NewExportService(commute CommuteService, clk *clock.Civil, logger *zap.Logger) ExportService {
	return &exportService{commute: commute, clock: clk, logger: logger}
}

var reportHeaders = []string{
	"Personnel code", "First name", "Last name", "Department",
	"Type", "Date", "Entry", "Exit", "Guard",
}

func (s *exportService) ExportCommuteReport(ctx context.Context, startDate, endDate string, filter repository.CommuteLogFilter) (*bytes.Buffer, string, error) {
	records, err := s.commute.QueryRange(ctx, startDate, endDate, filter)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Commute"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 16)
	f.SetColWidth(sheetName, "B", "D", 18)
	f.SetColWidth(sheetName, "E", "E", 12)
	f.SetColWidth(sheetName, "F", "H", 12)
	f.SetColWidth(sheetName, "I", "I", 18)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// title row
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("Commute report %s to %s", startDate, endDate))
	f.MergeCell(sheetName, "A1", cell(colName(len(reportHeaders)-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// header
	for i, h := range reportHeaders {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheetName, "A2", cell(colName(len(reportHeaders)-1), 2), headerStyle)

	row := 3
	for _, r := range records {
		values := s.reportRow(&r)
		for i, v := range values {
			f.SetCellValue(sheetName, cell(colName(i), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write excel failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("commute_%s_%s.xlsx", startDate, endDate)
	return buf, filename, nil
}

// reportRow one sheet row; a short leave's Entry column is its return
func (s *exportService) reportRow(r *dto.CommuteLogResponse) []string {
	kind := "Main"
	if r.LogType == model.LogTypeShortLeave {
		kind = "Short leave"
	}

	date := ""
	if t, err := s.clock.ParseInstant(r.EntryTime); err == nil {
		date = t.Format(clock.DateLayout)
	}

	return []string{
		r.PersonnelCode,
		deref(r.FirstName),
		deref(r.LastName),
		deref(r.Department),
		kind,
		date,
		clockTime(s.clock, r.EntryTime),
		clockTime(s.clock, deref(r.ExitTime)),
		r.GuardName,
	}
}

// ── helpers ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// clockTime renders an RFC3339 value as HH:MM in the civil zone
func clockTime(c *clock.Civil, v string) string {
	if v == "" {
		return ""
	}
	t, err := c.ParseInstant(v)
	if err != nil {
		return v
	}
	return t.Format("15:04")
}
