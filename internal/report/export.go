package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/frahmantamala/timesheet-management/internal/analytics"
	"github.com/xuri/excelize/v2"
)

// columnOrder is the canonical export column set; a report's saved
// columns select a subset of these.
var columnOrder = []string{
	"Date",
	"Client File Number",
	"Task",
	"Activity",
	"Priority",
	"Start Time",
	"End Time",
	"Total Hours",
	"Status",
	"Billable",
	"Employee Name",
	"Employee Email",
	"Department",
	"Comments",
}

func cellValue(column string, r analytics.Row) interface{} {
	switch column {
	case "Date":
		return r.Date.String()
	case "Client File Number":
		return r.ClientFileNumber
	case "Task":
		return r.Task
	case "Activity":
		return r.Activity
	case "Priority":
		return r.Priority
	case "Start Time":
		return r.StartTime.String()
	case "End Time":
		return r.EndTime.String()
	case "Total Hours":
		return r.Hours
	case "Status":
		return r.Status
	case "Billable":
		if r.Billable {
			return "Yes"
		}
		return "No"
	case "Employee Name":
		return r.UserName
	case "Employee Email":
		return r.UserEmail
	case "Department":
		return r.Department
	case "Comments":
		return r.Comments
	default:
		return ""
	}
}

// selectColumns keeps the canonical order and drops unknown names. An
// empty selection means all columns.
func selectColumns(requested []string) []string {
	if len(requested) == 0 {
		return columnOrder
	}
	wanted := make(map[string]bool, len(requested))
	for _, c := range requested {
		wanted[c] = true
	}
	var cols []string
	for _, c := range columnOrder {
		if wanted[c] {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		return columnOrder
	}
	return cols
}

// WriteCSV renders the selected columns of the row set.
func WriteCSV(w io.Writer, columns []string, rows []analytics.Row) error {
	cols := selectColumns(columns)
	cw := csv.NewWriter(w)

	if err := cw.Write(cols); err != nil {
		return err
	}
	for _, r := range rows {
		record := make([]string, len(cols))
		for i, c := range cols {
			record[i] = fmt.Sprintf("%v", cellValue(c, r))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// BuildXLSX renders the selected columns as a single-sheet workbook.
func BuildXLSX(columns []string, rows []analytics.Row) ([]byte, error) {
	cols := selectColumns(columns)

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Timesheet"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for i, c := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, c); err != nil {
			return nil, err
		}
	}

	for rowIdx, r := range rows {
		for colIdx, c := range cols {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, cellValue(c, r)); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sanitizeFilename(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '-'
		default:
			return -1
		}
	}, name)
	if cleaned == "" {
		return "report"
	}
	return strings.ToLower(cleaned)
}
