package analytics

import (
	"encoding/csv"
	"fmt"
	"io"
)

// csvHeader is the fixed export column order; consumers parse by position.
var csvHeader = []string{
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

// WriteCSV streams the flat entry dump.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range rows {
		billable := "No"
		if r.Billable {
			billable = "Yes"
		}
		record := []string{
			r.Date.String(),
			r.ClientFileNumber,
			r.Task,
			r.Activity,
			r.Priority,
			r.StartTime.String(),
			r.EndTime.String(),
			fmt.Sprintf("%.2f", r.Hours),
			r.Status,
			billable,
			r.UserName,
			r.UserEmail,
			r.Department,
			r.Comments,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
