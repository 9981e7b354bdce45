// Package timesheet converts a Hubstaff timesheet export into invoice line
// item candidates, one per task with the tracked hours summed.
package timesheet

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	ierr "invoicing-backend/errors"

	"github.com/gocarina/gocsv"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Columns is the Hubstaff export layout. Any other column is rejected.
var Columns = []string{
	"Organization",
	"Time zone",
	"Date",
	"Project",
	"Task ID",
	"Task",
	"Time",
	"Activity",
	"Earned",
	"Currency",
	"Notes",
}

// required columns; without them nothing can be aggregated
var required = []string{"Task", "Time"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row is one exported time entry.
type Row struct {
	Organization string `csv:"Organization"`
	TimeZone     string `csv:"Time zone"`
	Date         string `csv:"Date"`
	Project      string `csv:"Project"`
	TaskID       string `csv:"Task ID"`
	Task         string `csv:"Task"`
	Time         string `csv:"Time"`
	Activity     string `csv:"Activity"`
	Earned       string `csv:"Earned"`
	Currency     string `csv:"Currency"`
	Notes        string `csv:"Notes"`
}

// ImportedLineItem is a draft line item: description is the task name and
// quantity the tracked hours truncated to two decimals.
type ImportedLineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// ValidateHeaders fails with ErrHeaderMismatch when a column is not part of
// the export layout or a required column is missing.
func ValidateHeaders(headers []string) error {
	unknown := lo.Without(headers, Columns...)
	if len(unknown) > 0 {
		return ierr.NewErrorf("unknown timesheet columns %v", unknown).
			WithHintf("Invalid headers: %s not part of the Hubstaff timesheet format", strings.Join(unknown, ", ")).
			Mark(ierr.ErrHeaderMismatch)
	}

	missing := lo.Without(required, headers...)
	if len(missing) > 0 {
		return ierr.NewErrorf("missing timesheet columns %v", missing).
			WithHintf("Invalid headers: missing column %s", strings.Join(missing, ", ")).
			Mark(ierr.ErrHeaderMismatch)
	}
	return nil
}

// ParseDuration reads "H:MM" (or "H:MM:SS", seconds dropped) into whole
// minutes. Minutes above 59 carry over, so "1:90" is 150.
func ParseDuration(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, invalidDuration(s)
	}

	for _, p := range parts {
		if p == "" || strings.ContainsFunc(p, isNotDigit) {
			return 0, invalidDuration(s)
		}
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, invalidDuration(s)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, invalidDuration(s)
	}
	return hours*60 + minutes, nil
}

func isNotDigit(r rune) bool {
	return r < '0' || r > '9'
}

func invalidDuration(s string) error {
	return ierr.NewErrorf("malformed duration %q", s).
		WithHintf("Invalid time value %q, expected H:MM", s).
		Mark(ierr.ErrValidation)
}

// Aggregate sums the duration of rows per task. Rows without a time are
// skipped; output keeps the order in which tasks first appear.
func Aggregate(rows []Row) ([]ImportedLineItem, error) {
	var order []string
	totals := make(map[string]int)

	for _, row := range rows {
		if strings.TrimSpace(row.Time) == "" {
			continue
		}
		minutes, err := ParseDuration(row.Time)
		if err != nil {
			return nil, err
		}
		if _, seen := totals[row.Task]; !seen {
			order = append(order, row.Task)
		}
		totals[row.Task] += minutes
	}

	return lo.Map(order, func(task string, _ int) ImportedLineItem {
		return ImportedLineItem{Description: task, Quantity: hours(totals[task])}
	}), nil
}

// hours converts minutes to hours floored to two decimals; integer math
// keeps e.g. 100 minutes at 1.66.
func hours(minutes int) decimal.Decimal {
	return decimal.New(int64(minutes)*100/60, -2)
}

// Import reads a CSV export, validates its header row and aggregates it.
func Import(r io.Reader) ([]ImportedLineItem, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Could not read the timesheet file").
			Mark(ierr.ErrValidation)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	headers, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err == io.EOF {
		return nil, ierr.NewError("empty timesheet").
			WithHint("The timesheet file is empty").
			Mark(ierr.ErrValidation)
	}
	if err != nil {
		return nil, malformed(err)
	}
	if err := ValidateHeaders(headers); err != nil {
		return nil, err
	}

	var rows []Row
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, malformed(err)
	}
	return Aggregate(rows)
}

func malformed(err error) error {
	return ierr.WithError(err).
		WithHint("The timesheet file is not a valid CSV").
		Mark(ierr.ErrValidation)
}
