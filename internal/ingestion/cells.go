package ingestion

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// CellKind tags the coerced type of a spreadsheet cell.
type CellKind int

const (
	// CellEmpty is a blank cell.
	CellEmpty CellKind = iota
	// CellNumber is a numeric cell, including Excel serial date values.
	CellNumber
	// CellDate is a cell that parsed as a calendar date.
	CellDate
	// CellTime is a cell that parsed as a time of day.
	CellTime
	// CellText is any other non-empty cell.
	CellText
)

// Cell is the tagged union a raw spreadsheet value is mapped to at the
// ingestion boundary, before coercion into typed EventRecord fields.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Time   time.Time
}

// dateLayouts are tried in order when classifying a date cell. Day-first
// layouts come before month-first ones; the source workbooks are UK data.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02/01/06",
	"02-01-2006",
	"2/1/2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04",
}

// timeLayouts are tried in order when classifying a time-of-day cell.
var timeLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04PM",
	"3 PM",
	"3PM",
}

// Classify maps a formatted cell string to its tagged Cell form.
func Classify(raw string) Cell {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Cell{Kind: CellEmpty}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Cell{Kind: CellDate, Text: s, Time: t}
		}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, strings.ToUpper(s)); err == nil {
			return Cell{Kind: CellTime, Text: s, Time: t}
		}
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return Cell{Kind: CellNumber, Text: s, Number: n}
	}

	return Cell{Kind: CellText, Text: s}
}

// DateCell classifies a cell expected to hold a date, additionally
// treating bare numbers as Excel serial date values.
func DateCell(raw string) Cell {
	c := Classify(raw)
	if c.Kind == CellNumber && c.Number >= 1 {
		if t, err := excelize.ExcelDateToTime(c.Number, false); err == nil {
			return Cell{Kind: CellDate, Text: c.Text, Time: t}
		}
	}
	return c
}

// TimeCell classifies a cell expected to hold a time of day, additionally
// treating numbers in [0,1) as Excel day-fraction values.
func TimeCell(raw string) Cell {
	c := Classify(raw)
	if c.Kind == CellNumber && c.Number >= 0 && c.Number < 1 {
		if t, err := excelize.ExcelDateToTime(c.Number, false); err == nil {
			return Cell{Kind: CellTime, Text: c.Text, Time: t}
		}
	}
	return c
}
