// Package ingestion reads the source spreadsheet and exposes its sheets as
// raw rows with located header columns. This package centralizes all
// excelize handling; nothing downstream touches the workbook directly.
package ingestion

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// headerScanLimit is how many leading rows are scanned for the header row
// before falling back to the first row.
const headerScanLimit = 10

// Sheet holds one worksheet's raw rows together with the resolved header.
type Sheet struct {
	Name      string
	HeaderRow int
	Columns   Columns
	// Rows are the data rows below the header, as formatted cell strings.
	Rows [][]string
}

// Columns holds the zero-based column index for each documented field.
// A value of -1 means the sheet does not carry that column; the field is
// treated as empty for every row.
type Columns struct {
	Date      int
	StartTime int
	Location  int
	EventType int
	Notes     int
	Lead      int
}

// Workbook is the fully loaded spreadsheet.
type Workbook struct {
	Path   string
	Sheets []Sheet
}

// LoadWorkbook opens the spreadsheet and reads every sheet. A missing or
// unreadable file, or a workbook without sheets, is a fatal input error.
func LoadWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, fmt.Errorf("spreadsheet %s contains no sheets", path)
	}

	wb := &Workbook{Path: path}
	for _, name := range names {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		if len(rows) == 0 {
			continue
		}

		headerRow := FindHeaderRow(rows)
		sheet := Sheet{
			Name:      strings.TrimSpace(name),
			HeaderRow: headerRow,
			Columns:   MapColumns(rows[headerRow]),
		}
		if headerRow+1 < len(rows) {
			sheet.Rows = rows[headerRow+1:]
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}

	return wb, nil
}

// FindHeaderRow scans the first few rows for one containing both an
// "event date" and an "event location" cell. Falls back to row 0 when no
// such row exists, matching sheets that start directly with the header.
func FindHeaderRow(rows [][]string) int {
	limit := min(headerScanLimit, len(rows))
	for i := 0; i < limit; i++ {
		var hasDate, hasLocation bool
		for _, cell := range rows[i] {
			c := strings.ToLower(strings.TrimSpace(cell))
			if strings.Contains(c, "event date") {
				hasDate = true
			}
			if strings.Contains(c, "event location") {
				hasLocation = true
			}
		}
		if hasDate && hasLocation {
			return i
		}
	}
	return 0
}

// MapColumns resolves the documented columns from a header row. Matching
// is case-insensitive; exact header matches win over partial ones so that
// "Event type" is not claimed by a stray "type" elsewhere in the row.
func MapColumns(header []string) Columns {
	return Columns{
		Date:      pickColumn(header, "event date"),
		StartTime: pickColumn(header, "start time"),
		Location:  pickColumn(header, "event location"),
		EventType: pickColumn(header, "event type"),
		Notes:     pickColumn(header, "notes"),
		Lead:      pickColumn(header, "lead rep/ staff member", "lead rep/staff member", "lead"),
	}
}

// pickColumn returns the index of the first header cell matching any of
// the candidate names, trying exact matches before partial ones.
func pickColumn(header []string, names ...string) int {
	normalized := make([]string, len(header))
	for i, cell := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(cell))
	}

	for _, name := range names {
		for i, cell := range normalized {
			if cell == name {
				return i
			}
		}
	}
	for _, name := range names {
		for i, cell := range normalized {
			if cell != "" && strings.Contains(cell, name) {
				return i
			}
		}
	}
	return -1
}

// CellAt returns the trimmed cell at the given column, or "" when the
// column is absent or the row is shorter than the column index.
func CellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// IsEmptyRow reports whether every cell in the row is blank.
func IsEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
