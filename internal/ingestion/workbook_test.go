package ingestion

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeTestWorkbook builds an xlsx fixture with the documented columns.
func writeTestWorkbook(t *testing.T, sheets map[string][][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range rows {
			for c, cell := range row {
				if cell == "" {
					continue
				}
				ref, err := excelize.CoordinatesToCellName(c+1, r+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(name, ref, cell))
			}
		}
	}

	path := filepath.Join(t.TempDir(), "events.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

var header = []string{"Event date", "Start time", "Event location", "Event type", "Notes", "Lead rep/ staff member"}

func TestLoadWorkbook(t *testing.T) {
	path := writeTestWorkbook(t, map[string][][]string{
		"North": {
			header,
			{"2024-05-01", "13:00", "Leeds Town Hall", "Canvass", "bring boards", "Sam"},
		},
	})

	wb, err := LoadWorkbook(path)
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)

	sheet := wb.Sheets[0]
	assert.Equal(t, "North", sheet.Name)
	assert.Equal(t, 0, sheet.HeaderRow)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, "Leeds Town Hall", CellAt(sheet.Rows[0], sheet.Columns.Location))
	assert.Equal(t, "Sam", CellAt(sheet.Rows[0], sheet.Columns.Lead))
}

func TestLoadWorkbook_HeaderBelowPreamble(t *testing.T) {
	path := writeTestWorkbook(t, map[string][][]string{
		"North": {
			{"Northern region events", "", "", "", "", ""},
			{"", "", "", "", "", ""},
			header,
			{"2024-05-01", "13:00", "Leeds Town Hall", "", "", ""},
		},
	})

	wb, err := LoadWorkbook(path)
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)

	sheet := wb.Sheets[0]
	assert.Equal(t, 2, sheet.HeaderRow)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, "Leeds Town Hall", CellAt(sheet.Rows[0], sheet.Columns.Location))
}

func TestLoadWorkbook_MissingFile(t *testing.T) {
	_, err := LoadWorkbook(filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open spreadsheet")
}

func TestFindHeaderRow_Fallback(t *testing.T) {
	rows := [][]string{
		{"Date", "Where"},
		{"2024-05-01", "Leeds"},
	}
	assert.Equal(t, 0, FindHeaderRow(rows), "no recognizable header falls back to row 0")
}

func TestMapColumns(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		expected Columns
	}{
		{
			name:     "Documented layout",
			header:   header,
			expected: Columns{Date: 0, StartTime: 1, Location: 2, EventType: 3, Notes: 4, Lead: 5},
		},
		{
			name:     "Lead alias without slash-space",
			header:   []string{"Event date", "Start time", "Event location", "Event type", "Notes", "Lead rep/staff member"},
			expected: Columns{Date: 0, StartTime: 1, Location: 2, EventType: 3, Notes: 4, Lead: 5},
		},
		{
			name:     "Bare lead column",
			header:   []string{"Event date", "Start time", "Event location", "Event type", "Notes", "Lead"},
			expected: Columns{Date: 0, StartTime: 1, Location: 2, EventType: 3, Notes: 4, Lead: 5},
		},
		{
			name:     "Partial matches with decoration",
			header:   []string{"Event date (dd/mm)", "Start time", "Event location / venue", "Event type", "Notes", "Lead"},
			expected: Columns{Date: 0, StartTime: 1, Location: 2, EventType: 3, Notes: 4, Lead: 5},
		},
		{
			name:     "Missing columns map to -1",
			header:   []string{"Event date", "Event location"},
			expected: Columns{Date: 0, StartTime: -1, Location: 1, EventType: -1, Notes: -1, Lead: -1},
		},
		{
			name:     "Reordered columns",
			header:   []string{"Event location", "Event date", "Lead", "Notes"},
			expected: Columns{Date: 1, StartTime: -1, Location: 0, EventType: -1, Notes: 3, Lead: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapColumns(tt.header))
		})
	}
}

func TestCellAt(t *testing.T) {
	row := []string{"a", " b ", "c"}
	assert.Equal(t, "b", CellAt(row, 1), "cells are trimmed")
	assert.Equal(t, "", CellAt(row, -1), "absent column reads empty")
	assert.Equal(t, "", CellAt(row, 7), "short row reads empty")
}

func TestIsEmptyRow(t *testing.T) {
	assert.True(t, IsEmptyRow([]string{"", "  ", "\t"}))
	assert.False(t, IsEmptyRow([]string{"", "x"}))
	assert.True(t, IsEmptyRow(nil))
}
