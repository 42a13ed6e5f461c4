package parsing

import (
	"fmt"

	"github.com/BMANick25-26/Ballot-Events/internal/ingestion"
	"github.com/BMANick25-26/Ballot-Events/internal/types"
)

// SkippedRow records a data row that produced no event, for logging.
type SkippedRow struct {
	Sheet  string
	Row    int // 1-based row number within the sheet
	Reason string
}

// EventsFromWorkbook normalizes every data row of every sheet into
// EventRecords, in sheet order then row order. Rows that are entirely
// blank or have no location are skipped and reported; a malformed date
// or time degrades to an empty field rather than dropping the row.
// IDs are assigned deterministically in output order.
func EventsFromWorkbook(wb *ingestion.Workbook) ([]types.EventRecord, []SkippedRow) {
	var events []types.EventRecord
	var skipped []SkippedRow

	for _, sheet := range wb.Sheets {
		for i, row := range sheet.Rows {
			rowNum := sheet.HeaderRow + i + 2 // 1-based, below the header
			if ingestion.IsEmptyRow(row) {
				continue
			}

			location := ingestion.CellAt(row, sheet.Columns.Location)
			if location == "" {
				skipped = append(skipped, SkippedRow{
					Sheet:  sheet.Name,
					Row:    rowNum,
					Reason: "missing location",
				})
				continue
			}

			events = append(events, types.EventRecord{
				Region:      sheet.Name,
				Date:        FormatDate(ingestion.DateCell(ingestion.CellAt(row, sheet.Columns.Date))),
				StartTime:   FormatTime(ingestion.TimeCell(ingestion.CellAt(row, sheet.Columns.StartTime))),
				Location:    location,
				LocationKey: CanonicalLocationKey(location),
				EventType:   ingestion.CellAt(row, sheet.Columns.EventType),
				Notes:       ingestion.CellAt(row, sheet.Columns.Notes),
				Lead:        ingestion.CellAt(row, sheet.Columns.Lead),
			})
		}
	}

	for i := range events {
		events[i].ID = fmt.Sprintf("EVT-%04d", i+1)
	}

	return events, skipped
}

// DistinctLocationKeys returns each canonical location key once, in first
// appearance order, mapped to the original location text used when the
// key has to be geocoded.
func DistinctLocationKeys(events []types.EventRecord) (keys []string, originals map[string]string) {
	originals = make(map[string]string)
	for _, e := range events {
		if e.LocationKey == "" {
			continue
		}
		if _, seen := originals[e.LocationKey]; !seen {
			originals[e.LocationKey] = e.Location
			keys = append(keys, e.LocationKey)
		}
	}
	return keys, originals
}
