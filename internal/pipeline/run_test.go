package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/BMANick25-26/Ballot-Events/internal/geocode"
	"github.com/BMANick25-26/Ballot-Events/internal/types"
)

var eventsSchemaPath = filepath.Join("..", "..", "schemas", "events.schema.json")

// stubGeocoder answers from a fixed table and counts every call.
type stubGeocoder struct {
	results map[string]*geocode.Result
	calls   int
}

func (s *stubGeocoder) Geocode(_ context.Context, query string) (*geocode.Result, error) {
	s.calls++
	if r, ok := s.results[query]; ok {
		return r, nil
	}
	return nil, geocode.ErrNoResult
}

type testSheet struct {
	name string
	rows [][]string
}

var standardHeader = []string{"Event date", "Start time", "Event location", "Event type", "Notes", "Lead rep/ staff member"}

// writeWorkbook builds an xlsx fixture with sheets in the given order.
func writeWorkbook(t *testing.T, dir string, sheets []testSheet) string {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, sheet := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", sheet.name))
		} else {
			_, err := f.NewSheet(sheet.name)
			require.NoError(t, err)
		}
		for r, row := range sheet.rows {
			for c, cell := range row {
				if cell == "" {
					continue
				}
				ref, err := excelize.CoordinatesToCellName(c+1, r+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(sheet.name, ref, cell))
			}
		}
	}

	path := filepath.Join(dir, "events.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func baseOptions(t *testing.T, stub *stubGeocoder, sheets []testSheet) RunOptions {
	t.Helper()
	dir := t.TempDir()
	return RunOptions{
		ExcelPath:   writeWorkbook(t, dir, sheets),
		CachePath:   filepath.Join(dir, ".geocode_cache.json"),
		OutPath:     filepath.Join(dir, "docs", "data", "events.json"),
		Geocoder:    stub,
		Delay:       time.Millisecond,
		CountryBias: "United Kingdom",
		SchemaPath:  eventsSchemaPath,
		Out:         &bytes.Buffer{},
	}
}

func readDocument(t *testing.T, path string) types.OutputDocument {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc types.OutputDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestRun_EndToEnd(t *testing.T) {
	stub := &stubGeocoder{results: map[string]*geocode.Result{
		"Leeds Town Hall, United Kingdom": {Lat: 53.8, Lon: -1.55, DisplayName: "Leeds Town Hall, Leeds, UK"},
	}}
	opts := baseOptions(t, stub, []testSheet{
		{
			name: "North",
			rows: [][]string{
				standardHeader,
				{"2024-05-01", "13:00", "Leeds Town Hall", "Canvass", "bring boards", "Sam"},
			},
		},
	})

	summary, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.SheetCount)
	assert.Equal(t, 1, summary.EventCount)
	assert.Equal(t, 1, summary.UniqueLocations)
	assert.Equal(t, 0, summary.SkippedRows)
	assert.Equal(t, 1, summary.Geocoding.Resolved)
	assert.NotEmpty(t, summary.BuildID)

	doc := readDocument(t, opts.OutPath)
	assert.Equal(t, 1, doc.Meta.EventCount)
	assert.Equal(t, 1, doc.Meta.UniqueLocations)
	assert.Equal(t, opts.ExcelPath, doc.Meta.SourceExcel)
	assert.Equal(t, summary.BuildID, doc.Meta.BuildID)
	assert.NotEmpty(t, doc.Meta.GeneratedAt)

	require.Len(t, doc.Events, 1)
	event := doc.Events[0]
	assert.Equal(t, "EVT-0001", event.ID)
	assert.Equal(t, "North", event.Region)
	assert.Equal(t, "2024-05-01", event.Date)
	assert.Equal(t, "13:00", event.StartTime)
	assert.Equal(t, "Leeds Town Hall", event.Location)
	assert.Equal(t, "Canvass", event.EventType)
	assert.Equal(t, "bring boards", event.Notes)
	assert.Equal(t, "Sam", event.Lead)
	require.NotNil(t, event.Lat)
	require.NotNil(t, event.Lon)
	assert.Equal(t, 53.8, *event.Lat)
	assert.Equal(t, -1.55, *event.Lon)

	// The cache file persists the resolved entry under the canonical key.
	cache := geocode.LoadCache(opts.CachePath)
	entry, ok := cache.Lookup("leeds town hall")
	require.True(t, ok)
	require.True(t, entry.Found())
	assert.Equal(t, 53.8, *entry.Lat)
	assert.Equal(t, -1.55, *entry.Lon)
}

func TestRun_GeocodeFailureIsNotFatal(t *testing.T) {
	stub := &stubGeocoder{} // every lookup fails
	opts := baseOptions(t, stub, []testSheet{
		{
			name: "North",
			rows: [][]string{
				standardHeader,
				{"2024-05-01", "13:00", "Leeds Town Hall", "", "", ""},
			},
		},
	})

	summary, err := Run(context.Background(), opts)
	require.NoError(t, err, "failed lookups must not abort the build")
	assert.Equal(t, 1, summary.Geocoding.Failed)

	doc := readDocument(t, opts.OutPath)
	require.Len(t, doc.Events, 1)
	assert.Nil(t, doc.Events[0].Lat)
	assert.Nil(t, doc.Events[0].Lon)

	// Null coordinates are written explicitly, not omitted.
	raw, err := os.ReadFile(opts.OutPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"lat": null`)

	cache := geocode.LoadCache(opts.CachePath)
	entry, ok := cache.Lookup("leeds town hall")
	require.True(t, ok, "the failure sentinel is persisted")
	assert.False(t, entry.Found())
}

func TestRun_WarmCacheIsIdempotentAndOffline(t *testing.T) {
	stub := &stubGeocoder{results: map[string]*geocode.Result{
		"Leeds Town Hall, United Kingdom": {Lat: 53.8, Lon: -1.55},
	}}
	opts := baseOptions(t, stub, []testSheet{
		{
			name: "North",
			rows: [][]string{
				standardHeader,
				{"2024-05-01", "13:00", "Leeds Town Hall", "Canvass", "", "Sam"},
				{"2024-05-02", "10:00", "Atlantis High Street", "Stall", "", ""},
			},
		},
	})

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)
	firstCalls := stub.calls
	assert.Greater(t, firstCalls, 0)
	firstDoc := readDocument(t, opts.OutPath)

	summary, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, firstCalls, stub.calls, "a warm cache makes the second run fully offline")
	assert.Equal(t, 2, summary.Geocoding.Hits)
	assert.Equal(t, 0, summary.Geocoding.Lookups())

	secondDoc := readDocument(t, opts.OutPath)
	assert.Equal(t, firstDoc.Events, secondDoc.Events, "events content is identical run to run")
	assert.NotEqual(t, firstDoc.Meta.BuildID, secondDoc.Meta.BuildID)
}

func TestRun_MultipleSheetsAndSkippedRows(t *testing.T) {
	stub := &stubGeocoder{results: map[string]*geocode.Result{
		"Leeds Town Hall, United Kingdom": {Lat: 53.8, Lon: -1.55},
		"Brighton Pier, United Kingdom":   {Lat: 50.82, Lon: -0.15},
	}}
	opts := baseOptions(t, stub, []testSheet{
		{
			name: "North",
			rows: [][]string{
				standardHeader,
				{"2024-05-01", "13:00", "Leeds Town Hall", "", "", ""},
				{"2024-05-02", "", "", "Canvass", "no venue", ""}, // no location: skipped
			},
		},
		{
			name: "South",
			rows: [][]string{
				standardHeader,
				{"2024-05-03", "10:30", "Brighton Pier", "Rally", "", "Alex"},
				{"2024-05-04", "11:00", "LEEDS TOWN HALL", "Canvass", "", ""}, // shared location, different case
			},
		},
	})

	summary, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.SheetCount)
	assert.Equal(t, 3, summary.EventCount)
	assert.Equal(t, 1, summary.SkippedRows)
	assert.Equal(t, 2, summary.UniqueLocations, "case variants of one location geocode once")
	assert.Equal(t, 2, summary.Geocoding.Resolved)

	doc := readDocument(t, opts.OutPath)
	require.Len(t, doc.Events, 3)
	assert.Equal(t, "North", doc.Events[0].Region)
	assert.Equal(t, "South", doc.Events[1].Region)
	assert.Equal(t, []string{"EVT-0001", "EVT-0002", "EVT-0003"},
		[]string{doc.Events[0].ID, doc.Events[1].ID, doc.Events[2].ID})

	// The cased variant inherits the shared cache entry.
	last := doc.Events[2]
	require.NotNil(t, last.Lat)
	assert.Equal(t, 53.8, *last.Lat)
}

func TestRun_MissingSpreadsheetIsFatal(t *testing.T) {
	dir := t.TempDir()
	opts := RunOptions{
		ExcelPath: filepath.Join(dir, "missing.xlsx"),
		CachePath: filepath.Join(dir, "cache.json"),
		OutPath:   filepath.Join(dir, "events.json"),
		Geocoder:  &stubGeocoder{},
		Out:       &bytes.Buffer{},
	}

	_, err := Run(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spreadsheet load failed")
}

func TestRun_EmptyWorkbookStillEmitsDocument(t *testing.T) {
	stub := &stubGeocoder{}
	opts := baseOptions(t, stub, []testSheet{
		{name: "North", rows: [][]string{standardHeader}},
	})

	summary, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.EventCount)

	doc := readDocument(t, opts.OutPath)
	assert.NotNil(t, doc.Events)
	assert.Empty(t, doc.Events)
	assert.Equal(t, 0, stub.calls)
}
