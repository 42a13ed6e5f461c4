// Package pipeline provides the high-level orchestration for the events map build.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/BMANick25-26/Ballot-Events/internal/geocode"
	"github.com/BMANick25-26/Ballot-Events/internal/ingestion"
	"github.com/BMANick25-26/Ballot-Events/internal/observability"
	"github.com/BMANick25-26/Ballot-Events/internal/parsing"
	"github.com/BMANick25-26/Ballot-Events/internal/schemas"
	"github.com/BMANick25-26/Ballot-Events/internal/types"
)

// RunOptions holds configuration for running the build pipeline.
type RunOptions struct {
	ExcelPath string
	CachePath string
	OutPath   string

	// Geocoder overrides the Nominatim client; tests inject a stub here.
	Geocoder    geocode.Geocoder
	UserAgent   string
	BaseURL     string
	Timeout     time.Duration
	Delay       time.Duration
	CountryBias string

	// SchemaPath overrides the resolved events schema location.
	SchemaPath   string
	SkipValidate bool

	Verbose bool
	// Out receives progress output; defaults to os.Stdout.
	Out io.Writer
}

// Summary reports what a completed build did.
type Summary struct {
	BuildID         string
	SheetCount      int
	EventCount      int
	UniqueLocations int
	SkippedRows     int
	Geocoding       geocode.Stats
}

// Run executes the full build: load spreadsheet, normalize rows, resolve
// locations through the cache, attach coordinates, emit the output
// document. Fatal errors (unreadable spreadsheet, unwritable cache or
// output) abort the run; bad rows and failed lookups do not.
func Run(ctx context.Context, opts RunOptions) (*Summary, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	printer := observability.NewPrinter(out)

	buildID := uuid.New().String()
	if opts.Verbose {
		fmt.Fprintf(out, "[VERBOSE] Build ID: %s\n", buildID)
	}

	// Step 1: Load every sheet of the spreadsheet
	fmt.Fprintf(out, "Step 1/5: Loading spreadsheet %s...\n", opts.ExcelPath)
	wb, err := ingestion.LoadWorkbook(opts.ExcelPath)
	if err != nil {
		return nil, fmt.Errorf("spreadsheet load failed: %w", err)
	}
	if opts.Verbose {
		printer.PrintWorkbook(wb)
	}

	// Step 2: Normalize rows into event records
	fmt.Fprintf(out, "Step 2/5: Normalizing rows...\n")
	events, skipped := parsing.EventsFromWorkbook(wb)
	for _, s := range skipped {
		fmt.Fprintf(out, "  Skipping %s row %d: %s\n", s.Sheet, s.Row, s.Reason)
	}
	if opts.Verbose {
		printer.PrintEvents(events)
	}

	// Step 3: Resolve distinct locations through the cache
	keys, originals := parsing.DistinctLocationKeys(events)
	fmt.Fprintf(out, "Step 3/5: Resolving %d distinct locations...\n", len(keys))

	cache := geocode.LoadCache(opts.CachePath)
	resolver := geocode.NewResolver(cache, opts.geocoder(), opts.Delay, opts.CountryBias)
	stats, err := resolver.ResolveAll(ctx, keys, originals)
	if err != nil {
		// Persist what we resolved so far before giving up; a cancelled
		// build should not waste completed lookups.
		_ = cache.Save()
		return nil, fmt.Errorf("geocoding aborted: %w", err)
	}
	if opts.Verbose {
		printer.PrintResolveStats(stats, cache.Len())
	}

	// Step 4: Attach coordinates to events
	fmt.Fprintf(out, "Step 4/5: Attaching coordinates...\n")
	for i := range events {
		if entry, ok := cache.Lookup(events[i].LocationKey); ok {
			events[i].Lat = entry.Lat
			events[i].Lon = entry.Lon
		}
	}

	// Step 5: Write cache and output document
	fmt.Fprintf(out, "Step 5/5: Writing cache and output...\n")
	if err := cache.Save(); err != nil {
		return nil, fmt.Errorf("cache write failed: %w", err)
	}

	doc := types.OutputDocument{
		Meta:   types.NewMeta(buildID, opts.ExcelPath, len(events), len(keys)),
		Events: events,
	}
	if doc.Events == nil {
		doc.Events = []types.EventRecord{}
	}
	if err := writeDocument(opts.OutPath, doc); err != nil {
		return nil, err
	}

	if !opts.SkipValidate {
		if err := validateOutput(out, opts.SchemaPath, opts.OutPath); err != nil {
			return nil, err
		}
	}

	if opts.Verbose {
		printer.PrintMeta(doc.Meta, opts.OutPath)
	}
	fmt.Fprintf(out, "Wrote %s with %d events.\n", opts.OutPath, len(events))

	return &Summary{
		BuildID:         buildID,
		SheetCount:      len(wb.Sheets),
		EventCount:      len(events),
		UniqueLocations: len(keys),
		SkippedRows:     len(skipped),
		Geocoding:       stats,
	}, nil
}

// geocoder returns the injected Geocoder or builds the Nominatim client.
func (o *RunOptions) geocoder() geocode.Geocoder {
	if o.Geocoder != nil {
		return o.Geocoder
	}
	return geocode.NewClient(&geocode.Options{
		BaseURL:   o.BaseURL,
		UserAgent: o.UserAgent,
		Timeout:   o.Timeout,
	})
}

// writeDocument writes the output JSON, creating parent directories.
// Unwritable output is a fatal error.
func writeDocument(path string, doc types.OutputDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output document: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output %s: %w", path, err)
	}
	return nil
}

// validateOutput checks the written document against the events schema.
// A missing schema file (running outside the repo) is only a warning; an
// invalid document is a bug and fails the build.
func validateOutput(out io.Writer, schemaPath, jsonPath string) error {
	if schemaPath == "" {
		schemaPath = schemas.ResolveSchemaPath(schemas.EventsSchemaRelPath)
	}
	if schemaPath == "" {
		fmt.Fprintf(out, "Warning: events schema not found; skipping output validation\n")
		return nil
	}
	if err := schemas.ValidateJSON(schemaPath, jsonPath); err != nil {
		return fmt.Errorf("output validation failed: %w", err)
	}
	return nil
}
