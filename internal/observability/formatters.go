// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/BMANick25-26/Ballot-Events/internal/geocode"
	"github.com/BMANick25-26/Ballot-Events/internal/ingestion"
	"github.com/BMANick25-26/Ballot-Events/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintWorkbook outputs a per-sheet summary of the loaded spreadsheet.
func (p *Printer) PrintWorkbook(wb *ingestion.Workbook) {
	if wb == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Source: %s\n", wb.Path))
	sb.WriteString(fmt.Sprintf("Sheets: %d\n\n", len(wb.Sheets)))
	for _, sheet := range wb.Sheets {
		sb.WriteString(fmt.Sprintf("  %s: %d rows (header at row %d)\n",
			sheet.Name, len(sheet.Rows), sheet.HeaderRow+1))
	}

	p.printBox("LOADED WORKBOOK", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintEvents outputs event counts per region plus a sample of the first
// few normalized records.
func (p *Printer) PrintEvents(events []types.EventRecord) {
	if len(events) == 0 {
		return
	}

	perRegion := make(map[string]int)
	var regions []string
	for _, e := range events {
		if _, seen := perRegion[e.Region]; !seen {
			regions = append(regions, e.Region)
		}
		perRegion[e.Region]++
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total events: %d\n\n", len(events)))
	for _, region := range regions {
		sb.WriteString(fmt.Sprintf("  %-20s %d\n", region, perRegion[region]))
	}
	sb.WriteString("\n")

	count := min(len(events), maxItemsToShow)
	for i := 0; i < count; i++ {
		e := events[i]
		sb.WriteString(fmt.Sprintf("%s  %s  %s\n", e.ID, e.Date, e.Location))
	}
	if len(events) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(events)-maxItemsToShow))
	}

	p.printBox("NORMALIZED EVENTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintResolveStats outputs geocoding activity for the build.
func (p *Printer) PrintResolveStats(stats geocode.Stats, cacheSize int) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Cache hits:      %d\n", stats.Hits))
	sb.WriteString(fmt.Sprintf("Fresh lookups:   %d\n", stats.Lookups()))
	sb.WriteString(fmt.Sprintf("  resolved:      %d\n", stats.Resolved))
	sb.WriteString(fmt.Sprintf("  failed:        %d\n", stats.Failed))
	sb.WriteString(fmt.Sprintf("Cache size now:  %d", cacheSize))

	p.printBox("GEOCODING", sb.String())
}

// PrintMeta outputs the metadata block of the written document.
func (p *Printer) PrintMeta(meta types.Meta, outPath string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Output:           %s\n", outPath))
	sb.WriteString(fmt.Sprintf("Build ID:         %s\n", meta.BuildID))
	sb.WriteString(fmt.Sprintf("Generated at:     %s\n", meta.GeneratedAt))
	sb.WriteString(fmt.Sprintf("Events:           %d\n", meta.EventCount))
	sb.WriteString(fmt.Sprintf("Unique locations: %d", meta.UniqueLocations))

	p.printBox("BUILD COMPLETE", sb.String())
}
