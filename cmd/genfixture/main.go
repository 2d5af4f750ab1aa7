// Command genfixture renders a synthetic dashboard page from a CSV export.
// The page uses the markup shape the extractor expects, with counters in
// Indian digit grouping, so it can stand in for the live site in local runs
// and tests. The rendered page is extracted again before it is written to
// make sure it round-trips to the same rows.
//
// Usage:
//
//	go run ./cmd/genfixture \
//	  -csv testdata/2022-12-03-corona-daily-india.csv \
//	  -out internal/extract/testdata/generated.html
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/couchcryptid/covid-snapshot-etl/internal/domain"
	"github.com/couchcryptid/covid-snapshot-etl/internal/export"
	"github.com/couchcryptid/covid-snapshot-etl/internal/extract"
	"github.com/couchcryptid/covid-snapshot-etl/internal/fixture"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "CSV export to render")
	out := flag.String("out", "", "output path for the HTML page")
	flag.Parse()

	if *csvPath == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv, -out")
	}

	rows, err := readRows(*csvPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", *csvPath, err)
	}

	page, err := fixture.FromRows(rows)
	if err != nil {
		return fmt.Errorf("building page: %w", err)
	}

	markup, err := fixture.HTML(page)
	if err != nil {
		return fmt.Errorf("rendering page: %w", err)
	}

	if err := verify(markup, rows); err != nil {
		return fmt.Errorf("rendered page does not round-trip: %w", err)
	}

	if err := os.WriteFile(*out, []byte(markup), 0o644); err != nil { //nolint:gosec // fixture output is not sensitive
		return fmt.Errorf("writing page: %w", err)
	}
	log.Printf("wrote %s: %d regions, %d bytes", *out, len(page.Regions), len(markup))
	return nil
}

func readRows(path string) ([]domain.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	return export.ReadCSV(f)
}

func verify(markup string, want []domain.Row) error {
	snap, err := extract.Extract(markup)
	if err != nil {
		return err
	}

	got := snap.Rows()
	if len(got) != len(want) {
		return fmt.Errorf("extracted %d rows, want %d", len(got), len(want))
	}
	var diffs []string
	for i := range want {
		if got[i] != want[i] {
			diffs = append(diffs, fmt.Sprintf("row %d: got %s %v, want %s %v", i, got[i].Key, got[i].Counts, want[i].Key, want[i].Counts))
		}
	}
	if len(diffs) > 0 {
		return fmt.Errorf("%s", strings.Join(diffs, "; "))
	}
	return nil
}
