// Command export takes one snapshot of the dashboard and writes it as CSV.
// The page is fetched from -url unless -input names a saved copy.
//
// Usage:
//
//	go run ./cmd/export                               # writes <date>-corona-daily-india.csv
//	go run ./cmd/export -input page.html -out -       # CSV to stdout
//	go run ./cmd/export -region "Kerala"              # one region's counts
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/covid-snapshot-etl/internal/adapter/source"
	"github.com/couchcryptid/covid-snapshot-etl/internal/config"
	"github.com/couchcryptid/covid-snapshot-etl/internal/domain"
	"github.com/couchcryptid/covid-snapshot-etl/internal/export"
	"github.com/couchcryptid/covid-snapshot-etl/internal/extract"
	"github.com/couchcryptid/covid-snapshot-etl/internal/observability"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	url := flag.String("url", config.DefaultSourceURL, "dashboard URL to fetch")
	input := flag.String("input", "", "read the page from this file instead of fetching it")
	out := flag.String("out", "", `output CSV path; "-" for stdout (default <date>-corona-daily-india.csv)`)
	region := flag.String("region", "", "print this region's counts instead of writing CSV")
	timeout := flag.Duration("timeout", 15*time.Second, "fetch timeout")
	flag.Parse()

	markup, fetchedAt, err := load(*url, *input, *timeout)
	if err != nil {
		return err
	}

	snap, err := extract.Extract(markup)
	if err != nil {
		return fmt.Errorf("extract (%s): %w", domain.ErrorKind(err), err)
	}

	if *region != "" {
		return printRegion(os.Stdout, snap, *region)
	}

	path := *out
	if path == "" {
		path = export.Filename(fetchedAt)
	}
	if path == "-" {
		return export.WriteCSV(os.Stdout, snap)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := export.WriteCSV(f, snap); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	fmt.Fprintf(os.Stderr, "wrote %d rows (%d regions) to %s\n", snap.Len(), len(snap.Regions()), path)
	return nil
}

func load(url, input string, timeout time.Duration) (string, time.Time, error) {
	if input != "" {
		data, err := os.ReadFile(input)
		if err != nil {
			return "", time.Time{}, fmt.Errorf("read input: %w", err)
		}
		return string(data), domain.Now(), nil
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	client := source.NewClient(url, timeout, "covid-snapshot-etl/1.0", 8<<20, logger, observability.NewUnregisteredMetrics())

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	doc, err := client.Fetch(ctx)
	if err != nil {
		return "", time.Time{}, err
	}
	return doc.Markup, doc.FetchedAt, nil
}

func printRegion(w io.Writer, snap *domain.Snapshot, name string) error {
	row, ok := snap.Lookup(name)
	if !ok || row.Kind != domain.RowRegion {
		return fmt.Errorf("unknown region %q (have: %v)", name, snap.RegionKeys())
	}

	fmt.Fprintln(w, row.Key)
	for _, f := range domain.Fields {
		fmt.Fprintf(w, "  %-13s %d\n", f, row.Get(f))
	}
	return nil
}
