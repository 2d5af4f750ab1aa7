// Command validate checks that a saved dashboard page extracts to an expected
// CSV export. It verifies the page structure, row identity and order, every
// counter value, and the table invariants the consumers rely on.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -page internal/extract/testdata/dashboard.html \
//	  -csv testdata/2022-12-03-corona-daily-india.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/covid-snapshot-etl/internal/domain"
	"github.com/couchcryptid/covid-snapshot-etl/internal/export"
	"github.com/couchcryptid/covid-snapshot-etl/internal/extract"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	pagePath := flag.String("page", "", "path to a saved dashboard HTML page")
	csvPath := flag.String("csv", "", "path to the expected CSV export")
	flag.Parse()

	if *pagePath == "" || *csvPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*pagePath, *csvPath); code != 0 {
		os.Exit(code)
	}
}

func run(pagePath, csvPath string) int {
	fmt.Println("=== COVID Snapshot Validation ===")
	fmt.Println()

	markup, err := os.ReadFile(pagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read page: %v\n", err)
		return 1
	}

	expected, err := loadExpected(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load expected CSV: %v\n", err)
		return 1
	}

	// ── Run validation phases ──
	structure, snap := validateStructure(string(markup))
	phases := []*phase{structure}
	if snap != nil {
		phases = append(phases,
			validateRowParity(snap.Rows(), expected),
			validateValues(snap, expected),
			validateInvariants(snap, string(markup)),
		)
	}

	// ── Report results ──
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	extracted := 0
	if snap != nil {
		extracted = snap.Len()
	}
	fmt.Printf("Rows: %d extracted, %d expected\n", extracted, len(expected))

	// Print detailed errors.
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadExpected(path string) ([]domain.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return export.ReadCSV(f)
}

// ── Phase 1: Structure ──
// The page must match the dashboard layout and yield a snapshot.

func validateStructure(markup string) (*phase, *domain.Snapshot) {
	p := &phase{name: "Phase 1: Structure (page layout)"}

	snap, err := extract.Extract(markup)
	if err != nil {
		p.errorf("%s: %v", domain.ErrorKind(err), err)
		return p, nil
	}
	return p, snap
}

// ── Phase 2: Row Parity ──
// Same row keys, in the same order, with the same kinds.

func validateRowParity(got, want []domain.Row) *phase {
	p := &phase{name: "Phase 2: Row Parity (keys and order)"}

	if len(got) != len(want) {
		p.errorf("extracted %d rows, expected %d", len(got), len(want))
	}

	n := min(len(got), len(want))
	for i := 0; i < n; i++ {
		if got[i].Key != want[i].Key {
			p.errorf("row %d: key %q, expected %q", i, got[i].Key, want[i].Key)
			continue
		}
		if got[i].Kind != want[i].Kind {
			p.errorf("row %q: kind %s, expected %s", got[i].Key, got[i].Kind, want[i].Kind)
		}
	}
	for _, r := range got[n:] {
		p.errorf("unexpected extracted row %q", r.Key)
	}
	for _, r := range want[n:] {
		p.errorf("missing expected row %q", r.Key)
	}
	return p
}

// ── Phase 3: Values ──
// Every counter of every expected row matches the extracted value.

func validateValues(snap *domain.Snapshot, want []domain.Row) *phase {
	p := &phase{name: "Phase 3: Values (counters)"}

	for _, w := range want {
		got, ok := snap.Lookup(w.Key)
		if !ok {
			continue // reported by row parity
		}
		for _, f := range domain.Fields {
			if got.Get(f) != w.Get(f) {
				p.errorf("%s %s: extracted %d, expected %d", w.Key, f, got.Get(f), w.Get(f))
			}
		}
	}
	return p
}

// ── Phase 4: Invariants ──
// Properties that hold for any valid snapshot, independent of the CSV.

func validateInvariants(snap *domain.Snapshot, markup string) *phase {
	p := &phase{name: "Phase 4: Invariants (table shape)"}

	rows := snap.Rows()
	if len(rows) < 3 {
		p.errorf("expected at least 3 rows, got %d", len(rows))
		return p
	}
	if rows[0].Key != domain.NationalKey || rows[0].IsDelta() {
		p.errorf("first row is %q, expected cumulative %q", rows[0].Key, domain.NationalKey)
	}
	if rows[1].Key != domain.IncreasesKey || !rows[1].IsDelta() {
		p.errorf("second row is %q, expected delta %q", rows[1].Key, domain.IncreasesKey)
	}

	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		if seen[r.Key] {
			p.errorf("duplicate row key %q", r.Key)
		}
		seen[r.Key] = true
	}

	again, err := extract.Extract(markup)
	switch {
	case err != nil:
		p.errorf("second extraction failed: %v", err)
	case again.Fingerprint() != snap.Fingerprint():
		p.errorf("extraction is not deterministic: %s != %s", again.Fingerprint(), snap.Fingerprint())
	}
	return p
}
