// Package export serializes snapshots to delimited text.
//
// The layout matches a spreadsheet with the row key as an unnamed index
// column:
//
//	,Confirmed,Active,Discharged,Deaths,Vaccinations
//	INDIA,100,20,70,10,5
//	INDIA (Increases),4,1,3,0,2
//	StateA,50,10,35,5,3
//
// Rows appear in snapshot order, so a given snapshot always exports to the
// same bytes.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/couchcryptid/covid-snapshot-etl/internal/domain"
)

// Filename returns the download name for a snapshot fetched at t.
func Filename(t time.Time) string {
	return t.Format("2006-01-02") + "-corona-daily-india.csv"
}

// Header returns the CSV header row.
func Header() []string {
	return append([]string{""}, domain.FieldNames()...)
}

// WriteCSV writes snap to w.
func WriteCSV(w io.Writer, snap *domain.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, 1+domain.FieldCount)
	for _, row := range snap.Rows() {
		record[0] = row.Key
		for i, f := range domain.Fields {
			record[1+i] = strconv.FormatUint(row.Get(f), 10)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %q: %w", row.Key, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses an export back into rows. Row kinds are inferred from the
// synthetic keys. The header must match Header exactly.
func ReadCSV(r io.Reader) ([]domain.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 1 + domain.FieldCount

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, want := range Header() {
		if header[i] != want {
			return nil, fmt.Errorf("csv header column %d is %q, want %q", i, header[i], want)
		}
	}

	var rows []domain.Row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		row := domain.Row{Key: record[0], Kind: kindOf(record[0])}
		for i, f := range domain.Fields {
			v, err := domain.ParseCount(record[1+i])
			if err != nil {
				return nil, fmt.Errorf("csv row %q %s: %w", row.Key, f, err)
			}
			row.Counts[f] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func kindOf(key string) domain.RowKind {
	switch key {
	case domain.NationalKey:
		return domain.RowTotals
	case domain.IncreasesKey:
		return domain.RowIncreases
	default:
		return domain.RowRegion
	}
}
