package domain

import (
	"fmt"
	"strings"
)

// RawRecord is one located row before numeric normalization. Fields names the
// column each entry of Values belongs to, in the order the values were found.
type RawRecord struct {
	Name   string
	Fields []Field
	Values []string
}

// Add appends a labelled raw value.
func (r *RawRecord) Add(f Field, raw string) {
	r.Fields = append(r.Fields, f)
	r.Values = append(r.Values, raw)
}

// Located is everything the locator pulled out of a dashboard page.
type Located struct {
	Totals    RawRecord
	Increases RawRecord
	Regions   []RawRecord
}

// Assemble normalizes located records into a Snapshot. The totals row comes
// first, the increases row second, and region rows follow in the order given.
// Any structural, numeric, or key error aborts assembly; no partial table is
// ever returned.
func Assemble(loc Located) (*Snapshot, error) {
	s := &Snapshot{
		rows:  make([]Row, 0, 2+len(loc.Regions)),
		index: make(map[string]int, 2+len(loc.Regions)),
	}

	if err := s.add(NationalKey, RowTotals, loc.Totals); err != nil {
		return nil, err
	}
	if err := s.add(IncreasesKey, RowIncreases, loc.Increases); err != nil {
		return nil, err
	}

	for i, rec := range loc.Regions {
		key := strings.TrimSpace(rec.Name)
		if key == "" {
			return nil, fmt.Errorf("%w: region block %d has an empty name", ErrStructuralMismatch, i)
		}
		if err := s.add(key, RowRegion, rec); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Snapshot) add(key string, kind RowKind, rec RawRecord) error {
	if _, exists := s.index[key]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateRegionKey, key)
	}

	counts, err := normalizeRecord(key, rec)
	if err != nil {
		return err
	}

	s.index[key] = len(s.rows)
	s.rows = append(s.rows, Row{Key: key, Kind: kind, Counts: counts})
	return nil
}

// normalizeRecord checks the record's field labels against the schema before
// placing any value, then parses each value into its column.
func normalizeRecord(key string, rec RawRecord) (Counts, error) {
	var counts Counts

	if len(rec.Fields) != FieldCount || len(rec.Values) != FieldCount {
		return counts, fmt.Errorf("%w: row %q has %d labels and %d values, want %d",
			ErrStructuralMismatch, key, len(rec.Fields), len(rec.Values), FieldCount)
	}
	for i, f := range rec.Fields {
		if f != Fields[i] {
			return counts, fmt.Errorf("%w: row %q column %d is %s, want %s",
				ErrStructuralMismatch, key, i, f, Fields[i])
		}
	}

	for i, raw := range rec.Values {
		v, err := ParseCount(raw)
		if err != nil {
			return counts, fmt.Errorf("row %q %s: %w", key, Fields[i], err)
		}
		counts[Fields[i]] = v
	}
	return counts, nil
}
