package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Synthetic row keys. They always occupy the first two rows of a snapshot.
const (
	NationalKey  = "INDIA"
	IncreasesKey = "INDIA (Increases)"
)

// RowKind tells cumulative rows apart from the day-over-day increases row,
// which reuses the same five column names for deltas.
type RowKind int

const (
	RowRegion RowKind = iota
	RowTotals
	RowIncreases
)

func (k RowKind) String() string {
	switch k {
	case RowTotals:
		return "totals"
	case RowIncreases:
		return "increases"
	case RowRegion:
		return "region"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k RowKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Row is one keyed record of the snapshot table.
type Row struct {
	Key    string
	Kind   RowKind
	Counts Counts
}

// IsDelta reports whether the row's counters are day-over-day increases
// rather than cumulative totals.
func (r Row) IsDelta() bool {
	return r.Kind == RowIncreases
}

// Get returns the row's counter for f.
func (r Row) Get(f Field) uint64 {
	return r.Counts.Get(f)
}

type rowJSON struct {
	Key          string  `json:"key"`
	Kind         RowKind `json:"kind"`
	IsDelta      bool    `json:"is_delta"`
	Confirmed    uint64  `json:"confirmed"`
	Active       uint64  `json:"active"`
	Discharged   uint64  `json:"discharged"`
	Deaths       uint64  `json:"deaths"`
	Vaccinations uint64  `json:"vaccinations"`
}

// MarshalJSON encodes the row with named counters in schema order.
func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(rowJSON{
		Key:          r.Key,
		Kind:         r.Kind,
		IsDelta:      r.IsDelta(),
		Confirmed:    r.Counts[Confirmed],
		Active:       r.Counts[Active],
		Discharged:   r.Counts[Discharged],
		Deaths:       r.Counts[Deaths],
		Vaccinations: r.Counts[Vaccinations],
	})
}

// Snapshot is an immutable, ordered table of rows keyed by region name.
// Build one with Assemble; the zero value is an empty table.
type Snapshot struct {
	rows  []Row
	index map[string]int
}

// Len returns the number of rows, synthetic rows included.
func (s *Snapshot) Len() int {
	return len(s.rows)
}

// Lookup returns the row stored under key.
func (s *Snapshot) Lookup(key string) (Row, bool) {
	i, ok := s.index[key]
	if !ok {
		return Row{}, false
	}
	return s.rows[i], true
}

// Keys returns every row key in table order.
func (s *Snapshot) Keys() []string {
	keys := make([]string, len(s.rows))
	for i, r := range s.rows {
		keys[i] = r.Key
	}
	return keys
}

// Rows returns a copy of the table rows in order.
func (s *Snapshot) Rows() []Row {
	rows := make([]Row, len(s.rows))
	copy(rows, s.rows)
	return rows
}

// National returns the totals and increases rows.
func (s *Snapshot) National() (totals, increases Row) {
	totals, _ = s.Lookup(NationalKey)
	increases, _ = s.Lookup(IncreasesKey)
	return totals, increases
}

// Regions returns the region rows in document order.
func (s *Snapshot) Regions() []Row {
	regions := make([]Row, 0, len(s.rows))
	for _, r := range s.rows {
		if r.Kind == RowRegion {
			regions = append(regions, r)
		}
	}
	return regions
}

// RegionKeys returns the region names in document order.
func (s *Snapshot) RegionKeys() []string {
	regions := s.Regions()
	keys := make([]string, len(regions))
	for i, r := range regions {
		keys[i] = r.Key
	}
	return keys
}

// Fingerprint returns a deterministic ID derived from the table contents.
// Two snapshots with the same rows in the same order share a fingerprint.
func (s *Snapshot) Fingerprint() string {
	var b strings.Builder
	for _, r := range s.rows {
		fmt.Fprintf(&b, "%s|%s", r.Key, r.Kind)
		for _, v := range r.Counts {
			fmt.Fprintf(&b, "|%d", v)
		}
		b.WriteByte('\n')
	}
	hash := sha256.Sum256([]byte(b.String()))
	return "snap-" + hex.EncodeToString(hash[:8])
}

// MarshalJSON encodes the table as an ordered array of rows.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	if s.rows == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.rows)
}
