// Package domain models the daily COVID-19 snapshot published on the MyGov
// dashboard.
//
// # Data Source
//
// The dashboard at https://www.mygov.in/covid-19/ is a server-rendered page with
// no machine-readable feed. It shows nationwide counters, their change since
// the previous day, and one block per state or union territory. The extractor
// (package extract) locates those nodes and hands their raw text here as
// [RawRecord] values; this package owns normalization and table assembly.
//
// # Number Format
//
// Counters are rendered with Indian digit grouping, so separators do not fall
// every three digits:
//
//	"4,46,87,820"  →  44687820
//	" 0 "          →  0
//
// [ParseCount] strips surrounding whitespace and every comma, then requires a
// plain base-10 digit string. Signs, decimal points, and any other character
// are rejected with [ErrMalformedNumber].
//
// # Table Schema
//
// Every row has five counters in a fixed order:
//
//	Confirmed, Active, Discharged, Deaths, Vaccinations
//
// The first two rows are synthetic:
//
//	"INDIA"              cumulative nationwide totals
//	"INDIA (Increases)"  day-over-day deltas, same column names
//
// The increases row reuses the cumulative column names for deltas. Each row
// therefore carries a [RowKind], and [Row.IsDelta] says which rows hold
// deltas. Region rows follow in the order they appear on the page, keyed
// by the trimmed region name as printed.
//
// # Failure Policy
//
// A page that does not match the expected shape yields no snapshot at all.
// [ErrStructuralMismatch], [ErrMalformedNumber], and [ErrDuplicateRegionKey]
// are the three failure classes; callers match them with errors.Is.
//
// # Identity
//
// A [Snapshot] has no identity across extractions. [Snapshot.Fingerprint] is a
// SHA-256 digest of the ordered rows, so identical pages yield identical IDs,
// and [Extraction] attaches the source URL and fetch/extract timestamps.
package domain
