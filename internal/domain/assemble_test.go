package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nationalRecord(values ...string) RawRecord {
	var rec RawRecord
	for i, f := range NationalFields {
		rec.Add(f, values[i])
	}
	rec.Add(Vaccinations, values[4])
	return rec
}

func regionRecord(name string, values ...string) RawRecord {
	rec := RawRecord{Name: name}
	for i, f := range Fields {
		rec.Add(f, values[i])
	}
	return rec
}

func exampleLocated() Located {
	return Located{
		Totals:    nationalRecord("100", "20", "70", "10", "5"),
		Increases: nationalRecord("4", "1", "3", "0", "2"),
		Regions:   []RawRecord{regionRecord("StateA", "50", "10", "35", "5", "3")},
	}
}

func TestAssemble_Example(t *testing.T) {
	snap, err := Assemble(exampleLocated())
	require.NoError(t, err)

	assert.Equal(t, []string{NationalKey, IncreasesKey, "StateA"}, snap.Keys())

	want := map[string]Counts{
		NationalKey:  {100, 20, 70, 10, 5},
		IncreasesKey: {4, 1, 3, 0, 2},
		"StateA":     {50, 10, 35, 5, 3},
	}
	for key, counts := range want {
		row, ok := snap.Lookup(key)
		require.True(t, ok, key)
		assert.Equal(t, counts, row.Counts, key)
	}
}

func TestAssemble_RowKinds(t *testing.T) {
	snap, err := Assemble(exampleLocated())
	require.NoError(t, err)

	totals, increases := snap.National()
	assert.Equal(t, RowTotals, totals.Kind)
	assert.False(t, totals.IsDelta())
	assert.Equal(t, RowIncreases, increases.Kind)
	assert.True(t, increases.IsDelta())

	regions := snap.Regions()
	require.Len(t, regions, 1)
	assert.Equal(t, RowRegion, regions[0].Kind)
	assert.False(t, regions[0].IsDelta())
}

func TestAssemble_PreservesRegionOrder(t *testing.T) {
	loc := exampleLocated()
	loc.Regions = []RawRecord{
		regionRecord("West Bengal", "1", "1", "1", "1", "1"),
		regionRecord("Andhra Pradesh", "2", "2", "2", "2", "2"),
		regionRecord("Goa", "3", "3", "3", "3", "3"),
	}

	snap, err := Assemble(loc)
	require.NoError(t, err)

	assert.Equal(t, 5, snap.Len())
	assert.Equal(t,
		[]string{NationalKey, IncreasesKey, "West Bengal", "Andhra Pradesh", "Goa"},
		snap.Keys())
	assert.Equal(t, []string{"West Bengal", "Andhra Pradesh", "Goa"}, snap.RegionKeys())
}

func TestAssemble_TrimsRegionName(t *testing.T) {
	loc := exampleLocated()
	loc.Regions = []RawRecord{regionRecord("\n  Dadra and Nagar Haveli and Daman and Diu \t", "1", "0", "1", "0", "9")}

	snap, err := Assemble(loc)
	require.NoError(t, err)

	_, ok := snap.Lookup("Dadra and Nagar Haveli and Daman and Diu")
	assert.True(t, ok)
}

func TestAssemble_KeepsNameCasing(t *testing.T) {
	loc := exampleLocated()
	loc.Regions = []RawRecord{
		regionRecord("goa", "1", "1", "1", "1", "1"),
		regionRecord("Goa", "2", "2", "2", "2", "2"),
	}

	snap, err := Assemble(loc)
	require.NoError(t, err)
	assert.Equal(t, 4, snap.Len())
}

func TestAssemble_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Located)
		wantErr error
	}{
		{
			name: "duplicate region",
			mutate: func(l *Located) {
				l.Regions = append(l.Regions, regionRecord(" StateA ", "1", "1", "1", "1", "1"))
			},
			wantErr: ErrDuplicateRegionKey,
		},
		{
			name: "region collides with national key",
			mutate: func(l *Located) {
				l.Regions = append(l.Regions, regionRecord(NationalKey, "1", "1", "1", "1", "1"))
			},
			wantErr: ErrDuplicateRegionKey,
		},
		{
			name: "region collides with increases key",
			mutate: func(l *Located) {
				l.Regions = append(l.Regions, regionRecord(IncreasesKey, "1", "1", "1", "1", "1"))
			},
			wantErr: ErrDuplicateRegionKey,
		},
		{
			name: "empty region name",
			mutate: func(l *Located) {
				l.Regions = append(l.Regions, regionRecord("   ", "1", "1", "1", "1", "1"))
			},
			wantErr: ErrStructuralMismatch,
		},
		{
			name: "totals missing vaccinations",
			mutate: func(l *Located) {
				l.Totals.Fields = l.Totals.Fields[:4]
				l.Totals.Values = l.Totals.Values[:4]
			},
			wantErr: ErrStructuralMismatch,
		},
		{
			name: "columns out of order",
			mutate: func(l *Located) {
				l.Increases.Fields[1], l.Increases.Fields[2] = l.Increases.Fields[2], l.Increases.Fields[1]
			},
			wantErr: ErrStructuralMismatch,
		},
		{
			name: "labels and values disagree",
			mutate: func(l *Located) {
				l.Regions[0].Values = l.Regions[0].Values[:3]
			},
			wantErr: ErrStructuralMismatch,
		},
		{
			name: "malformed total",
			mutate: func(l *Located) {
				l.Totals.Values[0] = "1.5"
			},
			wantErr: ErrMalformedNumber,
		},
		{
			name: "negative region count",
			mutate: func(l *Located) {
				l.Regions[0].Values[3] = "-5"
			},
			wantErr: ErrMalformedNumber,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := exampleLocated()
			tt.mutate(&loc)

			snap, err := Assemble(loc)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, snap)
		})
	}
}

func TestAssemble_Deterministic(t *testing.T) {
	first, err := Assemble(exampleLocated())
	require.NoError(t, err)
	second, err := Assemble(exampleLocated())
	require.NoError(t, err)

	if diff := cmp.Diff(first.Rows(), second.Rows()); diff != "" {
		t.Errorf("rows differ (-first +second):\n%s", diff)
	}
	assert.Equal(t, first.Fingerprint(), second.Fingerprint())

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSnapshot_FingerprintChangesWithContent(t *testing.T) {
	first, err := Assemble(exampleLocated())
	require.NoError(t, err)

	loc := exampleLocated()
	loc.Regions[0].Values[4] = "4"
	second, err := Assemble(loc)
	require.NoError(t, err)

	assert.NotEqual(t, first.Fingerprint(), second.Fingerprint())
	assert.Regexp(t, `^snap-[0-9a-f]{16}$`, first.Fingerprint())
}

func TestSnapshot_RowsIsCopy(t *testing.T) {
	snap, err := Assemble(exampleLocated())
	require.NoError(t, err)

	rows := snap.Rows()
	rows[0].Counts[Confirmed] = 0
	rows[0].Key = "changed"

	row, ok := snap.Lookup(NationalKey)
	require.True(t, ok)
	assert.Equal(t, uint64(100), row.Counts[Confirmed])
}

func TestSnapshot_LookupMissing(t *testing.T) {
	snap, err := Assemble(exampleLocated())
	require.NoError(t, err)

	_, ok := snap.Lookup("Atlantis")
	assert.False(t, ok)
}

func TestSnapshot_MarshalJSON(t *testing.T) {
	snap, err := Assemble(exampleLocated())
	require.NoError(t, err)

	data, err := json.Marshal(snap)
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{"key":"INDIA","kind":"totals","is_delta":false,"confirmed":100,"active":20,"discharged":70,"deaths":10,"vaccinations":5},
		{"key":"INDIA (Increases)","kind":"increases","is_delta":true,"confirmed":4,"active":1,"discharged":3,"deaths":0,"vaccinations":2},
		{"key":"StateA","kind":"region","is_delta":false,"confirmed":50,"active":10,"discharged":35,"deaths":5,"vaccinations":3}
	]`, string(data))
}

func TestNewExtraction(t *testing.T) {
	frozen := time.Date(2026, 10, 19, 6, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(frozen))
	defer SetClock(nil)

	snap, err := Assemble(exampleLocated())
	require.NoError(t, err)

	fetched := frozen.Add(-2 * time.Second)
	ext := NewExtraction(Document{URL: "https://example.test/covid", FetchedAt: fetched}, snap)

	assert.Equal(t, "https://example.test/covid", ext.SourceURL)
	assert.Equal(t, fetched, ext.FetchedAt)
	assert.Equal(t, frozen, ext.ExtractedAt)
	assert.Equal(t, snap.Fingerprint(), ext.ID())
	assert.Empty(t, Extraction{}.ID())
}

func TestFieldNames(t *testing.T) {
	assert.Equal(t, []string{"Confirmed", "Active", "Discharged", "Deaths", "Vaccinations"}, FieldNames())
	assert.Equal(t, "Deaths", Deaths.String())
	assert.Equal(t, "Field(?)", Field(9).String())
}
