package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/covid-snapshot-etl/internal/domain"
)

func testExtraction(t *testing.T) domain.Extraction {
	t.Helper()

	var totals, increases domain.RawRecord
	for i, f := range domain.NationalFields {
		totals.Add(f, []string{"100", "20", "70", "10"}[i])
		increases.Add(f, []string{"4", "1", "3", "0"}[i])
	}
	totals.Add(domain.Vaccinations, "5")
	increases.Add(domain.Vaccinations, "2")

	region := domain.RawRecord{Name: "StateA"}
	for i, f := range domain.Fields {
		region.Add(f, []string{"50", "10", "35", "5", "3"}[i])
	}

	snap, err := domain.Assemble(domain.Located{Totals: totals, Increases: increases, Regions: []domain.RawRecord{region}})
	require.NoError(t, err)

	return domain.Extraction{
		Snapshot:  snap,
		SourceURL: "https://www.mygov.in/covid-19/",
		FetchedAt: time.Date(2026, 10, 19, 6, 0, 0, 0, time.UTC),
	}
}

func TestSerializeExtraction(t *testing.T) {
	ext := testExtraction(t)

	msgs, err := serializeExtraction(ext)
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	keys := make([]string, len(msgs))
	for i, m := range msgs {
		keys[i] = string(m.Key)
	}
	assert.Equal(t, []string{"INDIA", "INDIA (Increases)", "StateA"}, keys)
}

func TestSerializeExtraction_IncreasesRow(t *testing.T) {
	ext := testExtraction(t)

	msgs, err := serializeExtraction(ext)
	require.NoError(t, err)

	msg := msgs[1]
	assert.JSONEq(t, `{
		"key": "INDIA (Increases)",
		"kind": "increases",
		"is_delta": true,
		"confirmed": 4,
		"active": 1,
		"discharged": 3,
		"deaths": 0,
		"vaccinations": 2,
		"snapshot_id": "`+ext.ID()+`",
		"source_url": "https://www.mygov.in/covid-19/",
		"fetched_at": "2026-10-19T06:00:00Z"
	}`, string(msg.Value))

	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "row_kind", msg.Headers[0].Key)
	assert.Equal(t, []byte("increases"), msg.Headers[0].Value)
	assert.Equal(t, "snapshot_id", msg.Headers[1].Key)
	assert.Equal(t, []byte(ext.ID()), msg.Headers[1].Value)
	assert.Equal(t, "fetched_at", msg.Headers[2].Key)
	assert.Equal(t, []byte("2026-10-19T06:00:00Z"), msg.Headers[2].Value)
}

func TestSerializeExtraction_RegionRow(t *testing.T) {
	msgs, err := serializeExtraction(testExtraction(t))
	require.NoError(t, err)

	var got rowMessage
	require.NoError(t, json.Unmarshal(msgs[2].Value, &got))
	assert.Equal(t, "StateA", got.Key)
	assert.Equal(t, "region", got.Kind)
	assert.False(t, got.IsDelta)
	assert.Equal(t, uint64(50), got.Confirmed)
	assert.Equal(t, uint64(3), got.Vaccinations)
}

func TestSerializeExtraction_Deterministic(t *testing.T) {
	first, err := serializeExtraction(testExtraction(t))
	require.NoError(t, err)
	second, err := serializeExtraction(testExtraction(t))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
