package metrics

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRoundHalfAwayFromZero(t *testing.T) {
	require.Equal(t, 1.01, round2(1.005))
	require.Equal(t, 2.68, round2(2.675))
	require.Equal(t, -2.68, round2(-2.675))
	require.Equal(t, 0.0, round2(0.004))
	require.Equal(t, 0.1235, roundN(0.12345, 4))
}

func TestRound2PtrKeepsNil(t *testing.T) {
	require.Nil(t, round2Ptr(nil))
	require.Equal(t, 3.33, *round2Ptr(ptr(10.0/3)))
}

func TestRowStampsUTC(t *testing.T) {
	local := time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("IDT", 3*3600))
	row := Compute(scenarioASnapshot()).Row(local)
	require.Equal(t, time.UTC, row.ComputedAt.Location())
	require.True(t, row.ComputedAt.Equal(local))
}

func TestRowJSONKeepsNullDiffs(t *testing.T) {
	row := Compute(scenarioASnapshot()).Row(time.Now())

	raw, err := json.Marshal(row)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	require.Contains(t, decoded, "food_target_diff_pct")
	require.Nil(t, decoded["food_target_diff_pct"])
	require.Equal(t, "business_default", decoded["vat_source"])
	require.Equal(t, []any{}, decoded["managed_products"])
}

func TestRowColumnMappingMatchesColumns(t *testing.T) {
	row := Compute(scenarioASnapshot()).Row(time.Now())
	require.Len(t, row.values(), len(upsertColumns))
	require.Len(t, row.pointers(), len(upsertColumns))
}

func TestRoundNonFiniteIsZero(t *testing.T) {
	require.Equal(t, 0.0, round2(math.NaN()))
	require.Equal(t, 0.0, round2(math.Inf(1)))
	require.Equal(t, 0.0, roundN(math.Inf(-1), 4))
	require.Equal(t, 0.0, *round2Ptr(ptr(math.NaN())))
	require.Equal(t, 512345678.13, round2(512345678.125))
}

func TestRowWithNonFiniteInputsDoesNotPanic(t *testing.T) {
	c := Compute(scenarioASnapshot())
	c.Markup.Value = math.NaN()
	c.PrevMonth.ChangePct = math.Inf(1)
	require.NotPanics(t, func() {
		row := c.Row(time.Now())
		require.Equal(t, 0.0, row.Markup)
		require.Equal(t, 0.0, row.PrevMonthChangePct)
	})
}
