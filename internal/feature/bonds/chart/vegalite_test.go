package chart

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bond_dashboard/internal/feature/bonds/domain/entity"
)

func TestNewLineChart_Empty(t *testing.T) {
	t.Parallel()

	assert.Nil(t, NewLineChart(nil))
	assert.Nil(t, NewLineChart([]entity.BondPrice{}))
	assert.Nil(t, seriesOf(nil))
}

func TestNewLineChart_OneSeries(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	spec := NewLineChart([]entity.BondPrice{
		{Bond: "UK 10Y GBOND", Date: base, AdjustedClose: 4.0},
		{Bond: "UK 10Y GBOND", Date: base.AddDate(0, 0, 1), AdjustedClose: 4.1},
	})

	require.NotNil(t, spec)
	assert.Equal(t, []string{"UK 10Y GBOND"}, seriesOf(spec))
	assert.Equal(t, "line", spec.Mark)
	assert.Equal(t, Title, spec.Title)
	assert.Equal(t, "2024-03-01", spec.Data.Values[0].Date)
}

func TestNewLineChart_Encoding(t *testing.T) {
	t.Parallel()

	spec := NewLineChart([]entity.BondPrice{
		{Bond: "UK 10Y GBOND", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), AdjustedClose: 4.0},
		{Bond: "US 10Y GBOND", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), AdjustedClose: 4.3},
	})
	require.NotNil(t, spec)

	b, err := json.Marshal(spec)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))

	enc := got["encoding"].(map[string]any)
	assert.Equal(t, map[string]any{"field": "date", "type": "temporal"}, enc["x"])
	assert.Equal(t, map[string]any{"field": "adjusted_close", "type": "quantitative"}, enc["y"])
	assert.Equal(t, map[string]any{"field": "Bond", "type": "nominal"}, enc["color"])
	assert.Len(t, enc["tooltip"], 3)
	assert.Equal(t, "https://vega.github.io/schema/vega-lite/v5.json", got["$schema"])

	params := got["params"].([]any)
	require.Len(t, params, 1)
	assert.Equal(t, "scales", params[0].(map[string]any)["bind"])

	assert.Equal(t, []string{"UK 10Y GBOND", "US 10Y GBOND"}, seriesOf(spec))
}

// seriesOf returns the distinct color values of the chart in first-seen order.
func seriesOf(s *Spec) []string {
	if s == nil {
		return nil
	}
	seen := map[string]struct{}{}
	var out []string
	for _, v := range s.Data.Values {
		if _, ok := seen[v.Bond]; ok {
			continue
		}
		seen[v.Bond] = struct{}{}
		out = append(out, v.Bond)
	}
	return out
}
