package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_EverySeriesIsComplete(t *testing.T) {
	t.Parallel()

	r := Default()
	all := r.All()
	require.Len(t, all, 17)

	for _, s := range all {
		assert.NotEmpty(t, s.DisplayName, "display name missing for %s", s.ID)
		assert.NotEmpty(t, s.SummarySymbol, "summary symbol missing for %s", s.ID)
		assert.NotEmpty(t, s.Country, "country missing for %s", s.ID)
	}
}

func TestDefault_Lookup(t *testing.T) {
	t.Parallel()

	s, ok := Default().Lookup("de10_cdw_uk_10y_gbond")
	require.True(t, ok)
	assert.Equal(t, "UK 10Y GBOND", s.DisplayName)
	assert.Equal(t, "UK10Y.GBOND", s.SummarySymbol)
	assert.Equal(t, "UK", s.Country)
	assert.Equal(t, "10Y", s.Maturity)

	_, ok = Default().Lookup("de10_cdw_fr_10y_gbond")
	assert.False(t, ok)
}

func TestDefault_Groups(t *testing.T) {
	t.Parallel()

	groups := Default().Groups()
	require.Len(t, groups, 3)

	assert.Equal(t, "UK", groups[0].Country)
	assert.Equal(t, "US", groups[1].Country)
	assert.Equal(t, "DE", groups[2].Country)
	assert.Len(t, groups[0].Series, 6)
	assert.Len(t, groups[1].Series, 6)
	assert.Len(t, groups[2].Series, 5)
	assert.Equal(t, "UK 1Y GBOND", groups[0].Series[0].DisplayName)
	assert.Equal(t, "DE 30Y GBOND", groups[2].Series[4].DisplayName)
}

func TestAll_ReturnsCopy(t *testing.T) {
	t.Parallel()

	r := Default()
	all := r.All()
	all[0].DisplayName = "changed"

	assert.Equal(t, "UK 1Y GBOND", r.All()[0].DisplayName)
}

func TestLoad_Incomplete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name: "missing display name",
			data: `
tables: [de10_cdw_uk_1y_gbond]
summary_symbols: {de10_cdw_uk_1y_gbond: UK1Y.GBOND}
`,
			wantErr: ErrIncomplete,
		},
		{
			name: "missing summary symbol",
			data: `
tables: [de10_cdw_uk_1y_gbond]
display_names: {de10_cdw_uk_1y_gbond: UK 1Y GBOND}
`,
			wantErr: ErrIncomplete,
		},
		{
			name: "malformed identifier",
			data: `
tables: [uk10y]
display_names: {uk10y: UK 10Y}
summary_symbols: {uk10y: UK10Y.GBOND}
`,
			wantErr: ErrMalformedID,
		},
		{
			name: "duplicate table",
			data: `
tables: [de10_cdw_uk_1y_gbond, de10_cdw_uk_1y_gbond]
display_names: {de10_cdw_uk_1y_gbond: UK 1Y GBOND}
summary_symbols: {de10_cdw_uk_1y_gbond: UK1Y.GBOND}
`,
			wantErr: ErrIncomplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Load([]byte(tt.data))
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestLoad_ReportsEveryProblem(t *testing.T) {
	t.Parallel()

	_, err := Load([]byte(`
tables: [uk10y, de10_cdw_us_1y_gbond]
display_names: {uk10y: UK 10Y}
summary_symbols: {uk10y: UK10Y.GBOND}
`))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedID)
	assert.ErrorIs(t, err, ErrIncomplete)
	assert.Contains(t, err.Error(), "de10_cdw_us_1y_gbond: missing display name")
	assert.Contains(t, err.Error(), "de10_cdw_us_1y_gbond: missing summary symbol")
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	_, err := Load([]byte("tables: [unterminated"))
	assert.Error(t, err)
}

func TestParseCountry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id      string
		want    string
		wantErr bool
	}{
		{id: "de10_cdw_uk_10y_gbond", want: "UK"},
		{id: "de10_cdw_us_1y_gbond", want: "US"},
		{id: "de10_cdw_de_30y_gbond", want: "DE"},
		{id: "de10_cdw", wantErr: true},
		{id: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			t.Parallel()

			got, err := ParseCountry(tt.id)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
