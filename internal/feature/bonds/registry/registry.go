// Package registry holds the static list of bond series the dashboard knows about.
package registry

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"bond_dashboard/internal/feature/bonds/domain/entity"
)

//go:embed series.yaml
var defaultSeries []byte

// ErrIncomplete is returned when a table is missing a display name or a summary symbol.
var ErrIncomplete = errors.New("registry: incomplete series definition")

// ErrMalformedID is returned when an identifier does not follow the table naming convention.
var ErrMalformedID = errors.New("registry: malformed series identifier")

const (
	countryToken  = 2
	maturityToken = 3
)

// file mirrors series.yaml.
type file struct {
	Tables         []string          `yaml:"tables"`
	DisplayNames   map[string]string `yaml:"display_names"`
	SummarySymbols map[string]string `yaml:"summary_symbols"`
}

// Registry is an immutable, ordered set of series.
type Registry struct {
	series []entity.Series
	byID   map[string]entity.Series
}

// Load parses a registry definition and checks that every table has a
// display name and a summary symbol. All problems are reported together;
// each one matches ErrIncomplete or ErrMalformedID with errors.Is.
func Load(data []byte) (*Registry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("registry: parse: %w", err)
	}

	var errs []error
	r := &Registry{byID: make(map[string]entity.Series, len(f.Tables))}
	for _, id := range f.Tables {
		if _, dup := r.byID[id]; dup {
			errs = append(errs, fmt.Errorf("%w: %s: duplicate table", ErrIncomplete, id))
			continue
		}
		name, ok := f.DisplayNames[id]
		if !ok || name == "" {
			errs = append(errs, fmt.Errorf("%w: %s: missing display name", ErrIncomplete, id))
		}
		symbol, ok := f.SummarySymbols[id]
		if !ok || symbol == "" {
			errs = append(errs, fmt.Errorf("%w: %s: missing summary symbol", ErrIncomplete, id))
		}
		country, err := ParseCountry(id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s := entity.Series{
			ID:            id,
			DisplayName:   name,
			SummarySymbol: symbol,
			Country:       country,
			Maturity:      strings.ToUpper(strings.Split(id, "_")[maturityToken]),
		}
		r.series = append(r.series, s)
		r.byID[id] = s
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return r, nil
}

var loadDefault = sync.OnceValue(func() *Registry {
	r, err := Load(defaultSeries)
	if err != nil {
		panic(err)
	}
	return r
})

// Default returns the registry compiled into the binary.
func Default() *Registry {
	return loadDefault()
}

// ParseCountry extracts the upper-cased country code from a table identifier,
// e.g. "de10_cdw_uk_10y_gbond" -> "UK".
func ParseCountry(id string) (string, error) {
	tokens := strings.Split(id, "_")
	if len(tokens) <= maturityToken || tokens[countryToken] == "" {
		return "", fmt.Errorf("%w: %q", ErrMalformedID, id)
	}
	return strings.ToUpper(tokens[countryToken]), nil
}

// All returns every series in registry order.
func (r *Registry) All() []entity.Series {
	out := make([]entity.Series, len(r.series))
	copy(out, r.series)
	return out
}

// Lookup returns the series with the given identifier.
func (r *Registry) Lookup(id string) (entity.Series, bool) {
	s, ok := r.byID[id]
	return s, ok
}

// Groups returns the series grouped by country, countries ordered by first appearance.
func (r *Registry) Groups() []entity.CountryGroup {
	var groups []entity.CountryGroup
	index := map[string]int{}
	for _, s := range r.series {
		i, ok := index[s.Country]
		if !ok {
			i = len(groups)
			index[s.Country] = i
			groups = append(groups, entity.CountryGroup{Country: s.Country})
		}
		groups[i].Series = append(groups[i].Series, s)
	}
	return groups
}
