package entity

// SummaryTable holds rows of the shared summary table.
// The column set is defined by the database, so rows are kept as maps
// and Columns records their order.
type SummaryTable struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// Len returns the number of rows.
func (t SummaryTable) Len() int {
	return len(t.Rows)
}

// Append adds the rows of other, extending Columns with any column not seen yet.
func (t *SummaryTable) Append(other SummaryTable) {
	seen := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		seen[c] = struct{}{}
	}
	for _, c := range other.Columns {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		t.Columns = append(t.Columns, c)
	}
	t.Rows = append(t.Rows, other.Rows...)
}
