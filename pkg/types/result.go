package types

// Result is the outcome of Execute. Read statements fill Columns and Rows;
// write and DDL statements leave them empty and report RowsAffected and
// LastInsertID instead.
type Result struct {
	QueryID      string   `json:"query_id"`
	Columns      []string `json:"columns"`
	Rows         [][]any  `json:"rows"`
	RowsAffected int64    `json:"rows_affected"`
	LastInsertID int64    `json:"last_insert_id,omitempty"`
}

// IsQuery reports whether the statement produced a result set.
func (r *Result) IsQuery() bool {
	return len(r.Columns) > 0
}

// Strings returns every row formatted for display. NULL renders as "NULL".
func (r *Result) Strings() [][]string {
	out := make([][]string, len(r.Rows))
	for i, row := range r.Rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = FormatValue(v)
		}
		out[i] = cells
	}
	return out
}
