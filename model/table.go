package model

import (
	"strings"
)

// Row maps column names to cell values. Cells decoded from a
// spreadsheet are always strings; numeric coercion happens in the
// services that consume them.
type Row map[string]string

// Get returns the cell value and whether the column exists on this row.
// A present-but-empty cell returns ("", true).
func (r Row) Get(col string) (string, bool) {
	v, ok := r[col]
	return v, ok
}

// Value returns the cell value, or "" when the column is absent.
func (r Row) Value(col string) string {
	return r[col]
}

// Table is an in-memory table with an explicit column order. The column
// order is part of the contract: carrier and marketplace upload formats
// reject files whose columns are shuffled.
type Table struct {
	Columns []string
	Rows    []Row
}

func NewTable(columns []string) *Table {
	return &Table{Columns: columns}
}

func (t *Table) Append(row Row) {
	t.Rows = append(t.Rows, row)
}

func (t *Table) Len() int {
	return len(t.Rows)
}

func (t *Table) HasColumn(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// MissingColumns returns the subset of required columns not present on
// the table, preserving the order of required.
func (t *Table) MissingColumns(required []string) []string {
	var missing []string
	for _, c := range required {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// TrimColumns returns a copy of the table with surrounding whitespace
// stripped from every column name. Marketplace re-exports frequently
// carry trailing spaces in headers, which would break join keys.
func (t *Table) TrimColumns() *Table {
	out := &Table{
		Columns: make([]string, len(t.Columns)),
		Rows:    make([]Row, len(t.Rows)),
	}
	rename := make(map[string]string, len(t.Columns))
	for i, c := range t.Columns {
		trimmed := strings.TrimSpace(c)
		out.Columns[i] = trimmed
		rename[c] = trimmed
	}
	for i, row := range t.Rows {
		nr := make(Row, len(row))
		for k, v := range row {
			if nk, ok := rename[k]; ok {
				nr[nk] = v
			} else {
				nr[strings.TrimSpace(k)] = v
			}
		}
		out.Rows[i] = nr
	}
	return out
}

// ColumnUsable reports whether a column is present and carries at least
// one non-blank value. A column that exists but is entirely blank is
// treated the same as an absent column by the bulk builders.
func (t *Table) ColumnUsable(col string) bool {
	if !t.HasColumn(col) {
		return false
	}
	for _, row := range t.Rows {
		if strings.TrimSpace(row[col]) != "" {
			return true
		}
	}
	return false
}
