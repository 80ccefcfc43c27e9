package dataset

import "strings"

// Table is an in-memory tabular source: a header row plus string records.
// Every record has exactly len(Header) fields.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string

	index map[string]int
}

// NewTable builds a table and its column index. Header names are trimmed.
func NewTable(name string, header []string, rows [][]string) *Table {
	t := &Table{
		Name:   name,
		Header: make([]string, len(header)),
		Rows:   rows,
		index:  make(map[string]int, len(header)),
	}
	for i, h := range header {
		h = strings.TrimSpace(h)
		t.Header[i] = h
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}
	return t
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of a column.
func (t *Table) Index(column string) (int, bool) {
	i, ok := t.index[column]
	return i, ok
}

// Has reports whether the column exists.
func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Value returns the named field of row, or "" when the column does not exist.
func (t *Table) Value(row []string, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// Rename returns a copy of the table with column old renamed to new.
// Renaming a missing column is a no-op.
func (t *Table) Rename(old, new string) *Table {
	header := make([]string, len(t.Header))
	copy(header, t.Header)
	if i, ok := t.index[old]; ok {
		header[i] = new
	}
	return NewTable(t.Name, header, t.Rows)
}

// Drop returns a copy of the table without the given columns.
// Columns that do not exist are ignored.
func (t *Table) Drop(columns ...string) *Table {
	drop := make(map[int]bool, len(columns))
	for _, c := range columns {
		if i, ok := t.index[c]; ok {
			drop[i] = true
		}
	}
	if len(drop) == 0 {
		return t
	}

	keep := make([]int, 0, len(t.Header)-len(drop))
	for i := range t.Header {
		if !drop[i] {
			keep = append(keep, i)
		}
	}

	header := make([]string, len(keep))
	for j, i := range keep {
		header[j] = t.Header[i]
	}
	rows := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		out := make([]string, len(keep))
		for j, i := range keep {
			out[j] = row[i]
		}
		rows[r] = out
	}
	return NewTable(t.Name, header, rows)
}
