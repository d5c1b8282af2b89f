package model

// Row is a single spreadsheet row keyed by column name.
type Row map[string]string

// Clone returns a copy of the row.
func (r Row) Clone() Row {
	c := make(Row, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// Table is an ordered set of columns and the rows under them.
// Cells for columns a row does not carry read as "".
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable creates an empty table with the given columns.
func NewTable(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// HasColumn reports whether the table declares the column.
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// EnsureColumn appends the column if it is not declared yet.
func (t *Table) EnsureColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Append adds rows to the table.
func (t *Table) Append(rows ...Row) {
	t.Rows = append(t.Rows, rows...)
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	c := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, r := range t.Rows {
		c.Rows[i] = r.Clone()
	}
	return c
}

// Index maps the value of column to the position of the first row carrying it.
// Rows with an empty value are not indexed.
func (t *Table) Index(column string) map[string]int {
	idx := make(map[string]int, t.Len())
	if t == nil {
		return idx
	}
	for i, r := range t.Rows {
		v := r[column]
		if v == "" {
			continue
		}
		if _, dup := idx[v]; !dup {
			idx[v] = i
		}
	}
	return idx
}

// Values renders the table as a header row followed by data rows,
// in the shape spreadsheet APIs expect.
func (t *Table) Values() [][]interface{} {
	out := make([][]interface{}, 0, t.Len()+1)
	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	out = append(out, header)
	for _, r := range t.Rows {
		line := make([]interface{}, len(t.Columns))
		for i, c := range t.Columns {
			line[i] = r[c]
		}
		out = append(out, line)
	}
	return out
}

// Reorder projects every row onto columns, in that order. Cells for
// columns a row does not carry are filled with "".
func (t *Table) Reorder(columns []string) {
	for _, r := range t.Rows {
		for _, c := range columns {
			if _, ok := r[c]; !ok {
				r[c] = ""
			}
		}
		for k := range r {
			if !contains(columns, k) {
				delete(r, k)
			}
		}
	}
	t.Columns = append([]string(nil), columns...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
