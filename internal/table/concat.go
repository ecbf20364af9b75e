package table

// Concat merges tables by column name, preserving first-seen column
// order. Rows from tables missing a column get nulls there, matching
// how period-by-period report layouts drift over the years.
func Concat(tables ...*Table) *Table {
	var out *Table
	for _, t := range tables {
		if t == nil || t.IsEmpty() {
			continue
		}
		if out == nil {
			out = &Table{Columns: append([]Column(nil), t.Columns...)}
		} else {
			for _, c := range t.Columns {
				if out.ColumnIndex(c.Name) < 0 {
					out.AppendConstColumn(c.Name, NullCell())
					out.Columns[len(out.Columns)-1].Numeric = c.Numeric
				}
			}
		}

		index := make([]int, len(out.Columns))
		for i, c := range out.Columns {
			index[i] = t.ColumnIndex(c.Name)
		}
		for _, row := range t.Data {
			cells := make([]Cell, len(out.Columns))
			for i, src := range index {
				if src >= 0 && src < len(row) {
					cells[i] = row[src]
				} else {
					cells[i] = NullCell()
				}
			}
			out.Data = append(out.Data, cells)
		}
	}
	if out == nil {
		return Empty()
	}
	return out
}
