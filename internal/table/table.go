// Package table holds the flat tabular model shared by the scraper,
// the parser and the normalizer: ordered columns, typed cells and a
// dense 0-based row order.
package table

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Column is a named table column. Numeric columns render cells as
// numbers; everything else stays text.
type Column struct {
	Name    string `json:"name"`
	Numeric bool   `json:"numeric,omitempty"`
}

// Cell is a single table value: text, number or null. A null cell is
// how non-coercible values survive numeric columns without dropping
// the row.
type Cell struct {
	Text   string   `json:"t,omitempty"`
	Number *float64 `json:"n,omitempty"`
	Null   bool     `json:"null,omitempty"`
}

// TextCell builds a text cell.
func TextCell(s string) Cell { return Cell{Text: s} }

// NumberCell builds a numeric cell.
func NumberCell(f float64) Cell { return Cell{Number: &f} }

// NullCell builds an explicit null.
func NullCell() Cell { return Cell{Null: true} }

// IsNull reports whether the cell carries no value. Empty text counts
// as null so spreadsheet blanks and explicit nulls behave the same.
func (c Cell) IsNull() bool {
	return c.Null || (c.Number == nil && strings.TrimSpace(c.Text) == "")
}

// String renders the cell for CSV output; null renders empty.
func (c Cell) String() string {
	switch {
	case c.Null:
		return ""
	case c.Number != nil:
		return strconv.FormatFloat(*c.Number, 'f', -1, 64)
	default:
		return c.Text
	}
}

// Table is an ordered sequence of rows over a fixed column set.
type Table struct {
	Columns []Column `json:"columns"`
	Data    [][]Cell `json:"data"`
}

// New creates an empty table with the given column names, all text.
func New(names ...string) *Table {
	cols := make([]Column, len(names))
	for i, n := range names {
		cols[i] = Column{Name: n}
	}
	return &Table{Columns: cols}
}

// Empty is the empty-table sentinel collectors return where a failure
// degrades instead of propagating an error.
func Empty() *Table { return &Table{} }

// IsEmpty reports whether the table carries no rows.
func (t *Table) IsEmpty() bool { return t == nil || len(t.Data) == 0 }

// NumRows returns the row count.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Data)
}

// AppendRow adds one row. Short rows are padded with nulls so every
// row matches the column set.
func (t *Table) AppendRow(cells []Cell) {
	for len(cells) < len(t.Columns) {
		cells = append(cells, NullCell())
	}
	t.Data = append(t.Data, cells[:len(t.Columns)])
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// AppendConstColumn appends a column holding the same cell in every
// row; used to tag scraped rows with their fetch period.
func (t *Table) AppendConstColumn(name string, cell Cell) {
	t.Columns = append(t.Columns, Column{Name: name, Numeric: cell.Number != nil})
	for i := range t.Data {
		t.Data[i] = append(t.Data[i], cell)
	}
}

// Headers returns the column names in order.
func (t *Table) Headers() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Records projects every row to CSV string records.
func (t *Table) Records() [][]string {
	records := make([][]string, len(t.Data))
	for i, row := range t.Data {
		record := make([]string, len(row))
		for j, cell := range row {
			record[j] = cell.String()
		}
		records[i] = record
	}
	return records
}

// Encode writes the table as JSON. The encoding is deterministic, so
// cache round trips are byte-identical.
func (t *Table) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("failed to encode table: %w", err)
	}
	return nil
}

// Decode reads a table previously written by Encode.
func Decode(r io.Reader) (*Table, error) {
	var t Table
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to decode table: %w", err)
	}
	return &t, nil
}
