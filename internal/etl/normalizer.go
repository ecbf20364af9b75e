// Package etl owns the transformation from raw extractor output to
// the canonical snapshots the dashboard reads. Each dataset gets a
// pure filter plus the two shared steps: numeric coercion (null on
// failure, rows kept) and the state-name join from the fixed
// nine-state table. Output ordering is deterministic so re-running on
// unchanged input yields byte-identical snapshots.
package etl

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/ciciatech/projeto-bruno/internal/config"
	"github.com/ciciatech/projeto-bruno/internal/exporter"
	"github.com/ciciatech/projeto-bruno/internal/table"
)

// Normalizer builds and persists canonical snapshots.
type Normalizer struct {
	paths  *config.Paths
	csv    *exporter.CSVWriter
	logger *slog.Logger
}

// New builds a Normalizer.
func New(paths *config.Paths, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		paths:  paths,
		csv:    exporter.NewCSVWriter(logger),
		logger: logger,
	}
}

// Save writes a snapshot table to the processed directory. The write
// is atomic; a re-run overwrites the previous snapshot in one rename.
func (n *Normalizer) Save(tbl *table.Table, filename string) error {
	return n.csv.WriteCSV(n.paths.ProcessedPath(filename), exporter.WriteOptions{
		Headers:   tbl.Headers(),
		Records:   tbl.Records(),
		BOMPrefix: true,
	})
}

// SaveRaw writes an unfiltered dump to the raw directory, next to the
// scraper cache.
func (n *Normalizer) SaveRaw(tbl *table.Table, filename string) error {
	return n.csv.WriteCSV(n.paths.RawPath(filename), exporter.WriteOptions{
		Headers:   tbl.Headers(),
		Records:   tbl.Records(),
		BOMPrefix: true,
	})
}

// nullableNumber renders a nullable float as a cell.
func nullableNumber(v *float64) table.Cell {
	if v == nil {
		return table.NullCell()
	}
	return table.NumberCell(*v)
}

// stateNameCell joins the human-readable state name. Codes outside
// the nine-state table indicate upstream corruption and become null
// names; the row is retained.
func stateNameCell(uf string) table.Cell {
	name := config.StateName(uf)
	if name == "" {
		return table.NullCell()
	}
	return table.TextCell(name)
}

// sortTable orders rows by the named key columns ascending. Cells
// compare numerically when both are numbers, textually otherwise;
// nulls sort first.
func sortTable(tbl *table.Table, keys ...string) {
	idx := make([]int, 0, len(keys))
	for _, k := range keys {
		if i := tbl.ColumnIndex(k); i >= 0 {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(tbl.Data, func(a, b int) bool {
		for _, i := range idx {
			if c := compareCells(tbl.Data[a][i], tbl.Data[b][i]); c != 0 {
				return c < 0
			}
		}
		return false
	})
}

func compareCells(a, b table.Cell) int {
	switch {
	case a.IsNull() && b.IsNull():
		return 0
	case a.IsNull():
		return -1
	case b.IsNull():
		return 1
	}
	if a.Number != nil && b.Number != nil {
		switch {
		case *a.Number < *b.Number:
			return -1
		case *a.Number > *b.Number:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a.String(), b.String())
}

// coerceColumn forces the named column numeric, nulling cells that do
// not parse. Missing columns are ignored: report layouts drift across
// years.
func coerceColumn(tbl *table.Table, name string) {
	col := tbl.ColumnIndex(name)
	if col < 0 {
		return
	}
	tbl.Columns[col].Numeric = true
	for i := range tbl.Data {
		cell := tbl.Data[i][col]
		if cell.Number != nil {
			continue
		}
		text := strings.ReplaceAll(strings.TrimSpace(cell.Text), ",", "")
		if v, err := strconv.ParseFloat(text, 64); err == nil {
			tbl.Data[i][col] = table.NumberCell(v)
		} else {
			tbl.Data[i][col] = table.NullCell()
		}
	}
}
