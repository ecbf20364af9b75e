// Package sheet turns raw SIOF spreadsheet bytes into a raw table.
// The exported files have no fixed layout: a variable number of banner
// rows precede an unlabeled header, and aggregate "TOTAL" rows are
// interleaved with data. Everything here degrades to the empty-table
// sentinel instead of failing.
package sheet

import (
	"bytes"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ciciatech/projeto-bruno/internal/table"
)

// headerMarkers identify the true header row: the first row whose
// cells mention the code or description columns, in either accented
// or plain spelling.
var headerMarkers = []string{"descrição", "descricao", "código", "codigo"}

// Parse reads spreadsheet bytes exported by the SIOF portal and
// returns a cleaned raw table tagged with the fetch period. A sheet
// with no recognizable header, or one where no data row survives
// aggregate exclusion, yields the empty-table sentinel.
func Parse(content []byte, year, month int, logger *slog.Logger) *table.Table {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		logger.Warn("spreadsheet unreadable",
			slog.Int("year", year),
			slog.Int("month", month),
			slog.String("error", err.Error()))
		return table.Empty()
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return table.Empty()
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil || len(rows) == 0 {
		logger.Warn("spreadsheet has no rows",
			slog.Int("year", year),
			slog.Int("month", month))
		return table.Empty()
	}

	headerRow := findHeaderRow(rows)
	if headerRow < 0 {
		logger.Warn("header row not found in spreadsheet",
			slog.Int("year", year),
			slog.Int("month", month))
		return table.Empty()
	}

	names := make([]string, len(rows[headerRow]))
	for i, cell := range rows[headerRow] {
		names[i] = strings.TrimSpace(cell)
	}

	codeCol := findCodeColumn(names)

	// Collect surviving data rows, padded to the header width.
	var data [][]string
	for _, row := range rows[headerRow+1:] {
		padded := make([]string, len(names))
		copy(padded, row)
		if codeCol >= 0 && isAggregateRow(padded[codeCol]) {
			continue
		}
		data = append(data, padded)
	}
	if len(data) == 0 {
		return table.Empty()
	}

	tbl := buildTyped(names, data, codeCol)
	tbl.AppendConstColumn("ano", table.NumberCell(float64(year)))
	tbl.AppendConstColumn("mes", table.NumberCell(float64(month)))
	return tbl
}

func findHeaderRow(rows [][]string) int {
	for i, row := range rows {
		for _, cell := range row {
			lower := strings.ToLower(cell)
			for _, marker := range headerMarkers {
				if strings.Contains(lower, marker) {
					return i
				}
			}
		}
	}
	return -1
}

// findCodeColumn returns the first column whose name contains the
// code substring ("digo" covers Código and Codigo), or -1.
func findCodeColumn(names []string) int {
	for i, name := range names {
		if strings.Contains(strings.ToLower(name), "digo") {
			return i
		}
	}
	return -1
}

// isAggregateRow marks summary rows: an empty code cell or one whose
// uppercase text mentions TOTAL.
func isAggregateRow(codeCell string) bool {
	trimmed := strings.TrimSpace(codeCell)
	return trimmed == "" || strings.Contains(strings.ToUpper(trimmed), "TOTAL")
}

// buildTyped infers the column types and materializes the table.
// The code column and description columns are forced text; any other
// column becomes numeric when strictly more than half of its non-null
// cells coerce, with the rest nulled out.
func buildTyped(names []string, data [][]string, codeCol int) *table.Table {
	tbl := table.New(names...)

	numeric := make([]bool, len(names))
	for col := range names {
		if col == codeCol || strings.Contains(strings.ToLower(names[col]), "descri") {
			continue
		}
		nonNull, coerced := 0, 0
		for _, row := range data {
			cell := strings.TrimSpace(row[col])
			if cell == "" {
				continue
			}
			nonNull++
			if _, ok := parseNumber(cell); ok {
				coerced++
			}
		}
		numeric[col] = nonNull > 0 && float64(coerced) > 0.5*float64(nonNull)
		tbl.Columns[col].Numeric = numeric[col]
	}

	for _, row := range data {
		cells := make([]table.Cell, len(names))
		for col, raw := range row {
			text := strings.TrimSpace(raw)
			switch {
			case text == "":
				cells[col] = table.NullCell()
			case numeric[col]:
				if n, ok := parseNumber(text); ok {
					cells[col] = table.NumberCell(n)
				} else {
					cells[col] = table.NullCell()
				}
			default:
				cells[col] = table.TextCell(text)
			}
		}
		tbl.AppendRow(cells)
	}
	return tbl
}

// parseNumber coerces a cell to float64. Exported SIOF sheets use dot
// decimals; thousands separators are stripped.
func parseNumber(s string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if cleaned == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
