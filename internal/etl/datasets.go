package etl

import (
	"sort"
	"strings"

	"github.com/ciciatech/projeto-bruno/internal/extract/bacen"
	"github.com/ciciatech/projeto-bruno/internal/extract/siconfi"
	"github.com/ciciatech/projeto-bruno/internal/extract/transparencia"
	"github.com/ciciatech/projeto-bruno/internal/table"
)

// untilBimester narrows execution reports to the accumulated column.
const untilBimester = "Até o Bimestre"

// rreoAccounts is the budget-execution allowlist: the revenue and
// expense aggregates the dashboard charts.
var rreoAccounts = map[string]bool{
	"ReceitasExcetoIntraOrcamentarias": true,
	"ReceitasCorrentes":                true,
	"ReceitaTributaria":                true,
	"TransferenciasCorrentes":          true,
	"ReceitasDeCapital":                true,
	"DespesasExcetoIntraOrcamentarias": true,
	"DespesasCorrentes":                true,
	"PessoalEEncargos":                 true,
	"JurosEEncargos":                   true,
	"OutrasDespesasCorrentes":          true,
	"DespesasDeCapital":                true,
	"Investimentos":                    true,
}

// rgfAccounts is the fiscal-management allowlist.
var rgfAccounts = map[string]bool{
	"DespesaComPessoalBruta":                     true,
	"DespesaComPessoalLiquida":                   true,
	"DespesaComPessoalAtivoBruta":                true,
	"DespesaComPessoalInativoEPensionistasBruta": true,
	"ReceitaCorrenteLiquidaLimiteLegal":          true,
	"DespesaComPessoalTotal":                     true,
	"DividaConsolidada":                          true,
	"DividaConsolidadaLiquida":                   true,
	"DividaContratual":                           true,
}

// dcaAccounts maps balance-sheet account codes to summary labels.
var dcaAccounts = map[string]string{
	"P1.0.0.0.0.00.00": "Ativo Total",
	"P1.1.0.0.0.00.00": "Ativo Circulante",
	"P1.2.0.0.0.00.00": "Ativo Não Circulante",
	"P2.0.0.0.0.00.00": "Passivo Total",
	"P2.1.0.0.0.00.00": "Passivo Circulante",
	"P2.2.0.0.0.00.00": "Passivo Não Circulante",
	"P2.3.0.0.0.00.00": "Patrimônio Líquido",
}

// siofValueColumns are the spreadsheet columns forced numeric in the
// state-execution snapshot.
var siofValueColumns = []string{"Lei", "Lei + Cred.", "Empenhado", "Pago", "% Emp.", "% Pago"}

// EconomicIndicators pivots the SGS observations into one wide table:
// a date column plus one numeric column per series, dates ascending.
func (n *Normalizer) EconomicIndicators(obs []bacen.Observation) *table.Table {
	if len(obs) == 0 {
		return table.Empty()
	}

	seriesSet := map[string]bool{}
	byDate := map[string]map[string]*float64{}
	for _, o := range obs {
		date := o.Date.Format("2006-01-02")
		seriesSet[o.SeriesName] = true
		if byDate[date] == nil {
			byDate[date] = map[string]*float64{}
		}
		byDate[date][o.SeriesName] = o.Value
	}

	series := make([]string, 0, len(seriesSet))
	for name := range seriesSet {
		series = append(series, name)
	}
	sort.Strings(series)

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	tbl := table.New(append([]string{"data"}, series...)...)
	for i := range series {
		tbl.Columns[i+1].Numeric = true
	}
	for _, date := range dates {
		cells := make([]table.Cell, 0, len(series)+1)
		cells = append(cells, table.TextCell(date))
		for _, name := range series {
			cells = append(cells, nullableNumber(byDate[date][name]))
		}
		tbl.AppendRow(cells)
	}
	return tbl
}

// TransferPayments flattens transfer-program payments into the
// canonical per-municipality table.
func (n *Normalizer) TransferPayments(payments []transparencia.Payment) *table.Table {
	tbl := table.New("ano", "mes", "uf", "uf_nome", "codigo_ibge", "municipio", "valor", "beneficiados")
	for _, i := range []int{0, 1, 6, 7} {
		tbl.Columns[i].Numeric = true
	}
	for _, p := range payments {
		tbl.AppendRow([]table.Cell{
			table.NumberCell(float64(p.Year)),
			table.NumberCell(float64(p.Month)),
			table.TextCell(p.UF),
			stateNameCell(p.UF),
			table.TextCell(p.Municipio.CodigoIBGE),
			table.TextCell(p.Municipio.Nome),
			table.NumberCell(p.Valor),
			table.NumberCell(float64(p.Favorecidos)),
		})
	}
	sortTable(tbl, "ano", "mes", "uf", "municipio")
	return tbl
}

// fiscalRow is the shared projection of a SICONFI record.
func fiscalRow(r siconfi.Record, withPeriod, withAnexo, withColuna bool) []table.Cell {
	cells := []table.Cell{table.NumberCell(float64(r.Exercicio))}
	if withPeriod {
		cells = append(cells, table.NumberCell(float64(r.Periodo)))
	}
	cells = append(cells, table.TextCell(r.UF), stateNameCell(r.UF))
	if withAnexo {
		cells = append(cells, table.TextCell(r.Anexo))
	}
	cells = append(cells, table.TextCell(r.CodConta), table.TextCell(r.Conta))
	if withColuna {
		cells = append(cells, table.TextCell(r.Coluna))
	}
	cells = append(cells, nullableNumber(r.Valor.Ptr()), nullableNumber(r.Populacao.Ptr()))
	return cells
}

// FiscalRecords projects every SICONFI record unfiltered; the raw dump
// written alongside each summary so filter changes can be replayed
// without re-collecting.
func (n *Normalizer) FiscalRecords(records []siconfi.Record) *table.Table {
	tbl := table.New("exercicio", "periodo", "uf", "uf_nome", "anexo", "cod_conta", "conta", "coluna", "valor", "populacao")
	for _, i := range []int{0, 1, 8, 9} {
		tbl.Columns[i].Numeric = true
	}
	for _, r := range records {
		tbl.AppendRow(fiscalRow(r, true, true, true))
	}
	sortTable(tbl, "exercicio", "periodo", "uf")
	return tbl
}

// BudgetExecutionSummary filters the RREO down to the allow-listed
// accounts of the accumulated budget-balance annex.
func (n *Normalizer) BudgetExecutionSummary(records []siconfi.Record) *table.Table {
	tbl := table.New("exercicio", "periodo", "uf", "uf_nome", "cod_conta", "conta", "valor", "populacao")
	for _, i := range []int{0, 1, 6, 7} {
		tbl.Columns[i].Numeric = true
	}
	for _, r := range records {
		if !rreoAccounts[r.CodConta] ||
			!strings.Contains(r.Coluna, untilBimester) ||
			r.Anexo != "RREO-Anexo 01" {
			continue
		}
		tbl.AppendRow(fiscalRow(r, true, false, false))
	}
	sortTable(tbl, "exercicio", "periodo", "uf")
	return tbl
}

// FiscalManagementSummary filters the RGF down to the personnel,
// revenue-ceiling and debt accounts of annexes 01 and 02.
func (n *Normalizer) FiscalManagementSummary(records []siconfi.Record) *table.Table {
	tbl := table.New("exercicio", "periodo", "uf", "uf_nome", "anexo", "cod_conta", "conta", "coluna", "valor", "populacao")
	for _, i := range []int{0, 1, 8, 9} {
		tbl.Columns[i].Numeric = true
	}
	for _, r := range records {
		if !rgfAccounts[r.CodConta] ||
			(r.Anexo != "RGF-Anexo 01" && r.Anexo != "RGF-Anexo 02") {
			continue
		}
		tbl.AppendRow(fiscalRow(r, true, true, true))
	}
	sortTable(tbl, "exercicio", "periodo", "uf")
	return tbl
}

// BalanceSheetSummary filters the DCA down to the seven top-level
// balance-sheet accounts and joins the summary label.
func (n *Normalizer) BalanceSheetSummary(records []siconfi.Record) *table.Table {
	tbl := table.New("exercicio", "uf", "uf_nome", "cod_conta", "conta", "conta_resumo", "valor", "populacao")
	for _, i := range []int{0, 6, 7} {
		tbl.Columns[i].Numeric = true
	}
	for _, r := range records {
		label, ok := dcaAccounts[r.CodConta]
		if !ok || r.Anexo != "DCA-Anexo I-AB" {
			continue
		}
		tbl.AppendRow([]table.Cell{
			table.NumberCell(float64(r.Exercicio)),
			table.TextCell(r.UF),
			stateNameCell(r.UF),
			table.TextCell(r.CodConta),
			table.TextCell(r.Conta),
			table.TextCell(label),
			nullableNumber(r.Valor.Ptr()),
			nullableNumber(r.Populacao.Ptr()),
		})
	}
	sortTable(tbl, "exercicio", "uf")
	return tbl
}

// ConstitutionalTransfers keeps the accumulated column of the
// transfer lines already selected by the extractor.
func (n *Normalizer) ConstitutionalTransfers(records []siconfi.Record) *table.Table {
	tbl := table.New("exercicio", "periodo", "uf", "uf_nome", "anexo", "cod_conta", "conta", "coluna", "valor", "populacao")
	for _, i := range []int{0, 1, 8, 9} {
		tbl.Columns[i].Numeric = true
	}
	for _, r := range records {
		if !strings.Contains(r.Coluna, untilBimester) {
			continue
		}
		tbl.AppendRow(fiscalRow(r, true, true, true))
	}
	sortTable(tbl, "exercicio", "periodo", "uf")
	return tbl
}

// StateExecution normalizes the consolidated SIOF table: the value
// columns are forced numeric (null on coercion failure) and rows are
// ordered by year and department description.
func (n *Normalizer) StateExecution(tbl *table.Table) *table.Table {
	if tbl.IsEmpty() {
		return table.Empty()
	}
	for _, col := range siofValueColumns {
		coerceColumn(tbl, col)
	}
	sortTable(tbl, "ano", "Descrição")
	return tbl
}
