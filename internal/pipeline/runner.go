// Package pipeline orchestrates the collection modules sequentially
// and records the run metadata. A module failure degrades to a zero
// count; the run itself never aborts.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/ciciatech/projeto-bruno/internal/cache"
	"github.com/ciciatech/projeto-bruno/internal/config"
	"github.com/ciciatech/projeto-bruno/internal/etl"
	"github.com/ciciatech/projeto-bruno/internal/extract/bacen"
	"github.com/ciciatech/projeto-bruno/internal/extract/siconfi"
	"github.com/ciciatech/projeto-bruno/internal/extract/transferencias"
	"github.com/ciciatech/projeto-bruno/internal/extract/transparencia"
	"github.com/ciciatech/projeto-bruno/internal/fetch"
	"github.com/ciciatech/projeto-bruno/internal/scrape/siof"
	"github.com/ciciatech/projeto-bruno/internal/table"
)

// Module names, as selected on the command line.
const (
	ModuleBacen        = "bacen"
	ModuleRREO         = "siconfi_rreo"
	ModuleRGF          = "siconfi_rgf"
	ModuleDCA          = "siconfi_dca"
	ModuleTransfers    = "transferencias"
	ModuleBolsaFamilia = "bolsa_familia"
	ModuleSIOF         = "siof"
)

// AllModules is the default execution order.
var AllModules = []string{
	ModuleBacen,
	ModuleRREO,
	ModuleRGF,
	ModuleDCA,
	ModuleTransfers,
	ModuleBolsaFamilia,
	ModuleSIOF,
}

// Runner wires the extractors, the scraper and the normalizer.
type Runner struct {
	cfg    *config.Config
	paths  *config.Paths
	logger *slog.Logger

	bacen     *bacen.Client
	siconfi   *siconfi.Client
	portal    *transparencia.Client
	transfers *transferencias.Extractor
	siof      *siof.Collector
	norm      *etl.Normalizer
}

// NewRunner builds a Runner from configuration.
func NewRunner(cfg *config.Config, paths *config.Paths, logger *slog.Logger) (*Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := fetch.New(cfg.HTTP, fetch.WithLogger(logger))
	siconfiClient := siconfi.NewClient(httpClient, "", logger)

	store := cache.NewStore(paths.RawDir, logger)
	collector, err := siof.NewCollector(cfg.HTTP, store, siof.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return &Runner{
		cfg:       cfg,
		paths:     paths,
		logger:    logger,
		bacen:     bacen.NewClient(httpClient, "", logger),
		siconfi:   siconfiClient,
		portal:    transparencia.NewClient(httpClient, cfg.Portal, "", logger),
		transfers: transferencias.New(siconfiClient, logger),
		siof:      collector,
		norm:      etl.New(paths, logger),
	}, nil
}

// Run executes the selected modules in order and writes the
// run-metadata record. Returns the metadata for the caller's summary.
func (r *Runner) Run(ctx context.Context, modules []string) *RunMetadata {
	if len(modules) == 0 {
		modules = AllModules
	}

	r.logger.Info("pipeline starting",
		slog.Any("modules", modules),
		slog.String("period", r.cfg.Period.String()),
		slog.String("data_dir", r.paths.BaseDir))

	start := time.Now()
	meta := NewRunMetadata(r.cfg.Period.String(), modules)

	for _, module := range modules {
		count := r.runModule(ctx, module)
		meta.Counts[module] = count
		r.logger.Info("module finished",
			slog.String("module", module),
			slog.Int("records", count))
	}

	meta.Finish(start)
	if err := meta.Write(r.paths.MetadataPath()); err != nil {
		r.logger.Error("failed to write run metadata",
			slog.String("error", err.Error()))
	}

	r.logger.Info("pipeline finished",
		slog.Float64("duration_seconds", meta.DurationSeconds),
		slog.Any("counts", meta.Counts))
	return meta
}

func (r *Runner) runModule(ctx context.Context, module string) int {
	years := r.cfg.Period.Years()

	switch module {
	case ModuleBacen:
		start := time.Date(r.cfg.Period.StartYear, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(r.cfg.Period.EndYear, time.December, 31, 0, 0, 0, 0, time.UTC)
		obs := r.bacen.CollectAll(ctx, bacen.DefaultSeries, start, end)
		r.save(r.norm.EconomicIndicators(obs), "bacen.csv")
		return len(obs)

	case ModuleRREO:
		records := r.siconfi.CollectRREONortheast(ctx, years)
		r.saveRaw(r.norm.FiscalRecords(records), "rreo_raw.csv")
		r.save(r.norm.BudgetExecutionSummary(records), "rreo_resumo.csv")
		return len(records)

	case ModuleRGF:
		records := r.siconfi.CollectRGFNortheast(ctx, years)
		r.saveRaw(r.norm.FiscalRecords(records), "rgf_raw.csv")
		r.save(r.norm.FiscalManagementSummary(records), "rgf_resumo.csv")
		return len(records)

	case ModuleDCA:
		records := r.siconfi.CollectDCANortheast(ctx, years)
		r.saveRaw(r.norm.FiscalRecords(records), "dca_raw.csv")
		r.save(r.norm.BalanceSheetSummary(records), "dca_resumo.csv")
		return len(records)

	case ModuleTransfers:
		records := r.transfers.CollectNortheast(ctx, years)
		r.save(r.norm.ConstitutionalTransfers(records), "transferencias.csv")
		return len(records)

	case ModuleBolsaFamilia:
		if !r.portal.HasKey() {
			r.logger.Warn("bolsa família skipped: portal API key not configured")
			return 0
		}
		var payments []transparencia.Payment
		for _, year := range years {
			for month := 1; month <= 12; month++ {
				for _, uf := range config.StateCodes {
					payments = append(payments, r.portal.CollectBolsaFamilia(ctx, year, month, uf)...)
				}
			}
		}
		r.save(r.norm.TransferPayments(payments), "bolsa_familia.csv")
		return len(payments)

	case ModuleSIOF:
		tbl := r.siof.CollectYearEnd(ctx, r.cfg.Period, "101")
		normalized := r.norm.StateExecution(tbl)
		r.save(normalized, "siof_ce.csv")
		return normalized.NumRows()

	default:
		r.logger.Warn("unknown module ignored", slog.String("module", module))
		return 0
	}
}

func (r *Runner) saveRaw(tbl *table.Table, filename string) {
	if tbl.IsEmpty() {
		return
	}
	if err := r.norm.SaveRaw(tbl, filename); err != nil {
		r.logger.Error("failed to write raw dump",
			slog.String("file", filename),
			slog.String("error", err.Error()))
	}
}

func (r *Runner) save(tbl *table.Table, filename string) {
	if tbl.IsEmpty() {
		r.logger.Warn("dataset empty, snapshot not written",
			slog.String("file", filename))
		return
	}
	if err := r.norm.Save(tbl, filename); err != nil {
		r.logger.Error("failed to write snapshot",
			slog.String("file", filename),
			slog.String("error", err.Error()))
	}
}
