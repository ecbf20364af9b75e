// Package transferencias extracts constitutional transfers (FPE,
// FPM, FUNDEB and related) from the RREO budget-balance annexes.
package transferencias

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ciciatech/projeto-bruno/internal/config"
	"github.com/ciciatech/projeto-bruno/internal/extract/siconfi"
)

// annexes carrying transfer revenue lines.
var annexes = []string{"RREO-Anexo 01", "RREO-Anexo 06"}

// transferTerms selects the revenue accounts that represent
// transfers. Matched case-insensitively against the account label.
var transferTerms = []string{
	"transfer",
	"fpe",
	"fpm",
	"fundeb",
	"fundef",
	"cota-parte",
	"cide",
	"royalties",
	"compensações financeiras",
}

// Extractor filters RREO annexes down to transfer lines.
type Extractor struct {
	siconfi *siconfi.Client
	logger  *slog.Logger
}

// New builds an Extractor on top of the SICONFI client.
func New(client *siconfi.Client, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{siconfi: client, logger: logger}
}

// isTransfer reports whether an account label names a transfer.
func isTransfer(conta string) bool {
	lower := strings.ToLower(conta)
	for _, term := range transferTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// CollectState gathers transfer lines for one state and year across
// both annexes and all six bimesters.
func (e *Extractor) CollectState(ctx context.Context, year int, ibge, uf string) []siconfi.Record {
	var out []siconfi.Record
	for _, anexo := range annexes {
		for period := 1; period <= 6; period++ {
			records := e.siconfi.CollectRREOAnexo(ctx, year, period, anexo, ibge, uf)
			for _, r := range records {
				if isTransfer(r.Conta) {
					out = append(out, r)
				}
			}
		}
	}
	return out
}

// CollectNortheast walks the configured years over all nine states.
func (e *Extractor) CollectNortheast(ctx context.Context, years []int) []siconfi.Record {
	var all []siconfi.Record
	for _, year := range years {
		for _, uf := range config.StateCodes {
			state := config.NortheastStates[uf]
			all = append(all, e.CollectState(ctx, year, state.IBGECode, uf)...)
		}
	}
	return all
}
