// Package transparencia collects federal transfer payments from the
// Portal da Transparência REST API. The API is paginated (15 records
// per page) and requires a registered key sent in the
// chave-api-dados header; without one the extractor skips gracefully.
package transparencia

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ciciatech/projeto-bruno/internal/config"
	"github.com/ciciatech/projeto-bruno/internal/fetch"
)

const (
	defaultBaseURL = "https://api.portaldatransparencia.gov.br/api-de-dados"

	// pageSize is the server's fixed page length; a shorter page
	// means the last one.
	pageSize = 15

	apiKeyHeader = "chave-api-dados"
)

// Payment is one transfer-program payment record, tagged with the
// request's UF and period.
type Payment struct {
	ID          int64     `json:"id"`
	Reference   string    `json:"dataReferencia"`
	Municipio   Municipio `json:"municipio"`
	Valor       float64   `json:"valor"`
	Favorecidos int64     `json:"quantidadeBeneficiados"`
	UF          string    `json:"-"`
	Year        int       `json:"-"`
	Month       int       `json:"-"`
}

// Municipio identifies the paying municipality.
type Municipio struct {
	CodigoIBGE string `json:"codigoIBGE"`
	Nome       string `json:"nomeIBGE"`
}

// Transfer is one federal transfer record by UF.
type Transfer struct {
	Ano      int     `json:"ano"`
	Mes      int     `json:"mes"`
	Valor    float64 `json:"valor"`
	Tipo     string  `json:"tipoTransferencia"`
	Programa string  `json:"programa"`
	UF       string  `json:"-"`
}

// Client reads the portal API. A zero-value APIKey makes every
// operation return empty with a warning, issuing no requests.
type Client struct {
	http    *fetch.Client
	baseURL string
	apiKey  string
	logger  *slog.Logger
}

// NewClient builds a Client. baseURL overrides production when
// non-empty (tests).
func NewClient(http *fetch.Client, cfg config.PortalConfig, baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.APIKey == "" {
		logger.Warn("portal da transparência: no API key configured, module will be skipped")
	}
	return &Client{http: http, baseURL: baseURL, apiKey: cfg.APIKey, logger: logger}
}

// HasKey reports whether the client is usable.
func (c *Client) HasKey() bool { return c.apiKey != "" }

// pages walks an endpoint page by page until a short page arrives,
// returning the raw JSON of every record.
func (c *Client) pages(ctx context.Context, endpoint string, params map[string]string) []json.RawMessage {
	headers := map[string]string{apiKeyHeader: c.apiKey}
	var all []json.RawMessage

	for page := 1; ; page++ {
		params["pagina"] = strconv.Itoa(page)
		body, err := c.http.Get(ctx, c.baseURL+endpoint, params, headers)
		if err != nil {
			break
		}

		var records []json.RawMessage
		if err := json.Unmarshal(body, &records); err != nil {
			c.logger.Error("portal returned non-JSON page",
				slog.String("endpoint", endpoint),
				slog.Int("page", page),
				slog.String("error", err.Error()))
			break
		}
		if len(records) == 0 {
			break
		}

		all = append(all, records...)
		if len(records) < pageSize {
			break
		}
		c.http.Pause()
	}
	return all
}

// CollectBolsaFamilia fetches transfer-program payments by
// municipality for one state and month.
func (c *Client) CollectBolsaFamilia(ctx context.Context, year, month int, uf string) []Payment {
	if !c.HasKey() {
		c.logger.Warn("portal API key required, skipping bolsa família",
			slog.String("uf", uf))
		return nil
	}

	state, ok := config.NortheastStates[uf]
	if !ok {
		c.logger.Warn("unknown UF requested", slog.String("uf", uf))
		return nil
	}

	raw := c.pages(ctx, "/bolsa-familia-por-municipio", map[string]string{
		"mesAno":     fmt.Sprintf("%04d%02d", year, month),
		"codigoIbge": state.IBGECode,
	})

	payments := make([]Payment, 0, len(raw))
	for _, r := range raw {
		var p Payment
		if err := json.Unmarshal(r, &p); err != nil {
			continue
		}
		p.UF = uf
		p.Year = year
		p.Month = month
		payments = append(payments, p)
	}
	return payments
}

// CollectTransfers fetches all federal transfers for one state and
// month.
func (c *Client) CollectTransfers(ctx context.Context, year, month int, uf string) []Transfer {
	if !c.HasKey() {
		return nil
	}

	state, ok := config.NortheastStates[uf]
	if !ok {
		return nil
	}

	raw := c.pages(ctx, "/transferencias", map[string]string{
		"mesAno":   fmt.Sprintf("%04d%02d", year, month),
		"codigoUF": state.IBGECode,
	})

	transfers := make([]Transfer, 0, len(raw))
	for _, r := range raw {
		var t Transfer
		if err := json.Unmarshal(r, &t); err != nil {
			continue
		}
		t.UF = uf
		transfers = append(transfers, t)
	}
	return transfers
}
