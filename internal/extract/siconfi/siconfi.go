// Package siconfi collects fiscal reports (RREO, RGF, DCA) from the
// Tesouro Nacional SICONFI data lake.
package siconfi

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ciciatech/projeto-bruno/internal/config"
	"github.com/ciciatech/projeto-bruno/internal/fetch"
)

const defaultBaseURL = "https://apidatalake.tesouro.gov.br/ords/siconfi/tt"

// NullFloat is a nullable numeric value tolerant of the formats the
// data lake emits: JSON numbers, numeric strings, empty strings and
// nulls. Non-coercible input becomes null, never an error.
type NullFloat struct {
	Value float64
	Valid bool
}

// UnmarshalJSON implements lenient numeric coercion.
func (n *NullFloat) UnmarshalJSON(data []byte) error {
	n.Valid = false
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	n.Value = v
	n.Valid = true
	return nil
}

// Ptr returns the value as a nullable pointer.
func (n NullFloat) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// Record is one account line of a fiscal report, plus the UF the
// request was issued for.
type Record struct {
	Exercicio   int       `json:"exercicio"`
	Periodo     int       `json:"periodo"`
	Anexo       string    `json:"anexo"`
	Rotulo      string    `json:"rotulo"`
	Coluna      string    `json:"coluna"`
	CodConta    string    `json:"cod_conta"`
	Conta       string    `json:"conta"`
	Valor       NullFloat `json:"valor"`
	Populacao   NullFloat `json:"populacao"`
	Instituicao string    `json:"instituicao"`
	UF          string    `json:"-"`
}

type itemsEnvelope struct {
	Items []Record `json:"items"`
}

// Client reads the SICONFI endpoints through the shared retry client.
type Client struct {
	http    *fetch.Client
	baseURL string
	logger  *slog.Logger
}

// NewClient builds a Client. baseURL overrides production when
// non-empty (tests).
func NewClient(http *fetch.Client, baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{http: http, baseURL: baseURL, logger: logger}
}

// collect issues one items request. Missing or empty items is a valid
// "no data for this unit" outcome.
func (c *Client) collect(ctx context.Context, endpoint string, params map[string]string, uf string) []Record {
	body, err := c.http.Get(ctx, c.baseURL+endpoint, params, nil)
	if err != nil {
		return nil
	}

	var envelope itemsEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		c.logger.Error("siconfi returned non-JSON body",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return nil
	}

	for i := range envelope.Items {
		envelope.Items[i].UF = uf
	}
	return envelope.Items
}

// CollectRREO fetches one bimestral execution report (period 1–6).
func (c *Client) CollectRREO(ctx context.Context, year, period int, ibge, uf string) []Record {
	c.logger.Info("siconfi rreo",
		slog.String("uf", uf), slog.Int("year", year), slog.Int("period", period))
	return c.collect(ctx, "/rreo", map[string]string{
		"an_exercicio":          strconv.Itoa(year),
		"nr_periodo":            strconv.Itoa(period),
		"co_tipo_demonstrativo": "RREO",
		"id_ente":               ibge,
	}, uf)
}

// CollectRREOAnexo fetches one named annex of the bimestral report.
func (c *Client) CollectRREOAnexo(ctx context.Context, year, period int, anexo, ibge, uf string) []Record {
	c.logger.Info("siconfi rreo anexo",
		slog.String("uf", uf), slog.Int("year", year),
		slog.Int("period", period), slog.String("anexo", anexo))
	return c.collect(ctx, "/rreo", map[string]string{
		"an_exercicio":          strconv.Itoa(year),
		"nr_periodo":            strconv.Itoa(period),
		"co_tipo_demonstrativo": "RREO",
		"no_anexo":              anexo,
		"id_ente":               ibge,
	}, uf)
}

// CollectRGF fetches one quadrimestral fiscal-management report
// (period 1–3) for the executive branch.
func (c *Client) CollectRGF(ctx context.Context, year, period int, ibge, uf string) []Record {
	c.logger.Info("siconfi rgf",
		slog.String("uf", uf), slog.Int("year", year), slog.Int("period", period))
	return c.collect(ctx, "/rgf", map[string]string{
		"an_exercicio":          strconv.Itoa(year),
		"nr_periodo":            strconv.Itoa(period),
		"in_periodicidade":      "Q",
		"co_tipo_demonstrativo": "RGF",
		"id_ente":               ibge,
		"co_poder":              "E",
	}, uf)
}

// CollectDCA fetches the annual statement of accounts.
func (c *Client) CollectDCA(ctx context.Context, year int, ibge, uf string) []Record {
	c.logger.Info("siconfi dca", slog.String("uf", uf), slog.Int("year", year))
	return c.collect(ctx, "/dca", map[string]string{
		"an_exercicio": strconv.Itoa(year),
		"id_ente":      ibge,
	}, uf)
}

// CollectRREONortheast walks years × states × the six bimesters.
func (c *Client) CollectRREONortheast(ctx context.Context, years []int) []Record {
	var all []Record
	for _, year := range years {
		for _, uf := range config.StateCodes {
			state := config.NortheastStates[uf]
			for period := 1; period <= 6; period++ {
				all = append(all, c.CollectRREO(ctx, year, period, state.IBGECode, uf)...)
				c.http.Pause()
			}
		}
	}
	return all
}

// CollectRGFNortheast walks years × states × the three quadrimesters.
func (c *Client) CollectRGFNortheast(ctx context.Context, years []int) []Record {
	var all []Record
	for _, year := range years {
		for _, uf := range config.StateCodes {
			state := config.NortheastStates[uf]
			for period := 1; period <= 3; period++ {
				all = append(all, c.CollectRGF(ctx, year, period, state.IBGECode, uf)...)
				c.http.Pause()
			}
		}
	}
	return all
}

// CollectDCANortheast walks years × states.
func (c *Client) CollectDCANortheast(ctx context.Context, years []int) []Record {
	var all []Record
	for _, year := range years {
		for _, uf := range config.StateCodes {
			state := config.NortheastStates[uf]
			all = append(all, c.CollectDCA(ctx, year, state.IBGECode, uf)...)
			c.http.Pause()
		}
	}
	return all
}
