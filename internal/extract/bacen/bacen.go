// Package bacen collects economic time series from the Banco Central
// SGS API.
package bacen

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ciciatech/projeto-bruno/internal/fetch"
)

const defaultBaseURL = "https://api.bcb.gov.br/dados/serie/bcdata.sgs.%d/dados"

// Series pairs an SGS series code with the dataset name it feeds.
type Series struct {
	Code int
	Name string
}

// DefaultSeries lists the indicators the pipeline tracks. Slice order
// is request order, kept stable for reproducible runs.
var DefaultSeries = []Series{
	{25389, "IBCR_NE_ajuste_sazonal"},
	{14084, "credito_PF_nordeste"},
	{14089, "credito_PJ_nordeste"},
	{14079, "credito_total_nordeste"},
	{4189, "selic_mensal"},
	{433, "ipca_mensal"},
	{22109, "pib_trimestral_indice"},
	{21084, "inadimplencia_PF"},
	{21085, "inadimplencia_PJ"},
	{20539, "credito_PF_brasil"},
	{20541, "credito_PJ_brasil"},
}

// Observation is one dated value of one series. Value is nil when the
// source cell did not coerce to a number.
type Observation struct {
	Date       time.Time
	Value      *float64
	SeriesCode int
	SeriesName string
}

// Client reads the SGS API through the shared retry client.
type Client struct {
	http    *fetch.Client
	baseURL string
	logger  *slog.Logger
}

// NewClient builds a Client. baseURL overrides the production API
// when non-empty (tests).
func NewClient(http *fetch.Client, baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{http: http, baseURL: baseURL, logger: logger}
}

// sgsPoint is the wire format: dates as DD/MM/YYYY, values as decimal
// strings.
type sgsPoint struct {
	Data  string `json:"data"`
	Valor string `json:"valor"`
}

// CollectSeries fetches one series inside [start, end]. A terminal
// fetch failure or an unparseable body degrades to an empty slice.
func (c *Client) CollectSeries(ctx context.Context, series Series, start, end time.Time) []Observation {
	url := fmt.Sprintf(c.baseURL, series.Code)
	params := map[string]string{
		"dataInicial": start.Format("02/01/2006"),
		"dataFinal":   end.Format("02/01/2006"),
	}

	c.logger.Info("bacen collecting series",
		slog.Int("code", series.Code),
		slog.String("name", series.Name))

	body, err := c.http.Get(ctx, url, params, nil)
	if err != nil {
		c.logger.Error("bacen series failed",
			slog.Int("code", series.Code),
			slog.String("error", err.Error()))
		return nil
	}

	var points []sgsPoint
	if err := json.Unmarshal(body, &points); err != nil {
		c.logger.Error("bacen series returned non-JSON body",
			slog.Int("code", series.Code),
			slog.String("error", err.Error()))
		return nil
	}
	if len(points) == 0 {
		c.logger.Warn("bacen series came back empty", slog.Int("code", series.Code))
		return nil
	}

	obs := make([]Observation, 0, len(points))
	for _, p := range points {
		date, err := time.Parse("02/01/2006", p.Data)
		if err != nil {
			c.logger.Warn("bacen observation has invalid date, skipping",
				slog.Int("code", series.Code),
				slog.String("date", p.Data))
			continue
		}
		o := Observation{Date: date, SeriesCode: series.Code, SeriesName: series.Name}
		if v, err := strconv.ParseFloat(strings.TrimSpace(p.Valor), 64); err == nil {
			o.Value = &v
		}
		obs = append(obs, o)
	}
	return obs
}

// CollectAll walks the series list sequentially with the configured
// pause between requests and concatenates the results.
func (c *Client) CollectAll(ctx context.Context, series []Series, start, end time.Time) []Observation {
	var all []Observation
	for _, s := range series {
		all = append(all, c.CollectSeries(ctx, s, start, end)...)
		c.http.Pause()
	}
	return all
}
