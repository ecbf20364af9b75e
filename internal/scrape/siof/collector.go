// Package siof scrapes budget-execution reports from the SIOF-CE
// portal (SEPLAG/CE). The portal is a legacy ASP.NET WebForms
// application with no REST API: each report requires forging a
// session, extracting the hidden __VIEWSTATE token, replaying the
// search form post, locating the generated export file in the
// response and downloading it — all on the same cookie-bound session,
// because the token is rejected outside the session that issued it.
package siof

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http/cookiejar"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/ciciatech/projeto-bruno/internal/cache"
	"github.com/ciciatech/projeto-bruno/internal/config"
	"github.com/ciciatech/projeto-bruno/internal/sheet"
	"github.com/ciciatech/projeto-bruno/internal/table"
)

const (
	defaultBaseURL    = "https://planejamento.seplag.ce.gov.br/siofconsulta/Paginas/frm_consulta_execucao.aspx"
	defaultExportsURL = "https://planejamento.seplag.ce.gov.br/siofconsulta/Exports/"
)

// Reports maps the report codes the portal accepts to short dataset
// names. Only the subset the pipeline consumes is listed.
var Reports = map[string]string{
	"101": "secretaria",
	"102": "secretaria_fonte",
	"105": "secretaria_orgao_classificacao",
}

// artifactPattern locates the server-assigned export filename inside
// the script fragment the portal emits after generating a report.
var artifactPattern = regexp.MustCompile(`window\.open\(['"]\.\./Exports/(rel_[^'"]+)['"]`)

// Target identifies one unit of scrape work. Immutable once built.
type Target struct {
	Year   int
	Month  int
	Report string
}

// CacheKey is the on-disk identity of the target's raw table.
func (t Target) CacheKey() string {
	return fmt.Sprintf("siof_%d_%d_%s", t.Year, t.Month, t.Report)
}

func (t Target) String() string {
	return fmt.Sprintf("report %s %d/%02d", t.Report, t.Year, t.Month)
}

// Collector drives the GET→POST→GET replay sequence with per-target
// retries and a raw table cache. Collect never returns an error:
// exhausted retries degrade to the empty-table sentinel.
type Collector struct {
	http        *resty.Client
	store       *cache.Store
	baseURL     string
	exportsURL  string
	maxAttempts int
	retryDelay  time.Duration
	pause       time.Duration
	sleep       func(time.Duration)
	logger      *slog.Logger
}

// Option customizes a Collector.
type Option func(*Collector)

// WithEndpoints points the collector at alternative portal URLs;
// tests use this with httptest servers.
func WithEndpoints(baseURL, exportsURL string) Option {
	return func(c *Collector) {
		c.baseURL = baseURL
		c.exportsURL = exportsURL
	}
}

// WithSleep replaces the backoff sleep function.
func WithSleep(fn func(time.Duration)) Option {
	return func(c *Collector) { c.sleep = fn }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) { c.logger = logger }
}

// NewCollector builds a Collector. The underlying client carries a
// cookie jar so the session token stays bound to its session, and
// skips TLS verification because the portal's certificate chain is
// broken.
func NewCollector(cfg config.HTTPConfig, store *cache.Store, opts ...Option) (*Collector, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	client := resty.New().
		SetCookieJar(jar).
		SetTimeout(cfg.Timeout).
		SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})

	c := &Collector{
		http:        client,
		store:       store,
		baseURL:     defaultBaseURL,
		exportsURL:  defaultExportsURL,
		maxAttempts: cfg.MaxAttempts,
		retryDelay:  cfg.RetryDelay,
		pause:       cfg.RequestPause,
		sleep:       time.Sleep,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Collect fetches one report. The cache is checked first: a hit
// returns the persisted raw table with zero network calls. On a miss
// the full replay sequence runs under a bounded retry loop; any step
// failure restarts from the initial GET, since a stale token cannot
// be reused across sessions.
func (c *Collector) Collect(ctx context.Context, target Target) *table.Table {
	if tbl, ok := c.store.Get(target.CacheKey()); ok {
		c.logger.Info("siof cache hit, skipping download",
			slog.String("target", target.String()))
		return tbl
	}

	c.logger.Info("siof collecting report",
		slog.String("target", target.String()),
		slog.String("dataset", Reports[target.Report]))

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		tbl, err := c.replay(ctx, target)
		if err != nil {
			c.logger.Warn("siof attempt failed",
				slog.String("target", target.String()),
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", c.maxAttempts),
				slog.String("error", err.Error()))
			c.sleep(c.retryDelay * time.Duration(attempt))
			continue
		}

		if tbl.IsEmpty() {
			c.logger.Warn("siof report came back empty",
				slog.String("target", target.String()))
			return tbl
		}

		if err := c.store.Put(target.CacheKey(), tbl); err != nil {
			c.logger.Error("siof failed to persist cache entry",
				slog.String("target", target.String()),
				slog.String("error", err.Error()))
		}
		return tbl
	}

	c.logger.Error("siof giving up after all attempts",
		slog.String("target", target.String()),
		slog.Int("max_attempts", c.maxAttempts))
	return table.Empty()
}

// replay runs one full pass of the WebForms sequence. Every failure
// invalidates the whole pass: the caller restarts from a fresh GET.
func (c *Collector) replay(ctx context.Context, target Target) (*table.Table, error) {
	token, err := c.acquireToken(ctx)
	if err != nil {
		return nil, err
	}

	artifact, err := c.requestReport(ctx, target, token)
	if err != nil {
		return nil, err
	}

	content, err := c.download(ctx, artifact)
	if err != nil {
		return nil, err
	}

	return sheet.Parse(content, target.Year, target.Month, c.logger), nil
}

// acquireToken loads the form page and extracts the hidden
// __VIEWSTATE value. The token is single-use and only valid for the
// immediately following post on this session.
func (c *Collector) acquireToken(ctx context.Context) (string, error) {
	resp, err := c.http.R().SetContext(ctx).Get(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("form page request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("form page returned status %d", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return "", fmt.Errorf("form page unparseable: %w", err)
	}

	// The portal sets both attributes, but only the id survives some
	// page variants.
	token := doc.Find("input#__VIEWSTATE, input[name=__VIEWSTATE]").AttrOr("value", "")
	if token == "" {
		return "", fmt.Errorf("session token not present in form page")
	}
	return token, nil
}

// requestReport replays the search form post and scans the response
// for the generated export filename.
func (c *Collector) requestReport(ctx context.Context, target Target, token string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(formPayload(target, token)).
		Post(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("report request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("report request returned status %d", resp.StatusCode())
	}

	match := artifactPattern.FindSubmatch(resp.Body())
	if match == nil {
		return "", fmt.Errorf("generated file reference not present in response")
	}
	return string(match[1]), nil
}

// download fetches the export file. The reference is a one-time
// capability, not a stable identifier: it is consumed right away and
// never stored.
func (c *Collector) download(ctx context.Context, artifact string) ([]byte, error) {
	resp, err := c.http.R().SetContext(ctx).Get(c.exportsURL + artifact)
	if err != nil {
		return nil, fmt.Errorf("artifact download failed: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("artifact download returned status %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

// CollectYearEnd gathers the December accumulated report for every
// configured year, then probes the following year from December
// backwards and keeps the first month with data. Returns the
// consolidated table.
func (c *Collector) CollectYearEnd(ctx context.Context, period config.PeriodConfig, report string) *table.Table {
	var parts []*table.Table

	for _, year := range period.Years() {
		tbl := c.Collect(ctx, Target{Year: year, Month: 12, Report: report})
		if !tbl.IsEmpty() {
			parts = append(parts, tbl)
		}
		c.sleep(c.pause)
	}

	probe := period.EndYear + 1
	for month := 12; month >= 1; month-- {
		tbl := c.Collect(ctx, Target{Year: probe, Month: month, Report: report})
		if !tbl.IsEmpty() {
			parts = append(parts, tbl)
			c.logger.Info("siof found latest available month",
				slog.Int("year", probe),
				slog.Int("month", month))
			break
		}
		c.sleep(c.pause)
	}

	return table.Concat(parts...)
}
