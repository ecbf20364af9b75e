// Package http exposes the processed snapshots to the dashboard as a
// read-only JSON API.
package http

import (
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ciciatech/projeto-bruno/internal/config"
	"github.com/ciciatech/projeto-bruno/internal/pipeline"
)

// DataHandler serves the canonical snapshots and the latest run
// metadata.
type DataHandler struct {
	paths    *config.Paths
	logger   *slog.Logger
	registry *prometheus.Registry
	requests *prometheus.CounterVec
}

// NewDataHandler creates the handler with its own metrics registry.
func NewDataHandler(paths *config.Paths, logger *slog.Logger) *DataHandler {
	if logger == nil {
		logger = slog.Default()
	}
	registry := prometheus.NewRegistry()
	return &DataHandler{
		paths:    paths,
		logger:   logger.With(slog.String("component", "data_handler")),
		registry: registry,
		requests: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_requests_total",
			Help: "Dashboard API requests by route and status.",
		}, []string{"route", "status"}),
	}
}

// Router assembles the dashboard API.
func (h *DataHandler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(StructuredLogger(h.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/datasets", h.ListDatasets)
		r.Get("/datasets/{name}", h.GetDataset)
		r.Get("/runs/latest", h.LatestRun)
	})
	return r
}

// Health reports liveness.
func (h *DataHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.requests.WithLabelValues("healthz", "200").Inc()
	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// ListDatasets lists the snapshot names available under the processed
// directory.
func (h *DataHandler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(h.paths.ProcessedDir)
	if err != nil {
		h.requests.WithLabelValues("datasets", "200").Inc()
		render.JSON(w, r, []string{})
		return
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".csv") {
			names = append(names, strings.TrimSuffix(e.Name(), ".csv"))
		}
	}
	sort.Strings(names)

	h.requests.WithLabelValues("datasets", "200").Inc()
	render.JSON(w, r, names)
}

// DatasetResponse is one snapshot rendered for the dashboard.
type DatasetResponse struct {
	Name    string     `json:"name"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// GetDataset streams one snapshot as JSON.
func (h *DataHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || strings.ContainsAny(name, "/\\.") {
		h.requests.WithLabelValues("dataset", "400").Inc()
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "invalid dataset name"})
		return
	}

	columns, rows, err := readSnapshot(h.paths.ProcessedPath(name + ".csv"))
	if err != nil {
		h.requests.WithLabelValues("dataset", "404").Inc()
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": "dataset not found"})
		return
	}

	h.requests.WithLabelValues("dataset", "200").Inc()
	render.JSON(w, r, DatasetResponse{Name: name, Columns: columns, Rows: rows})
}

// LatestRun returns the metadata record of the last pipeline run.
func (h *DataHandler) LatestRun(w http.ResponseWriter, r *http.Request) {
	meta, err := pipeline.Read(h.paths.MetadataPath())
	if err != nil {
		h.requests.WithLabelValues("runs", "404").Inc()
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": "no run recorded yet"})
		return
	}
	h.requests.WithLabelValues("runs", "200").Inc()
	render.JSON(w, r, meta)
}

// readSnapshot loads a CSV snapshot, tolerating the UTF-8 BOM the
// exporter writes for spreadsheet software.
func readSnapshot(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	reader := csv.NewReader(stripBOM(f))
	header, err := reader.Read()
	if err != nil {
		return nil, nil, err
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, record)
	}
	return header, rows, nil
}

type bomReader struct {
	r       io.Reader
	skipped bool
}

func stripBOM(r io.Reader) io.Reader { return &bomReader{r: r} }

func (b *bomReader) Read(p []byte) (int, error) {
	if !b.skipped {
		b.skipped = true
		var bom [3]byte
		n, err := io.ReadFull(b.r, bom[:])
		if err != nil && n == 0 {
			return 0, err
		}
		if n == 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
			return b.r.Read(p)
		}
		copied := copy(p, bom[:n])
		return copied, nil
	}
	return b.r.Read(p)
}
