package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/KaramelBytes/insights-explorer/internal/analysis"
	"github.com/KaramelBytes/insights-explorer/internal/charts"
	"github.com/KaramelBytes/insights-explorer/internal/clean"
	"github.com/KaramelBytes/insights-explorer/internal/insights"
	"github.com/KaramelBytes/insights-explorer/internal/parser"
	"github.com/KaramelBytes/insights-explorer/internal/table"
)

// multipart parts above this size spill to disk
const formMemory = 8 << 20

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.log.Error().Err(err).Msg("marshal response failed")
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.log.Error().Err(err).Str("template", name).Msg("render page failed")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) dataset(w http.ResponseWriter, r *http.Request) (*Dataset, bool) {
	ds, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "dataset not found", http.StatusNotFound)
		return nil, false
	}
	return ds, true
}

// working returns the table the view is computed from: as loaded, or with incomplete rows
// dropped when the request asks for it.
func working(ds *Dataset, r *http.Request) (*table.Table, bool) {
	if r.URL.Query().Get("dropna") == "1" {
		t, _ := clean.DropMissing(ds.Table)
		return t, true
	}
	return ds.Table, false
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "datasets": s.store.Len()})
}

type indexView struct {
	Datasets []*Dataset
	MaxMB    int64
	Error    string
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.render(w, "index.html", indexView{Datasets: s.store.List(), MaxMB: s.opt.MaxUploadBytes >> 20})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.opt.MaxUploadBytes {
		http.Error(w, fmt.Sprintf("upload exceeds %d MB", s.opt.MaxUploadBytes>>20), http.StatusRequestEntityTooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.opt.MaxUploadBytes)
	if err := r.ParseMultipartForm(formMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, fmt.Sprintf("upload exceeds %d MB", s.opt.MaxUploadBytes>>20), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "bad upload: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()
	f, hdr, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "bad upload: missing file field", http.StatusBadRequest)
		return
	}
	defer f.Close()
	if !parser.Supported(hdr.Filename) {
		http.Error(w, fmt.Sprintf("unsupported file type %q (use .csv, .tsv, .txt or .xlsx)", hdr.Filename), http.StatusBadRequest)
		return
	}
	t, err := parser.Load(hdr.Filename, f, s.opt.Load)
	if err != nil {
		s.log.Warn().Err(err).Str("file", hdr.Filename).Msg("load upload failed")
		http.Error(w, "could not read table: "+err.Error(), http.StatusBadRequest)
		return
	}
	ds, evicted := s.store.Put(hdr.Filename, t)
	rows, cols := t.Shape()
	s.log.Info().Str("id", ds.ID).Str("file", hdr.Filename).Int("rows", rows).Int("cols", cols).Msg("dataset uploaded")
	for _, id := range evicted {
		s.log.Info().Str("id", id).Msg("dataset evicted")
	}
	http.Redirect(w, r, "/datasets/"+ds.ID, http.StatusSeeOther)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.store.Delete(id) {
		http.Error(w, "dataset not found", http.StatusNotFound)
		return
	}
	s.log.Info().Str("id", id).Msg("dataset deleted")
	w.WriteHeader(http.StatusNoContent)
}

type columnView struct {
	Name    string
	Kind    string
	Missing int
}

type datasetView struct {
	ID         string
	Name       string
	Rows       int
	Cols       int
	LoadedRows int
	Dropped    int
	DropNA     bool
	Columns    []columnView
	Missing    []clean.ColumnMissing
	AnyMissing bool
	Header     []string
	Preview    [][]string
	Insights   []insights.Line
	Warnings   []string

	NumericCols     []string
	CategoricalCols []string
	HistColumn      string
	CatColumn       string
	HasCorrelation  bool
	HasTrend        bool
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	rep := analysis.Run(ds.Table, analysis.Options{
		SampleRows:  s.opt.PreviewRows,
		DropMissing: r.URL.Query().Get("dropna") == "1",
	})
	t, dropna := working(ds, r)
	v := datasetView{
		ID:         ds.ID,
		Name:       ds.Name,
		Rows:       rep.Rows,
		Cols:       len(rep.Cols),
		LoadedRows: ds.Table.Rows(),
		Dropped:    rep.Dropped,
		DropNA:     dropna,
		Missing:    rep.Missing,
		AnyMissing: clean.HasMissing(ds.Table),
		Header:     t.Names(),
		Preview:    rep.Samples,
		Insights:   rep.Insights.Lines(),
		Warnings:   rep.Warnings,
	}
	for _, c := range rep.Cols {
		v.Columns = append(v.Columns, columnView{Name: c.Name, Kind: c.Kind.String(), Missing: c.Missing})
	}
	for _, c := range t.NumericColumns() {
		v.NumericCols = append(v.NumericCols, c.Name)
	}
	for _, c := range t.CategoricalColumns() {
		v.CategoricalCols = append(v.CategoricalCols, c.Name)
	}
	v.HistColumn = pick(r.URL.Query().Get("hist"), v.NumericCols)
	v.CatColumn = pick(r.URL.Query().Get("cat"), v.CategoricalCols)
	v.HasCorrelation = len(v.NumericCols) >= 2
	v.HasTrend = rep.Insights.Trend.Applicable()
	s.render(w, "dataset.html", v)
}

// pick returns want when it is one of options, else the first option.
func pick(want string, options []string) string {
	for _, o := range options {
		if o == want {
			return o
		}
	}
	if len(options) == 0 {
		return ""
	}
	return options[0]
}

func (s *Server) handleInsightsJSON(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	t, _ := working(ds, r)
	s.writeJSON(w, http.StatusOK, insights.Compute(t))
}

func (s *Server) handleSummaryJSON(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	rep := analysis.Run(ds.Table, analysis.Options{
		SampleRows:  s.opt.PreviewRows,
		DropMissing: r.URL.Query().Get("dropna") == "1",
	})
	s.writeJSON(w, http.StatusOK, rep)
}

// errBadColumn marks a chart request naming a column of the wrong kind.
var errBadColumn = errors.New("unknown column")

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	t, _ := working(ds, r)
	col := r.URL.Query().Get("col")
	var buf bytes.Buffer
	var err error
	switch chi.URLParam(r, "chart") {
	case "histogram":
		var c *table.Column
		if c, err = columnOf(t, col, table.Numeric); err == nil {
			err = charts.RenderHistogram(&buf, c.Name, charts.Histogram(c.Nums, s.opt.HistogramBins), s.opt.ChartSize)
		}
	case "categories":
		var c *table.Column
		if c, err = columnOf(t, col, table.Categorical); err == nil {
			err = charts.RenderCategoryBars(&buf, c.Name, charts.ValueCounts(c), s.opt.ChartSize)
		}
	case "correlation":
		err = charts.RenderHeatmap(&buf, insights.Correlations(t), s.opt.ChartSize)
	case "trend":
		tr := insights.Compute(t).Trend
		v, applicable := tr.Get()
		if !applicable {
			http.Error(w, "trend not applicable: "+tr.Reason, http.StatusNotFound)
			return
		}
		err = charts.RenderTrend(&buf, v, s.opt.ChartSize)
	default:
		http.Error(w, "unknown chart", http.StatusNotFound)
		return
	}
	switch {
	case errors.Is(err, errBadColumn):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, charts.ErrNoData):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		s.log.Error().Err(err).Str("id", ds.ID).Msg("render chart failed")
		http.Error(w, "failed to render chart", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// columnOf resolves name (or, when empty, the first column of kind k).
func columnOf(t *table.Table, name string, k table.Kind) (*table.Column, error) {
	if name == "" {
		cols := t.ColumnsOfKind(k)
		if len(cols) == 0 {
			return nil, fmt.Errorf("no %s columns: %w", k, charts.ErrNoData)
		}
		return cols[0], nil
	}
	c, ok := t.Column(name)
	if !ok || c.Kind != k {
		return nil, fmt.Errorf("%w: %q is not a %s column", errBadColumn, name, k)
	}
	return c, nil
}
