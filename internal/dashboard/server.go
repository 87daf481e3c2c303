// Package dashboard serves the web shell: upload a table, then browse its preview, cleaning
// summary, insights and charts.
package dashboard

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/KaramelBytes/insights-explorer/internal/charts"
	"github.com/KaramelBytes/insights-explorer/internal/parser"
)

//go:embed templates/*.html
var templateFS embed.FS

// Options configures the dashboard.
type Options struct {
	MaxUploadBytes int64
	MaxDatasets    int
	PreviewRows    int
	HistogramBins  int
	ChartSize      charts.Size
	Load           parser.Options
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		MaxUploadBytes: 50 << 20,
		MaxDatasets:    16,
		PreviewRows:    5,
		HistogramBins:  charts.DefaultBins,
		ChartSize:      charts.DefaultSize,
		Load:           parser.DefaultOptions(),
	}
}

// Server holds the dataset store and renders pages.
type Server struct {
	opt    Options
	store  *Store
	log    zerolog.Logger
	tmpl   *template.Template
	server *http.Server
}

// New parses the embedded templates and returns a server.
func New(opt Options, log zerolog.Logger) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"pct": func(f float64) string { return fmt.Sprintf("%.1f%%", f) },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Server{opt: opt, store: NewStore(opt.MaxDatasets), log: log, tmpl: tmpl}, nil
}

// Store exposes the dataset store, mainly for preloading datasets from the command line.
func (s *Server) Store() *Store { return s.store }

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Post("/datasets", s.handleUpload)
	r.Route("/datasets/{id}", func(r chi.Router) {
		r.Get("/", s.handleDataset)
		r.Delete("/", s.handleDelete)
		r.Get("/insights.json", s.handleInsightsJSON)
		r.Get("/summary.json", s.handleSummaryJSON)
		r.Get("/charts/{chart}.png", s.handleChart)
	})
	return r
}

// requestLogger writes one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("dashboard listening")
		errc <- s.server.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info().Msg("dashboard shutting down")
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
