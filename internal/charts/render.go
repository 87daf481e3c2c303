package charts

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/KaramelBytes/insights-explorer/internal/insights"
)

// Size is an image size in pixels.
type Size struct {
	Width  int
	Height int
}

// DefaultSize matches the dashboard layout.
var DefaultSize = Size{Width: 960, Height: 540}

// MaxCategoryBars caps the number of bars in a category chart.
const MaxCategoryBars = 20

func (s Size) orDefault() Size {
	if s.Width <= 0 || s.Height <= 0 {
		return DefaultSize
	}
	return s
}

// pixels to points at 96 dpi
func px(n int) vg.Length { return vg.Length(float64(n) * 0.75) }

var barColor = color.RGBA{R: 76, G: 114, B: 176, A: 255}

// savePNG draws p onto a raster canvas of the given size.
func savePNG(w io.Writer, p *plot.Plot, size Size) error {
	c := vgimg.NewWith(vgimg.UseWH(px(size.Width), px(size.Height)), vgimg.UseDPI(96))
	p.Draw(draw.New(c))
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// RenderHistogram draws precomputed bins as a histogram.
func RenderHistogram(w io.Writer, column string, bins []Bin, size Size) error {
	if len(bins) == 0 {
		return fmt.Errorf("histogram of %s: %w", column, ErrNoData)
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Distribution of %s", column)
	p.X.Label.Text = column
	p.Y.Label.Text = "Count"

	hb := make([]plotter.HistogramBin, len(bins))
	for i, b := range bins {
		hb[i] = plotter.HistogramBin{Min: b.Lo, Max: b.Hi, Weight: float64(b.Count)}
	}
	h := &plotter.Histogram{
		Bins:      hb,
		Width:     bins[0].Hi - bins[0].Lo,
		FillColor: barColor,
		LineStyle: plotter.DefaultLineStyle,
	}
	h.LineStyle.Color = color.White
	p.Add(h)
	p.Add(plotter.NewGrid())
	return savePNG(w, p, size.orDefault())
}

// corrGrid lays the matrix out with the first column at the top-left, as heatmaps usually read.
type corrGrid struct{ m *insights.CorrMatrix }

func (g corrGrid) Dims() (c, r int) {
	n := len(g.m.Columns)
	return n, n
}

func (g corrGrid) Z(c, r int) float64 {
	n := len(g.m.Columns)
	return g.m.Values[n-1-r][c]
}

func (g corrGrid) X(c int) float64 { return float64(c) }
func (g corrGrid) Y(r int) float64 { return float64(r) }

// RenderHeatmap draws the correlation matrix with a blue-red diverging palette fixed to [-1, 1]
// and each cell annotated with its coefficient.
func RenderHeatmap(w io.Writer, m *insights.CorrMatrix, size Size) error {
	if m == nil || len(m.Columns) < 2 {
		return fmt.Errorf("correlation heatmap: %w", ErrNoData)
	}
	n := len(m.Columns)
	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)

	grid := corrGrid{m: m}
	hm := plotter.NewHeatMap(grid, cm.Palette(255))
	hm.Min, hm.Max = -1, 1
	hm.NaN = color.Gray{Y: 220}

	p := plot.New()
	p.Title.Text = "Correlation Heatmap"
	p.Add(hm)

	xy := make(plotter.XYs, 0, n*n)
	text := make([]string, 0, n*n)
	for c := 0; c < n; c++ {
		for r := 0; r < n; r++ {
			v := grid.Z(c, r)
			if math.IsNaN(v) {
				continue
			}
			xy = append(xy, plotter.XY{X: float64(c), Y: float64(r)})
			text = append(text, fmt.Sprintf("%.2f", v))
		}
	}
	if len(xy) > 0 {
		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xy, Labels: text})
		if err != nil {
			return fmt.Errorf("annotate heatmap: %w", err)
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].XAlign = draw.XCenter
			labels.TextStyle[i].YAlign = draw.YCenter
		}
		p.Add(labels)
	}

	xt := make(plot.ConstantTicks, n)
	yt := make(plot.ConstantTicks, n)
	for i, name := range m.Columns {
		xt[i] = plot.Tick{Value: float64(i), Label: name}
		yt[n-1-i] = plot.Tick{Value: float64(n - 1 - i), Label: name}
	}
	p.X.Tick.Marker = xt
	p.Y.Tick.Marker = yt
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	return savePNG(w, p, size.orDefault())
}

// RenderCategoryBars draws the most frequent values of a category column.
func RenderCategoryBars(w io.Writer, column string, counts []Count, size Size) error {
	if len(counts) == 0 {
		return fmt.Errorf("categories of %s: %w", column, ErrNoData)
	}
	if len(counts) > MaxCategoryBars {
		counts = counts[:MaxCategoryBars]
	}
	size = size.orDefault()
	bars := make([]chart.Value, len(counts))
	top := 0
	for i, c := range counts {
		bars[i] = chart.Value{Label: c.Value, Value: float64(c.Count)}
		if c.Count > top {
			top = c.Count
		}
	}
	bc := chart.BarChart{
		Title:      fmt.Sprintf("Count of %s", column),
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		Width:      size.Width,
		Height:     size.Height,
		BarWidth:   40,
		Bars:       bars,
		// go-chart rejects a zero-height range
		YAxis: chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: float64(top) * 1.1}},
	}
	if err := bc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}

// RenderTrend draws the per-date means as a line.
func RenderTrend(w io.Writer, tr insights.TimeTrend, size Size) error {
	if len(tr.Points) == 0 {
		return fmt.Errorf("trend of %s: %w", tr.ValueColumn, ErrNoData)
	}
	size = size.orDefault()
	xs := make([]time.Time, len(tr.Points))
	ys := make([]float64, len(tr.Points))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, pt := range tr.Points {
		xs[i], ys[i] = pt.Date, pt.Mean
		lo, hi = math.Min(lo, pt.Mean), math.Max(hi, pt.Mean)
	}
	// Pad to at least two X values for go-chart
	if len(xs) == 1 {
		xs = append(xs, xs[0].Add(time.Second))
		ys = append(ys, ys[0])
	}
	st := chart.Style{
		StrokeColor: drawing.Color{R: 76, G: 114, B: 176, A: 255},
		StrokeWidth: 2,
		DotWidth:    3,
		DotColor:    drawing.Color{R: 76, G: 114, B: 176, A: 255},
	}
	ch := chart.Chart{
		Title:      fmt.Sprintf("Trend of %s over %s", tr.ValueColumn, tr.DateColumn),
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		Width:      size.Width,
		Height:     size.Height,
		XAxis:      chart.XAxis{Name: tr.DateColumn, ValueFormatter: chart.TimeDateValueFormatter},
		YAxis:      chart.YAxis{Name: tr.ValueColumn},
		Series: []chart.Series{
			chart.TimeSeries{Name: tr.ValueColumn, XValues: xs, YValues: ys, Style: st},
		},
	}
	if lo == hi {
		ch.YAxis.Range = &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render trend chart: %w", err)
	}
	return nil
}
