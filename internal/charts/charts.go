// Package charts renders the dashboard figures with gonum/plot.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/sheetdash/internal/analysis"
	"github.com/KaramelBytes/sheetdash/internal/geo"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrFormat is returned for an image format other than png or svg.
var ErrFormat = errors.New("unsupported chart format")

// Options sizes and colours one chart.
type Options struct {
	Format string
	Width  int // pixels
	Height int // pixels
	Color  color.Color
}

// DefaultOptions returns a 900x450 png in the secondary colour.
func DefaultOptions() Options {
	return Options{Format: "png", Width: 900, Height: 450, Color: MustHex("#4CAF50")}
}

// ContentType maps a chart format to its MIME type.
func ContentType(format string) string {
	if format == "svg" {
		return "image/svg+xml"
	}
	return "image/png"
}

// ParseHex parses "#RRGGBB" or "#RGB".
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// MustHex is ParseHex for constants.
func MustHex(s string) color.RGBA {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Histogram draws one bar per category with its row count.
func Histogram(freq []analysis.CategoryCount, column string, opt Options) ([]byte, error) {
	p := newPlot(column)
	p.Y.Label.Text = "count"
	if len(freq) == 0 {
		return encode(placeholder(p), opt)
	}
	values := make(plotter.Values, len(freq))
	names := make([]string, len(freq))
	for i, f := range freq {
		values[i] = float64(f.Count)
		names[i] = f.Value
	}
	bars, err := plotter.NewBarChart(values, barWidth(len(freq), opt))
	if err != nil {
		return nil, fmt.Errorf("histogram %q: %w", column, err)
	}
	bars.Color = opt.fill()
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)
	if len(names) > 8 {
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}
	p.Y.Min = 0
	return encode(p, opt)
}

// BoxPlot draws the distribution of the numeric values of a column.
func BoxPlot(values []float64, column string, opt Options) ([]byte, error) {
	p := newPlot(column)
	if len(values) == 0 {
		return encode(placeholder(p), opt)
	}
	box, err := plotter.NewBoxPlot(vg.Points(60), 0, plotter.Values(values))
	if err != nil {
		return nil, fmt.Errorf("box plot %q: %w", column, err)
	}
	box.FillColor = opt.fill()
	p.Add(box)
	p.NominalX(column)
	p.Add(plotter.NewGrid())
	return encode(p, opt)
}

// Scatter draws the located rows on a longitude/latitude plane.
func Scatter(points []geo.Point, opt Options) ([]byte, error) {
	p := newPlot("")
	p.Title.Text = "Mapa de Proyectos"
	p.X.Label.Text = geo.LongitudeColumn
	p.Y.Label.Text = geo.LatitudeColumn
	if len(points) == 0 {
		return encode(placeholder(p), opt)
	}
	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i] = plotter.XY{X: pt.Lon, Y: pt.Lat}
	}
	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, fmt.Errorf("scatter: %w", err)
	}
	sc.GlyphStyle.Color = opt.fill()
	sc.GlyphStyle.Radius = vg.Points(4)
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(plotter.NewGrid(), sc)
	return encode(p, opt)
}

func newPlot(column string) *plot.Plot {
	p := plot.New()
	if column != "" {
		p.Title.Text = "Distribución de " + column
	}
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = column
	return p
}

func (o Options) fill() color.Color {
	if o.Color == nil {
		return color.Black
	}
	return o.Color
}

// placeholder marks an empty chart instead of failing on no data.
func placeholder(p *plot.Plot) *plot.Plot {
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	if l, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{{X: 0.5, Y: 0.5}},
		Labels: []string{"Sin datos"},
	}); err == nil {
		l.TextStyle[0].XAlign = draw.XCenter
		p.Add(l)
	}
	return p
}

func barWidth(n int, opt Options) vg.Length {
	w := pxLength(opt.Width) * 0.8 / vg.Length(n)
	return vg.Length(math.Min(float64(w), float64(vg.Points(60))))
}

func pxLength(px int) vg.Length {
	return vg.Length(px) * vg.Inch / 96
}

func encode(p *plot.Plot, opt Options) ([]byte, error) {
	if opt.Format != "png" && opt.Format != "svg" {
		return nil, fmt.Errorf("%w: %q", ErrFormat, opt.Format)
	}
	if opt.Width <= 0 || opt.Height <= 0 {
		return nil, fmt.Errorf("invalid chart size %dx%d", opt.Width, opt.Height)
	}
	wt, err := p.WriterTo(pxLength(opt.Width), pxLength(opt.Height), opt.Format)
	if err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return buf.Bytes(), nil
}
