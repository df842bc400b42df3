// Package render draws stimulus diagnostics as PNG figures.
//
// Figures are described backend-neutrally and drawn by a Renderer; the go-chart
// and gonum/plot backends both produce a single PNG image.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrUnknownBackend indicates an unsupported plot.backend value.
	ErrUnknownBackend = errors.New("render: unknown backend")
	// ErrEmptyFigure indicates a figure without drawable data.
	ErrEmptyFigure = errors.New("render: figure has no data")
)

// Backend names.
const (
	BackendChart = "chart"
	BackendGonum = "gonum"
)

// Palette shared by both backends.
var (
	ColorBlue  = color.RGBA{R: 0x1f, G: 0x5f, B: 0xbf, A: 0xff}
	ColorGreen = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
	ColorRed   = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	ColorGray  = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
)

// Trace is one line series.
type Trace struct {
	Name    string
	XValues []float64
	YValues []float64
	Color   color.RGBA
}

// Marker highlights a single point, e.g. the peak.
type Marker struct {
	X, Y  float64
	Label string
}

// Panel is one chart within a figure.
type Panel struct {
	Title    string
	XLabel   string
	YLabel   string
	Traces   []Trace
	Marker   *Marker
	XMax     float64 // 0 keeps the full x range
	Notes    []string
	ZeroLine bool
}

// Figure is a grid of panels filled row by row.
type Figure struct {
	Title   string
	Columns int
	Width   int
	Height  int
	Panels  []Panel
}

func (f Figure) grid() (rows, cols int) {
	cols = f.Columns
	if cols < 1 || cols > len(f.Panels) || len(f.Panels)%cols != 0 {
		cols = 1
	}
	return len(f.Panels) / cols, cols
}

// panelTitle folds the figure title into the first panel, since neither
// backend draws a figure-level title.
func (f Figure) panelTitle(i int) string {
	title := f.Panels[i].Title
	if i == 0 && f.Title != "" && f.Title != title {
		if title == "" {
			return f.Title
		}
		return f.Title + ": " + title
	}
	return title
}

func (f Figure) validate() error {
	if len(f.Panels) == 0 {
		return ErrEmptyFigure
	}
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("render: invalid figure size %dx%d", f.Width, f.Height)
	}
	for i, p := range f.Panels {
		if len(p.Traces) == 0 {
			return fmt.Errorf("%w: panel %d has no traces", ErrEmptyFigure, i)
		}
		for _, tr := range p.Traces {
			if len(tr.XValues) == 0 || len(tr.XValues) != len(tr.YValues) {
				return fmt.Errorf("%w: panel %d trace %q has %d x and %d y values", ErrEmptyFigure, i, tr.Name, len(tr.XValues), len(tr.YValues))
			}
		}
	}
	return nil
}

// Renderer draws a figure as PNG.
type Renderer interface {
	Render(w io.Writer, fig Figure) error
}

// New returns the renderer for a backend name.
func New(backend string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendChart:
		return ChartRenderer{}, nil
	case BackendGonum:
		return GonumRenderer{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (want %s or %s)", ErrUnknownBackend, backend, BackendChart, BackendGonum)
	}
}

// RenderFile renders fig into a new file at path.
func RenderFile(r Renderer, path string, fig Figure) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot file: %w", err)
	}
	if err := r.Render(file, fig); err != nil {
		file.Close()
		return fmt.Errorf("render plot: %w", err)
	}
	return file.Close()
}

// ZoomWindow is the early window shown in the zoomed panel: the larger of
// minMS and fraction of the sweep.
func ZoomWindow(endMS, minMS, fraction float64) float64 {
	return math.Max(minMS, endMS*fraction)
}

// clip keeps the points with x <= xmax. At least two points survive so a
// line stays drawable.
func clip(tr Trace, xmax float64) Trace {
	if xmax <= 0 {
		return tr
	}
	n := 0
	for n < len(tr.XValues) && tr.XValues[n] <= xmax {
		n++
	}
	if n < 2 {
		n = min(2, len(tr.XValues))
	}
	tr.XValues = tr.XValues[:n]
	tr.YValues = tr.YValues[:n]
	return tr
}

// clipped returns the panel traces limited to the panel's x window.
func (p Panel) clipped() []Trace {
	out := make([]Trace, len(p.Traces))
	for i, tr := range p.Traces {
		out[i] = clip(tr, p.XMax)
	}
	return out
}

// marker returns the panel marker if it falls inside the x window.
func (p Panel) marker() *Marker {
	if p.Marker == nil {
		return nil
	}
	if p.XMax > 0 && p.Marker.X > p.XMax {
		return nil
	}
	return p.Marker
}

func xRange(traces []Trace) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, tr := range traces {
		for _, x := range tr.XValues {
			lo = math.Min(lo, x)
			hi = math.Max(hi, x)
		}
	}
	return lo, hi
}
