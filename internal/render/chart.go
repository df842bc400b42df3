package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartRenderer draws each panel with go-chart and tiles the panel images
// into one PNG.
type ChartRenderer struct{}

// Render implements Renderer.
func (ChartRenderer) Render(w io.Writer, fig Figure) error {
	if err := fig.validate(); err != nil {
		return err
	}

	rows, cols := fig.grid()
	cellW, cellH := fig.Width/cols, fig.Height/rows
	canvas := image.NewRGBA(image.Rect(0, 0, cellW*cols, cellH*rows))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	for i, panel := range fig.Panels {
		graph := chartPanel(fig.panelTitle(i), panel, cellW, cellH)

		var buf bytes.Buffer
		if err := graph.Render(chart.PNG, &buf); err != nil {
			return fmt.Errorf("panel %d: %w", i, err)
		}
		img, err := png.Decode(&buf)
		if err != nil {
			return fmt.Errorf("panel %d: decode: %w", i, err)
		}

		origin := image.Pt((i%cols)*cellW, (i/cols)*cellH)
		draw.Draw(canvas, img.Bounds().Add(origin), img, img.Bounds().Min, draw.Over)
	}

	return png.Encode(w, canvas)
}

func chartPanel(title string, panel Panel, width, height int) chart.Chart {
	valueFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.2f")
	}

	traces := panel.clipped()
	xLo, xHi := xRange(traces)
	yLo, yHi := yRange(traces)
	if panel.ZeroLine {
		yLo, yHi = math.Min(yLo, 0), math.Max(yHi, 0)
	}

	series := make([]chart.Series, 0, len(traces)+3)
	if panel.ZeroLine {
		series = append(series, chart.ContinuousSeries{
			XValues: []float64{xLo, xHi},
			YValues: []float64{0, 0},
			Style: chart.Style{
				StrokeColor:     toDrawing(ColorGray).WithAlpha(100),
				StrokeWidth:     1,
				StrokeDashArray: []float64{5, 5},
			},
		})
	}
	for _, tr := range traces {
		series = append(series, chart.ContinuousSeries{
			Name:    tr.Name,
			XValues: tr.XValues,
			YValues: tr.YValues,
			Style: chart.Style{
				StrokeColor: toDrawing(tr.Color),
				StrokeWidth: 1.5,
			},
		})
	}
	if m := panel.marker(); m != nil {
		series = append(series, chart.ContinuousSeries{
			Name:    m.Label,
			XValues: []float64{m.X},
			YValues: []float64{m.Y},
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    6,
				DotColor:    toDrawing(ColorRed),
			},
		})
	}
	// go-chart does not terminate on a zero-height or zero-width range.
	xLo, xHi = padRange(xLo, xHi)
	yLo, yHi = padRange(yLo, yHi)
	if len(panel.Notes) > 0 {
		series = append(series, notesSeries(xHi, yLo, yHi, panel.Notes))
	}

	graph := chart.Chart{
		Title:  title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Name:           panel.XLabel,
			ValueFormatter: valueFormatter,
			Range:          &chart.ContinuousRange{Min: xLo, Max: xHi},
		},
		YAxis: chart.YAxis{
			Name:           panel.YLabel,
			ValueFormatter: valueFormatter,
			Range:          &chart.ContinuousRange{Min: yLo, Max: yHi},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph
}

// notesSeries stacks the note lines as annotations down the right edge.
func notesSeries(xHi, yLo, yHi float64, notes []string) chart.AnnotationSeries {
	step := (yHi - yLo) / float64(len(notes)+4)

	annotations := make([]chart.Value2, len(notes))
	for i, note := range notes {
		annotations[i] = chart.Value2{
			XValue: xHi,
			YValue: yLo + step*float64(len(notes)-i),
			Label:  note,
		}
	}
	return chart.AnnotationSeries{
		Annotations: annotations,
		Style: chart.Style{
			FontSize:    8,
			StrokeColor: toDrawing(ColorGray),
		},
	}
}

func yRange(traces []Trace) (lo, hi float64) {
	lo, hi = traces[0].YValues[0], traces[0].YValues[0]
	for _, tr := range traces {
		for _, y := range tr.YValues {
			if y < lo {
				lo = y
			}
			if y > hi {
				hi = y
			}
		}
	}
	return lo, hi
}

// padRange widens a degenerate range around its value.
func padRange(lo, hi float64) (float64, float64) {
	if hi > lo {
		return lo, hi
	}
	pad := math.Max(1, math.Abs(lo)*0.1)
	return lo - pad, hi + pad
}

func toDrawing(c color.RGBA) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

var _ Renderer = ChartRenderer{}
