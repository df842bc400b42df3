package render

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const pixelsPerInch = 96

// GonumRenderer draws figures with gonum/plot, aligning panels on one canvas.
type GonumRenderer struct{}

// Render implements Renderer.
func (GonumRenderer) Render(w io.Writer, fig Figure) error {
	if err := fig.validate(); err != nil {
		return err
	}

	rows, cols := fig.grid()
	plots := make([][]*plot.Plot, rows)
	for r := range plots {
		plots[r] = make([]*plot.Plot, cols)
	}
	for i, panel := range fig.Panels {
		p, err := gonumPanel(fig.panelTitle(i), panel)
		if err != nil {
			return fmt.Errorf("panel %d: %w", i, err)
		}
		plots[i/cols][i%cols] = p
	}

	img := vgimg.NewWith(
		vgimg.UseWH(pixels(fig.Width), pixels(fig.Height)),
		vgimg.UseDPI(pixelsPerInch),
	)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}

	canvases := plot.Align(plots, tiles, dc)
	for r := range plots {
		for c := range plots[r] {
			plots[r][c].Draw(canvases[r][c])
		}
	}

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func gonumPanel(title string, panel Panel) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = panel.XLabel
	p.Y.Label.Text = panel.YLabel
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	traces := panel.clipped()
	if panel.ZeroLine {
		lo, hi := xRange(traces)
		zero, err := plotter.NewLine(plotter.XYs{{X: lo, Y: 0}, {X: hi, Y: 0}})
		if err != nil {
			return nil, err
		}
		zero.LineStyle.Color = ColorGray
		zero.LineStyle.Width = vg.Points(0.5)
		zero.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		p.Add(zero)
	}

	for _, tr := range traces {
		xys := make(plotter.XYs, len(tr.XValues))
		for i := range tr.XValues {
			xys[i].X = tr.XValues[i]
			xys[i].Y = tr.YValues[i]
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("trace %q: %w", tr.Name, err)
		}
		line.LineStyle.Color = tr.Color
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		if tr.Name != "" {
			p.Legend.Add(tr.Name, line)
		}
	}

	if m := panel.marker(); m != nil {
		dot, err := plotter.NewScatter(plotter.XYs{{X: m.X, Y: m.Y}})
		if err != nil {
			return nil, err
		}
		dot.GlyphStyle.Color = ColorRed
		dot.GlyphStyle.Radius = vg.Points(4)
		dot.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(dot)
		p.Legend.Add(m.Label, dot)
	}

	for _, note := range panel.Notes {
		p.Legend.Add(note)
	}
	return p, nil
}

func pixels(n int) vg.Length {
	return vg.Length(n) * vg.Inch / pixelsPerInch
}

var _ Renderer = GonumRenderer{}
