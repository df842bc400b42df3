package render

import (
	"fmt"

	"sim-epsp/internal/waveform"
)

const (
	timeLabel    = "Time (ms)"
	currentLabel = "Current (pA)"
)

// StimulusPlot is the input for the two-panel stimulus figure.
type StimulusPlot struct {
	Title      string
	TimesMS    []float64
	Currents   []float64
	Peak       waveform.Peak
	Parameters []string
	ZoomMS     float64
	Width      int
	Height     int
}

// StimulusFigure lays out the full trace above a zoomed early window, the
// peak marked in both.
func StimulusFigure(in StimulusPlot) Figure {
	trace := Trace{Name: "Stimulus", XValues: in.TimesMS, YValues: in.Currents, Color: ColorBlue}
	peak := &Marker{
		X:     in.Peak.TimeMS,
		Y:     in.Peak.Current,
		Label: fmt.Sprintf("Peak: %.1f pA @ %.4f ms", in.Peak.Current, in.Peak.TimeMS),
	}

	return Figure{
		Title:   in.Title,
		Columns: 1,
		Width:   in.Width,
		Height:  in.Height,
		Panels: []Panel{
			{
				Title:    in.Title,
				XLabel:   timeLabel,
				YLabel:   currentLabel,
				Traces:   []Trace{trace},
				Marker:   peak,
				Notes:    in.Parameters,
				ZeroLine: true,
			},
			{
				Title:    fmt.Sprintf("Early Phase (0-%g ms)", in.ZoomMS),
				XLabel:   timeLabel,
				YLabel:   currentLabel,
				Traces:   []Trace{trace},
				Marker:   peak,
				XMax:     in.ZoomMS,
				ZeroLine: true,
			},
		},
	}
}

// ComparisonPlot is the input for the fast-versus-slow comparison figure.
type ComparisonPlot struct {
	TimesMS  []float64
	Fast     []float64
	Slow     []float64
	FastPeak waveform.Peak
	SlowPeak waveform.Peak
	ZoomMS   float64
	WindowMS float64
	Width    int
	Height   int
}

// ComparisonFigure lays out fast full, fast zoomed, slow full and an overlay
// in a 2×2 grid.
func ComparisonFigure(in ComparisonPlot) Figure {
	fast := Trace{Name: "Fast-rising", XValues: in.TimesMS, YValues: in.Fast, Color: ColorBlue}
	slow := Trace{Name: "Slow-rising", XValues: in.TimesMS, YValues: in.Slow, Color: ColorGreen}
	fastPeak := peakMarker(in.FastPeak)
	slowPeak := peakMarker(in.SlowPeak)

	return Figure{
		Title:   "Fast-Rising vs Slow-Rising sim-EPSP Comparison",
		Columns: 2,
		Width:   in.Width,
		Height:  in.Height,
		Panels: []Panel{
			{Title: "Fast-Rising EPSP (Double Exponential)", XLabel: timeLabel, YLabel: currentLabel, Traces: []Trace{fast}, Marker: fastPeak, ZeroLine: true},
			{Title: fmt.Sprintf("Fast-Rising - Zoomed (0-%g ms)", in.ZoomMS), XLabel: timeLabel, YLabel: currentLabel, Traces: []Trace{fast}, Marker: fastPeak, XMax: in.ZoomMS, ZeroLine: true},
			{Title: "Slow-Rising EPSP (Single Exponential)", XLabel: timeLabel, YLabel: currentLabel, Traces: []Trace{slow}, Marker: slowPeak, ZeroLine: true},
			{Title: "Direct Comparison", XLabel: timeLabel, YLabel: currentLabel, Traces: []Trace{fast, slow}, XMax: in.WindowMS, ZeroLine: true},
		},
	}
}

func peakMarker(p waveform.Peak) *Marker {
	return &Marker{X: p.TimeMS, Y: p.Current, Label: fmt.Sprintf("Peak: %.1f pA @ %.4f ms", p.Current, p.TimeMS)}
}
