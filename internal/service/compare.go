package service

import (
	"errors"

	"sim-epsp/internal/render"
	"sim-epsp/internal/timebase"
	"sim-epsp/internal/waveform"
)

// CompareRequest evaluates a fast and a slow model on one time base.
type CompareRequest struct {
	Fast     waveform.FastRising
	Slow     waveform.SlowRising
	Spec     timebase.Spec
	PlotPath string
	WindowMS float64
}

// CompareResult reports both traces and their peaks.
type CompareResult struct {
	TimeBase *timebase.TimeBase
	Fast     []float64
	Slow     []float64
	FastPeak waveform.Peak
	SlowPeak waveform.Peak
	PlotPath string
}

// Compare renders the fast-versus-slow comparison figure.
func (s *Service) Compare(req CompareRequest) (*CompareResult, error) {
	if s.renderer == nil {
		return nil, errors.New("compare: no renderer configured")
	}
	if req.PlotPath == "" {
		return nil, errors.New("compare: plot path is required")
	}
	if err := req.Fast.Validate(); err != nil {
		return nil, err
	}
	if err := req.Slow.Validate(); err != nil {
		return nil, err
	}

	tb, err := timebase.Build(req.Spec)
	if err != nil {
		return nil, err
	}
	rel := tb.Relative()
	res := &CompareResult{
		TimeBase: tb,
		Fast:     waveform.Evaluate(req.Fast, rel),
		Slow:     waveform.Evaluate(req.Slow, rel),
		PlotPath: req.PlotPath,
	}
	if res.FastPeak, err = waveform.FindPeak(tb.TimesMS, res.Fast); err != nil {
		return nil, err
	}
	if res.SlowPeak, err = waveform.FindPeak(tb.TimesMS, res.Slow); err != nil {
		return nil, err
	}

	fig := render.ComparisonFigure(render.ComparisonPlot{
		TimesMS:  tb.TimesMS,
		Fast:     res.Fast,
		Slow:     res.Slow,
		FastPeak: res.FastPeak,
		SlowPeak: res.SlowPeak,
		ZoomMS:   s.zoomWindow(tb.EndMS()),
		WindowMS: req.WindowMS,
		Width:    s.plot.Width,
		Height:   s.plot.Height,
	})
	if err := render.RenderFile(s.renderer, req.PlotPath, fig); err != nil {
		return nil, err
	}
	s.logger.Info().Str("path", req.PlotPath).Msg("comparison plot written")
	return res, nil
}
