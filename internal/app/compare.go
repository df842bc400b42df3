package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"sim-epsp/internal/service"
	"sim-epsp/internal/timebase"
)

const (
	defaultComparisonFile = "epsp_comparison.png"
	defaultComparisonMS   = 50
)

// Compare renders the configured fast and slow models side by side on a
// uniform time base.
func (a *App) Compare(ctx context.Context, opts CompareOptions) error {
	base := DefaultGenerateOptions(a.Config)
	if base.RateHz <= 0 {
		return errors.New("compare requires sampling.rate_hz > 0")
	}
	delay, err := timebase.ParseDelay(base.Delay)
	if err != nil {
		return err
	}

	path := opts.PNGPath
	if path == "" {
		path = filepath.Join(base.OutputDir, defaultComparisonFile)
	}
	window := opts.WindowMS
	if window <= 0 {
		window = defaultComparisonMS
	}

	svc, closer, err := a.newService(ctx, true, false)
	if err != nil {
		return err
	}
	defer closer()

	res, err := svc.Compare(service.CompareRequest{
		Fast: base.Fast,
		Slow: base.Slow,
		Spec: timebase.Spec{
			Sampling: timebase.Sampling{Mode: timebase.ModeUniform, RateHz: base.RateHz},
			Duration: base.Duration,
			Delay:    delay,
		},
		PlotPath: path,
		WindowMS: window,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.Out, "Comparison plot saved: %s\n", res.PlotPath)
	fmt.Fprintf(a.Out, "Fast-rising peak: %s pA at %s ms\n", formatFloat(res.FastPeak.Current, 4), formatFloat(res.FastPeak.TimeMS, 4))
	fmt.Fprintf(a.Out, "Slow-rising peak: %s pA at %s ms\n", formatFloat(res.SlowPeak.Current, 4), formatFloat(res.SlowPeak.TimeMS, 4))
	return nil
}
