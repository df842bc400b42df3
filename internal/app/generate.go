package app

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"sim-epsp/internal/config"
	"sim-epsp/internal/service"
	"sim-epsp/internal/timebase"
	"sim-epsp/internal/waveform"
)

// GenerateOptions hold every input of the generate command. Start from
// DefaultGenerateOptions and override what the caller set.
type GenerateOptions struct {
	Kinetics string
	Fast     waveform.FastRising
	Slow     waveform.SlowRising

	Duration time.Duration
	// Delay is "auto" or a duration string.
	Delay string

	Sampling     string
	RateHz       float64
	DtFine       time.Duration
	DtCoarse     time.Duration
	FineDuration time.Duration

	OutputDir string
	// Output and Plot are file names relative to OutputDir; derived from the
	// parameters when empty.
	Output   string
	Plot     string
	NoPlot   bool
	Manifest bool
	Comment  string
}

// DefaultGenerateOptions seeds options from configuration.
func DefaultGenerateOptions(cfg *config.Config) GenerateOptions {
	st := cfg.Stimulus
	return GenerateOptions{
		Kinetics: st.Kinetics,
		Fast: waveform.FastRising{
			A1:        st.Fast.A1,
			TauRise1:  st.Fast.TauRise1,
			TauDecay1: st.Fast.TauDecay1,
			A2:        st.Fast.A2,
			TauRise2:  st.Fast.TauRise2,
			TauDecay2: st.Fast.TauDecay2,
		},
		Slow: waveform.SlowRising{
			A:        st.Slow.A,
			TauRise:  st.Slow.TauRise,
			TauDecay: st.Slow.TauDecay,
		},
		Duration:     st.Duration,
		Delay:        st.Delay,
		Sampling:     cfg.Sampling.Mode,
		RateHz:       cfg.Sampling.RateHz,
		DtFine:       cfg.Sampling.DtFine,
		DtCoarse:     cfg.Sampling.DtCoarse,
		FineDuration: cfg.Sampling.FineDuration,
		OutputDir:    cfg.Output.Dir,
		NoPlot:       !cfg.Output.Plot,
		Manifest:     cfg.Output.Manifest,
		Comment:      st.Comment,
	}
}

// Model resolves the selected kinetic model.
func (o GenerateOptions) Model() (waveform.Model, error) {
	kind, err := waveform.ParseKind(o.Kinetics)
	if err != nil {
		return nil, err
	}
	if kind == waveform.KindFast {
		return o.Fast, nil
	}
	return o.Slow, nil
}

// Spec resolves the time base inputs.
func (o GenerateOptions) Spec() (timebase.Spec, error) {
	mode, err := timebase.ParseMode(o.Sampling)
	if err != nil {
		return timebase.Spec{}, err
	}
	delay, err := timebase.ParseDelay(o.Delay)
	if err != nil {
		return timebase.Spec{}, err
	}
	return timebase.Spec{
		Sampling: timebase.Sampling{
			Mode:       mode,
			RateHz:     o.RateHz,
			FineStep:   o.DtFine,
			CoarseStep: o.DtCoarse,
			FineWindow: o.FineDuration,
		},
		Duration: o.Duration,
		Delay:    delay,
	}, nil
}

// Generate writes one stimulus file and prints the summary with the
// acquisition protocol settings it requires.
func (a *App) Generate(ctx context.Context, opts GenerateOptions) error {
	model, err := opts.Model()
	if err != nil {
		return err
	}
	spec, err := opts.Spec()
	if err != nil {
		return err
	}

	req := service.Request{Model: model, Spec: spec, Comment: opts.Comment}
	base := BaseName(model, spec.Sampling)
	if opts.Output != "" {
		req.ATFPath = filepath.Join(opts.OutputDir, opts.Output)
		base = strings.TrimSuffix(filepath.Base(opts.Output), filepath.Ext(opts.Output))
	} else {
		req.ATFPath = filepath.Join(opts.OutputDir, base+".atf")
	}
	if !opts.NoPlot {
		if opts.Plot != "" {
			req.PlotPath = filepath.Join(opts.OutputDir, opts.Plot)
		} else {
			req.PlotPath = filepath.Join(opts.OutputDir, base+"_plot.png")
		}
	}
	if opts.Manifest {
		req.ManifestPath = filepath.Join(filepath.Dir(req.ATFPath), base+".yaml")
	}

	svc, closer, err := a.newService(ctx, !opts.NoPlot, true)
	if err != nil {
		return err
	}
	defer closer()

	a.Logger.Info().
		Str("kinetics", string(model.Kind())).
		Str("sampling", spec.Sampling.String()).
		Str("delay", spec.Delay.String()).
		Msg("generating stimulus")

	res, err := svc.Generate(ctx, req)
	if err != nil {
		return err
	}
	return WriteReport(a.Out, res)
}

// BaseName derives the descriptive file stem from the model parameters,
// e.g. fast_a1_150pA_a2_70pA_20kHz.
func BaseName(m waveform.Model, s timebase.Sampling) string {
	rate := "variable"
	if s.Mode == timebase.ModeUniform {
		rate = fmt.Sprintf("%dkHz", int64(math.Trunc(s.RateHz/1000)))
	}
	switch v := m.(type) {
	case waveform.FastRising:
		return fmt.Sprintf("fast_a1_%dpA_a2_%dpA_%s", int64(v.A1), int64(v.A2), rate)
	case waveform.SlowRising:
		return fmt.Sprintf("slow_a_%dpA_tauRise_%dms_%s", int64(v.A), int64(waveform.Milliseconds(v.TauRise)), rate)
	default:
		return fmt.Sprintf("%s_%s", m.Kind(), rate)
	}
}
