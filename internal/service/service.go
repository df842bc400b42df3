package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"sim-epsp/internal/atf"
	"sim-epsp/internal/config"
	"sim-epsp/internal/manifest"
	"sim-epsp/internal/render"
	"sim-epsp/internal/storage"
	"sim-epsp/internal/timebase"
	"sim-epsp/internal/waveform"
)

// Service runs the stimulus generation pipeline.
type Service struct {
	renderer render.Renderer
	store    storage.StimulusStore
	logger   zerolog.Logger
	plot     config.PlotConfig
	now      func() time.Time
}

// New constructs the generation service. renderer and store may be nil to
// disable plotting and cataloguing.
func New(cfg *config.Config, renderer render.Renderer, store storage.StimulusStore, logger zerolog.Logger) *Service {
	return &Service{
		renderer: renderer,
		store:    store,
		logger:   logger.With().Str("component", "service").Logger(),
		plot:     cfg.Plot,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Request describes one stimulus to generate.
type Request struct {
	Model   waveform.Model
	Spec    timebase.Spec
	Comment string
	ATFPath string
	// PlotPath and ManifestPath are skipped when empty.
	PlotPath     string
	ManifestPath string
}

// Result reports what was generated.
type Result struct {
	ID           uuid.UUID
	Model        waveform.Model
	Spec         timebase.Spec
	TimeBase     *timebase.TimeBase
	Currents     []float64
	Peak         waveform.Peak
	Comment      string
	ATFPath      string
	PlotPath     string
	ManifestPath string
	Cataloged    bool
}

// Generate builds the time base, evaluates the model, and writes the
// stimulus file with its optional manifest, plot and catalog entry.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	if req.Model == nil {
		return nil, errors.New("generate: model is required")
	}
	if req.ATFPath == "" {
		return nil, errors.New("generate: stimulus file path is required")
	}
	if err := req.Model.Validate(); err != nil {
		return nil, err
	}

	tb, err := timebase.Build(req.Spec)
	if err != nil {
		return nil, err
	}
	currents := waveform.Evaluate(req.Model, tb.Relative())
	peak, err := waveform.FindPeak(tb.TimesMS, currents)
	if err != nil {
		return nil, err
	}

	comment := req.Comment
	if comment == "" {
		comment = DescribeStimulus(req.Model, req.Spec.Sampling, tb)
	}

	res := &Result{
		ID:       uuid.New(),
		Model:    req.Model,
		Spec:     req.Spec,
		TimeBase: tb,
		Currents: currents,
		Peak:     peak,
		Comment:  comment,
		ATFPath:  req.ATFPath,
	}

	if err := ensureDir(req.ATFPath); err != nil {
		return nil, err
	}
	doc := atf.Document{Comment: comment, TimesMS: tb.TimesMS, Currents: currents}
	if err := atf.WriteFile(req.ATFPath, doc); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("path", req.ATFPath).
		Str("kinetics", string(req.Model.Kind())).
		Int("samples", tb.Len()).
		Float64("peak_pa", peak.Current).
		Float64("peak_ms", peak.TimeMS).
		Msg("stimulus file written")

	if req.PlotPath != "" {
		if err := s.renderStimulus(req.PlotPath, res); err != nil {
			return nil, err
		}
		res.PlotPath = req.PlotPath
	}

	if req.ManifestPath != "" {
		if err := manifest.Write(req.ManifestPath, s.manifestFor(res)); err != nil {
			return nil, err
		}
		res.ManifestPath = req.ManifestPath
		s.logger.Debug().Str("path", req.ManifestPath).Msg("manifest written")
	}

	if s.store != nil {
		if err := s.catalog(ctx, res); err != nil {
			s.logger.Error().Err(err).Str("id", res.ID.String()).Msg("failed to catalog stimulus")
		} else {
			res.Cataloged = true
		}
	}

	return res, nil
}

func (s *Service) renderStimulus(path string, res *Result) error {
	if s.renderer == nil {
		return errors.New("plot requested but no renderer configured")
	}
	fig := render.StimulusFigure(render.StimulusPlot{
		Title:      res.Model.Title(),
		TimesMS:    res.TimeBase.TimesMS,
		Currents:   res.Currents,
		Peak:       res.Peak,
		Parameters: res.Model.Parameters(),
		ZoomMS:     s.zoomWindow(res.TimeBase.EndMS()),
		Width:      s.plot.Width,
		Height:     s.plot.Height,
	})
	if err := render.RenderFile(s.renderer, path, fig); err != nil {
		return err
	}
	s.logger.Info().Str("path", path).Msg("plot written")
	return nil
}

func (s *Service) zoomWindow(endMS float64) float64 {
	return render.ZoomWindow(endMS, waveform.Milliseconds(s.plot.ZoomMin), s.plot.ZoomFraction)
}

func (s *Service) manifestFor(res *Result) manifest.Manifest {
	return manifest.Manifest{
		ID:          res.ID.String(),
		GeneratedAt: s.now(),
		Kinetics:    string(res.Model.Kind()),
		Comment:     res.Comment,
		Parameters:  manifest.ParametersOf(res.Model),
		Sampling:    manifest.SamplingOf(res.Spec.Sampling, res.Spec.Delay),
		DelayMS:     res.TimeBase.DelayMS,
		DurationMS:  res.TimeBase.EndMS(),
		Samples:     res.TimeBase.Len(),
		Peak:        manifest.Peak{TimeMS: res.Peak.TimeMS, CurrentPA: res.Peak.Current},
		Files:       manifest.Files{ATF: res.ATFPath, Plot: res.PlotPath},
	}
}

func (s *Service) catalog(ctx context.Context, res *Result) error {
	params, err := json.Marshal(manifest.ParametersOf(res.Model))
	if err != nil {
		return fmt.Errorf("marshal parameters: %w", err)
	}

	rec := storage.StimulusRecord{
		ID:          res.ID,
		Kinetics:    string(res.Model.Kind()),
		Comment:     res.Comment,
		Parameters:  params,
		Sampling:    res.Spec.Sampling.String(),
		DelayMS:     decimal.NewFromFloat(res.TimeBase.DelayMS),
		Samples:     res.TimeBase.Len(),
		DurationMS:  decimal.NewFromFloat(res.TimeBase.EndMS()),
		PeakTimeMS:  decimal.NewFromFloat(res.Peak.TimeMS),
		PeakCurrent: decimal.NewFromFloat(res.Peak.Current),
		ATFPath:     res.ATFPath,
	}
	if res.PlotPath != "" {
		plot := res.PlotPath
		rec.PlotPath = &plot
	}

	if _, err := s.store.InsertStimulus(ctx, rec); err != nil {
		return err
	}
	s.logger.Info().Str("id", res.ID.String()).Msg("stimulus catalogued")
	return nil
}

// DescribeStimulus is the default ATF comment: model kind and parameters,
// delay and sampling.
func DescribeStimulus(m waveform.Model, sampling timebase.Sampling, tb *timebase.TimeBase) string {
	return fmt.Sprintf("%s; delay=%s ms; sampling=%s", m.Describe(), waveform.FormatFloat(tb.DelayMS), sampling)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
