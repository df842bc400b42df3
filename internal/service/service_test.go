package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"sim-epsp/internal/atf"
	"sim-epsp/internal/config"
	"sim-epsp/internal/manifest"
	"sim-epsp/internal/render"
	"sim-epsp/internal/storage"
	"sim-epsp/internal/timebase"
	"sim-epsp/internal/waveform"
)

type fakeStore struct {
	inserted []storage.StimulusRecord
	err      error
}

func (f *fakeStore) EnsureSchema(context.Context) error { return f.err }

func (f *fakeStore) InsertStimulus(_ context.Context, rec storage.StimulusRecord) (storage.StimulusRecord, error) {
	if f.err != nil {
		return storage.StimulusRecord{}, f.err
	}
	f.inserted = append(f.inserted, rec)
	return rec, nil
}

func (f *fakeStore) ListRecentStimuli(context.Context, int) ([]storage.StimulusRecord, error) {
	return f.inserted, f.err
}

func (f *fakeStore) CountStimuli(context.Context) (int64, error) {
	return int64(len(f.inserted)), f.err
}

func testConfig() *config.Config {
	return &config.Config{Plot: config.PlotConfig{
		Backend:      render.BackendGonum,
		Width:        600,
		Height:       400,
		ZoomMin:      10 * time.Millisecond,
		ZoomFraction: 0.1,
	}}
}

func slowModel() waveform.SlowRising {
	return waveform.SlowRising{A: 150, TauRise: 10 * time.Millisecond, TauDecay: 15 * time.Millisecond}
}

func uniformSpec() timebase.Spec {
	return timebase.Spec{
		Sampling: timebase.Sampling{Mode: timebase.ModeUniform, RateHz: 20000},
		Duration: 100 * time.Millisecond,
	}
}

func TestGenerateWritesArtefacts(t *testing.T) {
	dir := t.TempDir()
	r, err := render.New(render.BackendGonum)
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	store := &fakeStore{}
	svc := New(testConfig(), r, store, zerolog.Nop())

	req := Request{
		Model:        slowModel(),
		Spec:         uniformSpec(),
		ATFPath:      filepath.Join(dir, "nested", "slow.atf"),
		PlotPath:     filepath.Join(dir, "slow.png"),
		ManifestPath: filepath.Join(dir, "slow.yaml"),
	}
	res, err := svc.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if res.TimeBase.Len() != 2000 {
		t.Fatalf("expected 2000 samples, got %d", res.TimeBase.Len())
	}
	if !strings.HasPrefix(res.Comment, "Slow-rising sim-EPSP") {
		t.Fatalf("unexpected default comment %q", res.Comment)
	}
	if !res.Cataloged || len(store.inserted) != 1 {
		t.Fatalf("expected one catalog entry, got %d", len(store.inserted))
	}
	if store.inserted[0].ID != res.ID {
		t.Fatal("catalog id mismatch")
	}
	if store.inserted[0].PlotPath == nil || *store.inserted[0].PlotPath != req.PlotPath {
		t.Fatal("expected plot path in catalog entry")
	}

	f, err := atf.ReadFile(req.ATFPath)
	if err != nil {
		t.Fatalf("read atf: %v", err)
	}
	if len(f.Values) != res.TimeBase.Len() {
		t.Fatalf("atf rows %d, want %d", len(f.Values), res.TimeBase.Len())
	}
	if f.Comment() != res.Comment {
		t.Fatalf("atf comment %q, want %q", f.Comment(), res.Comment)
	}

	info, err := os.Stat(req.PlotPath)
	if err != nil || info.Size() == 0 {
		t.Fatalf("expected non-empty plot: %v", err)
	}

	m, err := manifest.Read(req.ManifestPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if m.ID != res.ID.String() || m.Samples != 2000 || m.Kinetics != "slow" {
		t.Fatalf("unexpected manifest %+v", m)
	}
	if m.Files.Plot != req.PlotPath {
		t.Fatalf("manifest plot %q, want %q", m.Files.Plot, req.PlotPath)
	}
}

func TestGenerateCustomCommentNoExtras(t *testing.T) {
	dir := t.TempDir()
	svc := New(testConfig(), nil, nil, zerolog.Nop())

	res, err := svc.Generate(context.Background(), Request{
		Model:   slowModel(),
		Spec:    uniformSpec(),
		Comment: "cell 3 baseline",
		ATFPath: filepath.Join(dir, "slow.atf"),
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Comment != "cell 3 baseline" {
		t.Fatalf("unexpected comment %q", res.Comment)
	}
	if res.PlotPath != "" || res.ManifestPath != "" || res.Cataloged {
		t.Fatalf("expected no extras, got %+v", res)
	}
}

func TestGenerateCatalogFailureIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	store := &fakeStore{err: errors.New("connection refused")}
	svc := New(testConfig(), nil, store, zerolog.Nop())

	res, err := svc.Generate(context.Background(), Request{
		Model:   slowModel(),
		Spec:    uniformSpec(),
		ATFPath: filepath.Join(dir, "slow.atf"),
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Cataloged {
		t.Fatal("expected Cataloged=false when the store fails")
	}
	if _, err := os.Stat(res.ATFPath); err != nil {
		t.Fatalf("expected stimulus file despite catalog failure: %v", err)
	}
}

func TestGenerateRejectsInvalidInput(t *testing.T) {
	dir := t.TempDir()
	svc := New(testConfig(), nil, nil, zerolog.Nop())
	ctx := context.Background()

	bad := slowModel()
	bad.TauDecay = 0
	if _, err := svc.Generate(ctx, Request{Model: bad, Spec: uniformSpec(), ATFPath: filepath.Join(dir, "a.atf")}); !errors.Is(err, waveform.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}

	spec := uniformSpec()
	spec.Sampling.RateHz = 0
	if _, err := svc.Generate(ctx, Request{Model: slowModel(), Spec: spec, ATFPath: filepath.Join(dir, "b.atf")}); !errors.Is(err, timebase.ErrInvalidSpec) {
		t.Fatalf("expected ErrInvalidSpec, got %v", err)
	}

	if _, err := svc.Generate(ctx, Request{Model: slowModel(), Spec: uniformSpec()}); err == nil {
		t.Fatal("expected error for missing stimulus path")
	}

	if _, err := svc.Generate(ctx, Request{Model: slowModel(), Spec: uniformSpec(), ATFPath: filepath.Join(dir, "c.atf"), PlotPath: filepath.Join(dir, "c.png")}); err == nil {
		t.Fatal("expected error for plot without renderer")
	}
}

func TestCompare(t *testing.T) {
	dir := t.TempDir()
	r, err := render.New(render.BackendGonum)
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	svc := New(testConfig(), r, nil, zerolog.Nop())

	fast := waveform.FastRising{
		A1: 150, TauRise1: 10 * time.Microsecond, TauDecay1: time.Millisecond,
		A2: 70, TauRise2: 3 * time.Millisecond, TauDecay2: 20 * time.Millisecond,
	}
	res, err := svc.Compare(CompareRequest{
		Fast:     fast,
		Slow:     slowModel(),
		Spec:     uniformSpec(),
		PlotPath: filepath.Join(dir, "compare.png"),
		WindowMS: 20,
	})
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if res.FastPeak.TimeMS >= res.SlowPeak.TimeMS {
		t.Fatalf("fast peak %.3f ms should precede slow peak %.3f ms", res.FastPeak.TimeMS, res.SlowPeak.TimeMS)
	}
	if _, err := os.Stat(res.PlotPath); err != nil {
		t.Fatalf("expected comparison plot: %v", err)
	}
}

func TestDescribeStimulus(t *testing.T) {
	tb := &timebase.TimeBase{DelayMS: 1.5}
	sampling := timebase.Sampling{Mode: timebase.ModeUniform, RateHz: 20000}
	got := DescribeStimulus(slowModel(), sampling, tb)
	if !strings.Contains(got, "delay=1.5 ms") {
		t.Fatalf("expected delay in %q", got)
	}
	if !strings.Contains(got, sampling.String()) {
		t.Fatalf("expected sampling in %q", got)
	}
}

func TestGenerateZeroAmplitudeChartPlot(t *testing.T) {
	dir := t.TempDir()
	r, err := render.New(render.BackendChart)
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	svc := New(testConfig(), r, nil, zerolog.Nop())

	model := slowModel()
	model.A = 0
	res, err := svc.Generate(context.Background(), Request{
		Model:    model,
		Spec:     uniformSpec(),
		ATFPath:  filepath.Join(dir, "flat.atf"),
		PlotPath: filepath.Join(dir, "flat.png"),
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Peak.Current != 0 {
		t.Fatalf("peak = %v, want 0", res.Peak.Current)
	}
	if info, err := os.Stat(res.PlotPath); err != nil || info.Size() == 0 {
		t.Fatalf("expected non-empty plot: %v", err)
	}
}
