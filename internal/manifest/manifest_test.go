package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sim-epsp/internal/timebase"
	"sim-epsp/internal/waveform"
)

func TestWriteRead(t *testing.T) {
	a := 150.0
	m := Manifest{
		ID:          "3f1c0c1e-8d7a-4a77-9b8e-47d1d1e0b1a2",
		GeneratedAt: time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC),
		Kinetics:    "slow",
		Parameters:  Parameters{A: &a, TauRise: "10ms", TauDecay: "15ms"},
		Sampling:    Sampling{Mode: "uniform", RateHz: 20000, Delay: "auto"},
		DelayMS:     1.55,
		DurationMS:  101.5,
		Samples:     2031,
		Peak:        Peak{TimeMS: 14.2, CurrentPA: 48.7},
		Files:       Files{ATF: "output/slow.atf"},
	}

	path := filepath.Join(t.TempDir(), "slow.yaml")
	if err := Write(path, m); err != nil {
		t.Fatalf("Write: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(raw)
	if strings.Contains(text, "a1_pa") || strings.Contains(text, "dt_fine") {
		t.Fatalf("unused fields should be omitted:\n%s", text)
	}
	if !strings.Contains(text, "tau_rise: 10ms") {
		t.Fatalf("expected tau_rise with unit:\n%s", text)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Samples != m.Samples || got.Parameters.A == nil || *got.Parameters.A != a || !got.GeneratedAt.Equal(m.GeneratedAt) {
		t.Fatalf("Read() = %+v", got)
	}
}

func TestReadMissing(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing manifest")
	}
}

func TestParametersOf(t *testing.T) {
	fast := ParametersOf(waveform.FastRising{A1: 150, TauRise1: 10 * time.Microsecond, TauDecay1: time.Millisecond, A2: 70, TauRise2: 3 * time.Millisecond, TauDecay2: 20 * time.Millisecond})
	if fast.A1 == nil || *fast.A1 != 150 || fast.TauRise1 != "10µs" || fast.A != nil {
		t.Fatalf("fast parameters = %+v", fast)
	}

	slow := ParametersOf(waveform.SlowRising{A: 90, TauRise: 10 * time.Millisecond, TauDecay: 15 * time.Millisecond})
	if slow.A == nil || *slow.A != 90 || slow.TauDecay != "15ms" || slow.A1 != nil {
		t.Fatalf("slow parameters = %+v", slow)
	}
}

func TestSamplingOf(t *testing.T) {
	u := SamplingOf(timebase.Sampling{Mode: timebase.ModeUniform, RateHz: 20000}, timebase.Delay{Auto: true})
	if u.RateHz != 20000 || u.DtFine != "" || u.Delay != "auto" {
		t.Fatalf("uniform sampling = %+v", u)
	}
	v := SamplingOf(timebase.Sampling{Mode: timebase.ModeVariable, FineStep: 10 * time.Microsecond, CoarseStep: time.Millisecond, FineWindow: 10 * time.Millisecond}, timebase.Delay{Value: 5 * time.Millisecond})
	if v.RateHz != 0 || v.DtCoarse != "1ms" || v.Delay != "5ms" {
		t.Fatalf("variable sampling = %+v", v)
	}
}
