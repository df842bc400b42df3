package timebase

import (
	"errors"
	"math"
	"testing"
	"time"
)

const tol = 1e-9

func uniform(rate float64) Sampling {
	return Sampling{Mode: ModeUniform, RateHz: rate}
}

func variable(fine, coarse, window time.Duration) Sampling {
	return Sampling{Mode: ModeVariable, FineStep: fine, CoarseStep: coarse, FineWindow: window}
}

func TestUniformSampleCountWithDelay(t *testing.T) {
	tb, err := Build(Spec{
		Sampling: uniform(10000),
		Duration: 100 * time.Millisecond,
		Delay:    Delay{Value: 20 * time.Millisecond},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tb.Len() != 1200 {
		t.Fatalf("Len() = %d, want 1200", tb.Len())
	}
	if tb.DelayMS != 20 {
		t.Fatalf("DelayMS = %v, want 20", tb.DelayMS)
	}
}

func TestUniformHalfOpenSpacing(t *testing.T) {
	cases := []struct {
		rate     float64
		duration time.Duration
		want     int
	}{
		{20000, 100 * time.Millisecond, 2000},
		{10000, 100 * time.Millisecond, 1000},
		{10, 300 * time.Millisecond, 3},
		{3000, 10 * time.Millisecond, 30},
		{1000, 1500 * time.Microsecond, 1},
	}
	for _, tc := range cases {
		tb, err := Build(Spec{Sampling: uniform(tc.rate), Duration: tc.duration})
		if err != nil {
			t.Fatalf("Build(%v, %s): %v", tc.rate, tc.duration, err)
		}
		if tb.Len() != tc.want {
			t.Errorf("rate %v duration %s: Len() = %d, want %d", tc.rate, tc.duration, tb.Len(), tc.want)
			continue
		}
		if tb.TimesMS[0] != 0 {
			t.Errorf("first sample = %v, want 0", tb.TimesMS[0])
		}
		step := 1000 / tc.rate
		for i := 1; i < tb.Len(); i++ {
			if d := tb.TimesMS[i] - tb.TimesMS[i-1]; math.Abs(d-step) > tol {
				t.Fatalf("rate %v: spacing at %d = %v, want %v", tc.rate, i, d, step)
			}
		}
		if end := tb.EndMS(); end >= float64(tc.duration)/float64(time.Millisecond) {
			t.Errorf("rate %v: last sample %v reaches the excluded end", tc.rate, end)
		}
	}
}

func TestUniformAutoDelay(t *testing.T) {
	tb, err := Build(Spec{Sampling: uniform(20000), Duration: 100 * time.Millisecond, Delay: Delay{Auto: true}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// 2000 stimulus samples, 2000/64 = 31 lead samples of 0.05 ms.
	if tb.Len() != 2031 {
		t.Fatalf("Len() = %d, want 2031", tb.Len())
	}
	if math.Abs(tb.DelayMS-1.55) > tol {
		t.Fatalf("DelayMS = %v, want 1.55", tb.DelayMS)
	}
	rel := tb.Relative()
	if rel[30] >= 0 || rel[31] != 0 {
		t.Fatalf("relative time around onset = %v, %v; want negative then exactly 0", rel[30], rel[31])
	}
}

func TestVariableSpacing(t *testing.T) {
	fine, coarse, window := 10*time.Microsecond, time.Millisecond, 10*time.Millisecond
	tb, err := Build(Spec{Sampling: variable(fine, coarse, window), Duration: 100 * time.Millisecond})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// 1000 fine points in [0, 10) plus 91 coarse points in [10, 100].
	if tb.Len() != 1091 {
		t.Fatalf("Len() = %d, want 1091", tb.Len())
	}
	if tb.EndMS() != 100 {
		t.Fatalf("EndMS() = %v, want 100 (inclusive end)", tb.EndMS())
	}
	for i := 1; i < tb.Len(); i++ {
		prev, cur := tb.TimesMS[i-1], tb.TimesMS[i]
		if cur <= prev {
			t.Fatalf("times not strictly ascending at %d: %v then %v", i, prev, cur)
		}
		want := 0.01
		if prev >= 10 {
			want = 1
		}
		if math.Abs(cur-prev-want) > tol {
			t.Fatalf("spacing after %v = %v, want %v", prev, cur-prev, want)
		}
	}
}

func TestVariableDelayWindowUsesFineStep(t *testing.T) {
	tb, err := Build(Spec{
		Sampling: variable(100*time.Microsecond, time.Millisecond, 2*time.Millisecond),
		Duration: 10 * time.Millisecond,
		Delay:    Delay{Value: time.Millisecond},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// 10 lead samples, 20 fine and 9 coarse stimulus samples.
	if tb.Len() != 39 {
		t.Fatalf("Len() = %d, want 39", tb.Len())
	}
	rel := tb.Relative()
	for i := 0; i < 10; i++ {
		if rel[i] >= 0 {
			t.Fatalf("lead sample %d has relative time %v, want negative", i, rel[i])
		}
	}
	if rel[10] != 0 {
		t.Fatalf("onset relative time = %v, want 0", rel[10])
	}
	if tb.EndMS() != 11 {
		t.Fatalf("EndMS() = %v, want 11", tb.EndMS())
	}
}

func TestVariableAutoDelay(t *testing.T) {
	tb, err := Build(Spec{
		Sampling: variable(10*time.Microsecond, time.Millisecond, 10*time.Millisecond),
		Duration: 100 * time.Millisecond,
		Delay:    Delay{Auto: true},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// 1091 samples → 17 × (100 ms / 1090).
	want := math.Round(17*100e6/1090) / 1e6
	if math.Abs(tb.DelayMS-want) > tol {
		t.Fatalf("DelayMS = %v, want %v", tb.DelayMS, want)
	}
	seen := make(map[float64]bool, tb.Len())
	for _, v := range tb.TimesMS {
		if seen[v] {
			t.Fatalf("duplicate time %v", v)
		}
		seen[v] = true
	}
}

func TestBuildRejectsInvalidSpecs(t *testing.T) {
	cases := []struct {
		name string
		spec Spec
	}{
		{"zero duration", Spec{Sampling: uniform(1000)}},
		{"negative duration", Spec{Sampling: uniform(1000), Duration: -time.Millisecond}},
		{"zero rate", Spec{Sampling: uniform(0), Duration: time.Millisecond}},
		{"nan rate", Spec{Sampling: uniform(math.NaN()), Duration: time.Millisecond}},
		{"too few samples", Spec{Sampling: uniform(10), Duration: time.Millisecond}},
		{"negative delay", Spec{Sampling: uniform(1000), Duration: time.Millisecond, Delay: Delay{Value: -time.Millisecond}}},
		{"zero fine step", Spec{Sampling: variable(0, time.Millisecond, time.Millisecond), Duration: 10 * time.Millisecond}},
		{"zero coarse step", Spec{Sampling: variable(time.Microsecond, 0, time.Millisecond), Duration: 10 * time.Millisecond}},
		{"window beyond duration", Spec{Sampling: variable(time.Microsecond, time.Millisecond, 20*time.Millisecond), Duration: 10 * time.Millisecond}},
		{"unknown mode", Spec{Sampling: Sampling{Mode: "log"}, Duration: time.Millisecond}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Build(tc.spec); !errors.Is(err, ErrInvalidSpec) {
				t.Fatalf("expected ErrInvalidSpec, got %v", err)
			}
		})
	}
}

func TestParseDelay(t *testing.T) {
	if d, err := ParseDelay("AUTO"); err != nil || !d.Auto {
		t.Fatalf("ParseDelay(AUTO) = %+v, %v", d, err)
	}
	if d, err := ParseDelay("20ms"); err != nil || d.Auto || d.Value != 20*time.Millisecond {
		t.Fatalf("ParseDelay(20ms) = %+v, %v", d, err)
	}
	if d, err := ParseDelay(""); err != nil || d != (Delay{}) {
		t.Fatalf("ParseDelay(\"\") = %+v, %v", d, err)
	}
	for _, bad := range []string{"-1ms", "soon", "20"} {
		if _, err := ParseDelay(bad); !errors.Is(err, ErrInvalidSpec) {
			t.Errorf("ParseDelay(%q) expected ErrInvalidSpec, got %v", bad, err)
		}
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("Variable"); err != nil || m != ModeVariable {
		t.Fatalf("ParseMode(Variable) = %q, %v", m, err)
	}
	if _, err := ParseMode("adaptive"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
