// Package timebase builds the sample grid a stimulus is evaluated on.
//
// Times are produced in milliseconds, the unit the stimulus file is written
// in. Each sample is computed from its integer index rather than by
// accumulation, so the grid carries no drift.
package timebase

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// ErrInvalidSpec indicates a time base that cannot be constructed.
var ErrInvalidSpec = errors.New("timebase: invalid spec")

// autoDelayDivisor sizes the automatic delay to 1/64 of the sweep samples.
// The value is kept for compatibility with earlier generated files.
const autoDelayDivisor = 64

// sampleEpsilon absorbs float error in floor(D·R), e.g. 0.3 s · 10 Hz.
const sampleEpsilon = 1e-9

// Mode selects a sampling policy.
type Mode string

const (
	// ModeUniform uses a fixed step of 1/rate.
	ModeUniform Mode = "uniform"
	// ModeVariable uses a fine step for an initial window and a coarse step after.
	ModeVariable Mode = "variable"
)

// ParseMode maps a CLI/config name onto a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeUniform:
		return ModeUniform, nil
	case ModeVariable:
		return ModeVariable, nil
	default:
		return "", fmt.Errorf("%w: unknown sampling mode %q", ErrInvalidSpec, s)
	}
}

// Sampling describes a sampling policy. RateHz applies to uniform sampling,
// the step and window fields to variable sampling.
type Sampling struct {
	Mode       Mode
	RateHz     float64
	FineStep   time.Duration
	CoarseStep time.Duration
	FineWindow time.Duration
}

// String summarises the policy for comments and logs.
func (s Sampling) String() string {
	if s.Mode == ModeVariable {
		return fmt.Sprintf("variable (dt_fine=%s, dt_coarse=%s, fine_duration=%s)", s.FineStep, s.CoarseStep, s.FineWindow)
	}
	return fmt.Sprintf("uniform %s kHz", formatFloat(s.RateHz/1000))
}

// Delay is either a fixed lead-in or the automatic 1/64-of-sweep heuristic.
type Delay struct {
	Auto  bool
	Value time.Duration
}

// ParseDelay accepts "auto" or a Go duration string.
func ParseDelay(s string) (Delay, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Delay{}, nil
	}
	if strings.EqualFold(s, "auto") {
		return Delay{Auto: true}, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return Delay{}, fmt.Errorf("%w: delay %q: %v", ErrInvalidSpec, s, err)
	}
	if d < 0 {
		return Delay{}, fmt.Errorf("%w: delay must not be negative, got %s", ErrInvalidSpec, d)
	}
	return Delay{Value: d}, nil
}

func (d Delay) String() string {
	if d.Auto {
		return "auto"
	}
	return d.Value.String()
}

// Spec is everything needed to build a TimeBase.
type Spec struct {
	Sampling Sampling
	Duration time.Duration
	Delay    Delay
}

// TimeBase is an ascending, duplicate-free sample grid in milliseconds.
type TimeBase struct {
	Mode    Mode
	TimesMS []float64
	DelayMS float64
	// StepMS is the nominal step: 1/rate for uniform, dt_fine for variable.
	StepMS float64
}

// Len returns the number of samples.
func (tb *TimeBase) Len() int { return len(tb.TimesMS) }

// Relative returns stimulus-relative times (t − delay). Samples inside the
// delay window come out negative.
func (tb *TimeBase) Relative() []float64 {
	out := make([]float64, len(tb.TimesMS))
	for i, t := range tb.TimesMS {
		out[i] = t - tb.DelayMS
	}
	return out
}

// EndMS returns the last sample time.
func (tb *TimeBase) EndMS() float64 {
	if len(tb.TimesMS) == 0 {
		return 0
	}
	return tb.TimesMS[len(tb.TimesMS)-1]
}

// AverageStepMS returns the mean spacing across the whole grid.
func (tb *TimeBase) AverageStepMS() float64 {
	if len(tb.TimesMS) < 2 {
		return tb.StepMS
	}
	return tb.EndMS() / float64(len(tb.TimesMS)-1)
}

// Build constructs the time base for spec.
func Build(spec Spec) (*TimeBase, error) {
	if spec.Duration <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive, got %s", ErrInvalidSpec, spec.Duration)
	}
	if !spec.Delay.Auto && spec.Delay.Value < 0 {
		return nil, fmt.Errorf("%w: delay must not be negative, got %s", ErrInvalidSpec, spec.Delay.Value)
	}

	var (
		tb  *TimeBase
		err error
	)
	switch spec.Sampling.Mode {
	case ModeUniform:
		tb, err = buildUniform(spec)
	case ModeVariable:
		tb, err = buildVariable(spec)
	default:
		return nil, fmt.Errorf("%w: unknown sampling mode %q", ErrInvalidSpec, spec.Sampling.Mode)
	}
	if err != nil {
		return nil, err
	}
	if tb.Len() == 0 {
		return nil, fmt.Errorf("%w: %s over %s yields no samples", ErrInvalidSpec, spec.Sampling, spec.Duration)
	}
	return tb, nil
}

func buildUniform(spec Spec) (*TimeBase, error) {
	rate := spec.Sampling.RateHz
	if !(rate > 0) || math.IsInf(rate, 0) {
		return nil, fmt.Errorf("%w: sampling rate must be positive, got %v", ErrInvalidSpec, rate)
	}

	stimulus := sampleCount(spec.Duration.Seconds(), rate)

	var total, delaySamples int
	var delayMS float64
	if spec.Delay.Auto {
		delaySamples = stimulus / autoDelayDivisor
		delayMS = float64(delaySamples) * 1000 / rate
		total = stimulus + delaySamples
	} else {
		delayMS = float64(spec.Delay.Value) / float64(time.Millisecond)
		total = sampleCount(spec.Delay.Value.Seconds()+spec.Duration.Seconds(), rate)
	}

	times := make([]float64, total)
	for i := range times {
		times[i] = float64(i) * 1000 / rate
	}

	return &TimeBase{Mode: ModeUniform, TimesMS: times, DelayMS: delayMS, StepMS: 1000 / rate}, nil
}

func buildVariable(spec Spec) (*TimeBase, error) {
	s := spec.Sampling
	if s.FineStep <= 0 {
		return nil, fmt.Errorf("%w: dt_fine must be positive, got %s", ErrInvalidSpec, s.FineStep)
	}
	if s.CoarseStep <= 0 {
		return nil, fmt.Errorf("%w: dt_coarse must be positive, got %s", ErrInvalidSpec, s.CoarseStep)
	}
	if s.FineWindow < 0 || s.FineWindow > spec.Duration {
		return nil, fmt.Errorf("%w: fine_duration must lie within [0, %s], got %s", ErrInvalidSpec, spec.Duration, s.FineWindow)
	}

	fine := halfOpen(0, s.FineWindow, s.FineStep)
	coarse := closed(s.FineWindow, spec.Duration, s.CoarseStep)
	stimulus := unique(append(fine, coarse...))

	delay := spec.Delay.Value
	if spec.Delay.Auto {
		delay = autoVariableDelay(stimulus)
	}

	// The delay window is sampled at the grid's initial (fine) spacing.
	lead := halfOpen(0, delay, s.FineStep)
	shifted := make([]time.Duration, 0, len(lead)+len(stimulus))
	shifted = append(shifted, lead...)
	for _, t := range stimulus {
		shifted = append(shifted, delay+t)
	}
	grid := unique(shifted)

	times := make([]float64, len(grid))
	for i, t := range grid {
		times[i] = float64(t) / float64(time.Millisecond)
	}

	return &TimeBase{
		Mode:    ModeVariable,
		TimesMS: times,
		DelayMS: float64(delay) / float64(time.Millisecond),
		StepMS:  float64(s.FineStep) / float64(time.Millisecond),
	}, nil
}

// autoVariableDelay is (samples/64) × the grid's average step.
func autoVariableDelay(stimulus []time.Duration) time.Duration {
	n := len(stimulus)
	if n < 2 {
		return 0
	}
	span := stimulus[n-1] - stimulus[0]
	avg := float64(span) / float64(n-1)
	return time.Duration(math.Round(float64(n/autoDelayDivisor) * avg))
}

func sampleCount(seconds, rate float64) int {
	n := math.Floor(seconds*rate + sampleEpsilon)
	if n < 0 {
		return 0
	}
	return int(n)
}

// halfOpen returns from, from+step, ... strictly below to.
func halfOpen(from, to, step time.Duration) []time.Duration {
	var out []time.Duration
	for i := int64(0); ; i++ {
		t := from + time.Duration(i)*step
		if t >= to {
			return out
		}
		out = append(out, t)
	}
}

// closed returns from, from+step, ... up to and including to.
func closed(from, to, step time.Duration) []time.Duration {
	var out []time.Duration
	for i := int64(0); ; i++ {
		t := from + time.Duration(i)*step
		if t > to {
			return out
		}
		out = append(out, t)
	}
}

func unique(ts []time.Duration) []time.Duration {
	sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })
	out := ts[:0]
	for i, t := range ts {
		if i > 0 && t == out[len(out)-1] {
			continue
		}
		out = append(out, t)
	}
	return out
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%g", v)
}
