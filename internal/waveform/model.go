package waveform

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidParameter indicates a kinetic parameter outside its domain.
	ErrInvalidParameter = errors.New("waveform: invalid kinetic parameter")
	// ErrUnknownKind indicates an unrecognised kinetics name.
	ErrUnknownKind = errors.New("waveform: unknown kinetics")
)

// Kind identifies a kinetic model family.
type Kind string

const (
	// KindFast is the two-term double-exponential model.
	KindFast Kind = "fast"
	// KindSlow is the one-term rise/decay model.
	KindSlow Kind = "slow"
)

// ParseKind maps a CLI/config name onto a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindFast:
		return KindFast, nil
	case KindSlow:
		return KindSlow, nil
	default:
		return "", fmt.Errorf("%w: %q (want fast or slow)", ErrUnknownKind, s)
	}
}

// Model evaluates a sim-EPSP current in pA at stimulus-relative time in ms.
type Model interface {
	Kind() Kind
	Validate() error
	At(tMS float64) float64
	Describe() string
	Title() string
	Parameters() []string
}

// FastRising is the double-exponential (fast-rising) sim-EPSP.
type FastRising struct {
	A1        float64
	TauRise1  time.Duration
	TauDecay1 time.Duration
	A2        float64
	TauRise2  time.Duration
	TauDecay2 time.Duration
}

// Kind implements Model.
func (FastRising) Kind() Kind { return KindFast }

// Validate rejects non-positive time constants and non-finite amplitudes.
func (m FastRising) Validate() error {
	if err := checkAmplitude("a1", m.A1); err != nil {
		return err
	}
	if err := checkAmplitude("a2", m.A2); err != nil {
		return err
	}
	for _, tau := range []struct {
		name  string
		value time.Duration
	}{
		{"tau_rise1", m.TauRise1},
		{"tau_decay1", m.TauDecay1},
		{"tau_rise2", m.TauRise2},
		{"tau_decay2", m.TauDecay2},
	} {
		if err := checkTau(tau.name, tau.value); err != nil {
			return err
		}
	}
	return nil
}

// At implements Model.
func (m FastRising) At(tMS float64) float64 {
	return DoubleExponential(tMS,
		m.A1, Milliseconds(m.TauRise1), Milliseconds(m.TauDecay1),
		m.A2, Milliseconds(m.TauRise2), Milliseconds(m.TauDecay2))
}

// Describe implements Model.
func (m FastRising) Describe() string {
	return fmt.Sprintf("Fast-rising sim-EPSP - Double exponential (A1=%s pA, tauRise1=%s ms, tauDecay1=%s ms, A2=%s pA, tauRise2=%s ms, tauDecay2=%s ms)",
		FormatFloat(m.A1), FormatMS(m.TauRise1), FormatMS(m.TauDecay1),
		FormatFloat(m.A2), FormatMS(m.TauRise2), FormatMS(m.TauDecay2))
}

// Title implements Model.
func (FastRising) Title() string { return "Simulated EPSP - Fast-Rising (Double Exponential)" }

// Parameters implements Model.
func (m FastRising) Parameters() []string {
	return []string{
		"Fast-Rising Parameters:",
		fmt.Sprintf("A1 = %s pA, τrise1 = %s ms, τdecay1 = %s ms", FormatFloat(m.A1), FormatMS(m.TauRise1), FormatMS(m.TauDecay1)),
		fmt.Sprintf("A2 = %s pA, τrise2 = %s ms, τdecay2 = %s ms", FormatFloat(m.A2), FormatMS(m.TauRise2), FormatMS(m.TauDecay2)),
	}
}

// SlowRising is the single-exponential (slow-rising) sim-EPSP.
type SlowRising struct {
	A        float64
	TauRise  time.Duration
	TauDecay time.Duration
}

// Kind implements Model.
func (SlowRising) Kind() Kind { return KindSlow }

// Validate rejects non-positive time constants and non-finite amplitudes.
func (m SlowRising) Validate() error {
	if err := checkAmplitude("a", m.A); err != nil {
		return err
	}
	if err := checkTau("tau_rise", m.TauRise); err != nil {
		return err
	}
	return checkTau("tau_decay", m.TauDecay)
}

// At implements Model.
func (m SlowRising) At(tMS float64) float64 {
	return SingleExponential(tMS, m.A, Milliseconds(m.TauRise), Milliseconds(m.TauDecay))
}

// Describe implements Model.
func (m SlowRising) Describe() string {
	return fmt.Sprintf("Slow-rising sim-EPSP - Single exponential (A=%s pA, tauRise=%s ms, tauDecay=%s ms)",
		FormatFloat(m.A), FormatMS(m.TauRise), FormatMS(m.TauDecay))
}

// Title implements Model.
func (SlowRising) Title() string { return "Simulated EPSP - Slow-Rising (Single Exponential)" }

// Parameters implements Model.
func (m SlowRising) Parameters() []string {
	return []string{
		"Slow-Rising Parameters:",
		fmt.Sprintf("A = %s pA", FormatFloat(m.A)),
		fmt.Sprintf("τrise = %s ms", FormatMS(m.TauRise)),
		fmt.Sprintf("τdecay = %s ms", FormatMS(m.TauDecay)),
	}
}

// Evaluate applies the model to every stimulus-relative time point.
func Evaluate(m Model, relativeMS []float64) []float64 {
	out := make([]float64, len(relativeMS))
	for i, t := range relativeMS {
		out[i] = m.At(t)
	}
	return out
}

// Milliseconds converts a duration to fractional milliseconds.
func Milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// FormatMS renders a duration as a shortest-form millisecond value.
func FormatMS(d time.Duration) string {
	return FormatFloat(Milliseconds(d))
}

// FormatFloat renders v in its shortest round-trip form.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func checkTau(name string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidParameter, name, d)
	}
	return nil
}

func checkAmplitude(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidParameter, name, v)
	}
	return nil
}

var (
	_ Model = FastRising{}
	_ Model = SlowRising{}
)
