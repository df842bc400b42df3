// Package manifest records how a stimulus file was generated in a YAML
// sidecar next to it.
package manifest

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"sim-epsp/internal/timebase"
	"sim-epsp/internal/waveform"
)

// Manifest describes one generated stimulus.
type Manifest struct {
	ID          string     `yaml:"id"`
	GeneratedAt time.Time  `yaml:"generated_at"`
	Kinetics    string     `yaml:"kinetics"`
	Comment     string     `yaml:"comment"`
	Parameters  Parameters `yaml:"parameters"`
	Sampling    Sampling   `yaml:"sampling"`
	DelayMS     float64    `yaml:"delay_ms"`
	DurationMS  float64    `yaml:"duration_ms"`
	Samples     int        `yaml:"samples"`
	Peak        Peak       `yaml:"peak"`
	Files       Files      `yaml:"files"`
}

// Parameters holds the kinetic parameters. Amplitudes are in pA, durations
// are Go duration strings.
type Parameters struct {
	A1        *float64 `yaml:"a1_pa,omitempty" json:"a1_pa,omitempty"`
	TauRise1  string   `yaml:"tau_rise1,omitempty" json:"tau_rise1,omitempty"`
	TauDecay1 string   `yaml:"tau_decay1,omitempty" json:"tau_decay1,omitempty"`
	A2        *float64 `yaml:"a2_pa,omitempty" json:"a2_pa,omitempty"`
	TauRise2  string   `yaml:"tau_rise2,omitempty" json:"tau_rise2,omitempty"`
	TauDecay2 string   `yaml:"tau_decay2,omitempty" json:"tau_decay2,omitempty"`
	A         *float64 `yaml:"a_pa,omitempty" json:"a_pa,omitempty"`
	TauRise   string   `yaml:"tau_rise,omitempty" json:"tau_rise,omitempty"`
	TauDecay  string   `yaml:"tau_decay,omitempty" json:"tau_decay,omitempty"`
}

// Sampling records the sampling policy.
type Sampling struct {
	Mode         string  `yaml:"mode"`
	RateHz       float64 `yaml:"rate_hz,omitempty"`
	DtFine       string  `yaml:"dt_fine,omitempty"`
	DtCoarse     string  `yaml:"dt_coarse,omitempty"`
	FineDuration string  `yaml:"fine_duration,omitempty"`
	Delay        string  `yaml:"delay"`
}

// Peak is the located maximum current.
type Peak struct {
	TimeMS    float64 `yaml:"time_ms"`
	CurrentPA float64 `yaml:"current_pa"`
}

// Files lists the artefacts written alongside the manifest.
type Files struct {
	ATF  string `yaml:"atf"`
	Plot string `yaml:"plot,omitempty"`
}

// Write stores m as YAML at path.
func Write(path string, m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Read loads a manifest from path.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest yaml: %w", err)
	}
	return &m, nil
}

// ParametersOf extracts the parameter block for a kinetic model.
func ParametersOf(m waveform.Model) Parameters {
	switch model := m.(type) {
	case waveform.FastRising:
		return Parameters{
			A1: &model.A1, TauRise1: model.TauRise1.String(), TauDecay1: model.TauDecay1.String(),
			A2: &model.A2, TauRise2: model.TauRise2.String(), TauDecay2: model.TauDecay2.String(),
		}
	case waveform.SlowRising:
		return Parameters{A: &model.A, TauRise: model.TauRise.String(), TauDecay: model.TauDecay.String()}
	default:
		return Parameters{}
	}
}

// SamplingOf records a sampling policy and delay.
func SamplingOf(s timebase.Sampling, delay timebase.Delay) Sampling {
	out := Sampling{Mode: string(s.Mode), Delay: delay.String()}
	if s.Mode == timebase.ModeVariable {
		out.DtFine = s.FineStep.String()
		out.DtCoarse = s.CoarseStep.String()
		out.FineDuration = s.FineWindow.String()
	} else {
		out.RateHz = s.RateHz
	}
	return out
}
