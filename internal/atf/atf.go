// Package atf reads and writes Axon Text File (ATF 1.0) stimulus waveforms
// for episodic stimulation in Clampex.
//
// Files carry one sweep: time in milliseconds and current in picoamperes.
package atf

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
)

const (
	// Signature is the leading file tag.
	Signature = "ATF"
	// Version is the ATF revision written.
	Version = "1.0"
	// AcquisitionMode marks the file as an episodic stimulus.
	AcquisitionMode = "Episodic Stimulation"
	// DefaultSignal is the exported signal name Clampex maps the column to.
	DefaultSignal = "IN 0"
	// TimeColumn labels the first data column.
	TimeColumn = "Time (ms)"

	sweepStartTimes = "0.000"
	boundsMargin    = 0.1
	boundsPlaces    = 2
)

// Header record keys.
const (
	KeyAcquisitionMode   = "AcquisitionMode"
	KeyComment           = "Comment"
	KeyYTop              = "YTop"
	KeyYBottom           = "YBottom"
	KeySweepStartTimesMS = "SweepStartTimesMS"
	KeySignalsExported   = "SignalsExported"
	KeySignals           = "Signals"
)

var (
	// ErrEmptyDocument indicates a document without samples.
	ErrEmptyDocument = errors.New("atf: no samples to write")
	// ErrMalformed indicates input that does not follow the ATF layout.
	ErrMalformed = errors.New("atf: malformed file")
	// ErrNonFinite indicates a NaN or infinite sample or display bound.
	ErrNonFinite = errors.New("atf: non-finite value")
)

// Document is a single-sweep stimulus ready to be written.
type Document struct {
	Comment  string
	Signal   string
	TimesMS  []float64
	Currents []float64
}

func (d Document) signal() string {
	if d.Signal == "" {
		return DefaultSignal
	}
	return d.Signal
}

// CurrentColumn labels the current column for signal.
func CurrentColumn(signal string) string {
	return signal + " (pA)"
}

// Bounds are the display limits Clampex uses for the stimulus axis.
type Bounds struct {
	Top    decimal.Decimal
	Bottom decimal.Decimal
}

// DisplayBounds pads the current range by 10% on each side. Non-finite
// currents, or bounds that overflow, yield ErrNonFinite.
func DisplayBounds(currents []float64) (Bounds, error) {
	if len(currents) == 0 {
		return Bounds{}, nil
	}
	for i, v := range currents {
		if !finite(v) {
			return Bounds{}, fmt.Errorf("%w: current %d is %v", ErrNonFinite, i, v)
		}
	}
	hi := floats.Max(currents)
	lo := floats.Min(currents)
	span := hi - lo
	top, bottom := hi+boundsMargin*span, lo-boundsMargin*span
	if !finite(top) || !finite(bottom) {
		return Bounds{}, fmt.Errorf("%w: display bounds [%v, %v]", ErrNonFinite, bottom, top)
	}
	return Bounds{
		Top:    decimal.NewFromFloat(top),
		Bottom: decimal.NewFromFloat(bottom),
	}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// SanitizeComment strips characters that would break a quoted header record.
func SanitizeComment(v string) string {
	r := strings.NewReplacer("\"", "'", "\t", " ", "\r", " ", "\n", " ")
	return strings.TrimSpace(r.Replace(v))
}
