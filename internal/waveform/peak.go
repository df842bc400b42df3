package waveform

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ErrEmptySeries indicates a peak lookup over zero samples.
var ErrEmptySeries = errors.New("waveform: empty series")

// Peak locates the maximum of a current trace.
type Peak struct {
	Index   int
	TimeMS  float64
	Current float64
}

// FindPeak returns the first sample holding the maximum current.
func FindPeak(timesMS, currents []float64) (Peak, error) {
	if len(currents) == 0 {
		return Peak{}, ErrEmptySeries
	}
	if len(timesMS) != len(currents) {
		return Peak{}, fmt.Errorf("waveform: %d time points for %d currents", len(timesMS), len(currents))
	}
	// floats.MaxIdx keeps the first index on ties.
	idx := floats.MaxIdx(currents)
	return Peak{Index: idx, TimeMS: timesMS[idx], Current: currents[idx]}, nil
}
