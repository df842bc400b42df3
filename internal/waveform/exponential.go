package waveform

import "math"

// DoubleExponential evaluates
//
//	A1·(1−e^(−t/τr1))·e^(−t/τd1) + A2·(1−e^(−t/τr2))·e^(−t/τd2)
//
// for t ≥ 0 and returns 0 for t < 0. t and the time constants share one unit.
func DoubleExponential(t, a1, tauRise1, tauDecay1, a2, tauRise2, tauDecay2 float64) float64 {
	if t < 0 {
		return 0
	}
	return riseDecay(t, a1, tauRise1, tauDecay1) + riseDecay(t, a2, tauRise2, tauDecay2)
}

// SingleExponential evaluates A·(1−e^(−t/τr))·e^(−t/τd) for t ≥ 0 and
// returns 0 for t < 0.
func SingleExponential(t, a, tauRise, tauDecay float64) float64 {
	if t < 0 {
		return 0
	}
	return riseDecay(t, a, tauRise, tauDecay)
}

func riseDecay(t, a, tauRise, tauDecay float64) float64 {
	return a * (1 - math.Exp(-t/tauRise)) * math.Exp(-t/tauDecay)
}
