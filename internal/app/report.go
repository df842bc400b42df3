package app

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"sim-epsp/internal/service"
	"sim-epsp/internal/timebase"
)

const ruleWidth = 70

// WriteReport prints the generation summary followed by the acquisition
// protocol settings the stimulus file expects.
func WriteReport(w io.Writer, res *service.Result) error {
	tb := res.TimeBase
	rule := strings.Repeat("=", ruleWidth)

	var b strings.Builder
	fmt.Fprintf(&b, "Stimulus file: %s\n", res.ATFPath)
	if res.PlotPath != "" {
		fmt.Fprintf(&b, "Plot: %s\n", res.PlotPath)
	}
	if res.ManifestPath != "" {
		fmt.Fprintf(&b, "Manifest: %s\n", res.ManifestPath)
	}
	fmt.Fprintf(&b, "ID: %s\n", res.ID)
	fmt.Fprintf(&b, "Duration: %s ms\n", formatFloat(tb.EndMS(), 4))
	fmt.Fprintf(&b, "Number of points: %d\n", tb.Len())
	fmt.Fprintf(&b, "Delay: %s ms\n", formatFloat(tb.DelayMS, 4))
	fmt.Fprintf(&b, "Peak current: %s pA at %s ms\n", formatFloat(res.Peak.Current, 4), formatFloat(res.Peak.TimeMS, 4))

	fmt.Fprintln(&b, "\nParameters used:")
	fmt.Fprintf(&b, "  Type: %s\n", res.Model.Title())
	for _, line := range res.Model.Parameters()[1:] {
		fmt.Fprintf(&b, "  %s\n", line)
	}

	fmt.Fprintf(&b, "\n%s\nCLAMPEX PROTOCOL CONFIGURATION\n%s\n", rule, rule)
	if tb.Mode == timebase.ModeUniform {
		fmt.Fprintln(&b, "Set your episodic protocol to:")
		fmt.Fprintf(&b, "  - Sampling Interval: %s ms (%s kHz)\n", formatFloat(tb.StepMS, 4), formatFloat(res.Spec.Sampling.RateHz/1000, 2))
		fmt.Fprintf(&b, "  - Number of samples: %d\n", tb.Len())
		fmt.Fprintf(&b, "  - Duration will be: %s ms\n", formatFloat(tb.EndMS(), 4))
	} else {
		avg := tb.AverageStepMS()
		fmt.Fprintln(&b, "For approximate timing, set your episodic protocol to:")
		rate := "n/a"
		if avg > 0 {
			rate = formatFloat(1/avg, 2)
		}
		fmt.Fprintf(&b, "  - Sampling Interval: %s ms (~%s kHz)\n", formatFloat(avg, 4), rate)
		fmt.Fprintf(&b, "  - Number of samples: %d\n", tb.Len())
		fmt.Fprintln(&b, "  OR use --sampling uniform for exact timing control")
	}
	fmt.Fprintln(&b, "\nSet 'Sweeps per run' = 1")
	fmt.Fprintln(&b, "On Wave 0 page: Select 'Stimulus file' and load this ATF file")
	fmt.Fprintln(&b, rule)

	_, err := io.WriteString(w, b.String())
	return err
}

func formatFloat(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return formatDecimal(decimal.NewFromFloat(v), places)
}

func formatDecimal(d decimal.Decimal, places int32) string {
	return d.StringFixed(places)
}
