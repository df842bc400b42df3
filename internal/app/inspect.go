package app

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"gonum.org/v1/gonum/floats"

	"sim-epsp/internal/atf"
	"sim-epsp/internal/waveform"
)

// Inspect parses a stimulus file and prints its header and a summary.
func (a *App) Inspect(opts InspectOptions) error {
	if opts.Path == "" {
		return errors.New("inspect: file path is required")
	}
	f, err := atf.ReadFile(opts.Path)
	if err != nil {
		return err
	}

	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "File\t%s\n", opts.Path)
	fmt.Fprintf(writer, "Version\t%s\n", f.Version)
	for _, rec := range f.Records {
		fmt.Fprintf(writer, "%s\t%s\n", rec.Key, sanitizeInline(strings.Join(rec.Values, " ")))
	}
	fmt.Fprintf(writer, "Columns\t%s\n", strings.Join(f.Columns, ", "))
	fmt.Fprintf(writer, "Samples\t%d\n", len(f.TimesMS))

	if len(f.TimesMS) > 0 {
		peak, err := waveform.FindPeak(f.TimesMS, f.Values)
		if err != nil {
			return err
		}
		fmt.Fprintf(writer, "Time range\t%s - %s ms\n", formatFloat(f.TimesMS[0], 4), formatFloat(f.TimesMS[len(f.TimesMS)-1], 4))
		fmt.Fprintf(writer, "Current range\t%s - %s pA\n", formatFloat(floats.Min(f.Values), 4), formatFloat(floats.Max(f.Values), 4))
		fmt.Fprintf(writer, "Peak\t%s pA at %s ms\n", formatFloat(peak.Current, 4), formatFloat(peak.TimeMS, 4))
	}
	if err := writer.Flush(); err != nil {
		return err
	}

	rows := opts.Rows
	if rows > len(f.TimesMS) {
		rows = len(f.TimesMS)
	}
	if rows <= 0 {
		return nil
	}

	writer = tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "\n%s\n", strings.Join(f.Columns, "\t"))
	for i := 0; i < rows; i++ {
		fmt.Fprintf(writer, "%s\t%s\n", waveform.FormatFloat(f.TimesMS[i]), waveform.FormatFloat(f.Values[i]))
	}
	return writer.Flush()
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
