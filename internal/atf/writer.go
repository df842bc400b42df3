package atf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Write serialises doc in ATF 1.0 layout.
func Write(w io.Writer, doc Document) error {
	if len(doc.TimesMS) == 0 {
		return ErrEmptyDocument
	}
	if len(doc.TimesMS) != len(doc.Currents) {
		return fmt.Errorf("atf: %d time points for %d currents", len(doc.TimesMS), len(doc.Currents))
	}

	for i, t := range doc.TimesMS {
		if !finite(t) || !finite(doc.Currents[i]) {
			return fmt.Errorf("%w: sample %d (%v, %v)", ErrNonFinite, i, t, doc.Currents[i])
		}
	}

	signal := doc.signal()
	bounds, err := DisplayBounds(doc.Currents)
	if err != nil {
		return err
	}
	records := [][]string{
		{KeyAcquisitionMode + "=" + AcquisitionMode},
		{KeyComment + "=" + SanitizeComment(doc.Comment)},
		{KeyYTop + "=" + bounds.Top.StringFixed(boundsPlaces)},
		{KeyYBottom + "=" + bounds.Bottom.StringFixed(boundsPlaces)},
		{KeySweepStartTimesMS + "=" + sweepStartTimes},
		{KeySignalsExported + "=" + signal},
		{KeySignals + "=", signal},
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\t%s\n", Signature, Version)
	fmt.Fprintf(bw, "%d\t%d\n", len(records), 2)
	for _, fields := range records {
		writeQuoted(bw, fields...)
	}
	writeQuoted(bw, TimeColumn, CurrentColumn(signal))

	for i, t := range doc.TimesMS {
		bw.WriteString(formatValue(t))
		bw.WriteByte('\t')
		bw.WriteString(formatValue(doc.Currents[i]))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteFile writes doc to path, replacing any existing file.
func WriteFile(path string, doc Document) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create stimulus file: %w", err)
	}
	if err := Write(file, doc); err != nil {
		file.Close()
		return fmt.Errorf("write stimulus file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close stimulus file: %w", err)
	}
	return nil
}

func writeQuoted(bw *bufio.Writer, fields ...string) {
	for i, f := range fields {
		if i > 0 {
			bw.WriteByte('\t')
		}
		bw.WriteByte('"')
		bw.WriteString(f)
		bw.WriteByte('"')
	}
	bw.WriteByte('\n')
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
