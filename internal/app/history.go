package app

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"
)

// History prints recently catalogued stimuli.
func (a *App) History(ctx context.Context, opts HistoryOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show history")
	}
	if closeStore != nil {
		defer closeStore()
	}

	records, err := store.ListRecentStimuli(ctx, opts.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(a.Out, "no stimuli found")
		return nil
	}

	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Created (UTC)\tID\tKinetics\tSampling\tSamples\tDuration ms\tPeak pA\tPeak ms\tFile")

	for _, rec := range records {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			rec.CreatedAt.UTC().Format(time.RFC3339),
			rec.ID,
			rec.Kinetics,
			rec.Sampling,
			rec.Samples,
			formatDecimal(rec.DurationMS, 3),
			formatDecimal(rec.PeakCurrent, 3),
			formatDecimal(rec.PeakTimeMS, 4),
			rec.ATFPath,
		)
	}

	return writer.Flush()
}
