package cli

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"sim-epsp/internal/app"
)

var generateFlags struct {
	kinetics string

	a1, a2                    float64
	tauRise1, tauDecay1       time.Duration
	tauRise2, tauDecay2       time.Duration
	a                         float64
	tauRise, tauDecay         time.Duration
	duration                  time.Duration
	delay                     string
	sampling                  string
	rateKHz                   float64
	dtFine, dtCoarse, fineDur time.Duration
	outputDir, output, plot   string
	noPlot, noManifest        bool
	comment                   string
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a sim-EPSP stimulus file and its plot",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := getApp()
		opts := app.DefaultGenerateOptions(a.Config)
		applyGenerateFlags(cmd.Flags(), &opts)
		return a.Generate(cmd.Context(), opts)
	},
}

// applyGenerateFlags overrides configured values with the flags the user set.
func applyGenerateFlags(fs *pflag.FlagSet, opts *app.GenerateOptions) {
	f := &generateFlags
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}

	set("kinetics", func() { opts.Kinetics = f.kinetics })
	set("a1", func() { opts.Fast.A1 = f.a1 })
	set("tau-rise1", func() { opts.Fast.TauRise1 = f.tauRise1 })
	set("tau-decay1", func() { opts.Fast.TauDecay1 = f.tauDecay1 })
	set("a2", func() { opts.Fast.A2 = f.a2 })
	set("tau-rise2", func() { opts.Fast.TauRise2 = f.tauRise2 })
	set("tau-decay2", func() { opts.Fast.TauDecay2 = f.tauDecay2 })
	set("a", func() { opts.Slow.A = f.a })
	set("tau-rise", func() { opts.Slow.TauRise = f.tauRise })
	set("tau-decay", func() { opts.Slow.TauDecay = f.tauDecay })
	set("duration", func() { opts.Duration = f.duration })
	set("delay", func() { opts.Delay = f.delay })
	set("sampling", func() { opts.Sampling = f.sampling })
	set("sampling-rate", func() { opts.RateHz = f.rateKHz * 1000 })
	set("dt-fine", func() { opts.DtFine = f.dtFine })
	set("dt-coarse", func() { opts.DtCoarse = f.dtCoarse })
	set("fine-duration", func() { opts.FineDuration = f.fineDur })
	set("output-dir", func() { opts.OutputDir = f.outputDir })
	set("output", func() { opts.Output = f.output })
	set("plot", func() { opts.Plot = f.plot })
	set("no-plot", func() { opts.NoPlot = f.noPlot })
	set("no-manifest", func() { opts.Manifest = !f.noManifest })
	set("comment", func() { opts.Comment = f.comment })
}

func init() {
	f := &generateFlags
	fs := generateCmd.Flags()

	fs.StringVar(&f.kinetics, "kinetics", "fast", "Kinetic model: fast (double exponential) or slow (single exponential)")

	fs.Float64Var(&f.a1, "a1", 150, "Fast component amplitude in pA")
	fs.DurationVar(&f.tauRise1, "tau-rise1", 10*time.Microsecond, "Fast component rise time constant")
	fs.DurationVar(&f.tauDecay1, "tau-decay1", time.Millisecond, "Fast component decay time constant")
	fs.Float64Var(&f.a2, "a2", 70, "Slow component amplitude in pA")
	fs.DurationVar(&f.tauRise2, "tau-rise2", 3*time.Millisecond, "Slow component rise time constant")
	fs.DurationVar(&f.tauDecay2, "tau-decay2", 20*time.Millisecond, "Slow component decay time constant")

	fs.Float64Var(&f.a, "a", 150, "Single-exponential amplitude in pA")
	fs.DurationVar(&f.tauRise, "tau-rise", 10*time.Millisecond, "Single-exponential rise time constant")
	fs.DurationVar(&f.tauDecay, "tau-decay", 15*time.Millisecond, "Single-exponential decay time constant")

	fs.DurationVar(&f.duration, "duration", 100*time.Millisecond, "Stimulus duration after the delay")
	fs.StringVar(&f.delay, "delay", "0s", "Leading zero-current window: a duration or auto")
	fs.StringVar(&f.sampling, "sampling", "uniform", "Sampling policy: uniform or variable")
	fs.Float64Var(&f.rateKHz, "sampling-rate", 20, "Uniform sampling rate in kHz")
	fs.DurationVar(&f.dtFine, "dt-fine", 10*time.Microsecond, "Variable sampling fine step")
	fs.DurationVar(&f.dtCoarse, "dt-coarse", time.Millisecond, "Variable sampling coarse step")
	fs.DurationVar(&f.fineDur, "fine-duration", 10*time.Millisecond, "Variable sampling fine window")

	fs.StringVar(&f.outputDir, "output-dir", "output", "Directory for generated files")
	fs.StringVar(&f.output, "output", "", "Stimulus file name (derived from the parameters when empty)")
	fs.StringVar(&f.plot, "plot", "", "Plot file name (defaults to <name>_plot.png)")
	fs.BoolVar(&f.noPlot, "no-plot", false, "Skip the plot")
	fs.BoolVar(&f.noManifest, "no-manifest", false, "Skip the YAML manifest")
	fs.StringVar(&f.comment, "comment", "", "Stimulus file comment (describes the model when empty)")
}
