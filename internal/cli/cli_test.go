package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"sim-epsp/internal/app"
)

func TestApplyGenerateFlagsOnlyOverridesChanged(t *testing.T) {
	fs := generateCmd.Flags()
	if err := fs.Parse([]string{"--kinetics=slow", "--a=80", "--sampling-rate=10", "--no-manifest"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	opts := app.GenerateOptions{
		Kinetics: "fast",
		Duration: 250 * time.Millisecond,
		RateHz:   20000,
		Manifest: true,
	}
	applyGenerateFlags(fs, &opts)

	if opts.Kinetics != "slow" {
		t.Errorf("Kinetics = %q, want slow", opts.Kinetics)
	}
	if opts.Slow.A != 80 {
		t.Errorf("Slow.A = %v, want 80", opts.Slow.A)
	}
	if opts.RateHz != 10000 {
		t.Errorf("RateHz = %v, want 10000", opts.RateHz)
	}
	if opts.Manifest {
		t.Error("expected --no-manifest to disable the manifest")
	}
	if opts.Duration != 250*time.Millisecond {
		t.Errorf("Duration = %s, unset flag must keep the configured value", opts.Duration)
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)

	if !strings.Contains(out.String(), "version: ") {
		t.Fatalf("unexpected version output %q", out.String())
	}
}
